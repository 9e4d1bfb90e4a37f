package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
)

type samplePayload struct {
	Email string `json:"email" validate:"required,email"`
	Qty   int    `json:"qty" validate:"min=1,max=100"`
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var payload samplePayload
	if err := DecodeJSONBody(jsonRequest(`{"email":"a@b.ro","qty":2}`), &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Email != "a@b.ro" || payload.Qty != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	var payload samplePayload
	err := DecodeJSONBody(jsonRequest(`{"email":`), &payload)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var payload samplePayload
	err := DecodeJSONBody(jsonRequest(`{"email":"a@b.ro","qty":1,"extra":true}`), &payload)
	if pkgerrors.As(err) == nil {
		t.Fatalf("expected error for unknown field, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldDetailsByJSONTag(t *testing.T) {
	var payload samplePayload
	err := DecodeJSONBody(jsonRequest(`{"email":"not-an-email","qty":0}`), &payload)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type: %T", typed.Details())
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email detail: %q", details["email"])
	}
	if details["qty"] != "must be at least 1" {
		t.Fatalf("unexpected qty detail: %q", details["qty"])
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=50", nil)
	value, err := ParseQueryInt(req, "limit", 25, 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 50 {
		t.Fatalf("unexpected value: %d", value)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if value, _ = ParseQueryInt(req, "limit", 25, 1, 100); value != 25 {
		t.Fatalf("expected default, got %d", value)
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	if _, err = ParseQueryInt(req, "limit", 25, 1, 100); err == nil {
		t.Fatalf("expected error for non-numeric input")
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	if _, err = ParseQueryInt(req, "limit", 25, 1, 100); err == nil {
		t.Fatalf("expected error for out-of-range input")
	}
}

func TestParseQueryMonth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?month=2026-03", nil)
	month, err := ParseQueryMonth(req, "month")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if month != "2026-03" {
		t.Fatalf("unexpected month: %s", month)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err = ParseQueryMonth(req, "month"); err == nil {
		t.Fatalf("expected error for missing month")
	}

	req = httptest.NewRequest(http.MethodGet, "/?month=2026-13", nil)
	if _, err = ParseQueryMonth(req, "month"); err == nil {
		t.Fatalf("expected error for impossible month")
	}
}
