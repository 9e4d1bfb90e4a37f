package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{1, 1},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Errorf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestLimitWithBuffer(t *testing.T) {
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("LimitWithBuffer(10) = %d, want 11", got)
	}
	if got := LimitWithBuffer(0); got != DefaultLimit+1 {
		t.Fatalf("LimitWithBuffer(0) = %d, want %d", got, DefaultLimit+1)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	decoded, err := DecodeCursor(EncodeCursor(original))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded == nil {
		t.Fatalf("expected non-nil cursor")
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("created_at mismatch: %s vs %s", decoded.CreatedAt, original.CreatedAt)
	}
	if decoded.ID != original.ID {
		t.Fatalf("id mismatch: %s vs %s", decoded.ID, original.ID)
	}
}

func TestDecodeCursorEmptyMeansFirstPage(t *testing.T) {
	cursor, err := DecodeCursor("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cursor != nil {
		t.Fatalf("expected nil cursor for blank token")
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	if _, err := DecodeCursor("!!not-base64!!"); err == nil {
		t.Fatalf("expected error for invalid base64")
	}

	missingSeparator := base64.StdEncoding.EncodeToString([]byte("no-separator"))
	if _, err := DecodeCursor(missingSeparator); err == nil {
		t.Fatalf("expected error for missing separator")
	}

	badTimestamp := base64.StdEncoding.EncodeToString([]byte("yesterday|" + uuid.NewString()))
	if _, err := DecodeCursor(badTimestamp); err == nil {
		t.Fatalf("expected error for invalid timestamp")
	}

	badID := base64.StdEncoding.EncodeToString([]byte(time.Now().UTC().Format(time.RFC3339Nano) + "|nope"))
	if _, err := DecodeCursor(badID); err == nil {
		t.Fatalf("expected error for invalid id")
	}
}
