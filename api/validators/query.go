package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParsePathUUID reads a chi URL parameter as a UUID.
func ParsePathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a UUID").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// ParseQueryMonth reads a required YYYY-MM query parameter.
func ParseQueryMonth(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "month query parameter is required").WithDetails(map[string]any{"field": key})
	}
	if _, err := time.Parse("2006-01", raw); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "month must use the YYYY-MM format").WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}
