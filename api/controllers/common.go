package controllers

import (
	"net/http"

	"github.com/otka-dev/otka-backend/api/validators"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/pagination"
)

// listEnvelope shapes cursor-paginated listings.
type listEnvelope struct {
	Items      any     `json:"items"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

func newListEnvelope(items any, next *pagination.Cursor) listEnvelope {
	envelope := listEnvelope{Items: items}
	if next != nil {
		token := pagination.EncodeCursor(*next)
		envelope.NextCursor = &token
	}
	return envelope
}

// parseListParams reads the shared limit/cursor query parameters.
func parseListParams(r *http.Request) (int, *pagination.Cursor, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return 0, nil, err
	}
	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		return 0, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return limit, cursor, nil
}
