package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/otka-dev/otka-backend/api/responses"
	pkgAuth "github.com/otka-dev/otka-backend/pkg/auth"
	"github.com/otka-dev/otka-backend/pkg/config"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/logger"
)

// AccountChecker resolves the account behind a token so deactivated users
// lose access before their JWT expires.
type AccountChecker interface {
	Lookup(ctx context.Context, email string) (*models.User, error)
}

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, accounts AccountChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.Email == "" || !claims.Role.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed claims"))
				return
			}

			if accounts != nil {
				user, lookupErr := accounts.Lookup(r.Context(), claims.Email)
				if lookupErr != nil {
					if typed := pkgerrors.As(lookupErr); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
						responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account unavailable"))
						return
					}
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, lookupErr, "validate account"))
					return
				}
				if !user.Active {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account deactivated"))
					return
				}
			}

			ctx := WithActor(r.Context(), claims.Email, string(claims.Role))
			if logg != nil {
				ctx = logg.WithActorEmail(ctx, claims.Email)
				ctx = logg.WithActorRole(ctx, string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
