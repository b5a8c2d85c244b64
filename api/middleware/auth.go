package middleware

import (
	"net/http"
	"strings"

	"github.com/latsops/pos-backend/api/responses"
	pkgAuth "github.com/latsops/pos-backend/pkg/auth"
	"github.com/latsops/pos-backend/pkg/auth/session"
	"github.com/latsops/pos-backend/pkg/config"
	pkgerrors "github.com/latsops/pos-backend/pkg/errors"
	"github.com/latsops/pos-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// operator identity.
func Auth(cfg config.JWTConfig, verifier session.Checker, logg *logger.Logger) func(http.Handler) http.Handler {
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

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := pkgAuth.WithOperator(r.Context(), pkgAuth.ContextOperator{
				ID:   claims.OperatorID,
				Name: claims.OperatorName,
			})

			if logg != nil {
				ctx = logg.WithOperatorID(ctx, claims.OperatorID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
