package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/latsops/pos-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// maxRequestIDLen bounds client-supplied ids; anything longer is replaced
// so log fields stay sane.
const maxRequestIDLen = 64

func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" || len(reqID) > maxRequestIDLen {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
