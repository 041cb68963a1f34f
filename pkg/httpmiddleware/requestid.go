package httpmiddleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request identifier on both request and
// response.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the request ID stored by the RequestID
// middleware, or "" when none is present.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID returns a middleware that assigns each request an identifier. A
// usable incoming header value is kept so IDs survive proxy hops; anything
// missing, oversized or non-printable is replaced with a fresh UUID. The ID
// is echoed on the response and stored in the request context for the
// logging middleware.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if !usableRequestID(id) {
				id = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// usableRequestID accepts non-empty printable ASCII up to 128 bytes. Anything
// else could corrupt log lines or response headers.
func usableRequestID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, c := range []byte(id) {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}
