package middleware

import (
	"io"
	"net/http"
)

// DefaultMaxBodyBytes fits a full workout log with notes many times over.
const DefaultMaxBodyBytes = 1 << 20

// RequestBody caps the request body at maxBytes. Once the handler returns, whatever it left
// unread is drained and the body closed, so keep-alive connections can be reused.
func RequestBody(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			next.ServeHTTP(w, r)

			if r.Body != nil {
				_, _ = io.Copy(io.Discard, r.Body)
				_ = r.Body.Close()
			}
		})
	}
}
