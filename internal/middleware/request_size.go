package middleware

import (
	"net/http"
)

// RequestSizeLimitMiddleware rejects oversized bodies. Every payload this
// service accepts is a small JSON document, so the limit can be tight.
// Chunked requests with no Content-Length are still capped by the reader.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
