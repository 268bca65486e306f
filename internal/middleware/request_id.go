package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/baharkarakas/qa-forum/internal/api/httpx"
)

const requestIDHeader = "X-Request-Id"

// RequestID keeps a caller supplied id when it looks sane, otherwise mints one.
// Only header + context; nothing is written to the body.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(httpx.WithRequestID(r.Context(), id)))
	})
}
