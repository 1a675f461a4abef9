package middleware

import (
	"net/http"
	"time"
)

// Timeout cuts off handlers that exceed the request budget, answering
// with the standard response envelope.
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	const body = `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"Request timed out"}}`

	if limit <= 0 {
		limit = 30 * time.Second
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, limit, body)
	}
}
