// Package middleware provides the gin middleware of the PharmaOps API.
package middleware

import (
	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key set by logger.GinMiddleware
const RequestIDKey = "request_id"

// RequestIDHeader carries the request correlation ID
const RequestIDHeader = "X-Request-ID"

// MaxRequestIDLength bounds request IDs copied from headers into traces
const MaxRequestIDLength = 128

// GetRequestID returns the request ID from the gin context, falling back to
// the (truncated) request header
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	id := c.GetHeader(RequestIDHeader)
	if len(id) > MaxRequestIDLength {
		return id[:MaxRequestIDLength]
	}
	return id
}

// Secure adds security headers to every response
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Next()
	}
}
