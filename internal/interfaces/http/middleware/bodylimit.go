package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pharmaops/backend/internal/interfaces/http/dto"
)

// BodyLimit caps the body of document-carrying requests (POST, PUT, PATCH)
// at maxBytes. Reads and deletes pass through untouched. A declared length
// over the cap is refused up front; bodies of unknown length fail on the
// read that crosses it.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				fmt.Sprintf("request body of %d bytes exceeds the %d byte limit", c.Request.ContentLength, maxBytes),
				GetRequestID(c),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
