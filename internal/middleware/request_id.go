package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/project-management-api/internal/constants"
)

// RequestID tags each request with an id, echoed in the response header, and logs one line when it completes.
// A client supplied id is kept.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetHeader(constants.RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, rid)
		c.Header(constants.RequestIDHeader, rid)

		c.Next()

		log.Printf("rid=%s method=%s path=%s status=%d dur=%s",
			rid, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
