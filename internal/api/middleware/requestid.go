package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/id"
)

// HeaderRequestID carries the request correlation id.
const HeaderRequestID = "X-Request-ID"

// RequestID reuses a valid inbound id or mints a new one, echoes it on the
// response and stores it on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := id.RequestID(c.GetHeader(HeaderRequestID))
		if !rid.Valid() {
			rid = id.NewRequestID()
		}
		c.Header(HeaderRequestID, rid.String())
		c.Request = c.Request.WithContext(id.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}
