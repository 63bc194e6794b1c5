package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookdetector/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// requestContext tags each request with an id and logs its completion.
func (s *Server) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))

		started := time.Now()
		c.Next()

		logger := logging.WithContext(c.Request.Context(), s.logger)
		attrs := []logging.Attr{
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(started)),
		}
		if c.Writer.Status() >= 500 {
			logger.Warn("api request failed", logging.Args(attrs...)...)
			return
		}
		logger.Debug("api request", logging.Args(attrs...)...)
	}
}
