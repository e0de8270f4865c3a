package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

// ProcessSession queues a pipeline run for the session. Processing is
// long; the handler only confirms the hand-off.
func (s *Server) ProcessSession(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_session", "invalid value"))
		return
	}

	if !s.worker.Enqueue(id) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"queued":    false,
			"sessionId": id.String(),
			"message":   "processing queue is full, retry later",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"queued":    true,
		"sessionId": id.String(),
	})
}
