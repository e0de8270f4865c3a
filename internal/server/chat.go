package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatLimitCheckRequest struct {
	UserID string `json:"userId"`
}

// ChatLimitCheck is fail-closed: when the quota cannot be verified the
// response is a denial, not an error.
func (s *Server) ChatLimitCheck(c *gin.Context) {
	var req ChatLimitCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, err := snowflake.ParseString(req.UserID)
	if err != nil {
		AbortWithError(c, newValidationError("userId", "invalid_user", "invalid value"))
		return
	}

	result, err := s.entitlement.CanSendAIMessage(c.Request.Context(), userID)
	if err != nil {
		// the service already shaped a denial; log the cause and serve it
		s.log.Error("message limit check failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, result)
}
