package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	entitlementdomain "github.com/purposeful/coach/internal/entitlement/domain"
	"github.com/purposeful/coach/internal/tier"
	"go.uber.org/zap"
)

type InitializeTrialRequest struct {
	AnonymousID string `json:"anonymousId"`
}

func (s *Server) InitializeTrial(c *gin.Context) {
	limit := s.limiter.AllowIP(c.Request.Context(), c.ClientIP())
	if !limit.Allowed {
		if limit.RetryAfter > 0 {
			c.Header("Retry-After", limit.RetryAfter.Round(time.Second).String())
		}
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	var req InitializeTrialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.entitlement.InitializeUser(c.Request.Context(), req.AnonymousID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TierStatus degrades to free-tier defaults on internal failure; this
// endpoint backs UI rendering and must not surface a 500.
func (s *Server) TierStatus(c *gin.Context) {
	userID, err := snowflake.ParseString(c.Param("userId"))
	if err != nil {
		AbortWithError(c, newValidationError("userId", "invalid_user", "invalid value"))
		return
	}

	status, err := s.entitlement.GetTierStatus(c.Request.Context(), userID)
	if err != nil {
		s.log.Error("tier status lookup failed, serving free defaults",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		defs := s.entitlement.TierDefinitions()
		status = entitlementdomain.TierStatus{
			Tier:   tier.Free,
			Status: entitlementdomain.SubscriptionStatusNone,
			Limits: defs.Limits[tier.Free],
		}
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) TierDefinitions(c *gin.Context) {
	c.JSON(http.StatusOK, s.entitlement.TierDefinitions())
}
