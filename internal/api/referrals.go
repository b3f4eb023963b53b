package api

import (
	"errors"
	"net/http"
	"strconv"

	"referral_giveaway_bot/internal/middleware"
	"referral_giveaway_bot/internal/service"
	"referral_giveaway_bot/pkg/auth"
	"referral_giveaway_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type referralRoutes struct {
	rs              service.ReferralServiceI
	requiredInvites int
}

func NewReferralRoutes(handler *gin.RouterGroup, rs service.ReferralServiceI, hub *ProgressHub,
	a *auth.TelegramAuth, admin *middleware.Authorization, requiredInvites int) {
	r := &referralRoutes{rs: rs, requiredInvites: requiredInvites}

	h := handler.Group("/referrals")
	{
		authed := h.Group("/")
		authed.Use(a.TelegramAuthMiddleware())
		{
			authed.GET("/me", r.GetMyProgress)
		}

		h.GET("/ws/:telegram_id", hub.HandleWebSocket)
	}

	adm := handler.Group("/admin")
	adm.Use(a.TelegramAuthMiddleware(), admin.AdminOnly())
	{
		adm.GET("/candidates", r.GetCandidates)
		adm.POST("/approve/:user_id", r.ApproveUser)
		adm.GET("/winners", r.GetWinners)
	}
}

func (r *referralRoutes) GetMyProgress(c *gin.Context) {
	log := logger.Logger()

	userData, exists := c.Get("telegram_user")
	if !exists {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user, ok := userData.(*auth.TelegramUserData)
	if !ok {
		log.Error("invalid type assertion for telegram user data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	progress, err := r.rs.Progress(c.Request.Context(), user.ID)
	if err != nil {
		log.Error("failed to get referral progress", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get referral progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"telegram_id":      progress.TelegramID,
		"referrals":        progress.Referrals,
		"status":           progress.Status,
		"required_invites": r.requiredInvites,
		"referral_link":    r.rs.Link(user.ID).URL(),
	})
}

type candidateResponse struct {
	TelegramID int64 `json:"telegram_id"`
	Referrals  int   `json:"referrals"`
}

func (r *referralRoutes) GetCandidates(c *gin.Context) {
	log := logger.Logger()

	threshold := r.requiredInvites
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			log.Error("failed to parse threshold", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold"})
			return
		}
		threshold = parsed
	}

	candidates, err := r.rs.Candidates(c.Request.Context(), threshold)
	if err != nil {
		if errors.Is(err, service.ErrInvalidThreshold) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be a positive integer"})
			return
		}
		log.Error("failed to list candidates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list candidates"})
		return
	}

	out := make([]candidateResponse, len(candidates))
	for i, candidate := range candidates {
		out[i] = candidateResponse{
			TelegramID: candidate.TelegramID,
			Referrals:  candidate.Referrals,
		}
	}

	c.JSON(http.StatusOK, out)
}

func (r *referralRoutes) ApproveUser(c *gin.Context) {
	log := logger.Logger()

	userID := c.Param("user_id")
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		log.Error("failed to parse user_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	newly, err := r.rs.Approve(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no user associated with the provided user_id"})
			return
		}
		log.Error("failed to approve user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":        id,
		"approved":       true,
		"already_winner": !newly,
	})
}

func (r *referralRoutes) GetWinners(c *gin.Context) {
	log := logger.Logger()

	winners, err := r.rs.Winners(c.Request.Context())
	if err != nil {
		log.Error("failed to list winners", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list winners"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"winners": winners})
}
