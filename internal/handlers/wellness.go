package handlers

import (
	"campusbuddy/internal/apperr"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	checkinSuccessMessage   = "Check-in successful"
	alreadyCheckedInMessage = "You have already checked in today! Come back tomorrow for more points."
)

// GetWellnessTip answers with a tip for the mood query parameter. Unknown
// moods get the fallback tip.
func (h *Handler) GetWellnessTip(c *gin.Context) {
	c.JSON(http.StatusOK, h.advisor.GetTip(c.Query("mood")))
}

func (h *Handler) GetMoods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"moods": h.advisor.Moods()})
}

func (h *Handler) Checkin(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req struct {
		Mood string `json:"mood"`
		Tip  string `json:"tip"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	result, err := h.ledger.RecordCheckin(ctx, identity.UserID, req.Mood, req.Tip)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		h.respondError(c, err, "Error recording check-in")
		return
	}

	message := checkinSuccessMessage
	if result.AlreadyCheckedIn {
		message = alreadyCheckedInMessage
	}
	c.JSON(http.StatusOK, gin.H{
		"pointsAwarded":    result.PointsAwarded,
		"streak":           result.Streak,
		"points":           result.Points,
		"alreadyCheckedIn": result.AlreadyCheckedIn,
		"date":             result.Date,
		"tip":              result.Tip,
		"message":          message,
	})
}

// CheckinHistory lists the caller's most recent check-ins.
func (h *Handler) CheckinHistory(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	limit := parseLimit(c.Query("limit"), h.cfg.Wellness.HistoryLimit, maxHistoryLimit)

	ctx, cancel := h.storeContext(c)
	defer cancel()

	records, err := h.ledger.History(ctx, identity.UserID, limit)
	if err != nil {
		h.respondError(c, err, "Error loading check-in history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkins": records, "limit": limit})
}
