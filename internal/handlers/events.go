package handlers

import (
	"campusbuddy/internal/apperr"
	"campusbuddy/internal/models"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	maxTitleLength       = 120
	maxLocationLength    = 120
	maxDescriptionLength = 2000
	maxEventTags         = 20
)

const (
	joinSuccessMessage   = "Event joined successfully!"
	alreadyJoinedMessage = "You have already joined this event!"
)

type createEventRequest struct {
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

func (r *createEventRequest) validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.Location = strings.TrimSpace(r.Location)
	r.Description = strings.TrimSpace(r.Description)
	r.Tags = models.NormalizeSet(r.Tags)

	switch {
	case r.Title == "":
		return apperr.Invalid("title", "is required")
	case len(r.Title) > maxTitleLength:
		return apperr.Invalid("title", "must be at most %d characters", maxTitleLength)
	case r.Date == "":
		return apperr.Invalid("date", "is required")
	case r.Time == "":
		return apperr.Invalid("time", "is required")
	case r.Location == "":
		return apperr.Invalid("location", "is required")
	case len(r.Location) > maxLocationLength:
		return apperr.Invalid("location", "must be at most %d characters", maxLocationLength)
	case len(r.Tags) == 0:
		return apperr.Invalid("tags", "must contain at least one tag")
	case len(r.Tags) > maxEventTags:
		return apperr.Invalid("tags", "must have at most %d entries", maxEventTags)
	case len(r.Description) > maxDescriptionLength:
		return apperr.Invalid("description", "must be at most %d characters", maxDescriptionLength)
	}
	date, err := time.Parse(models.EventDateLayout, r.Date)
	if err != nil {
		return apperr.Invalid("date", "must use the YYYY-MM-DD format")
	}
	clock, err := time.Parse(models.EventTimeLayout, r.Time)
	if err != nil {
		return apperr.Invalid("time", "must use the 24-hour HH:MM format")
	}
	// Stored values must be zero-padded so they sort lexically.
	r.Date = date.Format(models.EventDateLayout)
	r.Time = clock.Format(models.EventTimeLayout)
	return nil
}

// GetEvents returns the events matching the caller's interests, soonest first.
func (h *Handler) GetEvents(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.store.GetUserByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		h.respondError(c, err, "Error loading user")
		return
	}

	events, err := h.store.ListEvents(ctx)
	if err != nil {
		h.respondError(c, err, "Error loading events")
		return
	}

	if h.cfg.Events.HidePast {
		c.JSON(http.StatusOK, h.recommender.Upcoming(events, user.Interests, h.ledger.Today()))
		return
	}
	c.JSON(http.StatusOK, h.recommender.FilterAndSort(events, user.Interests))
}

// GetAllEvents lists every event for administrators.
func (h *Handler) GetAllEvents(c *gin.Context) {
	ctx, cancel := h.storeContext(c)
	defer cancel()

	events, err := h.store.ListEvents(ctx)
	if err != nil {
		h.respondError(c, err, "Error loading events")
		return
	}
	c.JSON(http.StatusOK, h.recommender.SortBySchedule(events))
}

func (h *Handler) CreateEvent(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(c, err, "Error creating event")
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	event, err := h.store.CreateEvent(ctx, models.Event{
		Title:       req.Title,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Tags:        req.Tags,
		Description: req.Description,
		CreatedBy:   identity.UserID,
	})
	if err != nil {
		h.respondError(c, err, "Error creating event")
		return
	}

	h.logger.Info("event created", zap.String("event_id", event.ID), zap.String("created_by", identity.UserID))
	c.JSON(http.StatusCreated, event)
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	ctx, cancel := h.storeContext(c)
	defer cancel()

	if err := h.store.DeleteEvent(ctx, c.Param("id")); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		h.respondError(c, err, "Error deleting event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

type joinEventRequest struct {
	EventID string `json:"eventId"`
}

// JoinEvent credits the caller once per event. Repeating the call is a no-op
// reported with alreadyJoined.
func (h *Handler) JoinEvent(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req joinEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.EventID = strings.TrimSpace(req.EventID)
	if req.EventID == "" {
		h.respondError(c, apperr.Invalid("eventId", "is required"), "Error joining event")
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	points := h.cfg.Events.JoinPoints
	user, err := h.store.JoinEvent(ctx, identity.UserID, req.EventID, points)
	switch {
	case errors.Is(err, apperr.ErrAlreadyJoined):
		current, getErr := h.store.GetUserByID(ctx, identity.UserID)
		if getErr != nil {
			h.respondError(c, getErr, "Error joining event")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":       alreadyJoinedMessage,
			"alreadyJoined": true,
			"pointsAwarded": 0,
			"points":        current.Points,
		})
		return
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	case err != nil:
		h.respondError(c, err, "Error joining event")
		return
	}

	h.logger.Info("event joined",
		zap.String("event_id", req.EventID),
		zap.String("user_id", identity.UserID),
		zap.Int("points_awarded", points),
	)
	c.JSON(http.StatusOK, gin.H{
		"message":       joinSuccessMessage,
		"alreadyJoined": false,
		"pointsAwarded": points,
		"points":        user.Points,
	})
}
