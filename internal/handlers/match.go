package handlers

import (
	"campusbuddy/internal/apperr"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMatches returns the caller's top study buddies.
func (h *Handler) GetMatches(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	requester, err := h.store.GetUserByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		h.respondError(c, err, "Error loading user")
		return
	}

	candidates, err := h.store.ListUsers(ctx)
	if err != nil {
		h.respondError(c, err, "Error loading users")
		return
	}

	c.JSON(http.StatusOK, h.matcher.ComputeMatches(requester, candidates))
}
