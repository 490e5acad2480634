package handlers

import (
	"campusbuddy/internal/apperr"
	"campusbuddy/internal/models"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type updateProfileRequest struct {
	Name      *string   `json:"name"`
	Skills    *[]string `json:"skills"`
	Interests *[]string `json:"interests"`
}

func (r *updateProfileRequest) toUpdate() (models.ProfileUpdate, error) {
	update := models.ProfileUpdate{}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
			return update, apperr.Invalid("name", "must be between %d and %d characters", minNameLength, maxNameLength)
		}
		update.Name = &name
	}
	if r.Skills != nil {
		skills := models.NormalizeSet(*r.Skills)
		if err := validateEntries("skills", skills); err != nil {
			return update, err
		}
		update.Skills = &skills
	}
	if r.Interests != nil {
		interests := models.NormalizeSet(*r.Interests)
		if err := validateEntries("interests", interests); err != nil {
			return update, err
		}
		update.Interests = &interests
	}
	return update, nil
}

// GetProfile returns the caller's account, including points and streak.
func (h *Handler) GetProfile(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.store.GetUserByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.respondError(c, err, "Error loading profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile edits the caller's name, skills or interests. Omitted fields
// are left as they are.
func (h *Handler) UpdateProfile(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	update, err := req.toUpdate()
	if err != nil {
		h.respondError(c, err, "Error updating profile")
		return
	}
	if update.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields provided"})
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.store.UpdateProfile(ctx, identity.UserID, update)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.respondError(c, err, "Error updating profile")
		return
	}

	h.logger.Info("profile updated", zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    user,
	})
}
