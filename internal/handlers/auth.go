package handlers

import (
	"campusbuddy/internal/apperr"
	"campusbuddy/internal/models"
	"campusbuddy/internal/utils"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

const (
	minNameLength     = 2
	maxNameLength     = 50
	maxEmailLength    = 255
	minPasswordLength = 8
	maxPasswordBytes  = 72
	maxProfileEntries = 20
	maxEntryLength    = 50
)

type registerRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Skills    []string `json:"skills"`
	Interests []string `json:"interests"`
}

func (r *registerRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if n := utf8.RuneCountInString(r.Name); n < minNameLength || n > maxNameLength {
		return apperr.Invalid("name", "must be between %d and %d characters", minNameLength, maxNameLength)
	}

	r.Email = models.NormalizeEmail(r.Email)
	if r.Email == "" {
		return apperr.Invalid("email", "is required")
	}
	if len(r.Email) > maxEmailLength {
		return apperr.Invalid("email", "must be at most %d characters", maxEmailLength)
	}
	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		return apperr.Invalid("email", "must be a valid email address")
	}

	if err := validatePassword(r.Password); err != nil {
		return err
	}

	r.Skills = models.NormalizeSet(r.Skills)
	if err := validateEntries("skills", r.Skills); err != nil {
		return err
	}
	r.Interests = models.NormalizeSet(r.Interests)
	return validateEntries("interests", r.Interests)
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return apperr.Invalid("password", "must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return apperr.Invalid("password", "must be at most %d bytes", maxPasswordBytes)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return apperr.Invalid("password", "must contain an uppercase letter, a lowercase letter and a digit")
	}
	return nil
}

func validateEntries(field string, entries []string) error {
	if len(entries) > maxProfileEntries {
		return apperr.Invalid(field, "must have at most %d entries", maxProfileEntries)
	}
	for _, entry := range entries {
		if utf8.RuneCountInString(entry) > maxEntryLength {
			return apperr.Invalid(field, "entries must be at most %d characters", maxEntryLength)
		}
	}
	return nil
}

// Register handles user registration
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(c, err, "Error creating user")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password, h.cfg.Auth.BcryptCost)
	if err != nil {
		h.respondError(c, err, "Error hashing password")
		return
	}

	role := models.RoleStudent
	if h.cfg.IsAdminEmail(req.Email) {
		role = models.RoleAdmin
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.store.CreateUser(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		Skills:       req.Skills,
		Interests:    req.Interests,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists", "field": "email"})
			return
		}
		h.respondError(c, err, "Error creating user")
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.respondError(c, err, "Error generating token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

// Login handles user login
func (h *Handler) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.store.GetUserByEmail(ctx, credentials.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.respondError(c, err, "Error logging in")
		return
	}

	if !utils.CheckPasswordHash(credentials.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.respondError(c, err, "Error generating token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// VerifyToken confirms that the bearer token is valid and still belongs to an
// existing account.
func (h *Handler) VerifyToken(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.store.GetUserByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "error": "User not found"})
			return
		}
		h.respondError(c, err, "Error verifying token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  user,
	})
}
