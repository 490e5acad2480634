package handlers

import (
	"campusbuddy/internal/apperr"
	"campusbuddy/internal/config"
	"campusbuddy/internal/database"
	"campusbuddy/internal/match"
	"campusbuddy/internal/middleware"
	"campusbuddy/internal/monitoring"
	"campusbuddy/internal/recommend"
	"campusbuddy/internal/utils"
	"campusbuddy/internal/wellness"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Config      *config.Config
	Store       database.Store
	Matcher     *match.Engine
	Recommender *recommend.Recommender
	Advisor     *wellness.Advisor
	Ledger      *wellness.Ledger
	Tokens      *utils.TokenManager
	Monitor     *monitoring.Service
	Logger      *zap.Logger
}

// Handler serves the REST API.
type Handler struct {
	cfg          *config.Config
	store        database.Store
	matcher      *match.Engine
	recommender  *recommend.Recommender
	advisor      *wellness.Advisor
	ledger       *wellness.Ledger
	tokens       *utils.TokenManager
	monitor      *monitoring.Service
	logger       *zap.Logger
	queryTimeout time.Duration
}

func New(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.New()
	}
	monitor := deps.Monitor
	if monitor == nil {
		monitor = monitoring.NewService(time.Now(), deps.Store, nil)
	}
	return &Handler{
		cfg:          cfg,
		store:        deps.Store,
		matcher:      deps.Matcher,
		recommender:  deps.Recommender,
		advisor:      deps.Advisor,
		ledger:       deps.Ledger,
		tokens:       deps.Tokens,
		monitor:      monitor,
		logger:       logger,
		queryTimeout: cfg.Database.QueryTimeout,
	}
}

// storeContext bounds store calls made for one request.
func (h *Handler) storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.queryTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.queryTimeout)
}

func currentIdentity(c *gin.Context) (middleware.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok || identity.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return middleware.Identity{}, false
	}
	return identity, true
}

// respondError writes the status matching err's kind. Unclassified errors
// become a 500 with fallback as the message and are logged.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	var validationErr *apperr.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperr.ErrDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already exists"})
	case errors.Is(err, apperr.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
	default:
		h.logger.Error(fallback,
			zap.Error(err),
			zap.String("request_id", middleware.RequestIDFromContext(c)),
			zap.String("path", c.FullPath()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
