package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mirador-dev/mirador/internal/cache"
	"github.com/mirador-dev/mirador/internal/store"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Handler bundles the stores and the read cache. Everything is
// injected so the HTTP surface can be exercised against a test
// database without ambient globals.
type Handler struct {
	Profiles      *store.ProfileStore
	Rules         *store.RuleStore
	Notifications *store.NotificationStore
	Sources       *store.SourceStore
	Queries       *store.QueryStore
	Cache         *cache.Store
}

func New(db *gorm.DB, c *cache.Store) *Handler {
	return &Handler{
		Profiles:      store.NewProfileStore(db),
		Rules:         store.NewRuleStore(db),
		Notifications: store.NewNotificationStore(db),
		Sources:       store.NewSourceStore(db),
		Queries:       store.NewQueryStore(db),
		Cache:         c,
	}
}

// respondStoreError translates the store error taxonomy into an HTTP
// status and a user-facing message, and logs the underlying cause. The
// failed operation never invalidates caches; state is presumed
// unchanged.
func respondStoreError(ctx *gin.Context, message string, err error) {
	logrus.WithError(err).Error(message)

	switch {
	case errors.Is(err, store.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": message + ": not found"})
	case errors.Is(err, store.ErrPermissionDenied):
		ctx.JSON(http.StatusForbidden, gin.H{"error": message + ": permission denied"})
	case errors.Is(err, store.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": message + ": already exists"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
