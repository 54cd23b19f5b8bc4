package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mirador-dev/mirador/internal/cache"
	"github.com/mirador-dev/mirador/internal/models"
	"github.com/mirador-dev/mirador/internal/utils"
)

type SaveQueryRequest struct {
	QueryText string `json:"query_text" binding:"required"`
}

type SavedQueryResponse struct {
	ID        string    `json:"id"`
	QueryText string    `json:"query_text"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) ListQueries(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	key := cache.Key{Namespace: cache.NamespaceQueries, Arg: user.ID}

	value, err := h.Cache.GetOrFetch(ctx.Request.Context(), key, func(fetchCtx context.Context) (interface{}, error) {
		return h.Queries.List(fetchCtx, user.ID)
	})

	if err != nil {
		respondStoreError(ctx, "Failed to retrieve saved queries", err)
		return
	}

	queries := value.([]models.SavedQuery)
	response := make([]SavedQueryResponse, 0, len(queries))

	for _, saved := range queries {
		response = append(response, SavedQueryResponse{
			ID:        saved.ID,
			QueryText: saved.QueryText,
			CreatedAt: saved.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) SaveQuery(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SaveQueryRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.Profiles.Ensure(ctx.Request.Context(), user.ID, user.Email); err != nil {
		respondStoreError(ctx, "Failed to save query", err)
		return
	}

	saved := models.SavedQuery{
		UserID:    user.ID,
		QueryText: req.QueryText,
	}

	if err := h.Queries.Save(ctx.Request.Context(), &saved); err != nil {
		respondStoreError(ctx, "Failed to save query", err)
		return
	}

	h.Cache.Invalidate(cache.NamespaceQueries)

	ctx.JSON(http.StatusCreated, SavedQueryResponse{
		ID:        saved.ID,
		QueryText: saved.QueryText,
		CreatedAt: saved.CreatedAt,
	})
}

func (h *Handler) DeleteQuery(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	queryID := ctx.Param("query_id")

	if err := h.Queries.Delete(ctx.Request.Context(), queryID, user.ID); err != nil {
		respondStoreError(ctx, "Failed to delete saved query", err)
		return
	}

	h.Cache.Invalidate(cache.NamespaceQueries)

	ctx.Status(http.StatusNoContent)
}
