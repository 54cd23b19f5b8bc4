package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mirador-dev/mirador/internal/alerts"
	"github.com/mirador-dev/mirador/internal/cache"
	"github.com/mirador-dev/mirador/internal/models"
	"github.com/mirador-dev/mirador/internal/types"
	"github.com/mirador-dev/mirador/internal/utils"
	"gorm.io/datatypes"
)

type CreateSourceRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Type        string                 `json:"type" binding:"required"`
	Credentials map[string]interface{} `json:"credentials"`
	Keywords    string                 `json:"keywords"`
	Languages   []string               `json:"languages"`
	IsActive    *bool                  `json:"is_active"`
}

type UpdateSourceRequest struct {
	Name        *string                `json:"name"`
	Type        *string                `json:"type"`
	Credentials map[string]interface{} `json:"credentials"`
	Keywords    *string                `json:"keywords"`
	Languages   []string               `json:"languages"`
	IsActive    *bool                  `json:"is_active"`
}

// SourceResponse redacts credentials: they are write-mostly and never
// echoed back.
type SourceResponse struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Type             string                  `json:"type"`
	HasCredentials   bool                    `json:"has_credentials"`
	MonitoringConfig alerts.MonitoringConfig `json:"monitoring_config"`
	IsActive         bool                    `json:"is_active"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

func buildSourceResponse(source models.SourceConfiguration) SourceResponse {
	return SourceResponse{
		ID:               source.ID,
		Name:             source.Name,
		Type:             source.Type,
		HasCredentials:   len(source.Credentials) > 0 && string(source.Credentials) != "null",
		MonitoringConfig: alerts.DecodeMonitoring(source.MonitoringConfig),
		IsActive:         source.IsActive,
		CreatedAt:        source.CreatedAt,
		UpdatedAt:        source.UpdatedAt,
	}
}

func (h *Handler) ListSources(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	key := cache.Key{Namespace: cache.NamespaceSources, Arg: user.ID}

	value, err := h.Cache.GetOrFetch(ctx.Request.Context(), key, func(fetchCtx context.Context) (interface{}, error) {
		return h.Sources.List(fetchCtx, user.ID)
	})

	if err != nil {
		respondStoreError(ctx, "Failed to retrieve source configurations", err)
		return
	}

	sources := value.([]models.SourceConfiguration)
	response := make([]SourceResponse, 0, len(sources))

	for _, source := range sources {
		response = append(response, buildSourceResponse(source))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) CreateSource(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateSourceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.Profiles.Ensure(ctx.Request.Context(), user.ID, user.Email); err != nil {
		respondStoreError(ctx, "Failed to create source configuration", err)
		return
	}

	credentialsJSON, err := marshalCredentials(req.Credentials)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials format"})
		return
	}

	monitoringJSON, err := alerts.EncodeMonitoring(alerts.MonitoringConfig{
		Keywords:  alerts.SplitKeywords(req.Keywords),
		Languages: req.Languages,
	})
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid monitoring config format"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	source := models.SourceConfiguration{
		UserID:           user.ID,
		Name:             req.Name,
		Type:             req.Type,
		Credentials:      credentialsJSON,
		MonitoringConfig: monitoringJSON,
		IsActive:         isActive,
	}

	if err := h.Sources.Create(ctx.Request.Context(), &source); err != nil {
		respondStoreError(ctx, "Failed to create source configuration", err)
		return
	}

	h.Cache.Invalidate(cache.NamespaceSources)

	ctx.JSON(http.StatusCreated, buildSourceResponse(source))
}

func (h *Handler) UpdateSource(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sourceID := ctx.Param("source_id")

	var req UpdateSourceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.Sources.Get(ctx.Request.Context(), sourceID, user.ID)

	if err != nil {
		respondStoreError(ctx, "Failed to retrieve source configuration", err)
		return
	}

	fields := make(map[string]interface{})

	if req.Name != nil {
		fields["name"] = *req.Name
	}

	if req.Type != nil {
		if !types.ValidSourcePlatform(*req.Type) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unknown source platform: " + *req.Type})
			return
		}
		fields["type"] = *req.Type
	}

	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if req.Credentials != nil {
		credentialsJSON, err := marshalCredentials(req.Credentials)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials format"})
			return
		}
		fields["credentials"] = credentialsJSON
	}

	if req.Keywords != nil || req.Languages != nil {
		monitoring := alerts.DecodeMonitoring(existing.MonitoringConfig)

		if req.Keywords != nil {
			monitoring.Keywords = alerts.SplitKeywords(*req.Keywords)
		}

		if req.Languages != nil {
			monitoring.Languages = req.Languages
		}

		monitoringJSON, err := alerts.EncodeMonitoring(monitoring)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid monitoring config format"})
			return
		}

		fields["monitoring_config"] = monitoringJSON
	}

	if len(fields) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	updated, err := h.Sources.Update(ctx.Request.Context(), sourceID, user.ID, fields)

	if err != nil {
		respondStoreError(ctx, "Failed to update source configuration", err)
		return
	}

	h.Cache.Invalidate(cache.NamespaceSources)

	ctx.JSON(http.StatusOK, buildSourceResponse(*updated))
}

func (h *Handler) DeleteSource(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sourceID := ctx.Param("source_id")

	if err := h.Sources.Delete(ctx.Request.Context(), sourceID, user.ID); err != nil {
		respondStoreError(ctx, "Failed to delete source configuration", err)
		return
	}

	h.Cache.Invalidate(cache.NamespaceSources)

	ctx.Status(http.StatusNoContent)
}

func marshalCredentials(credentials map[string]interface{}) (datatypes.JSON, error) {
	if credentials == nil {
		return nil, nil
	}

	raw, err := json.Marshal(credentials)
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(raw), nil
}
