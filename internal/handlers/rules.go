package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mirador-dev/mirador/internal/alerts"
	"github.com/mirador-dev/mirador/internal/cache"
	"github.com/mirador-dev/mirador/internal/models"
	"github.com/mirador-dev/mirador/internal/types"
	"github.com/mirador-dev/mirador/internal/utils"
)

type CreateRuleRequest struct {
	Name               string   `json:"name" binding:"required"`
	Description        string   `json:"description"`
	Keywords           string   `json:"keywords" binding:"required"` // comma-separated free text
	SentimentThreshold string   `json:"sentiment_threshold"`
	Channels           []string `json:"channels" binding:"required,min=1"`
	IsActive           *bool    `json:"is_active"`
}

type UpdateRuleRequest struct {
	Name               *string  `json:"name"`
	Description        *string  `json:"description"`
	Keywords           *string  `json:"keywords"`
	SentimentThreshold *string  `json:"sentiment_threshold"`
	Channels           []string `json:"channels"`
	IsActive           *bool    `json:"is_active"`
}

type AlertRuleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Triggers    alerts.TriggerConfig `json:"triggers"`
	// KeywordsText is the comma-joined form for prefilling the edit form.
	KeywordsText string               `json:"keywords_text"`
	Channels     alerts.ChannelConfig `json:"channels"`
	IsActive     bool                 `json:"is_active"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func buildRuleResponse(rule models.AlertRule) AlertRuleResponse {
	triggers := alerts.DecodeTriggers(rule.Triggers)

	return AlertRuleResponse{
		ID:           rule.ID,
		Name:         rule.Name,
		Description:  rule.Description,
		Triggers:     triggers,
		KeywordsText: alerts.JoinKeywords(triggers.Keywords),
		Channels:     alerts.DecodeChannels(rule.Channels),
		IsActive:     rule.IsActive,
		CreatedAt:    rule.CreatedAt,
		UpdatedAt:    rule.UpdatedAt,
	}
}

func (h *Handler) ListRules(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	key := cache.Key{Namespace: cache.NamespaceRules, Arg: user.ID}

	value, err := h.Cache.GetOrFetch(ctx.Request.Context(), key, func(fetchCtx context.Context) (interface{}, error) {
		return h.Rules.List(fetchCtx, user.ID)
	})

	if err != nil {
		respondStoreError(ctx, "Failed to retrieve alert rules", err)
		return
	}

	rules := value.([]models.AlertRule)
	response := make([]AlertRuleResponse, 0, len(rules))

	for _, rule := range rules {
		response = append(response, buildRuleResponse(rule))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) CreateRule(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateRuleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	triggers := alerts.TriggerConfig{
		Keywords:           alerts.SplitKeywords(req.Keywords),
		SentimentThreshold: req.SentimentThreshold,
	}

	if triggers.SentimentThreshold == "" {
		triggers.SentimentThreshold = types.SentimentAny
	}

	if err := alerts.ValidateTriggers(triggers); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channels := alerts.ChannelConfig{NotificationChannels: req.Channels}

	if err := alerts.ValidateChannels(channels); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The acting principal may not have a profile row yet (partial
	// signup); make sure one exists before attributing the rule.
	if _, err := h.Profiles.Ensure(ctx.Request.Context(), user.ID, user.Email); err != nil {
		respondStoreError(ctx, "Failed to create alert rule", err)
		return
	}

	triggersJSON, err := alerts.EncodeTriggers(triggers)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid triggers format"})
		return
	}

	channelsJSON, err := alerts.EncodeChannels(channels)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channels format"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	rule := models.AlertRule{
		UserID:      user.ID,
		Name:        req.Name,
		Description: req.Description,
		Triggers:    triggersJSON,
		Channels:    channelsJSON,
		IsActive:    isActive,
	}

	if err := h.Rules.Create(ctx.Request.Context(), &rule); err != nil {
		respondStoreError(ctx, "Failed to create alert rule", err)
		return
	}

	h.Cache.Invalidate(cache.NamespaceRules)

	ctx.JSON(http.StatusCreated, buildRuleResponse(rule))
}

func (h *Handler) UpdateRule(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ruleID := ctx.Param("rule_id")

	var req UpdateRuleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.Rules.Get(ctx.Request.Context(), ruleID, user.ID)

	if err != nil {
		respondStoreError(ctx, "Failed to retrieve alert rule", err)
		return
	}

	fields := make(map[string]interface{})

	if req.Name != nil {
		fields["name"] = *req.Name
	}

	if req.Description != nil {
		fields["description"] = *req.Description
	}

	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if req.Keywords != nil || req.SentimentThreshold != nil {
		triggers := alerts.DecodeTriggers(existing.Triggers)

		if req.Keywords != nil {
			triggers.Keywords = alerts.SplitKeywords(*req.Keywords)
		}

		if req.SentimentThreshold != nil {
			triggers.SentimentThreshold = *req.SentimentThreshold
		}

		if err := alerts.ValidateTriggers(triggers); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		triggersJSON, err := alerts.EncodeTriggers(triggers)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid triggers format"})
			return
		}

		fields["triggers"] = triggersJSON
	}

	if req.Channels != nil {
		channels := alerts.ChannelConfig{NotificationChannels: req.Channels}

		if err := alerts.ValidateChannels(channels); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		channelsJSON, err := alerts.EncodeChannels(channels)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channels format"})
			return
		}

		fields["channels"] = channelsJSON
	}

	if len(fields) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	updated, err := h.Rules.Update(ctx.Request.Context(), ruleID, user.ID, fields)

	if err != nil {
		respondStoreError(ctx, "Failed to update alert rule", err)
		return
	}

	h.Cache.Invalidate(cache.NamespaceRules)

	ctx.JSON(http.StatusOK, buildRuleResponse(*updated))
}

func (h *Handler) DeleteRule(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ruleID := ctx.Param("rule_id")

	if err := h.Rules.Delete(ctx.Request.Context(), ruleID, user.ID); err != nil {
		respondStoreError(ctx, "Failed to delete alert rule", err)
		return
	}

	h.Cache.Invalidate(cache.NamespaceRules)

	ctx.Status(http.StatusNoContent)
}
