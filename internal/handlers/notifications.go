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

type CreateNotificationRequest struct {
	AlertRuleID *string `json:"alert_rule_id"`
	Title       string  `json:"title" binding:"required"`
	Content     string  `json:"content" binding:"required"`
	Source      string  `json:"source" binding:"required"`
	URL         string  `json:"url"`
	Priority    string  `json:"priority"`
}

type UpdateNotificationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type NotificationResponse struct {
	ID          string     `json:"id"`
	AlertRuleID *string    `json:"alert_rule_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Source      string     `json:"source"`
	URL         string     `json:"url"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func buildNotificationResponse(n models.AlertNotification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		AlertRuleID: n.AlertRuleID,
		Title:       n.Title,
		Content:     n.Content,
		Source:      n.Source,
		URL:         n.URL,
		Priority:    n.Priority,
		Status:      n.Status,
		DeliveredAt: n.DeliveredAt,
		CreatedAt:   n.CreatedAt,
	}
}

// ListNotifications serves the notification feed. The feed is global:
// it is not scoped by user or by rule ownership.
func (h *Handler) ListNotifications(ctx *gin.Context) {
	key := cache.Key{Namespace: cache.NamespaceNotifications, Arg: ""}

	value, err := h.Cache.GetOrFetch(ctx.Request.Context(), key, func(fetchCtx context.Context) (interface{}, error) {
		return h.Notifications.List(fetchCtx)
	})

	if err != nil {
		respondStoreError(ctx, "Failed to retrieve notifications", err)
		return
	}

	notifications := value.([]models.AlertNotification)
	response := make([]NotificationResponse, 0, len(notifications))

	for _, notification := range notifications {
		response = append(response, buildNotificationResponse(notification))
	}

	ctx.JSON(http.StatusOK, response)
}

// CreateNotification ingests a manual notification. Rule-generated
// ones arrive the same way, with alert_rule_id set.
func (h *Handler) CreateNotification(ctx *gin.Context) {
	if _, err := utils.GetCurrentUser(ctx); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateNotificationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notification := models.AlertNotification{
		AlertRuleID: req.AlertRuleID,
		Title:       req.Title,
		Content:     req.Content,
		Source:      req.Source,
		URL:         req.URL,
		Priority:    req.Priority,
	}

	if err := h.Notifications.Create(ctx.Request.Context(), &notification); err != nil {
		respondStoreError(ctx, "Failed to create notification", err)
		return
	}

	h.Cache.Invalidate(cache.NamespaceNotifications)
	BroadcastRefresh("notification_created")

	ctx.JSON(http.StatusCreated, buildNotificationResponse(notification))
}

func (h *Handler) UpdateNotificationStatus(ctx *gin.Context) {
	notificationID := ctx.Param("notification_id")

	var req UpdateNotificationStatusRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.Notifications.UpdateStatus(ctx.Request.Context(), notificationID, req.Status)

	if err != nil {
		respondStoreError(ctx, "Failed to update notification status", err)
		return
	}

	h.Cache.Invalidate(cache.NamespaceNotifications)
	BroadcastRefresh("notification_updated")

	ctx.JSON(http.StatusOK, buildNotificationResponse(*updated))
}

// MarkAllNotificationsRead runs the batch transition and reports the
// outcome of every item; partial failure is visible, not silent.
func (h *Handler) MarkAllNotificationsRead(ctx *gin.Context) {
	outcomes, err := h.Notifications.MarkAllRead(ctx.Request.Context())

	if err != nil {
		respondStoreError(ctx, "Failed to mark notifications read", err)
		return
	}

	succeeded := 0
	for _, outcome := range outcomes {
		if outcome.OK {
			succeeded++
		}
	}

	if succeeded > 0 {
		h.Cache.Invalidate(cache.NamespaceNotifications)
		BroadcastRefresh("notification_updated")
	}

	ctx.JSON(http.StatusOK, gin.H{
		"updated":  succeeded,
		"failed":   len(outcomes) - succeeded,
		"outcomes": outcomes,
	})
}
