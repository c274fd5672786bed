package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	iauth "github.com/nkyriakou/themis/internal/auth"
	"github.com/nkyriakou/themis/internal/middleware"
	"github.com/nkyriakou/themis/internal/models"
	"github.com/nkyriakou/themis/internal/notify"
	"github.com/nkyriakou/themis/internal/realtime"
	"github.com/nkyriakou/themis/pkg/errors"
	"github.com/nkyriakou/themis/pkg/response"
)

// NotificationHandler exposes HTTP endpoints for notifications.
type NotificationHandler struct {
	service *notify.Service
	hub     *realtime.Hub
	jwt     *iauth.JWTService
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(service *notify.Service, hub *realtime.Hub, jwt *iauth.JWTService) (*NotificationHandler, error) {
	if service == nil {
		return nil, errors.New("HANDLER_INIT", "notification service must be provided", http.StatusInternalServerError)
	}
	return &NotificationHandler{
		service: service,
		hub:     hub,
		jwt:     jwt,
	}, nil
}

// List returns notifications for the current user.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	limit := parseIntQuery(c, "limit", 25)
	offset := parseIntQuery(c, "offset", 0)
	unreadOnly := strings.EqualFold(c.Query("unread"), "true")

	items, err := h.service.List(requestContext(c), notify.ListInput{
		UserID:     userID,
		Limit:      limit,
		Offset:     offset,
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// Get returns a single notification with its delivery history.
func (h *NotificationHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	n, err := h.service.Get(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, n)
}

// UnreadCount returns the number of unread notifications for the badge counter.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	count, err := h.service.UnreadCount(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

// Create persists a notification and dispatches it across its channels.
func (h *NotificationHandler) Create(c *gin.Context) {
	var payload struct {
		UserID       string           `json:"user_id" validate:"required"`
		Type         string           `json:"type" validate:"required"`
		Title        string           `json:"title" validate:"required,max=200"`
		Message      string           `json:"message" validate:"required,max=1000"`
		Priority     string           `json:"priority"`
		ActionURL    string           `json:"action_url"`
		ActionText   string           `json:"action_text"`
		Metadata     map[string]any   `json:"metadata"`
		RelatedModel string           `json:"related_model"`
		RelatedID    string           `json:"related_id"`
		ExpiresAt    *time.Time       `json:"expires_at"`
		Channels     []models.Channel `json:"channels"`
	}

	if !bindAndValidate(c, &payload) {
		return
	}

	n, err := h.service.CreateAndSend(requestContext(c), notify.CreateInput{
		UserID:       payload.UserID,
		Type:         payload.Type,
		Title:        payload.Title,
		Message:      payload.Message,
		Priority:     payload.Priority,
		ActionURL:    payload.ActionURL,
		ActionText:   payload.ActionText,
		Metadata:     payload.Metadata,
		RelatedModel: payload.RelatedModel,
		RelatedID:    payload.RelatedID,
		ExpiresAt:    payload.ExpiresAt,
		Channels:     payload.Channels,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, n)
}

// Resend re-dispatches an existing notification, appending fresh delivery
// attempts to its history. The route is staff-gated and staff mostly create
// notifications addressed to clients, so the lookup is not owner-scoped.
func (h *NotificationHandler) Resend(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	n, err := h.service.GetByID(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Send(requestContext(c), n); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, n)
}

// MarkRead marks a notification read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	n, err := h.service.MarkRead(requestContext(c), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.echo(userID, realtime.EventRead, gin.H{"id": id})
	response.Success(c, http.StatusOK, n)
}

// MarkManyRead marks a batch of notifications read, skipping ids the user
// does not own.
func (h *NotificationHandler) MarkManyRead(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload struct {
		IDs []string `json:"ids" validate:"required,min=1"`
	}
	if !bindAndValidate(c, &payload) {
		return
	}

	updated, err := h.service.MarkManyRead(requestContext(c), userID, payload.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.echo(userID, realtime.EventRead, gin.H{"ids": payload.IDs})
	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}

// MarkAllRead marks every unread notification of the user as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	updated, err := h.service.MarkAllRead(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.echo(userID, realtime.EventReadAll, gin.H{"updated": updated})
	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}

// Delete removes a notification.
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if err := h.service.Delete(requestContext(c), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	h.echo(userID, realtime.EventDeleted, gin.H{"id": id})
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Stream upgrades the connection to a WebSocket for notification streaming.
// Browsers cannot set headers on websocket dials, so the token may also
// arrive as a query parameter.
func (h *NotificationHandler) Stream(c *gin.Context) {
	if h.jwt == nil || h.hub == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		authz := c.GetHeader("Authorization")
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			token = strings.TrimSpace(authz[7:])
		}
	}

	if token == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	h.hub.Serve(claims.UserID, c.Writer, c.Request)
}

// echo mirrors lifecycle changes to the user's other connected clients so
// badge counters stay in sync across tabs.
func (h *NotificationHandler) echo(userID, event string, data any) {
	if h.hub == nil {
		return
	}
	h.hub.Publish(userID, realtime.Message{Event: event, Data: data})
}
