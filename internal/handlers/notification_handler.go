package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications NotificationService
	users         UserService
	pages         PageSizes
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications NotificationService, users UserService, pages PageSizes) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, users: users, pages: pages}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// EnrichedNotification includes sender info
type EnrichedNotification struct {
	models.Notification
	Sender models.UserCompact `json:"sender"`
}

func (h *NotificationHandler) enrichNotifications(ctx context.Context, notifications []models.Notification) []EnrichedNotification {
	ids := make([]uint, 0, len(notifications))
	for i := range notifications {
		ids = append(ids, notifications[i].SenderID)
	}
	senders := h.users.Compacts(ctx, ids)

	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		sender, found := senders[n.SenderID]
		if !found {
			sender = models.UserCompact{ID: n.SenderID}
		}
		enriched[i] = EnrichedNotification{Notification: n, Sender: sender}
	}
	return enriched
}

// GetNotifications returns the inbox newest first with the unread count.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	page := parsePagination(c, h.pages.Notifications, h.pages.Max)
	inbox, err := h.notifications.List(ctx, userID, page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": h.enrichNotifications(ctx, inbox.Notifications),
			"unreadCount":   inbox.Unread,
		},
		"meta": paginationMeta(page, inbox.Total),
	})
}

// GetUnreadCount returns the count of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	count, err := h.notifications.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"unreadCount": count})
}

// MarkAsRead marks a single notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	if err := h.notifications.MarkAsRead(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"message": "notification marked as read"})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	updated, err := h.notifications.MarkAllAsRead(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"updated": updated})
}
