package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/obohub-backend/api/responses"
	"github.com/angelmondragon/obohub-backend/api/validators"
	"github.com/angelmondragon/obohub-backend/internal/shop"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
	"github.com/angelmondragon/obohub-backend/pkg/pagination"
)

type notificationListResponse struct {
	Notifications []shop.Notification `json:"notifications"`
	UnreadCount   int                 `json:"unread_count"`
	NextCursor    string              `json:"next_cursor,omitempty"`
}

func notificationCursor(n shop.Notification) pagination.Cursor {
	return pagination.Cursor{CreatedAt: n.Date, ID: n.ID}
}

func NotificationsList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, next, err := pagination.Page(c.Notifications(), params, notificationCursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}
		responses.WriteSuccess(w, notificationListResponse{
			Notifications: page,
			UnreadCount:   c.UnreadCount(),
			NextCursor:    next,
		})
	}
}

// NotificationsMarkRead marks one notification read. Unknown ids are a 404.
func NotificationsMarkRead(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		id := strings.TrimSpace(chi.URLParam(r, "notificationID"))
		if !hasNotification(c.Notifications(), id) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found"))
			return
		}
		if err := c.MarkNotificationRead(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"unread_count": c.UnreadCount()})
	}
}

func NotificationsMarkAllRead(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := containerFor(w, r, logg)
		if !ok {
			return
		}
		if err := c.MarkAllNotificationsRead(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"unread_count": 0})
	}
}

func hasNotification(items []shop.Notification, id string) bool {
	for _, n := range items {
		if n.ID == id {
			return true
		}
	}
	return false
}
