package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"socialhub/database"
	"socialhub/middleware"
	"socialhub/models"
)

// notify persists a notification and, when the recipient is connected,
// pushes it with a denormalized sender summary. The store suppresses
// self-notifications; a dropped push is the expected offline case. Either
// way the triggering request is never failed over a notification.
func (a *API) notify(recipientID, senderID int64, kind, text string, relatedPostID *int64) {
	n, err := database.CreateNotification(recipientID, senderID, kind, text, relatedPostID)
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("create notification")
		return
	}
	if n == nil {
		return
	}

	sender, err := database.GetUserByID(senderID)
	if err != nil {
		return
	}

	a.hub.PushToUser(recipientID, "notification", models.NotificationWithSender{
		Notification: *n,
		Sender:       sender.ToResponse(),
	})
}

// GetNotifications returns the caller's most recent notifications
func (a *API) GetNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	notifications, err := database.NotificationsFor(middleware.UserID(r), limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.NotificationWithSender{}
	}
	respondJSON(w, http.StatusOK, notifications)
}

// UnreadCount returns the caller's unread notification count
func (a *API) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := database.UnreadNotificationCount(middleware.UserID(r))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

// MarkNotificationRead marks one owned notification as read. Succeeds
// even when the notification is missing or owned by someone else.
func (a *API) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := database.MarkNotificationRead(id, middleware.UserID(r)); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// MarkAllNotificationsRead marks every notification of the caller as read
func (a *API) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := database.MarkAllNotificationsRead(middleware.UserID(r)); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
