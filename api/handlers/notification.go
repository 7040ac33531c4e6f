package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/fir-api/api"
	"github.com/linesmerrill/fir-api/config"
	"github.com/linesmerrill/fir-api/models"
)

// NotificationService is the ledger surface the notification routes need
type NotificationService interface {
	List(ctx context.Context, id models.Identity) ([]models.Notification, error)
	MarkRead(ctx context.Context, id models.Identity, notificationID string) error
}

// LiveNotifications upgrades a request into a push connection for userID
type LiveNotifications interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string)
}

// Notification exported for testing purposes
type Notification struct {
	Ledger NotificationService
	Hub    LiveNotifications
}

// NotificationsHandler returns the caller's notifications, newest first
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	notifications, err := n.Ledger.List(ctx, identity)
	if err != nil {
		config.ErrorStatus("failed to get notifications", http.StatusServiceUnavailable, w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkNotificationAsReadHandler flags one of the caller's notifications read
func (n Notification) MarkNotificationAsReadHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
		return
	}
	notificationID := mux.Vars(r)["notification_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := n.Ledger.MarkRead(ctx, identity, notificationID); err != nil {
		config.ErrorStatus("failed to mark notification as read", http.StatusServiceUnavailable, w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Notification marked as read"})
}

// NotificationsWebSocketHandler streams new notifications to the caller
func (n Notification) NotificationsWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
		return
	}
	n.Hub.Serve(w, r, identity.UserID)
}
