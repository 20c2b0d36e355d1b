package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/api"
	"github.com/linesmerrill/motorent-api/models"
)

// NotificationService is the part of services.NotificationService the handlers use
type NotificationService interface {
	ListByUser(ctx context.Context, userID string, limit, page int) ([]models.Notification, error)
	ListForAdmins(ctx context.Context, limit, page int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAdminRead(ctx context.Context, id string) error
}

// Notification holds the in-app notification handlers
type Notification struct {
	Service NotificationService
	Hub     *api.Hub
	Auth    *api.Authenticator
}

// NotificationsHandler lists the caller's notices. Admins get the admin feed.
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	limit, page, err := pagination(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var list []models.Notification
	if caller.IsAdmin() && r.URL.Query().Get("audience") != models.AudienceUser {
		list, err = n.Service.ListForAdmins(ctx, limit, page)
	} else {
		list, err = n.Service.ListByUser(ctx, caller.ID, limit, page)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

// MarkReadHandler marks one notice read
func (n Notification) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	id := mux.Vars(r)["notification_id"]
	var err error
	if caller.IsAdmin() && r.URL.Query().Get("audience") != models.AudienceUser {
		err = n.Service.MarkAdminRead(ctx, id)
	} else {
		err = n.Service.MarkRead(ctx, caller.ID, id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NotificationsWebSocketHandler streams new notices. Browsers cannot set headers on
// a websocket handshake, so the token may come as a query parameter.
func (n Notification) NotificationsWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := n.Auth.AuthenticateToken(api.BearerToken(r))
	if err != nil {
		zap.S().Debugw("websocket unauthorized", "error", err)
		writeError(w, errUnauthenticated)
		return
	}
	n.Hub.ServeWS(w, r, caller)
}
