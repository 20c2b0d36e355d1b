package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/motorent-api/api"
	"github.com/linesmerrill/motorent-api/models"
)

// UserService is the part of services.UserService the handlers use
type UserService interface {
	Get(ctx context.Context, id string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, in models.ProfileUpdate) (models.User, error)
	List(ctx context.Context, limit, page int) ([]models.User, error)
}

// User holds the profile handlers
type User struct {
	Service UserService
}

// UpdateProfileHandler edits the caller's profile
func (u User) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var in models.ProfileUpdate
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.Service.UpdateProfile(ctx, caller.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UsersHandler lists profiles for admins
func (u User) UsersHandler(w http.ResponseWriter, r *http.Request) {
	limit, page, err := pagination(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := u.Service.List(ctx, limit, page)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []models.User{}
	}
	writeJSON(w, http.StatusOK, list)
}

// UserByIDHandler returns one profile for admins
func (u User) UserByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.Service.Get(ctx, mux.Vars(r)["user_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UserByUsernameHandler looks a profile up by username for admins
func (u User) UserByUsernameHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.Service.GetByUsername(ctx, mux.Vars(r)["username"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
