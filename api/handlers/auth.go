package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/linesmerrill/motorent-api/api"
	"github.com/linesmerrill/motorent-api/models"
	"github.com/linesmerrill/motorent-api/services"
)

// AuthService is the part of services.AuthService the handlers use
type AuthService interface {
	SignUp(ctx context.Context, in models.SignUpInput) (models.User, error)
	SignIn(ctx context.Context, in models.SignInInput) (models.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentIdentity(ctx context.Context, accountID string) (models.Identity, error)
	RequestOTP(ctx context.Context, email string) error
	ResendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in models.PasswordResetInput) error
}

// Auth holds the sign-up, sign-in and verification handlers
type Auth struct {
	Service AuthService
	Users   UserService
}

type signUpResponse struct {
	User                  models.User `json:"user"`
	VerificationEmailSent bool        `json:"verificationEmailSent"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type meResponse struct {
	Identity models.Identity `json:"identity"`
	Profile  *models.User    `json:"profile,omitempty"`
}

// SignUpHandler registers an unverified account and emails a verification code
func (a Auth) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	var in models.SignUpInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := a.Service.SignUp(ctx, in)
	var delivery *services.EmailDeliveryError
	if err != nil && !(errors.As(err, &delivery) && user.ID != "") {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, signUpResponse{User: user, VerificationEmailSent: err == nil})
}

// SignInHandler exchanges credentials for a bearer token
func (a Auth) SignInHandler(w http.ResponseWriter, r *http.Request) {
	var in models.SignInInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	session, err := a.Service.SignIn(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// SignOutHandler revokes the caller's token
func (a Auth) SignOutHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.SignOut(r.Context(), api.BearerToken(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "signed out"})
}

// RequestOTPHandler sends a fresh verification code
func (a Auth) RequestOTPHandler(w http.ResponseWriter, r *http.Request) {
	var in emailRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	send := a.Service.RequestOTP
	if r.URL.Query().Get("resend") == "true" {
		send = a.Service.ResendOTP
	}
	if err := send(ctx, in.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, messageResponse{Message: "verification code sent"})
}

// VerifyOTPHandler checks a verification code
func (a Auth) VerifyOTPHandler(w http.ResponseWriter, r *http.Request) {
	var in verifyRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.Service.VerifyOTP(ctx, in.Email, in.Code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "email verified"})
}

// RequestPasswordResetHandler always answers 202 so emails cannot be probed
func (a Auth) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var in emailRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.Service.RequestPasswordReset(ctx, in.Email); err != nil {
		var delivery *services.EmailDeliveryError
		if !errors.As(err, &delivery) {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusAccepted, messageResponse{Message: "if the email is registered, a reset link is on its way"})
}

// ResetPasswordHandler completes a password reset
func (a Auth) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var in models.PasswordResetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.Service.ResetPassword(ctx, in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

// MeHandler returns the caller's identity and, for customers, their profile
func (a Auth) MeHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	current, err := a.Service.CurrentIdentity(ctx, caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := meResponse{Identity: current}
	profile, err := a.Users.Get(ctx, current.ID)
	switch {
	case err == nil:
		resp.Profile = &profile
	case !errors.Is(err, services.ErrNotFound):
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
