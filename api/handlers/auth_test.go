package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
	"github.com/linesmerrill/motorent-api/services"
)

func TestSignUpHandler(t *testing.T) {
	s := newServer(t)
	in := models.SignUpInput{Email: "rider@example.com", Password: "hunter22!", Username: "rider", FullName: "Rae Rider"}
	s.auth.On("SignUp", mock.Anything, in).Return(models.User{ID: "U1", Email: in.Email}, nil)

	rr := s.do(t, http.MethodPost, "/api/v1/auth/signup", in, nil)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `true`, string(mustField(t, rr.Body.Bytes(), "verificationEmailSent")))
}

func TestSignUpHandler_EmailFailureStillCreates(t *testing.T) {
	s := newServer(t)
	delivery := &services.EmailDeliveryError{Template: "verification_code", Err: errors.New("smtp down")}
	s.auth.On("SignUp", mock.Anything, mock.Anything).Return(models.User{ID: "U1"}, delivery)

	rr := s.do(t, http.MethodPost, "/api/v1/auth/signup", models.SignUpInput{Email: "rider@example.com"}, nil)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `false`, string(mustField(t, rr.Body.Bytes(), "verificationEmailSent")))
}

func TestSignUpHandler_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"already registered", services.ErrEmailAlreadyRegistered, http.StatusConflict, services.ErrEmailAlreadyRegistered.Error()},
		{"validation", &services.ValidationError{Err: errors.New("Password is required")}, http.StatusBadRequest, "Password is required"},
		{"username taken", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error collection: users index: username_1"}}}, http.StatusConflict, mapper.MsgUsernameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t)
			s.auth.On("SignUp", mock.Anything, mock.Anything).Return(models.User{}, tt.err)

			rr := s.do(t, http.MethodPost, "/api/v1/auth/signup", models.SignUpInput{}, nil)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, decodeError(t, rr).Response.Message)
		})
	}
}

func TestSignUpHandler_BadJSON(t *testing.T) {
	s := newServer(t)
	rr := s.do(t, http.MethodPost, "/api/v1/auth/signup", "not an object", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "failed to decode request body", decodeError(t, rr).Response.Message)
}

func TestSignInHandler(t *testing.T) {
	s := newServer(t)
	in := models.SignInInput{Identifier: "rider", Password: "hunter22!"}
	session := models.Session{Token: "tok", ExpiresAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), Identity: customer}
	s.auth.On("SignIn", mock.Anything, in).Return(session, nil)

	rr := s.do(t, http.MethodPost, "/api/v1/auth/signin", in, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var got models.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, session.Identity, got.Identity)
}

func TestSignInHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"mobile only", services.ErrMobileOnlyAccount, http.StatusUnauthorized},
		{"unverified", services.ErrEmailNotVerified, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t)
			s.auth.On("SignIn", mock.Anything, mock.Anything).Return(models.Session{}, tt.err)

			rr := s.do(t, http.MethodPost, "/api/v1/auth/signin", models.SignInInput{Identifier: "x", Password: "y"}, nil)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestSignInHandler_InvalidCredentialsMessage(t *testing.T) {
	s := newServer(t)
	s.auth.On("SignIn", mock.Anything, mock.Anything).Return(models.Session{}, services.ErrInvalidCredentials)

	rr := s.do(t, http.MethodPost, "/api/v1/auth/signin", models.SignInInput{Identifier: "x", Password: "y"}, nil)
	assert.Equal(t, mapper.MsgInvalidCredentials, decodeError(t, rr).Response.Message)
}

func TestOTPHandlers(t *testing.T) {
	s := newServer(t)
	s.auth.On("RequestOTP", mock.Anything, "rider@example.com").Return(nil).Once()
	s.auth.On("ResendOTP", mock.Anything, "rider@example.com").Return(nil).Once()
	s.auth.On("VerifyOTP", mock.Anything, "rider@example.com", "042917").Return(nil).Once()
	s.auth.On("VerifyOTP", mock.Anything, "rider@example.com", "000000").Return(services.ErrInvalidCode).Once()

	rr := s.do(t, http.MethodPost, "/api/v1/auth/otp", map[string]string{"email": "rider@example.com"}, nil)
	assert.Equal(t, http.StatusAccepted, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/auth/otp?resend=true", map[string]string{"email": "rider@example.com"}, nil)
	assert.Equal(t, http.StatusAccepted, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/auth/otp/verify", map[string]string{"email": "rider@example.com", "code": "042917"}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/auth/otp/verify", map[string]string{"email": "rider@example.com", "code": "000000"}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.ErrInvalidCode.Error(), decodeError(t, rr).Response.Message)
}

func TestOTPHandler_DeliveryFailure(t *testing.T) {
	s := newServer(t)
	s.auth.On("RequestOTP", mock.Anything, "rider@example.com").
		Return(&services.EmailDeliveryError{Template: "verification_code", Err: errors.New("timeout")})

	rr := s.do(t, http.MethodPost, "/api/v1/auth/otp", map[string]string{"email": "rider@example.com"}, nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestPasswordResetHandlers(t *testing.T) {
	s := newServer(t)
	s.auth.On("RequestPasswordReset", mock.Anything, "nobody@example.com").Return(nil)
	s.auth.On("RequestPasswordReset", mock.Anything, "rider@example.com").
		Return(&services.EmailDeliveryError{Template: "password_reset", Err: errors.New("bounce")})
	in := models.PasswordResetInput{Token: "bad", Password: "newpassword1"}
	s.auth.On("ResetPassword", mock.Anything, in).Return(services.ErrInvalidResetToken)

	rr := s.do(t, http.MethodPost, "/api/v1/auth/password-reset", map[string]string{"email": "nobody@example.com"}, nil)
	assert.Equal(t, http.StatusAccepted, rr.Code)

	// delivery failures are not revealed either
	rr = s.do(t, http.MethodPost, "/api/v1/auth/password-reset", map[string]string{"email": "rider@example.com"}, nil)
	assert.Equal(t, http.StatusAccepted, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/auth/password-reset/confirm", in, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignOutRevokesToken(t *testing.T) {
	s := newServer(t)
	token := s.token(t, customer)
	s.auth.On("SignOut", mock.Anything, token).Return(nil).Run(func(args mock.Arguments) {
		require.NoError(t, s.authn.Revoke(args.String(1)))
	})

	req := newRequest(t, http.MethodDelete, "/api/v1/auth/signout", nil, token)
	assert.Equal(t, http.StatusOK, sendRaw(s.router, req).Code)

	req = newRequest(t, http.MethodGet, "/api/v1/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, sendRaw(s.router, req).Code)
}

func TestMeHandler(t *testing.T) {
	s := newServer(t)
	s.auth.On("CurrentIdentity", mock.Anything, "U1").Return(customer, nil)
	s.users.On("Get", mock.Anything, "U1").Return(models.User{ID: "U1", FullName: "Rae Rider"}, nil)
	s.auth.On("CurrentIdentity", mock.Anything, "A1").Return(operator, nil)
	s.users.On("Get", mock.Anything, "A1").Return(models.User{}, services.ErrNotFound)

	rr := s.do(t, http.MethodGet, "/api/v1/me", nil, &customer)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"fullName":"Rae Rider"`)

	rr = s.do(t, http.MethodGet, "/api/v1/me", nil, &operator)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"profile"`)
	assert.Contains(t, rr.Body.String(), `"role":"admin"`)
}

func TestMeHandler_Unauthenticated(t *testing.T) {
	s := newServer(t)
	rr := s.do(t, http.MethodGet, "/api/v1/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, mapper.MsgSessionExpired, decodeError(t, rr).Response.Message)
}

func mustField(t *testing.T, body []byte, field string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	v, ok := m[field]
	require.True(t, ok, "missing field %s in %s", field, body)
	return v
}
