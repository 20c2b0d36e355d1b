package mapper

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// User-facing messages returned by HandleBackendError
const (
	MsgUsernameTaken      = "This username is already taken."
	MsgEmailTaken         = "An account with this email already exists."
	MsgDuplicate          = "This record already exists."
	MsgNotFound           = "The requested record was not found."
	MsgInUse              = "This record cannot be deleted because other records still reference it."
	MsgNetwork            = "Network error. Please check your connection and try again."
	MsgInvalidCredentials = "Invalid email or password."
	MsgSessionExpired     = "Your session has expired. Please sign in again."
	MsgEmailNotVerified   = "Please verify your email address before signing in."
)

// HandleBackendError classifies a raw backend error into a fixed user-facing message.
// Anything it does not recognise falls through to the raw error text.
func HandleBackendError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())

	switch {
	case mongo.IsDuplicateKeyError(err):
		if strings.Contains(msg, "username") {
			return MsgUsernameTaken
		}
		if strings.Contains(msg, "email") {
			return MsgEmailTaken
		}
		return MsgDuplicate
	case errors.Is(err, mongo.ErrNoDocuments), strings.Contains(msg, "not found"):
		return MsgNotFound
	case strings.Contains(msg, "still referenced"), strings.Contains(msg, "foreign key"):
		return MsgInUse
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err),
		strings.Contains(msg, "connection refused"), strings.Contains(msg, "no reachable servers"):
		return MsgNetwork
	case strings.Contains(msg, "invalid credentials"), strings.Contains(msg, "invalid login"):
		return MsgInvalidCredentials
	case strings.Contains(msg, "token is expired"), strings.Contains(msg, "jwt expired"):
		return MsgSessionExpired
	case strings.Contains(msg, "not verified"), strings.Contains(msg, "email not confirmed"):
		return MsgEmailNotVerified
	}
	return err.Error()
}
