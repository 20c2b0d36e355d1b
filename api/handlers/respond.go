package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/api"
	"github.com/linesmerrill/motorent-api/config"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
	"github.com/linesmerrill/motorent-api/services"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	maxJSONBody  = 1 << 20
)

var errUnauthenticated = errors.New("no identity on request")

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	var validation *services.ValidationError
	var delivery *services.EmailDeliveryError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &delivery):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrNotFound), errors.Is(err, mongo.ErrNoDocuments):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrMobileOnlyAccount),
		errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrEmailNotVerified):
		return http.StatusForbidden
	case errors.Is(err, services.ErrEmailAlreadyRegistered), errors.Is(err, services.ErrConcurrentUpdate),
		errors.Is(err, services.ErrInUse), errors.Is(err, services.ErrMotorcycleUnavailable),
		errors.Is(err, services.ErrAlreadyPaid), errors.Is(err, services.ErrInvalidTransition),
		mongo.IsDuplicateKeyError(err):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidDates), errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrInvalidResetToken):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, services.ErrPaymentsDisabled), errors.Is(err, services.ErrStorageDisabled):
		return http.StatusServiceUnavailable
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError writes err with a user-facing message
func writeError(w http.ResponseWriter, err error) {
	config.ErrorStatus(mapper.HandleBackendError(err), statusFor(err), w, err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		zap.S().Debugw("failed to write response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return false
	}
	return true
}

func identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := api.IdentityFrom(r.Context())
	if !ok {
		writeError(w, errUnauthenticated)
		return models.Identity{}, false
	}
	return id, true
}

// pagination reads limit and page query parameters, page is 1-based
func pagination(r *http.Request) (int, int, error) {
	limit, page := defaultLimit, 1
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, &services.ValidationError{Err: fmt.Errorf("invalid limit %q", v)}
		}
		limit = n
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, &services.ValidationError{Err: fmt.Errorf("invalid page %q", v)}
		}
		page = n
	}
	return limit, page, nil
}

type messageResponse struct {
	Message string `json:"message"`
}
