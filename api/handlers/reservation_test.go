package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/motorent-api/api"
	"github.com/linesmerrill/motorent-api/api/handlers"
	"github.com/linesmerrill/motorent-api/models"
	"github.com/linesmerrill/motorent-api/services"
)

func bookingInput() models.ReservationInput {
	return models.ReservationInput{
		MotorcycleID:  "M1",
		StartDate:     "2026-03-10",
		EndDate:       "2026-03-12",
		CustomerName:  "Rae Rider",
		CustomerEmail: "rider@example.com",
		CustomerPhone: "09171234567",
	}
}

func TestCreateReservationHandler(t *testing.T) {
	s := newServer(t)
	in := bookingInput()
	s.reservations.On("Create", mock.Anything, customer, in).
		Return(models.Reservation{ID: "R1", UserID: "U1", Status: models.StatusPending, TotalPrice: 2400}, nil)

	rr := s.do(t, http.MethodPost, "/api/v1/reservations", in, &customer)

	require.Equal(t, http.StatusCreated, rr.Code)
	var got models.Reservation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, 2400.0, got.TotalPrice)
}

func TestCreateReservationHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"overlap", services.ErrMotorcycleUnavailable, http.StatusConflict},
		{"dates", services.ErrInvalidDates, http.StatusBadRequest},
		{"unknown motorcycle", services.ErrNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t)
			s.reservations.On("Create", mock.Anything, customer, mock.Anything).Return(models.Reservation{}, tt.err)

			rr := s.do(t, http.MethodPost, "/api/v1/reservations", bookingInput(), &customer)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestCreateReservationHandler_RequiresSession(t *testing.T) {
	s := newServer(t)
	rr := s.do(t, http.MethodPost, "/api/v1/reservations", bookingInput(), nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMyReservationsHandler(t *testing.T) {
	s := newServer(t)
	s.reservations.On("ListByUser", mock.Anything, "U1", 20, 1).Return(nil, nil).Once()
	s.reservations.On("ListByUser", mock.Anything, "U1", 5, 2).Return([]models.Reservation{{ID: "R6"}}, nil).Once()

	rr := s.do(t, http.MethodGet, "/api/v1/reservations", nil, &customer)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/api/v1/reservations?limit=5&page=2", nil, &customer)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"R6"`)

	rr = s.do(t, http.MethodGet, "/api/v1/reservations?page=0", nil, &customer)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReservationByIDHandler_HidesOthers(t *testing.T) {
	s := newServer(t)
	s.reservations.On("Get", mock.Anything, "R9", customer).Return(models.Reservation{}, services.ErrNotFound)

	rr := s.do(t, http.MethodGet, "/api/v1/reservations/R9", nil, &customer)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCancelReservationHandler(t *testing.T) {
	s := newServer(t)
	s.reservations.On("Cancel", mock.Anything, "R1", customer).
		Return(models.Reservation{ID: "R1", Status: models.StatusCancelled}, nil).Once()
	s.reservations.On("Cancel", mock.Anything, "R2", customer).
		Return(models.Reservation{}, services.ErrInvalidTransition).Once()

	rr := s.do(t, http.MethodPost, "/api/v1/reservations/R1/cancel", nil, &customer)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"cancelled"`)

	rr = s.do(t, http.MethodPost, "/api/v1/reservations/R2/cancel", nil, &customer)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAdminReservationRoutes(t *testing.T) {
	s := newServer(t)
	filter := models.ReservationFilter{Status: models.StatusPending, MotorcycleID: "M1"}
	s.reservations.On("ListAll", mock.Anything, filter, 20, 1).Return([]models.Reservation{{ID: "R1"}}, nil)
	s.reservations.On("UpdateStatus", mock.Anything, "R1", models.StatusConfirmed, operator, "see you at 9").
		Return(models.Reservation{ID: "R1", Status: models.StatusConfirmed}, nil)

	rr := s.do(t, http.MethodGet, "/api/v1/admin/reservations?status=pending&motorcycleId=M1", nil, &operator)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPut, "/api/v1/admin/reservations/R1/status",
		map[string]string{"status": "confirmed", "note": "see you at 9"}, &operator)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"confirmed"`)
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	s := newServer(t)
	rr := s.do(t, http.MethodPut, "/api/v1/admin/reservations/R1/status", map[string]string{"status": "confirmed"}, &customer)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/v1/admin/users", nil, &customer)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestUpdateStatusHandler_ConcurrentApproval(t *testing.T) {
	s := newServer(t)
	s.reservations.On("UpdateStatus", mock.Anything, "R1", models.StatusConfirmed, operator, "").
		Return(models.Reservation{}, services.ErrConcurrentUpdate)

	rr := s.do(t, http.MethodPut, "/api/v1/admin/reservations/R1/status", map[string]string{"status": "confirmed"}, &operator)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, services.ErrConcurrentUpdate.Error(), decodeError(t, rr).Response.Message)
}

// handlers can also be driven directly, with the identity placed on the context
func TestReservation_ReservationByIDHandler(t *testing.T) {
	svc := &reservationService{}
	svc.On("Get", mock.Anything, "R1", customer).Return(models.Reservation{ID: "R1", UserID: "U1"}, nil)

	req, err := http.NewRequest("GET", "/api/v1/reservations/R1", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"reservation_id": "R1"})
	req = req.WithContext(api.WithIdentity(req.Context(), customer))

	rr := httptest.NewRecorder()
	http.HandlerFunc(handlers.Reservation{Service: svc}.ReservationByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestReservation_MissingIdentity(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reservations", nil)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	http.HandlerFunc(handlers.Reservation{Service: &reservationService{}}.MyReservationsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreatePaymentHandler(t *testing.T) {
	s := newServer(t)
	intent := models.PaymentIntent{
		Transaction:  models.Transaction{ID: "T1", ReservationID: "R1", Amount: 2400, Currency: "PHP", CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		ClientSecret: "pi_1_secret",
	}
	s.transactions.On("CreatePayment", mock.Anything, "R1", customer).Return(intent, nil).Once()
	s.transactions.On("CreatePayment", mock.Anything, "R2", customer).Return(models.PaymentIntent{}, services.ErrPaymentsDisabled).Once()

	rr := s.do(t, http.MethodPost, "/api/v1/reservations/R1/payments", nil, &customer)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"clientSecret":"pi_1_secret"`)

	rr = s.do(t, http.MethodPost, "/api/v1/reservations/R2/payments", nil, &customer)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestReservationTransactionsHandler_ChecksOwnership(t *testing.T) {
	s := newServer(t)
	s.reservations.On("Get", mock.Anything, "R1", customer).Return(models.Reservation{ID: "R1"}, nil)
	s.reservations.On("Get", mock.Anything, "R9", customer).Return(models.Reservation{}, services.ErrNotFound)
	s.transactions.On("ListByReservation", mock.Anything, "R1").Return([]models.Transaction{{ID: "T1"}}, nil)

	rr := s.do(t, http.MethodGet, "/api/v1/reservations/R1/payments", nil, &customer)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/v1/reservations/R9/payments", nil, &customer)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	s.transactions.AssertNumberOfCalls(t, "ListByReservation", 1)
}

func TestMyTransactionsHandler(t *testing.T) {
	s := newServer(t)
	s.transactions.On("ListByUser", mock.Anything, "U1", 20, 1).Return(nil, nil)

	rr := s.do(t, http.MethodGet, "/api/v1/transactions", nil, &customer)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}
