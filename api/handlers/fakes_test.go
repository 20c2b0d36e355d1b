package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/motorent-api/api"
	"github.com/linesmerrill/motorent-api/api/handlers"
	"github.com/linesmerrill/motorent-api/models"
	"github.com/linesmerrill/motorent-api/services"
)

type authService struct{ mock.Mock }

func (m *authService) SignUp(ctx context.Context, in models.SignUpInput) (models.User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *authService) SignIn(ctx context.Context, in models.SignInInput) (models.Session, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.Session), args.Error(1)
}

func (m *authService) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *authService) CurrentIdentity(ctx context.Context, accountID string) (models.Identity, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(models.Identity), args.Error(1)
}

func (m *authService) RequestOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *authService) ResendOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *authService) VerifyOTP(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func (m *authService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *authService) ResetPassword(ctx context.Context, in models.PasswordResetInput) error {
	return m.Called(ctx, in).Error(0)
}

type motorcycleService struct{ mock.Mock }

func (m *motorcycleService) List(ctx context.Context, f models.MotorcycleFilter) ([]models.Motorcycle, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]models.Motorcycle)
	return list, args.Error(1)
}

func (m *motorcycleService) Get(ctx context.Context, id string) (models.Motorcycle, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Motorcycle), args.Error(1)
}

func (m *motorcycleService) Create(ctx context.Context, in models.Motorcycle) (models.Motorcycle, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.Motorcycle), args.Error(1)
}

func (m *motorcycleService) Update(ctx context.Context, id string, in models.Motorcycle) (models.Motorcycle, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(models.Motorcycle), args.Error(1)
}

func (m *motorcycleService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *motorcycleService) SetAvailability(ctx context.Context, id string, a models.Availability) (models.Availability, error) {
	args := m.Called(ctx, id, a)
	return args.Get(0).(models.Availability), args.Error(1)
}

func (m *motorcycleService) SetImage(ctx context.Context, id string, f services.Upload) (models.Motorcycle, error) {
	args := m.Called(ctx, id, f)
	return args.Get(0).(models.Motorcycle), args.Error(1)
}

func (m *motorcycleService) CheckAvailability(ctx context.Context, id string, start, end time.Time) (bool, error) {
	args := m.Called(ctx, id, start, end)
	return args.Bool(0), args.Error(1)
}

type reservationService struct{ mock.Mock }

func (m *reservationService) Create(ctx context.Context, caller models.Identity, in models.ReservationInput) (models.Reservation, error) {
	args := m.Called(ctx, caller, in)
	return args.Get(0).(models.Reservation), args.Error(1)
}

func (m *reservationService) Get(ctx context.Context, id string, requester models.Identity) (models.Reservation, error) {
	args := m.Called(ctx, id, requester)
	return args.Get(0).(models.Reservation), args.Error(1)
}

func (m *reservationService) ListByUser(ctx context.Context, userID string, limit, page int) ([]models.Reservation, error) {
	args := m.Called(ctx, userID, limit, page)
	list, _ := args.Get(0).([]models.Reservation)
	return list, args.Error(1)
}

func (m *reservationService) ListAll(ctx context.Context, f models.ReservationFilter, limit, page int) ([]models.Reservation, error) {
	args := m.Called(ctx, f, limit, page)
	list, _ := args.Get(0).([]models.Reservation)
	return list, args.Error(1)
}

func (m *reservationService) UpdateStatus(ctx context.Context, id string, to models.ReservationStatus, admin models.Identity, note string) (models.Reservation, error) {
	args := m.Called(ctx, id, to, admin, note)
	return args.Get(0).(models.Reservation), args.Error(1)
}

func (m *reservationService) Cancel(ctx context.Context, id string, caller models.Identity) (models.Reservation, error) {
	args := m.Called(ctx, id, caller)
	return args.Get(0).(models.Reservation), args.Error(1)
}

type documentService struct{ mock.Mock }

func (m *documentService) Upload(ctx context.Context, userID, documentType string, f services.Upload) (models.Document, error) {
	args := m.Called(ctx, userID, documentType, f)
	return args.Get(0).(models.Document), args.Error(1)
}

func (m *documentService) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]models.Document)
	return list, args.Error(1)
}

func (m *documentService) ListByStatus(ctx context.Context, status models.DocumentStatus) ([]models.Document, error) {
	args := m.Called(ctx, status)
	list, _ := args.Get(0).([]models.Document)
	return list, args.Error(1)
}

func (m *documentService) SignedURL(ctx context.Context, id string, requester models.Identity) (string, error) {
	args := m.Called(ctx, id, requester)
	return args.String(0), args.Error(1)
}

func (m *documentService) Approve(ctx context.Context, id string) (models.Document, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Document), args.Error(1)
}

func (m *documentService) Reject(ctx context.Context, id, reason string) (models.Document, error) {
	args := m.Called(ctx, id, reason)
	return args.Get(0).(models.Document), args.Error(1)
}

func (m *documentService) BulkApprovePending(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *documentService) BulkRejectPending(ctx context.Context, userID, reason string) ([]string, error) {
	args := m.Called(ctx, userID, reason)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type notificationService struct{ mock.Mock }

func (m *notificationService) ListByUser(ctx context.Context, userID string, limit, page int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit, page)
	list, _ := args.Get(0).([]models.Notification)
	return list, args.Error(1)
}

func (m *notificationService) ListForAdmins(ctx context.Context, limit, page int) ([]models.Notification, error) {
	args := m.Called(ctx, limit, page)
	list, _ := args.Get(0).([]models.Notification)
	return list, args.Error(1)
}

func (m *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *notificationService) MarkAdminRead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type transactionService struct{ mock.Mock }

func (m *transactionService) CreatePayment(ctx context.Context, reservationID string, caller models.Identity) (models.PaymentIntent, error) {
	args := m.Called(ctx, reservationID, caller)
	return args.Get(0).(models.PaymentIntent), args.Error(1)
}

func (m *transactionService) RecordOutcome(ctx context.Context, reference string, succeeded bool) error {
	return m.Called(ctx, reference, succeeded).Error(0)
}

func (m *transactionService) ListByUser(ctx context.Context, userID string, limit, page int) ([]models.Transaction, error) {
	args := m.Called(ctx, userID, limit, page)
	list, _ := args.Get(0).([]models.Transaction)
	return list, args.Error(1)
}

func (m *transactionService) ListByReservation(ctx context.Context, reservationID string) ([]models.Transaction, error) {
	args := m.Called(ctx, reservationID)
	list, _ := args.Get(0).([]models.Transaction)
	return list, args.Error(1)
}

type userService struct{ mock.Mock }

func (m *userService) Get(ctx context.Context, id string) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *userService) GetByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *userService) UpdateProfile(ctx context.Context, id string, in models.ProfileUpdate) (models.User, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *userService) List(ctx context.Context, limit, page int) ([]models.User, error) {
	args := m.Called(ctx, limit, page)
	list, _ := args.Get(0).([]models.User)
	return list, args.Error(1)
}

type contactService struct{ mock.Mock }

func (m *contactService) Submit(ctx context.Context, in models.ContactInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *contactService) Reply(ctx context.Context, id, reply string) error {
	return m.Called(ctx, id, reply).Error(0)
}

const webhookSecret = "whsec_test"

var (
	customer = models.Identity{ID: "U1", Email: "rider@example.com", Username: "rider", Name: "Rae Rider", Role: models.RoleCustomer}
	operator = models.Identity{ID: "A1", Email: "ops@motorent.test", Name: "Ops", Role: models.RoleAdmin}
)

// server wires every handler to fresh mocks behind the real route table
type server struct {
	auth          *authService
	motorcycles   *motorcycleService
	reservations  *reservationService
	documents     *documentService
	notifications *notificationService
	transactions  *transactionService
	users         *userService
	contact       *contactService
	authn         *api.Authenticator
	router        *mux.Router
}

func newServer(t *testing.T) *server {
	t.Helper()
	authn, err := api.NewAuthenticator("handler-test-secret", time.Hour)
	require.NoError(t, err)

	s := &server{
		auth:          &authService{},
		motorcycles:   &motorcycleService{},
		reservations:  &reservationService{},
		documents:     &documentService{},
		notifications: &notificationService{},
		transactions:  &transactionService{},
		users:         &userService{},
		contact:       &contactService{},
		authn:         authn,
	}
	s.router = handlers.NewRouter(handlers.Handlers{
		Auth:         handlers.Auth{Service: s.auth, Users: s.users},
		Motorcycle:   handlers.Motorcycle{Service: s.motorcycles},
		Reservation:  handlers.Reservation{Service: s.reservations},
		Document:     handlers.Document{Service: s.documents},
		Notification: handlers.Notification{Service: s.notifications, Hub: api.NewHub(nil), Auth: authn},
		Payment:      handlers.Payment{Service: s.transactions, Reservations: s.reservations, WebhookSecret: webhookSecret},
		User:         handlers.User{Service: s.users},
		Contact:      handlers.Contact{Service: s.contact},
	}, handlers.Routes{Auth: authn, Limiter: api.NewRateLimiter(1000, 1000)})

	t.Cleanup(func() {
		s.auth.AssertExpectations(t)
		s.motorcycles.AssertExpectations(t)
		s.reservations.AssertExpectations(t)
		s.documents.AssertExpectations(t)
		s.notifications.AssertExpectations(t)
		s.transactions.AssertExpectations(t)
		s.users.AssertExpectations(t)
		s.contact.AssertExpectations(t)
	})
	return s
}

func (s *server) token(t *testing.T, identity models.Identity) string {
	t.Helper()
	token, _, err := s.authn.Issue(identity)
	require.NoError(t, err)
	return token
}

// do sends body as JSON, as identity when it is not nil
func (s *server) do(t *testing.T, method, path string, body interface{}, as *models.Identity) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(t, *as))
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorMessageResponse {
	t.Helper()
	var body models.ErrorMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func sendRaw(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func newRequest(t *testing.T, method, path string, body []byte, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
