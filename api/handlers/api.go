package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/api"
	"github.com/linesmerrill/motorent-api/api/scheduler"
	"github.com/linesmerrill/motorent-api/config"
	"github.com/linesmerrill/motorent-api/databases"
	"github.com/linesmerrill/motorent-api/logging"
	"github.com/linesmerrill/motorent-api/services"
)

// RequestTimeout bounds every /api/v1 request
const RequestTimeout = 30 * time.Second

// App stores the router, services and background workers so they can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Services  *services.Services
	Auth      *api.Authenticator
	Hub       *api.Hub
	Limiter   *api.RateLimiter
	Scheduler *scheduler.Scheduler

	client databases.ClientHelper
	redis  *redis.Client
	log    *zap.SugaredLogger
}

// Handlers groups every route handler
type Handlers struct {
	Auth         Auth
	Motorcycle   Motorcycle
	Reservation  Reservation
	Document     Document
	Notification Notification
	Payment      Payment
	User         User
	Contact      Contact
}

// Routes carries what the route table needs besides the handlers
type Routes struct {
	Auth    *api.Authenticator
	Limiter *api.RateLimiter
	DB      api.Pinger
}

// NewRouter builds the route table
func NewRouter(h Handlers, rt Routes) *mux.Router {
	r := api.New(rt.DB)

	authed := func(f http.HandlerFunc) http.Handler { return rt.Auth.Middleware(f) }
	admin := func(f http.HandlerFunc) http.Handler { return rt.Auth.Middleware(api.RequireAdmin(f)) }
	limited := func(f http.HandlerFunc) http.Handler { return rt.Limiter.Middleware(f) }

	// the websocket stays outside the request timeout
	r.HandleFunc("/ws/notifications", h.Notification.NotificationsWebSocketHandler).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(api.TimeoutMiddleware(RequestTimeout))

	v1.Handle("/auth/signup", limited(h.Auth.SignUpHandler)).Methods("POST")
	v1.Handle("/auth/signin", limited(h.Auth.SignInHandler)).Methods("POST")
	v1.Handle("/auth/otp", limited(h.Auth.RequestOTPHandler)).Methods("POST")
	v1.Handle("/auth/otp/verify", limited(h.Auth.VerifyOTPHandler)).Methods("POST")
	v1.Handle("/auth/password-reset", limited(h.Auth.RequestPasswordResetHandler)).Methods("POST")
	v1.Handle("/auth/password-reset/confirm", limited(h.Auth.ResetPasswordHandler)).Methods("POST")
	v1.Handle("/auth/signout", authed(h.Auth.SignOutHandler)).Methods("DELETE")
	v1.Handle("/me", authed(h.Auth.MeHandler)).Methods("GET")
	v1.Handle("/me", authed(h.User.UpdateProfileHandler)).Methods("PATCH")

	v1.HandleFunc("/motorcycles", h.Motorcycle.MotorcycleListHandler).Methods("GET")
	v1.HandleFunc("/motorcycles/{motorcycle_id}", h.Motorcycle.MotorcycleByIDHandler).Methods("GET")
	v1.HandleFunc("/motorcycles/{motorcycle_id}/availability", h.Motorcycle.AvailabilityHandler).Methods("GET")
	v1.Handle("/contact", limited(h.Contact.SubmitContactHandler)).Methods("POST")
	v1.HandleFunc("/payments/webhook", h.Payment.StripeWebhookHandler).Methods("POST")

	v1.Handle("/reservations", authed(h.Reservation.CreateReservationHandler)).Methods("POST")
	v1.Handle("/reservations", authed(h.Reservation.MyReservationsHandler)).Methods("GET")
	v1.Handle("/reservations/{reservation_id}", authed(h.Reservation.ReservationByIDHandler)).Methods("GET")
	v1.Handle("/reservations/{reservation_id}/cancel", authed(h.Reservation.CancelReservationHandler)).Methods("POST")
	v1.Handle("/reservations/{reservation_id}/payments", authed(h.Payment.CreatePaymentHandler)).Methods("POST")
	v1.Handle("/reservations/{reservation_id}/payments", authed(h.Payment.ReservationTransactionsHandler)).Methods("GET")
	v1.Handle("/transactions", authed(h.Payment.MyTransactionsHandler)).Methods("GET")

	v1.Handle("/documents", authed(h.Document.UploadDocumentHandler)).Methods("POST")
	v1.Handle("/documents", authed(h.Document.MyDocumentsHandler)).Methods("GET")
	v1.Handle("/documents/{document_id}/url", authed(h.Document.DocumentURLHandler)).Methods("GET")

	v1.Handle("/notifications", authed(h.Notification.NotificationsHandler)).Methods("GET")
	v1.Handle("/notifications/{notification_id}/read", authed(h.Notification.MarkReadHandler)).Methods("POST")

	adm := v1.PathPrefix("/admin").Subrouter()
	adm.Handle("/motorcycles", admin(h.Motorcycle.CreateMotorcycleHandler)).Methods("POST")
	adm.Handle("/motorcycles/{motorcycle_id}", admin(h.Motorcycle.UpdateMotorcycleHandler)).Methods("PUT")
	adm.Handle("/motorcycles/{motorcycle_id}", admin(h.Motorcycle.DeleteMotorcycleHandler)).Methods("DELETE")
	adm.Handle("/motorcycles/{motorcycle_id}/availability", admin(h.Motorcycle.SetAvailabilityHandler)).Methods("PUT")
	adm.Handle("/motorcycles/{motorcycle_id}/image", admin(h.Motorcycle.UploadImageHandler)).Methods("POST")
	adm.Handle("/reservations", admin(h.Reservation.AllReservationsHandler)).Methods("GET")
	adm.Handle("/reservations/{reservation_id}/status", admin(h.Reservation.UpdateStatusHandler)).Methods("PUT")
	adm.Handle("/documents", admin(h.Document.DocumentsByStatusHandler)).Methods("GET")
	adm.Handle("/documents/{document_id}/approve", admin(h.Document.ApproveDocumentHandler)).Methods("POST")
	adm.Handle("/documents/{document_id}/reject", admin(h.Document.RejectDocumentHandler)).Methods("POST")
	adm.Handle("/users", admin(h.User.UsersHandler)).Methods("GET")
	adm.Handle("/users/{user_id}", admin(h.User.UserByIDHandler)).Methods("GET")
	adm.Handle("/users/by-username/{username}", admin(h.User.UserByUsernameHandler)).Methods("GET")
	adm.Handle("/users/{user_id}/documents", admin(h.Document.UserDocumentsHandler)).Methods("GET")
	adm.Handle("/users/{user_id}/documents/approve", admin(h.Document.BulkApproveHandler)).Methods("POST")
	adm.Handle("/users/{user_id}/documents/reject", admin(h.Document.BulkRejectHandler)).Methods("POST")
	adm.Handle("/contact/{message_id}/reply", admin(h.Contact.ReplyContactHandler)).Methods("POST")

	return r
}

// New creates the router from the bound services
func (a *App) New() *mux.Router {
	s := a.Services
	h := Handlers{
		Auth:         Auth{Service: s.Auth, Users: s.Users},
		Motorcycle:   Motorcycle{Service: s.Motorcycles},
		Reservation:  Reservation{Service: s.Reservations},
		Document:     Document{Service: s.Documents},
		Notification: Notification{Service: s.Notifications, Hub: a.Hub, Auth: a.Auth},
		Payment:      Payment{Service: s.Transactions, Reservations: s.Reservations, WebhookSecret: a.Config.StripeWebhookSecret},
		User:         User{Service: s.Users},
		Contact:      Contact{Service: s.Contact},
	}
	var db api.Pinger
	if a.client != nil {
		db = a.client
	}
	return NewRouter(h, Routes{Auth: a.Auth, Limiter: a.Limiter, DB: db})
}

// Initialize is invoked by main to connect with the database, bind the services
// and create a router
func (a *App) Initialize() error {
	a.log = logging.New(a.Config.Environment)

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	a.client = client
	db := databases.NewDatabase(&a.Config, client)
	if err := databases.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	zap.S().Info("motorent-api has connected to the database")

	a.Auth, err = api.NewAuthenticator(a.Config.JWTSecret, a.Config.JWTTTL)
	if err != nil {
		return err
	}
	a.Hub = api.NewHub(a.log)
	a.Limiter = api.NewRateLimiter(a.Config.RateLimitRPS, a.Config.RateLimitBurst)

	mailer, err := services.NewMailer(&a.Config, a.log)
	if err != nil {
		return err
	}
	deps := services.Dependencies{
		Mailer:    mailer,
		Sessions:  a.Auth,
		Publisher: a.Hub,
		Log:       a.log,
	}
	if a.Config.CloudinaryURL != "" {
		store, err := services.NewCloudinaryStore(a.Config.CloudinaryURL)
		if err != nil {
			return fmt.Errorf("failed to configure cloudinary: %w", err)
		}
		deps.Store = store
	} else {
		a.log.Warn("CLOUDINARY_URL is not set, uploads are disabled")
	}
	if a.Config.StripeSecretKey != "" {
		deps.Gateway = services.NewStripeGateway(a.Config.StripeSecretKey)
	} else {
		a.log.Warn("STRIPE_SECRET_KEY is not set, payments are disabled")
	}

	var locker scheduler.Locker
	if a.Config.RedisURL != "" {
		deps.Cache, locker, err = a.connectRedis()
		if err != nil {
			return err
		}
	}

	a.Services = services.New(&a.Config, services.NewDatabases(db), deps)
	a.Scheduler = scheduler.NewScheduler(a.Services.OTP, a.Services.Reservations, locker, a.log, api.SchedulerRun)

	// initialize api router
	a.initializeRoutes()
	return nil
}

// connectRedis opens the one redis client shared by the catalog cache and the job locks
func (a *App) connectRedis() (*services.CatalogCache, scheduler.Locker, error) {
	opts, err := redis.ParseURL(a.Config.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to configure redis: %w", err)
	}
	a.redis = redis.NewClient(opts)
	return services.NewCatalogCache(a.redis, a.Config.CatalogCacheTTL, a.log), scheduler.NewRedisLocker(a.redis), nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// Close releases connections held by the app
func (a *App) Close(ctx context.Context) {
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().Warnw("failed to disconnect from database", "error", err)
		}
	}
}
