package services

import (
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/config"
	"github.com/linesmerrill/motorent-api/databases"
)

// Databases holds one accessor per collection
type Databases struct {
	Motorcycles   databases.MotorcycleDatabase
	Reservations  databases.ReservationDatabase
	Users         databases.UserDatabase
	Admins        databases.AdminDatabase
	Accounts      databases.AccountDatabase
	OTPCodes      databases.OTPDatabase
	Notifications databases.NotificationDatabase
	Documents     databases.DocumentDatabase
	Transactions  databases.TransactionDatabase
	Contacts      databases.ContactDatabase
}

// NewDatabases binds every collection accessor to db
func NewDatabases(db databases.DatabaseHelper) Databases {
	return Databases{
		Motorcycles:   databases.NewMotorcycleDatabase(db),
		Reservations:  databases.NewReservationDatabase(db),
		Users:         databases.NewUserDatabase(db),
		Admins:        databases.NewAdminDatabase(db),
		Accounts:      databases.NewAccountDatabase(db),
		OTPCodes:      databases.NewOTPDatabase(db),
		Notifications: databases.NewNotificationDatabase(db),
		Documents:     databases.NewDocumentDatabase(db),
		Transactions:  databases.NewTransactionDatabase(db),
		Contacts:      databases.NewContactDatabase(db),
	}
}

// Dependencies are the external collaborators the services are bound to
type Dependencies struct {
	Mailer    Mailer
	Store     ObjectStore
	Gateway   PaymentGateway
	Sessions  SessionManager
	Publisher Publisher
	Cache     *CatalogCache
	Log       *zap.SugaredLogger
}

// Services is the bound service layer handed to the HTTP handlers
type Services struct {
	Auth          *AuthService
	OTP           *OTPService
	Motorcycles   *MotorcycleService
	Reservations  *ReservationService
	Coordinator   *Coordinator
	Documents     *DocumentService
	Users         *UserService
	Notifications *NotificationService
	Transactions  *TransactionService
	Storage       *StorageService
	Email         *EmailService
	Contact       *ContactService
}

// New wires every service to dbs and deps
func New(conf *config.Config, dbs Databases, deps Dependencies) *Services {
	log := deps.Log
	if log == nil {
		log = zap.S()
	}
	email := NewEmailService(deps.Mailer, conf, log)
	storage := NewStorageService(deps.Store, conf.ImageBucket, conf.DocumentBucket)
	notifications := NewNotificationService(dbs.Notifications, deps.Publisher, log)
	otp := NewOTPService(dbs.OTPCodes, dbs.Accounts, email, log)
	motorcycles := NewMotorcycleService(dbs.Motorcycles, dbs.Reservations, storage, deps.Cache, log)
	documents := NewDocumentService(dbs.Documents, dbs.Users, storage, email, notifications, log)
	coordinator := NewCoordinator(dbs.Reservations, motorcycles, documents, email, notifications, log)

	return &Services{
		Auth:          NewAuthService(dbs.Accounts, dbs.Users, dbs.Admins, otp, email, deps.Sessions, log),
		OTP:           otp,
		Motorcycles:   motorcycles,
		Reservations:  NewReservationService(dbs.Reservations, dbs.Transactions, motorcycles, coordinator, email, notifications, log),
		Coordinator:   coordinator,
		Documents:     documents,
		Users:         NewUserService(dbs.Users),
		Notifications: notifications,
		Transactions:  NewTransactionService(dbs.Transactions, dbs.Reservations, deps.Gateway, conf.CurrencyCode, log),
		Storage:       storage,
		Email:         email,
		Contact:       NewContactService(dbs.Contacts, email, log),
	}
}
