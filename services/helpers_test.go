package services_test

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/linesmerrill/motorent-api/config"
	dbmocks "github.com/linesmerrill/motorent-api/databases/mocks"
	"github.com/linesmerrill/motorent-api/services"
	"github.com/linesmerrill/motorent-api/services/mocks"
)

var fixedNow = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	conf *config.Config

	motorcycles   *dbmocks.MotorcycleDatabase
	reservations  *dbmocks.ReservationDatabase
	users         *dbmocks.UserDatabase
	admins        *dbmocks.AdminDatabase
	accounts      *dbmocks.AccountDatabase
	otp           *dbmocks.OTPDatabase
	notifications *dbmocks.NotificationDatabase
	documents     *dbmocks.DocumentDatabase
	transactions  *dbmocks.TransactionDatabase
	contacts      *dbmocks.ContactDatabase

	mailer    *mocks.Mailer
	store     *mocks.ObjectStore
	gateway   *mocks.PaymentGateway
	sessions  *mocks.SessionManager
	publisher *mocks.Publisher

	logs *observer.ObservedLogs
	svc  *services.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)

	f := &fixture{
		conf: &config.Config{
			BaseURL:        "https://motorent.test",
			AdminEmail:     "ops@motorent.test",
			ImageBucket:    "motorcycle-images",
			DocumentBucket: "driver-documents",
			CurrencySymbol: "₱",
			CurrencyCode:   "PHP",
		},
		motorcycles:   &dbmocks.MotorcycleDatabase{},
		reservations:  &dbmocks.ReservationDatabase{},
		users:         &dbmocks.UserDatabase{},
		admins:        &dbmocks.AdminDatabase{},
		accounts:      &dbmocks.AccountDatabase{},
		otp:           &dbmocks.OTPDatabase{},
		notifications: &dbmocks.NotificationDatabase{},
		documents:     &dbmocks.DocumentDatabase{},
		transactions:  &dbmocks.TransactionDatabase{},
		contacts:      &dbmocks.ContactDatabase{},
		mailer:        &mocks.Mailer{},
		store:         &mocks.ObjectStore{},
		gateway:       &mocks.PaymentGateway{},
		sessions:      &mocks.SessionManager{},
		publisher:     &mocks.Publisher{},
		logs:          logs,
	}
	f.svc = services.New(f.conf, services.Databases{
		Motorcycles:   f.motorcycles,
		Reservations:  f.reservations,
		Users:         f.users,
		Admins:        f.admins,
		Accounts:      f.accounts,
		OTPCodes:      f.otp,
		Notifications: f.notifications,
		Documents:     f.documents,
		Transactions:  f.transactions,
		Contacts:      f.contacts,
	}, services.Dependencies{
		Mailer:    f.mailer,
		Store:     f.store,
		Gateway:   f.gateway,
		Sessions:  f.sessions,
		Publisher: f.publisher,
		Log:       zap.New(core).Sugar(),
	})
	services.SetClock(f.svc, func() time.Time { return fixedNow })
	return f
}
