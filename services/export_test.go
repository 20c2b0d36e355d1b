package services

import "time"

var (
	GenerateCode = generateCode
	HashToken    = hashToken
)

// SetClock pins every service clock to now
func SetClock(s *Services, now func() time.Time) {
	s.Auth.now = now
	s.OTP.now = now
	s.Motorcycles.now = now
	s.Reservations.now = now
	s.Coordinator.now = now
	s.Documents.now = now
	s.Users.now = now
	s.Notifications.now = now
	s.Transactions.now = now
	s.Contact.now = now
}

// SetCodeGenerator replaces the OTP code source
func SetCodeGenerator(s *Services, gen func() (string, error)) {
	s.OTP.generate = gen
}
