package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/databases"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
)

// OTPTTL is how long a verification code stays valid
const OTPTTL = 10 * time.Minute

// OTPService issues and checks email verification codes
type OTPService struct {
	codes    databases.OTPDatabase
	accounts databases.AccountDatabase
	email    *EmailService
	log      *zap.SugaredLogger
	now      func() time.Time
	generate func() (string, error)
}

// NewOTPService creates an OTPService
func NewOTPService(codes databases.OTPDatabase, accounts databases.AccountDatabase, email *EmailService, log *zap.SugaredLogger) *OTPService {
	return &OTPService{
		codes:    codes,
		accounts: accounts,
		email:    email,
		log:      log,
		now:      time.Now,
		generate: generateCode,
	}
}

// generateCode returns a uniformly random code in [000000, 999999]
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RequestOTP replaces any existing code for email with a fresh one and emails it.
// A transport failure returns *EmailDeliveryError; the stored code stays valid.
func (o *OTPService) RequestOTP(ctx context.Context, email string) error {
	email = mapper.NormalizeEmail(email)
	code, err := o.generate()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	if _, err := o.codes.DeleteMany(ctx, bson.M{"email": email}); err != nil {
		return fmt.Errorf("failed to clear previous codes: %w", err)
	}
	now := o.now().UTC()
	row := models.OTPRow{
		ID:        primitive.NewObjectID().Hex(),
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(OTPTTL),
		CreatedAt: now,
	}
	if err := o.codes.InsertOne(ctx, row); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	return o.email.SendVerificationCode(ctx, email, "", code, OTPTTL)
}

// ResendOTP issues a new code, invalidating the previous one
func (o *OTPService) ResendOTP(ctx context.Context, email string) error {
	return o.RequestOTP(ctx, email)
}

// VerifyOTP reports whether code is the live code for email. A matching code is
// consumed and the account is marked verified. An expired code is removed.
func (o *OTPService) VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	email = mapper.NormalizeEmail(email)
	row, err := o.codes.FindOne(ctx, bson.M{"email": email})
	if errors.Is(err, mongo.ErrNoDocuments) {
		otpVerifications.WithLabelValues("missing").Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load code: %w", err)
	}

	if row.ExpiresAt.Before(o.now()) {
		if err := o.codes.DeleteOne(ctx, bson.M{"_id": row.ID}); err != nil {
			o.log.Warnw("failed to delete expired code", "email", email, "error", err)
		}
		otpVerifications.WithLabelValues("expired").Inc()
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(row.Code), []byte(code)) != 1 {
		otpVerifications.WithLabelValues("mismatch").Inc()
		return false, nil
	}

	if err := o.codes.DeleteOne(ctx, bson.M{"_id": row.ID}); err != nil {
		return false, fmt.Errorf("failed to consume code: %w", err)
	}
	if _, err := o.accounts.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"email_verified": true}}); err != nil {
		return false, fmt.Errorf("failed to mark email verified: %w", err)
	}
	otpVerifications.WithLabelValues("verified").Inc()
	return true, nil
}

// SweepExpired deletes codes whose expiry has passed. A code is still valid at its expiry instant.
func (o *OTPService) SweepExpired(ctx context.Context) (int64, error) {
	return o.codes.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": o.now().UTC()}})
}
