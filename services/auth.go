package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/motorent-api/databases"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
)

// PasswordResetTTL is how long a reset link stays valid
const PasswordResetTTL = time.Hour

// SessionManager issues and revokes bearer tokens for a resolved identity
type SessionManager interface {
	Issue(identity models.Identity) (string, time.Time, error)
	Revoke(token string) error
}

// AuthService owns credentials, identity resolution and email verification
type AuthService struct {
	accounts databases.AccountDatabase
	users    databases.UserDatabase
	admins   databases.AdminDatabase
	otp      *OTPService
	email    *EmailService
	sessions SessionManager
	log      *zap.SugaredLogger
	now      func() time.Time
}

// NewAuthService creates an AuthService
func NewAuthService(accounts databases.AccountDatabase, users databases.UserDatabase, admins databases.AdminDatabase,
	otp *OTPService, email *EmailService, sessions SessionManager, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		accounts: accounts,
		users:    users,
		admins:   admins,
		otp:      otp,
		email:    email,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
}

// SignUp creates an unverified account and its profile, then emails a verification
// code. No session is issued. If the profile cannot be written the account is kept
// and the error is returned. A failed code email returns the user together with an
// *EmailDeliveryError so the caller can offer a resend.
func (a *AuthService) SignUp(ctx context.Context, in models.SignUpInput) (models.User, error) {
	in.Email = mapper.NormalizeEmail(in.Email)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Phone = mapper.NormalizePhone(in.Phone)
	if err := validateStruct(in); err != nil {
		return models.User{}, err
	}
	if in.Phone != "" && !mapper.ValidatePhone(in.Phone) {
		return models.User{}, &ValidationError{Err: errors.New("phone number is not valid")}
	}

	_, err := a.accounts.FindOne(ctx, bson.M{"email": in.Email})
	if err == nil {
		return models.User{}, ErrEmailAlreadyRegistered
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	now := a.now().UTC()
	account := models.AccountRow{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	if err := a.accounts.InsertOne(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrEmailAlreadyRegistered
		}
		return models.User{}, fmt.Errorf("failed to create account: %w", err)
	}

	profile := models.UserRow{
		ID:        account.ID,
		Email:     in.Email,
		Username:  in.Username,
		FullName:  strings.TrimSpace(in.FullName),
		Phone:     in.Phone,
		Role:      string(models.RoleCustomer),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = a.users.UpdateOne(ctx, bson.M{"_id": account.ID}, bson.M{
		"$set": bson.M{
			"email":      profile.Email,
			"username":   profile.Username,
			"full_name":  profile.FullName,
			"phone":      profile.Phone,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"role": profile.Role, "address": "", "created_at": now},
	}, options.Update().SetUpsert(true))
	if err != nil {
		a.log.Errorw("account created without profile", "accountID", account.ID, "error", err)
		return models.User{}, fmt.Errorf("account created but profile could not be saved: %w", err)
	}

	user := mapper.UserFromRow(profile)
	if err := a.otp.RequestOTP(ctx, in.Email); err != nil {
		return user, err
	}
	return user, nil
}

// SignIn accepts an email or a username and returns a session carrying the resolved identity
func (a *AuthService) SignIn(ctx context.Context, in models.SignInInput) (models.Session, error) {
	if err := validateStruct(in); err != nil {
		return models.Session{}, err
	}

	var profile *models.UserRow
	email := mapper.NormalizeEmail(in.Identifier)
	if !strings.Contains(email, "@") {
		row, err := a.users.FindOne(ctx, bson.M{"username": strings.ToLower(strings.TrimSpace(in.Identifier))})
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Session{}, ErrInvalidCredentials
		}
		if err != nil {
			return models.Session{}, fmt.Errorf("failed to resolve username: %w", err)
		}
		profile = row
		email = row.Email
	}

	account, err := a.accounts.FindOne(ctx, bson.M{"email": email})
	if errors.Is(err, mongo.ErrNoDocuments) {
		if profile == nil {
			profile, err = a.users.FindOne(ctx, bson.M{"email": email})
			if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
				return models.Session{}, fmt.Errorf("failed to load profile: %w", err)
			}
		}
		if profile != nil {
			return models.Session{}, ErrMobileOnlyAccount
		}
		return models.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load account: %w", err)
	}
	if account.PasswordHash == "" {
		return models.Session{}, ErrMobileOnlyAccount
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)) != nil {
		return models.Session{}, ErrInvalidCredentials
	}
	if !account.EmailVerified {
		return models.Session{}, ErrEmailNotVerified
	}

	identity, err := a.resolveIdentity(ctx, account, profile)
	if err != nil {
		return models.Session{}, err
	}

	now := a.now().UTC()
	if _, err := a.accounts.UpdateOne(ctx, bson.M{"_id": account.ID}, bson.M{"$set": bson.M{"last_sign_in_at": now}}); err != nil {
		a.log.Warnw("failed to record sign-in time", "accountID", account.ID, "error", err)
	}

	token, expiresAt, err := a.sessions.Issue(identity)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to issue session: %w", err)
	}
	return models.Session{Token: token, ExpiresAt: expiresAt, Identity: identity}, nil
}

// SignOut revokes the bearer token
func (a *AuthService) SignOut(_ context.Context, token string) error {
	return a.sessions.Revoke(token)
}

// CurrentIdentity re-resolves the identity for an account id
func (a *AuthService) CurrentIdentity(ctx context.Context, accountID string) (models.Identity, error) {
	account, err := a.accounts.FindOne(ctx, bson.M{"_id": accountID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Identity{}, ErrNotFound
	}
	if err != nil {
		return models.Identity{}, err
	}
	return a.resolveIdentity(ctx, account, nil)
}

// resolveIdentity builds the single identity for an account. Membership in
// admin_users wins over whatever role the profile carries.
func (a *AuthService) resolveIdentity(ctx context.Context, account *models.AccountRow, profile *models.UserRow) (models.Identity, error) {
	if profile == nil {
		row, err := a.users.FindOne(ctx, bson.M{"_id": account.ID})
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return models.Identity{}, fmt.Errorf("failed to load profile: %w", err)
		}
		profile = row
	}

	identity := models.Identity{ID: account.ID, Email: account.Email, Role: models.RoleCustomer}
	if profile != nil {
		identity.Username = profile.Username
		identity.Name = profile.FullName
		if models.Role(profile.Role) == models.RoleAdmin {
			identity.Role = models.RoleAdmin
		}
	}

	admin, err := a.admins.FindOne(ctx, bson.M{"email": account.Email})
	switch {
	case err == nil:
		identity.Role = models.RoleAdmin
		if identity.Name == "" {
			identity.Name = admin.Name
		}
	case !errors.Is(err, mongo.ErrNoDocuments):
		return models.Identity{}, fmt.Errorf("failed to check admin membership: %w", err)
	}
	return identity, nil
}

// RequestOTP sends a verification code to email
func (a *AuthService) RequestOTP(ctx context.Context, email string) error {
	return a.otp.RequestOTP(ctx, email)
}

// ResendOTP replaces the outstanding code for email
func (a *AuthService) ResendOTP(ctx context.Context, email string) error {
	return a.otp.ResendOTP(ctx, email)
}

// VerifyOTP checks a code and returns ErrInvalidCode when it does not match
func (a *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	ok, err := a.otp.VerifyOTP(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}
	return nil
}

// RequestPasswordReset emails a reset link. Unknown emails succeed silently.
func (a *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = mapper.NormalizeEmail(email)
	account, err := a.accounts.FindOne(ctx, bson.M{"email": email})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	token := uuid.NewString()
	expires := a.now().UTC().Add(PasswordResetTTL)
	_, err = a.accounts.UpdateOne(ctx, bson.M{"_id": account.ID}, bson.M{"$set": bson.M{
		"reset_token_hash": hashToken(token),
		"reset_expires_at": expires,
	}})
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	name := ""
	if profile, err := a.users.FindOne(ctx, bson.M{"_id": account.ID}); err == nil {
		name = profile.FullName
	}
	return a.email.SendPasswordReset(ctx, email, name, token, PasswordResetTTL)
}

// ResetPassword sets a new password for the account holding token
func (a *AuthService) ResetPassword(ctx context.Context, in models.PasswordResetInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	account, err := a.accounts.FindOne(ctx, bson.M{"reset_token_hash": hashToken(in.Token)})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if account.ResetExpiresAt == nil || !a.now().Before(*account.ResetExpiresAt) {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = a.accounts.UpdateOne(ctx, bson.M{"_id": account.ID}, bson.M{
		"$set":   bson.M{"password_hash": string(hash), "email_verified": true},
		"$unset": bson.M{"reset_token_hash": "", "reset_expires_at": ""},
	})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
