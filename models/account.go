package models

import "time"

// AccountRow holds the credential record for the auth_accounts collection
type AccountRow struct {
	ID             string     `bson:"_id"`
	Email          string     `bson:"email"`
	PasswordHash   string     `bson:"password_hash"`
	EmailVerified  bool       `bson:"email_verified"`
	ResetTokenHash string     `bson:"reset_token_hash,omitempty"`
	ResetExpiresAt *time.Time `bson:"reset_expires_at,omitempty"`
	LastSignInAt   *time.Time `bson:"last_sign_in_at,omitempty"`
	CreatedAt      time.Time  `bson:"created_at"`
}

// Identity is who the caller is, resolved once at sign-in and carried in the session token
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// SignUpInput is the registration form
type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone"`
}

// SignInInput accepts either an email or a username as the identifier
type SignInInput struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// OTPRow holds the structure for the otp_codes collection. At most one row exists per email.
type OTPRow struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Session is returned by a successful sign-in
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Identity  Identity  `json:"identity"`
}

// PasswordResetInput completes a password reset
type PasswordResetInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
