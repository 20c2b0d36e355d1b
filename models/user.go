package models

import "time"

// Role is the capability attached to an identity at sign-in
type Role string

// Known roles
const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// UserRow holds the structure for the users (profile) collection in mongo.
// The _id is the auth account id.
type UserRow struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Username  string    `bson:"username"`
	FullName  string    `bson:"full_name"`
	Phone     string    `bson:"phone"`
	Address   string    `bson:"address"`
	Role      string    `bson:"role,omitempty"`
	AvatarURL string    `bson:"avatar_url,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// User is the application shape of a customer profile
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Role      Role      `json:"role"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileUpdate holds the editable profile fields
type ProfileUpdate struct {
	FullName string `json:"fullName" validate:"omitempty,max=120"`
	Phone    string `json:"phone"`
	Address  string `json:"address" validate:"max=300"`
}

// AdminRow holds the structure for the admin_users side table. Membership is keyed by email.
type AdminRow struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"created_at"`
}
