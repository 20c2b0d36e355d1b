package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/motorent-api/databases"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
)

// UserService reads and edits customer profiles
type UserService struct {
	users databases.UserDatabase
	now   func() time.Time
}

// NewUserService creates a UserService
func NewUserService(users databases.UserDatabase) *UserService {
	return &UserService{users: users, now: time.Now}
}

func (u *UserService) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	row, err := u.users.FindOne(ctx, filter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return mapper.UserFromRow(*row), nil
}

// Get returns the profile for an account id
func (u *UserService) Get(ctx context.Context, id string) (models.User, error) {
	return u.findOne(ctx, bson.M{"_id": id})
}

// GetByUsername returns the profile with the given username
func (u *UserService) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return u.findOne(ctx, bson.M{"username": strings.ToLower(strings.TrimSpace(username))})
}

// UpdateProfile edits the caller's name, phone and address
func (u *UserService) UpdateProfile(ctx context.Context, id string, in models.ProfileUpdate) (models.User, error) {
	in.Phone = mapper.NormalizePhone(in.Phone)
	if err := validateStruct(in); err != nil {
		return models.User{}, err
	}
	if in.Phone != "" && !mapper.ValidatePhone(in.Phone) {
		return models.User{}, &ValidationError{Err: errors.New("phone number is not valid")}
	}
	set := bson.M{"updated_at": u.now().UTC()}
	if in.FullName != "" {
		set["full_name"] = strings.TrimSpace(in.FullName)
	}
	if in.Phone != "" {
		set["phone"] = in.Phone
	}
	if in.Address != "" {
		set["address"] = strings.TrimSpace(in.Address)
	}
	res, err := u.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return models.User{}, err
	}
	if res.MatchedCount == 0 {
		return models.User{}, ErrNotFound
	}
	return u.Get(ctx, id)
}

// List returns profiles newest first
func (u *UserService) List(ctx context.Context, limit, page int) ([]models.User, error) {
	rows, err := u.users.Find(ctx, bson.M{}, databases.NewestFirst(limit, page))
	if err != nil {
		return nil, err
	}
	return mapper.UsersFromRows(rows), nil
}
