package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/motorent-api/models"
	"github.com/linesmerrill/motorent-api/services"
)

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	f.users.On("UpdateOne", mock.Anything, bson.M{"_id": "U1"}, mock.MatchedBy(func(u bson.M) bool {
		set := u["$set"].(bson.M)
		_, touchedAddress := set["address"]
		return set["phone"] == "09171234567" && set["full_name"] == "Una U." && !touchedAddress
	})).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)
	f.users.On("FindOne", mock.Anything, bson.M{"_id": "U1"}).Return(&models.UserRow{ID: "U1", FullName: "Una U.", Phone: "09171234567"}, nil)

	u, err := f.svc.Users.UpdateProfile(context.Background(), "U1", models.ProfileUpdate{FullName: " Una U. ", Phone: "0917-123-4567"})
	require.NoError(t, err)
	assert.Equal(t, "Una U.", u.FullName)

	var verr *services.ValidationError
	_, err = f.svc.Users.UpdateProfile(context.Background(), "U1", models.ProfileUpdate{Phone: "555"})
	assert.ErrorAs(t, err, &verr)
}

func TestGetByUsername(t *testing.T) {
	f := newFixture(t)
	f.users.On("FindOne", mock.Anything, bson.M{"username": "rider"}).Return(riderProfile(), nil)
	f.users.On("FindOne", mock.Anything, bson.M{"username": "ghost"}).Return(nil, mongo.ErrNoDocuments)

	u, err := f.svc.Users.GetByUsername(context.Background(), " Rider ")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", u.ID)

	_, err = f.svc.Users.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestNotifications_MarkRead(t *testing.T) {
	f := newFixture(t)
	f.notifications.On("UpdateOne", mock.Anything, bson.M{"_id": "N1", "user_id": "U1"}, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)
	f.notifications.On("UpdateOne", mock.Anything, bson.M{"_id": "N1", "user_id": "U2"}, mock.Anything).Return(&mongo.UpdateResult{}, nil)

	assert.NoError(t, f.svc.Notifications.MarkRead(context.Background(), "U1", "N1"))
	assert.ErrorIs(t, f.svc.Notifications.MarkRead(context.Background(), "U2", "N1"), services.ErrNotFound)
}
