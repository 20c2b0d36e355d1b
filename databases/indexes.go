package databases

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the service relies on. Unique email on otp_codes
// backs the one-code-per-email rule.
func EnsureIndexes(ctx context.Context, db DatabaseHelper) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}
	byCollection := map[string][]mongo.IndexModel{
		otpName:     {unique("email"), {Keys: bson.D{{Key: "expires_at", Value: 1}}}},
		accountName: {unique("email")},
		adminName:   {unique("email")},
		userName:    {unique("username"), unique("email")},
		reservationName: {
			{Keys: bson.D{{Key: "motorcycle_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		documentName:     {{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}}},
		notificationName: {{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}},
	}
	for name, idx := range byCollection {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
