package databases

// go generate: mockery --name AccountDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/motorent-api/models"
)

const accountName = "auth_accounts"

// AccountDatabase contains the methods to use with the auth_accounts credential database
type AccountDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.AccountRow, error)
	InsertOne(ctx context.Context, row models.AccountRow) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
}

type accountDatabase struct {
	db DatabaseHelper
}

// NewAccountDatabase initializes a new instance of account database with the provided db connection
func NewAccountDatabase(db DatabaseHelper) AccountDatabase {
	return &accountDatabase{
		db: db,
	}
}

func (a *accountDatabase) FindOne(ctx context.Context, filter interface{}) (*models.AccountRow, error) {
	row := &models.AccountRow{}
	err := a.db.Collection(accountName).FindOne(ctx, filter).Decode(row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (a *accountDatabase) InsertOne(ctx context.Context, row models.AccountRow) error {
	_, err := a.db.Collection(accountName).InsertOne(ctx, row)
	return err
}

func (a *accountDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	return a.db.Collection(accountName).UpdateOne(ctx, filter, update)
}
