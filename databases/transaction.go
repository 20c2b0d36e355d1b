package databases

// go generate: mockery --name TransactionDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/motorent-api/models"
)

const transactionName = "transactions"

// TransactionDatabase contains the methods to use with the transaction database
type TransactionDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.TransactionRow, error)
	InsertOne(ctx context.Context, row models.TransactionRow) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}

type transactionDatabase struct {
	db DatabaseHelper
}

// NewTransactionDatabase initializes a new instance of transaction database with the provided db connection
func NewTransactionDatabase(db DatabaseHelper) TransactionDatabase {
	return &transactionDatabase{
		db: db,
	}
}

func (t *transactionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.TransactionRow, error) {
	var rows []models.TransactionRow
	cursor, err := t.db.Collection(transactionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *transactionDatabase) InsertOne(ctx context.Context, row models.TransactionRow) error {
	_, err := t.db.Collection(transactionName).InsertOne(ctx, row)
	return err
}

func (t *transactionDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return t.db.Collection(transactionName).CountDocuments(ctx, filter)
}

func (t *transactionDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	return t.db.Collection(transactionName).UpdateOne(ctx, filter, update)
}
