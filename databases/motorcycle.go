package databases

// go generate: mockery --name MotorcycleDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/motorent-api/models"
)

const motorcycleName = "motorcycles"

// MotorcycleDatabase contains the methods to use with the motorcycle database
type MotorcycleDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.MotorcycleRow, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.MotorcycleRow, error)
	InsertOne(ctx context.Context, row models.MotorcycleRow) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) error
}

type motorcycleDatabase struct {
	db DatabaseHelper
}

// NewMotorcycleDatabase initializes a new instance of motorcycle database with the provided db connection
func NewMotorcycleDatabase(db DatabaseHelper) MotorcycleDatabase {
	return &motorcycleDatabase{
		db: db,
	}
}

func (m *motorcycleDatabase) FindOne(ctx context.Context, filter interface{}) (*models.MotorcycleRow, error) {
	row := &models.MotorcycleRow{}
	err := m.db.Collection(motorcycleName).FindOne(ctx, filter).Decode(row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (m *motorcycleDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.MotorcycleRow, error) {
	var rows []models.MotorcycleRow
	cursor, err := m.db.Collection(motorcycleName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *motorcycleDatabase) InsertOne(ctx context.Context, row models.MotorcycleRow) error {
	_, err := m.db.Collection(motorcycleName).InsertOne(ctx, row)
	return err
}

func (m *motorcycleDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	return m.db.Collection(motorcycleName).UpdateOne(ctx, filter, update)
}

func (m *motorcycleDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	_, err := m.db.Collection(motorcycleName).DeleteOne(ctx, filter)
	return err
}
