package databases

// go generate: mockery --name ReservationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/motorent-api/models"
)

const reservationName = "reservations"

// ReservationDatabase contains the methods to use with the reservation database
type ReservationDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.ReservationRow, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ReservationRow, error)
	InsertOne(ctx context.Context, row models.ReservationRow) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}

type reservationDatabase struct {
	db DatabaseHelper
}

// NewReservationDatabase initializes a new instance of reservation database with the provided db connection
func NewReservationDatabase(db DatabaseHelper) ReservationDatabase {
	return &reservationDatabase{
		db: db,
	}
}

func (r *reservationDatabase) FindOne(ctx context.Context, filter interface{}) (*models.ReservationRow, error) {
	row := &models.ReservationRow{}
	err := r.db.Collection(reservationName).FindOne(ctx, filter).Decode(row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *reservationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ReservationRow, error) {
	var rows []models.ReservationRow
	cursor, err := r.db.Collection(reservationName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reservationDatabase) InsertOne(ctx context.Context, row models.ReservationRow) error {
	_, err := r.db.Collection(reservationName).InsertOne(ctx, row)
	return err
}

func (r *reservationDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	return r.db.Collection(reservationName).UpdateOne(ctx, filter, update)
}

func (r *reservationDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return r.db.Collection(reservationName).CountDocuments(ctx, filter)
}
