package databases

// go generate: mockery --name OTPDatabase

import (
	"context"

	"github.com/linesmerrill/motorent-api/models"
)

const otpName = "otp_codes"

// OTPDatabase contains the methods to use with the otp_codes database
type OTPDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.OTPRow, error)
	InsertOne(ctx context.Context, row models.OTPRow) error
	DeleteOne(ctx context.Context, filter interface{}) error
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
}

type otpDatabase struct {
	db DatabaseHelper
}

// NewOTPDatabase initializes a new instance of otp database with the provided db connection
func NewOTPDatabase(db DatabaseHelper) OTPDatabase {
	return &otpDatabase{
		db: db,
	}
}

func (o *otpDatabase) FindOne(ctx context.Context, filter interface{}) (*models.OTPRow, error) {
	row := &models.OTPRow{}
	err := o.db.Collection(otpName).FindOne(ctx, filter).Decode(row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (o *otpDatabase) InsertOne(ctx context.Context, row models.OTPRow) error {
	_, err := o.db.Collection(otpName).InsertOne(ctx, row)
	return err
}

func (o *otpDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	_, err := o.db.Collection(otpName).DeleteOne(ctx, filter)
	return err
}

func (o *otpDatabase) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	return o.db.Collection(otpName).DeleteMany(ctx, filter)
}
