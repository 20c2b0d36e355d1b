package databases

// go generate: mockery --name AdminDatabase

import (
	"context"

	"github.com/linesmerrill/motorent-api/models"
)

const adminName = "admin_users"

// AdminDatabase contains the methods to use with the admin_users side table
type AdminDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.AdminRow, error)
}

type adminDatabase struct {
	db DatabaseHelper
}

// NewAdminDatabase initializes a new instance of admin database with the provided db connection
func NewAdminDatabase(db DatabaseHelper) AdminDatabase {
	return &adminDatabase{
		db: db,
	}
}

func (a *adminDatabase) FindOne(ctx context.Context, filter interface{}) (*models.AdminRow, error) {
	row := &models.AdminRow{}
	err := a.db.Collection(adminName).FindOne(ctx, filter).Decode(row)
	if err != nil {
		return nil, err
	}
	return row, nil
}
