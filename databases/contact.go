package databases

// go generate: mockery --name ContactDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/motorent-api/models"
)

const contactName = "contact_messages"

// ContactDatabase contains the methods to use with the contact message database
type ContactDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.ContactMessageRow, error)
	InsertOne(ctx context.Context, row models.ContactMessageRow) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
}

type contactDatabase struct {
	db DatabaseHelper
}

// NewContactDatabase initializes a new instance of contact database with the provided db connection
func NewContactDatabase(db DatabaseHelper) ContactDatabase {
	return &contactDatabase{
		db: db,
	}
}

func (c *contactDatabase) FindOne(ctx context.Context, filter interface{}) (*models.ContactMessageRow, error) {
	row := &models.ContactMessageRow{}
	err := c.db.Collection(contactName).FindOne(ctx, filter).Decode(row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (c *contactDatabase) InsertOne(ctx context.Context, row models.ContactMessageRow) error {
	_, err := c.db.Collection(contactName).InsertOne(ctx, row)
	return err
}

func (c *contactDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	return c.db.Collection(contactName).UpdateOne(ctx, filter, update)
}
