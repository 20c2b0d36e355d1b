package databases

// go generate: mockery --name DocumentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/motorent-api/models"
)

const documentName = "document_verifications"

// DocumentDatabase contains the methods to use with the document verification database
type DocumentDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.DocumentRow, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.DocumentRow, error)
	InsertOne(ctx context.Context, row models.DocumentRow) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
}

type documentDatabase struct {
	db DatabaseHelper
}

// NewDocumentDatabase initializes a new instance of document database with the provided db connection
func NewDocumentDatabase(db DatabaseHelper) DocumentDatabase {
	return &documentDatabase{
		db: db,
	}
}

func (d *documentDatabase) FindOne(ctx context.Context, filter interface{}) (*models.DocumentRow, error) {
	row := &models.DocumentRow{}
	err := d.db.Collection(documentName).FindOne(ctx, filter).Decode(row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (d *documentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.DocumentRow, error) {
	var rows []models.DocumentRow
	cursor, err := d.db.Collection(documentName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *documentDatabase) InsertOne(ctx context.Context, row models.DocumentRow) error {
	_, err := d.db.Collection(documentName).InsertOne(ctx, row)
	return err
}

func (d *documentDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	return d.db.Collection(documentName).UpdateOne(ctx, filter, update)
}

func (d *documentDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	return d.db.Collection(documentName).UpdateMany(ctx, filter, update)
}
