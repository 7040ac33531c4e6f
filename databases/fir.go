package databases

// go generate: mockery --name FIRDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/fir-api/models"
)

const (
	firName     = "firs"
	archiveName = "archives"
)

// FIRDatabase contains the methods to use with a collection of FIR documents.
// The same shape backs both the active and the archive collection.
type FIRDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.FIR, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.FIR, error)
	InsertOne(ctx context.Context, fir models.FIR) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type firDatabase struct {
	db         DatabaseHelper
	collection string
}

// NewFIRDatabase initializes the active FIR collection with the provided db connection
func NewFIRDatabase(db DatabaseHelper) FIRDatabase {
	return &firDatabase{
		db:         db,
		collection: firName,
	}
}

// NewArchiveDatabase initializes the archive collection with the provided db connection
func NewArchiveDatabase(db DatabaseHelper) FIRDatabase {
	return &firDatabase{
		db:         db,
		collection: archiveName,
	}
}

func (f *firDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.FIR, error) {
	fir := &models.FIR{}
	err := f.db.Collection(f.collection).FindOne(ctx, filter, opts...).Decode(&fir)
	if err != nil {
		return nil, err
	}
	return fir, nil
}

func (f *firDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.FIR, error) {
	var firs []models.FIR
	cur, err := f.db.Collection(f.collection).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.All(ctx, &firs)
	if err != nil {
		return nil, err
	}
	return firs, nil
}

func (f *firDatabase) InsertOne(ctx context.Context, fir models.FIR) error {
	_, err := f.db.Collection(f.collection).InsertOne(ctx, fir)
	return err
}

func (f *firDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return f.db.Collection(f.collection).UpdateOne(ctx, filter, update, opts...)
}

func (f *firDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return f.db.Collection(f.collection).DeleteOne(ctx, filter, opts...)
}
