package databases

// go generate: mockery --name ProfileDatabase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/fir-api/models"
)

const (
	userName   = "users"
	policeName = "police"
)

// ProfileDatabase looks up citizen and police profiles
type ProfileDatabase interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

type profileDatabase struct {
	db DatabaseHelper
}

// NewProfileDatabase initializes a profile directory over the users and police collections
func NewProfileDatabase(db DatabaseHelper) ProfileDatabase {
	return &profileDatabase{
		db: db,
	}
}

// GetProfile searches users first, then police. Account ids are ObjectIDs when
// the hex parses and plain strings otherwise. mongo.ErrNoDocuments is returned
// when neither collection has the id.
func (p *profileDatabase) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var id interface{} = userID
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		id = oid
	}

	for _, name := range []string{userName, policeName} {
		profile := &models.UserProfile{}
		err := p.db.Collection(name).FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
	}
	return nil, mongo.ErrNoDocuments
}
