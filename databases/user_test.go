package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/fir-api/databases"
	"github.com/linesmerrill/fir-api/databases/mocks"
	"github.com/linesmerrill/fir-api/models"
)

func TestProfileDatabase_GetProfileFromUsers(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	users := &mocks.CollectionHelper{}
	sr := &mocks.SingleResultHelper{}

	oid, _ := primitive.ObjectIDFromHex("5fc51f58c72ff10004dca382")
	sr.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.UserProfile)
		(*arg).FullName = "Asha Rao"
	})
	users.On("FindOne", mock.Anything, bson.M{"_id": oid}).Return(sr)
	db.On("Collection", "users").Return(users)

	profile, err := databases.NewProfileDatabase(db).GetProfile(context.Background(), "5fc51f58c72ff10004dca382")

	assert.NoError(t, err)
	assert.Equal(t, "Asha Rao", profile.FullName)
	db.AssertNotCalled(t, "Collection", "police")
}

func TestProfileDatabase_GetProfileFallsBackToPolice(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	users := &mocks.CollectionHelper{}
	police := &mocks.CollectionHelper{}
	miss := &mocks.SingleResultHelper{}
	hit := &mocks.SingleResultHelper{}

	miss.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	hit.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.UserProfile)
		(*arg).StationID = "PS-12"
	})
	users.On("FindOne", mock.Anything, bson.M{"_id": "officer-7"}).Return(miss)
	police.On("FindOne", mock.Anything, bson.M{"_id": "officer-7"}).Return(hit)
	db.On("Collection", "users").Return(users)
	db.On("Collection", "police").Return(police)

	profile, err := databases.NewProfileDatabase(db).GetProfile(context.Background(), "officer-7")

	assert.NoError(t, err)
	assert.Equal(t, "PS-12", profile.StationID)
}

func TestProfileDatabase_GetProfileAbsent(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	miss := &mocks.SingleResultHelper{}

	miss.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(miss)
	db.On("Collection", mock.Anything).Return(conn)

	profile, err := databases.NewProfileDatabase(db).GetProfile(context.Background(), "ghost")

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestProfileDatabase_GetProfileStoreError(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	broken := &mocks.SingleResultHelper{}

	broken.On("Decode", mock.Anything).Return(errors.New("mocked-error"))
	conn.On("FindOne", mock.Anything, mock.Anything).Return(broken)
	db.On("Collection", "users").Return(conn)

	_, err := databases.NewProfileDatabase(db).GetProfile(context.Background(), "u1")

	assert.EqualError(t, err, "mocked-error")
	db.AssertNotCalled(t, "Collection", "police")
}
