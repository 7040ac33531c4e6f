package databases

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/fir-api/models"
)

// ErrFIRChanged is returned by conditional writes when the active FIR no longer
// has the status it was read with, or has already been moved to archives
var ErrFIRChanged = errors.New("fir changed since it was read")

// Location tells which collection a FIR was read from
type Location int

// FIR locations
const (
	LocationActive Location = iota + 1
	LocationArchive
)

// FIRStore hides the active/archive split behind one interface. A FIR id lives in
// exactly one of the two collections; Archive is the only way to move it.
type FIRStore interface {
	Insert(ctx context.Context, fir models.FIR) error
	Get(ctx context.Context, id string) (*models.FIR, Location, error)
	FindActive(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.FIR, error)
	FindArchived(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.FIR, error)
	UpdateActive(ctx context.Context, id string, from models.Status, set bson.M) (bool, error)
	Archive(ctx context.Context, fir models.FIR, from models.Status) error
}

type firStore struct {
	client       ClientHelper
	active       FIRDatabase
	archive      FIRDatabase
	transactions bool
}

// NewFIRStore builds the store over the firs and archives collections. When
// transactions is false, or the server rejects them, Archive falls back to an
// ordered mark/insert/delete sequence that the reconciliation job can finish.
func NewFIRStore(db DatabaseHelper, transactions bool) FIRStore {
	return &firStore{
		client:       db.Client(),
		active:       NewFIRDatabase(db),
		archive:      NewArchiveDatabase(db),
		transactions: transactions,
	}
}

func (s *firStore) Insert(ctx context.Context, fir models.FIR) error {
	return s.active.InsertOne(ctx, fir)
}

func (s *firStore) Get(ctx context.Context, id string) (*models.FIR, Location, error) {
	fir, err := s.active.FindOne(ctx, bson.M{"_id": id})
	if err == nil {
		return fir, LocationActive, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, 0, err
	}
	fir, err = s.archive.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, 0, err
	}
	return fir, LocationArchive, nil
}

func (s *firStore) FindActive(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.FIR, error) {
	return s.active.Find(ctx, filter, opts...)
}

func (s *firStore) FindArchived(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.FIR, error) {
	return s.archive.Find(ctx, filter, opts...)
}

// UpdateActive applies set only while the FIR still has status from. A false
// result means it was not matched.
func (s *firStore) UpdateActive(ctx context.Context, id string, from models.Status, set bson.M) (bool, error) {
	res, err := s.active.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Archive moves fir, already carrying its resolved state, from firs into archives.
// from is the status the active copy was read with; ErrFIRChanged is returned
// when another writer got there first.
func (s *firStore) Archive(ctx context.Context, fir models.FIR, from models.Status) error {
	if s.transactions {
		err := s.archiveInTransaction(ctx, fir, from)
		if !errors.Is(err, ErrTransactionsUnsupported) {
			return err
		}
		zap.S().Warnw("transactions unsupported, falling back to ordered relocation", "firId", fir.ID)
	}
	return s.archiveOrdered(ctx, fir, from)
}

func (s *firStore) archiveInTransaction(ctx context.Context, fir models.FIR, from models.Status) error {
	err := s.client.WithTransaction(ctx, func(sessCtx context.Context) error {
		if err := s.archive.InsertOne(sessCtx, fir); err != nil {
			return err
		}
		deleted, err := s.active.DeleteOne(sessCtx, bson.M{"_id": fir.ID, "status": from})
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrFIRChanged
		}
		return nil
	})
	if mongo.IsDuplicateKeyError(err) {
		// archives already holds it. Finish an interrupted relocation, but a
		// missing active copy means another writer completed it.
		deleted, err := s.deleteActive(ctx, fir.ID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrFIRChanged
		}
		return nil
	}
	return err
}

func (s *firStore) archiveOrdered(ctx context.Context, fir models.FIR, from models.Status) error {
	set, err := toSet(fir)
	if err != nil {
		return err
	}
	matched, err := s.UpdateActive(ctx, fir.ID, from, set)
	if err != nil {
		return err
	}
	if !matched {
		return ErrFIRChanged
	}

	if err := s.archive.InsertOne(ctx, fir); err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	_, err = s.deleteActive(ctx, fir.ID)
	return err
}

// deleteActive removes the active copy of an archived FIR, retrying once
func (s *firStore) deleteActive(ctx context.Context, id string) (int64, error) {
	deleted, err := s.active.DeleteOne(ctx, bson.M{"_id": id})
	if err == nil {
		return deleted, nil
	}
	zap.S().Warnw("failed to delete archived fir from active collection, retrying", "firId", id, "error", err)
	return s.active.DeleteOne(ctx, bson.M{"_id": id})
}

// toSet flattens a FIR into a $set document without its immutable _id
func toSet(fir models.FIR) (bson.M, error) {
	raw, err := bson.Marshal(fir)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, err
	}
	delete(set, "_id")
	return set, nil
}
