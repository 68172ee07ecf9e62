// Package repository contains data access logic separated from HTTP handlers.
// This file defines the plant repository: insert, lookup by id, filtered
// listing, counting and seeding of the plant collection.
package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/plant-catalog/internal/model"
)

// PlantRepo encapsulates all database queries related to plants.  It depends
// on a *mongo.Database which is opened elsewhere.  A nil database is allowed
// and turns every method into an ErrNotConfigured.
type PlantRepo struct {
	db *mongo.Database
}

// NewPlantRepo constructs a PlantRepo with the provided database handle.
func NewPlantRepo(db *mongo.Database) *PlantRepo {
	return &PlantRepo{db: db}
}

func (r *PlantRepo) coll() (*mongo.Collection, error) {
	if r == nil || r.db == nil {
		return nil, ErrNotConfigured
	}
	return r.db.Collection(model.CollectionPlant), nil
}

// Create inserts a new plant.  On success the plant's ID is populated with
// the generated ObjectID and the record is re-read so that callers receive
// exactly what was stored.
func (r *PlantRepo) Create(ctx context.Context, p *model.Plant) error {
	coll, err := r.coll()
	if err != nil {
		return err
	}
	p.ID = primitive.NilObjectID
	res, err := coll.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert plant: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert plant: unexpected id type %T", res.InsertedID)
	}

	stored, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// GetByID fetches a plant by its ObjectID.  It returns ErrPlantNotFound if no
// document matches.
func (r *PlantRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Plant, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	var p model.Plant
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlantNotFound
		}
		return nil, fmt.Errorf("find plant %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// List returns at most limit plants matching f in the order the server
// returns them.  A limit of zero means no limit.
func (r *PlantRepo) List(ctx context.Context, f PlantFilter, limit int64) ([]model.Plant, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := coll.Find(ctx, f.BSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("find plants: %w", err)
	}
	defer cur.Close(ctx)

	out := []model.Plant{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode plants: %w", err)
	}
	return out, nil
}

// Count returns the number of plants in the collection.
func (r *PlantRepo) Count(ctx context.Context) (int64, error) {
	coll, err := r.coll()
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count plants: %w", err)
	}
	return n, nil
}

// Seed inserts samples when the collection is empty and reports how many
// records were written.  A non-empty collection is left untouched and 0 is
// returned.  The emptiness check and the inserts are separate operations, so
// two concurrent calls on an empty collection may both insert.
func (r *PlantRepo) Seed(ctx context.Context, samples []model.Plant) ([]model.Plant, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	inserted := make([]model.Plant, 0, len(samples))
	for _, s := range samples {
		s.ID = primitive.NilObjectID
		res, err := coll.InsertOne(ctx, s)
		if err != nil {
			return inserted, fmt.Errorf("seed plant %q: %w", s.Name, err)
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			s.ID = id
		}
		inserted = append(inserted, s)
	}
	return inserted, nil
}
