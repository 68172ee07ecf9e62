package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DiagnosticsRepo answers connectivity questions for the diagnostic endpoint.
type DiagnosticsRepo struct {
	db *mongo.Database
}

func NewDiagnosticsRepo(db *mongo.Database) *DiagnosticsRepo {
	return &DiagnosticsRepo{db: db}
}

// Configured reports whether a database handle exists.
func (r *DiagnosticsRepo) Configured() bool {
	return r != nil && r.db != nil
}

// Collections lists the collection names of the database.  Listing requires
// a round trip, so it doubles as the reachability probe.
func (r *DiagnosticsRepo) Collections(ctx context.Context) ([]string, error) {
	if !r.Configured() {
		return nil, ErrNotConfigured
	}
	names, err := r.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}
