package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Conn bundles the shared MongoDB client with the database the service works
// in.  It is opened once at startup and closed on shutdown.
type Conn struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Open connects to MongoDB and verifies the connection with a ping.  When the
// ping fails the connection is still returned together with the error: the
// driver reconnects on its own, so callers may keep the handle and report the
// server as unreachable instead of giving up.
func Open(ctx context.Context, uri, name string, timeout time.Duration) (*Conn, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetAppName("plant-catalog").
		SetServerSelectionTimeout(timeout).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	conn := &Conn{Client: client, Database: client.Database(name)}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return conn, fmt.Errorf("mongo ping: %w", err)
	}
	return conn, nil
}

// Close disconnects the client, waiting at most until ctx is done.
func (c *Conn) Close(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Disconnect(ctx)
}
