// Package repository defines error types that are reused across the
// repositories.  These sentinel values allow higher layers such as handlers
// to distinguish between failure scenarios: ErrNotConfigured means the
// service runs without a database and should answer with a configuration
// error, while ErrPlantNotFound signals a missing record.
package repository

import "errors"

// ErrNotConfigured is returned by every data operation when no database
// connection was configured at startup.  Handlers translate it into an
// HTTP 500 with a fixed message.
var ErrNotConfigured = errors.New("database not configured")

// ErrPlantNotFound is returned when a plant cannot be found by id.
var ErrPlantNotFound = errors.New("plant not found")
