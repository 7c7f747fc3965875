// Package store persists user credentials. Two engines are supported: MongoDB
// (the document store used in production) and SQLite for single-node setups
// and tests. Both enforce email uniqueness at the engine level.
package store

import (
	"context"
	"errors"

	"github.com/isdelr/auth-api/internal/config"
	"github.com/isdelr/auth-api/internal/database"
	"github.com/isdelr/auth-api/internal/models"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when an insert collides with an existing email.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStore is the credential store used by the auth service.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	// Insert assigns the id and creation time and returns the stored record.
	Insert(ctx context.Context, user models.User) (models.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open picks the engine from cfg.DatabaseURL and prepares its schema.
func Open(ctx context.Context, cfg *config.Config) (UserStore, error) {
	if cfg.UsesMongo() {
		return NewMongoStore(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return NewSQLiteStore(db), nil
}
