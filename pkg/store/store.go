package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johncui/rapport/pkg/memory"
	"github.com/johncui/rapport/pkg/model"
	"github.com/johncui/rapport/pkg/store/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Options configures Open.
type Options struct {
	Driver string
	DBPath string
	Logger *zap.Logger
}

// Backend is an opened storage backend.
type Backend struct {
	model.UnitOfWork
	close func() error
}

// Open initializes the configured backend.
func Open(ctx context.Context, opt Options) (*Backend, error) {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	switch opt.Driver {
	case "", DriverSQLite:
		db, err := sqlite.New(ctx, sqlite.Config{Path: opt.DBPath, Logger: opt.Logger.Named("sqlite")})
		if err != nil {
			return nil, err
		}
		return &Backend{UnitOfWork: db, close: db.Close}, nil
	case DriverMemory:
		opt.Logger.Warn("using in-memory store, data is lost on exit")
		return &Backend{UnitOfWork: memory.NewStore(), close: func() error { return nil }}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opt.Driver)
	}
}

// Close releases resources.
func (b *Backend) Close() error {
	return b.close()
}
