package storage

import (
	"context"
	"fmt"

	"plandrift/internal/config"
	"plandrift/pkg/logging"
)

// Open returns the local or redis store selected by cfg.Driver. DynamoDB
// tables are opened by the aws provider package.
func Open(ctx context.Context, cfg *config.StoreConfig, logger logging.Logger) (Store, error) {
	if cfg == nil {
		return NewMemoryStore(), nil
	}

	switch cfg.Driver {
	case "", config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverSQLite:
		path := cfg.DSN
		if path == "" {
			path = "plandrift.db"
		}
		return NewSQLiteStore(path, logger)
	case config.DriverRedis:
		addr := cfg.DSN
		if addr == "" {
			addr = "localhost:6379"
		}
		return NewRedisStore(ctx, addr, cfg.Password, cfg.Prefix, logger)
	default:
		return nil, fmt.Errorf("store driver %q is not handled by this package", cfg.Driver)
	}
}
