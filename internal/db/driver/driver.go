// Package driver opens the configured db.Store implementation.
package driver

import (
	"fmt"

	"github.com/kailas-cloud/mvnquery/internal/config"
	"github.com/kailas-cloud/mvnquery/internal/db"
	dbRedis "github.com/kailas-cloud/mvnquery/internal/db/redis"
	dbValkey "github.com/kailas-cloud/mvnquery/internal/db/valkey"
)

// Supported driver names.
const (
	Valkey = "valkey"
	Redis  = "redis"
)

// Open creates the store selected by cfg.Driver.
func Open(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case Valkey:
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("valkey: %w", err)
		}
		return s, nil
	case Redis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
