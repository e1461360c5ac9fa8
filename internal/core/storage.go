package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"medghor/internal/infra/persistence/memory"
	"medghor/internal/infra/persistence/postgres"
	"medghor/internal/infra/persistence/sqlite"
	"medghor/pkg/domain"
)

// Environment variables controlling storage driver selection.
const (
	EnvStorageDriver = "MEDGHOR_STORAGE_DRIVER"
	EnvSQLitePath    = "MEDGHOR_SQLITE_PATH"
	EnvPostgresDSN   = "MEDGHOR_POSTGRES_DSN"
)

// Supported storage driver names.
const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

// OpenPersistentStore selects and opens a persistent store based on
// MEDGHOR_STORAGE_DRIVER. SQLite is the default so a fresh deployment
// survives restarts without any configuration.
func OpenPersistentStore(ctx context.Context) (domain.PersistentStore, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv(EnvStorageDriver)))
	switch driver {
	case StorageDriverMemory:
		return memory.NewStore(), nil
	case StorageDriverSQLite, "":
		return sqlite.NewStore(os.Getenv(EnvSQLitePath))
	case StorageDriverPostgres:
		return postgres.NewStore(ctx, os.Getenv(EnvPostgresDSN))
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
