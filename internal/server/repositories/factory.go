package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/identity/internal/server/repositories/inmemory"
	"github.com/dmitrijs2005/identity/internal/server/repositories/postgres"
)

var (
	_ Repository = (*postgres.Repository)(nil)
	_ Repository = (*inmemory.Repository)(nil)
)

// New selects a repository backend from the DSN scheme. postgres:// and
// postgresql:// open a PostgreSQL pool and apply migrations; mem:// returns
// a volatile in-memory store.
func New(ctx context.Context, dsn string) (Repository, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.New(ctx, dsn)
	case strings.HasPrefix(dsn, "mem://"):
		return inmemory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database dsn: %q", dsn)
	}
}
