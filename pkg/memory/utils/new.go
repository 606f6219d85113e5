package memoryutils

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mnemosyneco/keep/pkg/dotdir"
	"github.com/mnemosyneco/keep/pkg/memory"
	"github.com/mnemosyneco/keep/pkg/memory/inmemory"
	"github.com/mnemosyneco/keep/pkg/memory/postgres"
	"github.com/mnemosyneco/keep/pkg/memory/sqlite"
)

// localDBFile is the SQLite database created inside the .keep/ directory by
// the "local" provider.
const localDBFile = "keep.sqlite"

type NewMemoryDriverOpts struct {
	Provider    string
	SQLitePath  string
	PostgresURL string

	// ConfigDir overrides the .keep/ directory the "local" provider resolves
	// its database into.
	ConfigDir string
}

// NewMemoryDriver constructs a memory store driver from provider settings.
// The "local" provider keeps a SQLite database inside the resolved .keep/
// directory; "memory" is ephemeral and mainly useful for tests and demos.
func NewMemoryDriver(ctx context.Context, o *NewMemoryDriverOpts) (memory.Driver, error) {
	switch o.Provider {
	case "", "memory":
		return inmemory.NewDriver(), nil

	case "local":
		dir, err := dotdir.NewManager().Target(o.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("resolving keep directory: %w", err)
		}
		return sqlite.NewDriver(ctx, filepath.Join(dir, localDBFile))

	case "sqlite":
		if o.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite provider requires storage.sqlite_path")
		}
		return sqlite.NewDriver(ctx, o.SQLitePath)

	case "postgres":
		if o.PostgresURL == "" {
			return nil, fmt.Errorf("postgres provider requires storage.postgres_url")
		}
		return postgres.NewDriver(ctx, o.PostgresURL)

	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", o.Provider)
	}
}
