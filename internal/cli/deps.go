package cli

import (
	"context"

	"gorm.io/gorm"

	"github.com/attribution-io/ledger-core/internal/adapter"
	"github.com/attribution-io/ledger-core/internal/config"
	"github.com/attribution-io/ledger-core/internal/ledger"
	"github.com/attribution-io/ledger-core/internal/refresh"
	"github.com/attribution-io/ledger-core/internal/registry"
	"github.com/attribution-io/ledger-core/internal/store"
)

// Deps are the services behind the database-backed commands
type Deps struct {
	Executor refresh.Executor
	Verifier ledger.Verifier
	Migrate  func(ctx context.Context) error
	Close    func()
}

// DepsFactory opens Deps for one command invocation
type DepsFactory func(ctx context.Context, opts *RootOptions) (*Deps, error)

// DefaultDeps loads the ledgerctl configuration and connects to the database
func DefaultDeps(ctx context.Context, opts *RootOptions) (*Deps, error) {
	cfg, err := config.LoadCLIConfig(opts.ConfigFile, opts.EnvPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}

	reg, err := refresh.LoadRegistry(registry.NewCatalogLoader(adapter.NewFileSystem()), cfg.Refresh.CatalogPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load view catalog", err)
	}

	db, err := store.Open(ctx, store.ConnectConfigFrom(&cfg.Database, cfg.Debug))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to connect to database", err)
	}

	return newDeps(db, reg), nil
}

func newDeps(db *gorm.DB, reg registry.ViewRegistry) *Deps {
	st := store.NewPGStore(db)
	return &Deps{
		Executor: refresh.NewExecutor(reg, st, refresh.NewStoreRecorder(st), adapter.NewClock()),
		Verifier: ledger.NewVerifier(db),
		Migrate: func(ctx context.Context) error {
			return store.ApplySchema(ctx, db)
		},
		Close: func() { store.Close(db) },
	}
}

// withDeps opens the dependencies, runs fn and closes them
func withDeps(ctx context.Context, opts *RootOptions, f *OutputFormatter, fn func(*Deps) error) error {
	deps, err := opts.NewDeps(ctx, opts)
	if err != nil {
		code := GetExitCode(err)
		if code == ExitFailure {
			code = ExitCommandError
		}
		return f.Fail(code, ErrCodeDatabase, "failed to open ledger", err)
	}
	if deps.Close != nil {
		defer deps.Close()
	}
	return fn(deps)
}
