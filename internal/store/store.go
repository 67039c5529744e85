package store

import (
	"context"
	"fmt"
	"log/slog"

	"raffledash/internal/config"
	"raffledash/internal/models"
)

// Collection (and table) names
const (
	RafflesCollection = "raffles"
	BuyersCollection  = "rafflebuyers"
)

// Store reads the two collections the dashboard shows. Both reads return the
// full result or a *FetchError, never a partial set.
type Store interface {
	// ListRaffles returns every raffle, unfiltered and unsorted
	ListRaffles(ctx context.Context) ([]models.Raffle, error)
	// ListBuyers returns purchase records for raffleID. Callers must still
	// scope the result with raffle.ScopeBuyers.
	ListBuyers(ctx context.Context, raffleID string) ([]models.Buyer, error)
	Close() error
}

// FetchError reports that a full-set read failed
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func fetchErr(op string, err error) error {
	return &FetchError{Op: op, Err: err}
}

// Open connects to the backend selected by cfg.Driver
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	slog.Info("opening store", "driver", cfg.Driver)

	switch cfg.Driver {
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.Database)
	case config.DriverLibSQL:
		return OpenSQL(ctx, "libsql", cfg.DSN)
	case config.DriverSQLite:
		return OpenSQL(ctx, "sqlite3", cfg.DSN)
	case config.DriverPostgres:
		return OpenSQL(ctx, "postgres", cfg.DSN)
	case config.DriverMemory:
		if cfg.Fixtures == "" {
			slog.Warn("memory store without FIXTURES, dashboard will be empty")
			return NewMemoryStore(nil, nil), nil
		}
		return LoadFixtures(cfg.Fixtures)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
