package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"raffledash/internal/models"
)

// MemoryStore serves a fixed data set. ListBuyers returns every purchase
// record regardless of raffle ID, like the legacy rafflebuyers endpoint, so
// callers exercise their own scoping.
type MemoryStore struct {
	raffles []models.Raffle
	buyers  []models.Buyer
}


func NewMemoryStore(raffles []models.Raffle, buyers []models.Buyer) *MemoryStore {
	s := &MemoryStore{
		raffles: make([]models.Raffle, len(raffles)),
		buyers:  make([]models.Buyer, len(buyers)),
	}
	copy(s.raffles, raffles)
	copy(s.buyers, buyers)
	return s
}

// LoadFixtures reads a YAML fixture file. Records without an id get a random
// one. Malformed fields read as zero values and entries that are not
// mappings are skipped.
func LoadFixtures(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	var fx fixtureFile
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}

	raffles := make([]models.Raffle, 0, len(fx.Raffles))
	for _, n := range fx.Raffles {
		var r fixtureRaffle
		if err := n.Decode(&r); err != nil {
			slog.Warn("skipping fixture raffle", "file", path, "line", n.Line, "error", err)
			continue
		}
		raffles = append(raffles, r.raffle())
	}

	buyers := make([]models.Buyer, 0, len(fx.Buyers))
	for _, n := range fx.Buyers {
		var b fixtureBuyer
		if err := n.Decode(&b); err != nil {
			slog.Warn("skipping fixture buyer", "file", path, "line", n.Line, "error", err)
			continue
		}
		buyers = append(buyers, b.buyer())
	}

	return NewMemoryStore(raffles, buyers), nil
}

func (s *MemoryStore) ListRaffles(ctx context.Context) ([]models.Raffle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetchErr("raffles", err)
	}
	out := make([]models.Raffle, len(s.raffles))
	copy(out, s.raffles)
	return out, nil
}

func (s *MemoryStore) ListBuyers(ctx context.Context, _ string) ([]models.Buyer, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetchErr("rafflebuyers", err)
	}
	out := make([]models.Buyer, len(s.buyers))
	copy(out, s.buyers)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
