package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffledash/internal/config"
	"raffledash/internal/models"
)

func TestLoadFixtures(t *testing.T) {
	s, err := LoadFixtures(filepath.Join("testdata", "fixtures.yaml"))
	require.NoError(t, err)

	raffles, err := s.ListRaffles(context.Background())
	require.NoError(t, err)
	require.Len(t, raffles, 3)

	first := raffles[0]
	assert.Equal(t, "64f1a2b3c4d5e6f708091a2b", first.ID)
	assert.Equal(t, "Mad Lads #1204", first.Name)
	assert.Equal(t, "42.5", first.FloorPrice)
	assert.True(t, first.StartTime.Equal(time.Date(2024, 2, 1, 18, 30, 0, 0, time.UTC)))
	require.Len(t, first.Prizes, 1)
	assert.Equal(t, 1.0, first.Prizes[0].Amount)

	assert.True(t, raffles[1].IsDeleted)

	generated := raffles[2]
	assert.NotEmpty(t, generated.ID, "missing ids are generated")
	assert.True(t, generated.StartTime.Equal(time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC)))
}

func TestMemoryStore_ListBuyersIsUnscoped(t *testing.T) {
	s, err := LoadFixtures(filepath.Join("testdata", "fixtures.yaml"))
	require.NoError(t, err)

	buyers, err := s.ListBuyers(context.Background(), "64f1a2b3c4d5e6f708091a2b")
	require.NoError(t, err)
	require.Len(t, buyers, 3, "memory store mimics the unscoped legacy endpoint")

	assert.Equal(t, models.Tickets{1, 2, 3}, buyers[0].Tickets)
	assert.NotNil(t, buyers[2].Tickets, "missing tickets become an empty list")
	assert.Empty(t, buyers[2].Tickets)
}

func TestMemoryStore_CopiesData(t *testing.T) {
	raffles := []models.Raffle{{ID: "r1", Name: "one"}}
	s := NewMemoryStore(raffles, nil)
	raffles[0].Name = "changed"

	got, err := s.ListRaffles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "one", got[0].Name)

	got[0].Name = "changed again"
	again, err := s.ListRaffles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "one", again[0].Name)
	assert.NoError(t, s.Close())
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := NewMemoryStore(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListRaffles(ctx)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "raffles", fe.Op)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.ListBuyers(ctx, "r1")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "rafflebuyers", fe.Op)
}

func TestLoadFixtures_MalformedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`raffles:
  - id: good
    creator: alice
    startTime: 2024-02-01T18:30:00Z
    floorPrice: "1.5"
  - id: messy
    startTime: ""
    floorPrice: 1.50
    isDeleted: maybe
    prizes:
      - just a string
      - tokenName: Lad
        amount: 2
  - id: nested
    startTime: [2024]
    floorPrice: {amount: 3}
  - not a mapping
buyers:
  - id: b1
    tickets: [1, two, 3]
    createdAt: yesterday
  - id: b2
    tickets: "1,2"
`), 0644))

	s, err := LoadFixtures(path)
	require.NoError(t, err)

	raffles, err := s.ListRaffles(context.Background())
	require.NoError(t, err)
	require.Len(t, raffles, 3, "entries that are not mappings are skipped")

	assert.Equal(t, "good", raffles[0].ID)
	assert.True(t, raffles[0].StartTime.Equal(time.Date(2024, 2, 1, 18, 30, 0, 0, time.UTC)))

	messy := raffles[1]
	assert.True(t, messy.StartTime.IsZero())
	assert.Equal(t, "1.50", messy.FloorPrice, "numeric floor price kept as written")
	assert.False(t, messy.IsDeleted)
	require.Len(t, messy.Prizes, 1)
	assert.Equal(t, "Lad", messy.Prizes[0].TokenName)

	assert.True(t, raffles[2].StartTime.IsZero())
	assert.Empty(t, raffles[2].FloorPrice)

	buyers, err := s.ListBuyers(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, buyers, 2)
	assert.Equal(t, models.Tickets{1, 3}, buyers[0].Tickets)
	assert.True(t, buyers[0].CreatedAt.IsZero())
	assert.Equal(t, models.Tickets{}, buyers[1].Tickets)
}

func TestLoadFixtures_Errors(t *testing.T) {
	_, err := LoadFixtures(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read fixtures")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("raffles: {not: [a list"), 0644))
	_, err = LoadFixtures(bad)
	assert.ErrorContains(t, err, "parse fixtures")
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), config.Store{
		Driver:   config.DriverMemory,
		Fixtures: filepath.Join("testdata", "fixtures.yaml"),
	})
	require.NoError(t, err)
	defer s.Close()

	raffles, err := s.ListRaffles(context.Background())
	require.NoError(t, err)
	assert.Len(t, raffles, 3)

	empty, err := Open(context.Background(), config.Store{Driver: config.DriverMemory})
	require.NoError(t, err)
	raffles, err = empty.ListRaffles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, raffles)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Store{Driver: "redis"})
	assert.ErrorContains(t, err, `unknown store driver "redis"`)
}

func TestFetchError(t *testing.T) {
	err := fetchErr("raffles", context.DeadlineExceeded)
	assert.Equal(t, "fetch raffles: context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
