package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffledash/internal/config"
	"raffledash/internal/models"
)

// openTestSQL opens a throwaway SQLite file with the schema applied
func openTestSQL(t *testing.T) *SQLStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raffles.db")
	s, err := OpenSQL(context.Background(), "sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func insertRaffle(t *testing.T, db *sqlx.DB, r models.Raffle) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO raffles (id, name, creator, start_time, floor_price, is_deleted) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Creator, r.StartTime, r.FloorPrice, r.IsDeleted)
	require.NoError(t, err)
}

func insertBuyer(t *testing.T, db *sqlx.DB, b models.Buyer) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO rafflebuyers (id, raffle_id, buyer, tickets, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.RaffleID, b.Buyer, b.Tickets, b.CreatedAt, b.UpdatedAt)
	require.NoError(t, err)
}

func TestSQLStore_ListRaffles(t *testing.T) {
	s := openTestSQL(t)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	insertRaffle(t, s.db, models.Raffle{ID: "r1", Name: "A", Creator: "Alice", StartTime: start, FloorPrice: "1.5"})
	insertRaffle(t, s.db, models.Raffle{ID: "r2", Name: "B", Creator: "Bob", StartTime: start.AddDate(0, 1, 0), FloorPrice: "0.5", IsDeleted: true})

	raffles, err := s.ListRaffles(context.Background())
	require.NoError(t, err)
	require.Len(t, raffles, 2)

	byID := map[string]models.Raffle{}
	for _, r := range raffles {
		byID[r.ID] = r
	}
	assert.Equal(t, "Alice", byID["r1"].Creator)
	assert.Equal(t, "1.5", byID["r1"].FloorPrice)
	assert.True(t, byID["r1"].StartTime.Equal(start), "got %s", byID["r1"].StartTime)
	assert.False(t, byID["r1"].IsDeleted)
	assert.True(t, byID["r2"].IsDeleted)
}

func TestSQLStore_ListBuyersIsScoped(t *testing.T) {
	s := openTestSQL(t)
	created := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	insertBuyer(t, s.db, models.Buyer{ID: "b1", RaffleID: "r1", Buyer: "w1", Tickets: models.Tickets{1, 2}, CreatedAt: created, UpdatedAt: created})
	insertBuyer(t, s.db, models.Buyer{ID: "b2", RaffleID: "r2", Buyer: "w2", Tickets: models.Tickets{3}, CreatedAt: created, UpdatedAt: created})
	insertBuyer(t, s.db, models.Buyer{ID: "b3", RaffleID: "r1", Buyer: "w3", Tickets: models.Tickets{}, CreatedAt: created, UpdatedAt: created})

	buyers, err := s.ListBuyers(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, buyers, 2)

	for _, b := range buyers {
		assert.Equal(t, "r1", b.RaffleID)
		assert.True(t, b.CreatedAt.Equal(created))
	}

	tickets := map[string]models.Tickets{}
	for _, b := range buyers {
		tickets[b.ID] = b.Tickets
	}
	assert.Equal(t, models.Tickets{1, 2}, tickets["b1"])
	assert.Equal(t, models.Tickets{}, tickets["b3"])

	none, err := s.ListBuyers(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSQLStore_TextTimestamps(t *testing.T) {
	s := openTestSQL(t)
	// rows written by other tools keep timestamps as plain text
	_, err := s.db.Exec(`INSERT INTO raffles (id, name, creator, start_time, floor_price) VALUES ('r1', 'A', 'c', '2024-03-05T10:00:00Z', '1')`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO raffles (id, name, creator, floor_price) VALUES ('r2', 'B', 'c', '1')`)
	require.NoError(t, err)

	raffles, err := s.ListRaffles(context.Background())
	require.NoError(t, err)
	require.Len(t, raffles, 2)

	byID := map[string]models.Raffle{}
	for _, r := range raffles {
		byID[r.ID] = r
	}
	assert.True(t, byID["r1"].StartTime.Equal(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)))
	assert.True(t, byID["r2"].StartTime.IsZero())
}

// openLooseSQL opens a SQLite file whose tables were created by another tool
// without the NOT NULL constraints and with free-form column types
func openLooseSQL(t *testing.T) *SQLStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loose.db")

	db, err := sqlx.Connect("sqlite3", path)
	require.NoError(t, err)
	db.MustExec(`CREATE TABLE raffles (id TEXT, name TEXT, creator TEXT, start_time TEXT, floor_price NUMERIC, is_deleted TEXT)`)
	db.MustExec(`CREATE TABLE rafflebuyers (id TEXT, raffle_id TEXT, buyer TEXT, tickets TEXT, created_at TEXT, updated_at TEXT)`)
	require.NoError(t, db.Close())

	s, err := OpenSQL(context.Background(), "sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStore_MalformedRaffleRows(t *testing.T) {
	s := openLooseSQL(t)
	s.db.MustExec(`INSERT INTO raffles VALUES ('good', 'A', 'c', '2024-03-05T10:00:00Z', '1.5', 'false')`)
	s.db.MustExec(`INSERT INTO raffles VALUES ('bad-time', 'B', 'c', 'not a time', '2', '0')`)
	s.db.MustExec(`INSERT INTO raffles VALUES ('nulls', NULL, NULL, NULL, NULL, NULL)`)
	s.db.MustExec(`INSERT INTO raffles VALUES ('real-price', 'D', 'c', '2024-03-06', 1.25, 'yes')`)

	raffles, err := s.ListRaffles(context.Background())
	require.NoError(t, err)
	require.Len(t, raffles, 4)

	byID := map[string]models.Raffle{}
	for _, r := range raffles {
		byID[r.ID] = r
	}

	assert.True(t, byID["good"].StartTime.Equal(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1.5", byID["good"].FloorPrice)

	assert.True(t, byID["bad-time"].StartTime.IsZero())
	assert.Equal(t, "2", byID["bad-time"].FloorPrice, "numeric floor price read as text")

	assert.Empty(t, byID["nulls"].Name)
	assert.Empty(t, byID["nulls"].Creator)
	assert.Empty(t, byID["nulls"].FloorPrice)
	assert.True(t, byID["nulls"].StartTime.IsZero())
	assert.False(t, byID["nulls"].IsDeleted)

	assert.Equal(t, "1.25", byID["real-price"].FloorPrice)
	assert.True(t, byID["real-price"].StartTime.Equal(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))
	assert.False(t, byID["real-price"].IsDeleted)
}

func TestSQLStore_MalformedBuyerRows(t *testing.T) {
	s := openLooseSQL(t)
	s.db.MustExec(`INSERT INTO rafflebuyers VALUES ('b1', 'r1', 'w1', '[1,2]', '2024-02-01T08:00:00Z', '2024-02-01T08:00:00Z')`)
	s.db.MustExec(`INSERT INTO rafflebuyers VALUES ('b2', 'r1', NULL, 'oops', 'soon', NULL)`)

	buyers, err := s.ListBuyers(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, buyers, 2)

	byID := map[string]models.Buyer{}
	for _, b := range buyers {
		byID[b.ID] = b
	}

	assert.Equal(t, models.Tickets{1, 2}, byID["b1"].Tickets)
	assert.True(t, byID["b1"].CreatedAt.Equal(time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)))

	assert.Empty(t, byID["b2"].Buyer)
	assert.Equal(t, models.Tickets{}, byID["b2"].Tickets)
	assert.True(t, byID["b2"].CreatedAt.IsZero())
	assert.True(t, byID["b2"].UpdatedAt.IsZero())
}

func TestSQLStore_SchemaIsIdempotent(t *testing.T) {
	s := openTestSQL(t)
	require.NoError(t, s.CreateSchema(context.Background()))
	require.NoError(t, s.CreateSchema(context.Background()))
}

func TestSQLStore_ClosedDatabase(t *testing.T) {
	s := openTestSQL(t)
	require.NoError(t, s.Close())

	_, err := s.ListRaffles(context.Background())
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "raffles", fe.Op)

	_, err = s.ListBuyers(context.Background(), "r1")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "rafflebuyers", fe.Op)
}

func TestOpen_SQLite(t *testing.T) {
	s, err := Open(context.Background(), config.Store{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	defer s.Close()

	raffles, err := s.ListRaffles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, raffles)
}

func TestTimestampScan(t *testing.T) {
	want := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	tests := []struct {
		name string
		src  any
		want time.Time
	}{
		{"nil", nil, time.Time{}},
		{"time", want, want},
		{"unix", want.Unix(), want},
		{"rfc3339", "2024-05-06T07:08:09Z", want},
		{"sqlite text", []byte("2024-05-06 07:08:09+00:00"), want},
		{"no zone", "2024-05-06 07:08:09", want},
		{"empty", "", time.Time{}},
		{"garbage text", "not a time", time.Time{}},
		{"unsupported type", 3.14, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts timestamp
			require.NoError(t, ts.Scan(tt.src))
			assert.True(t, tt.want.Equal(ts.Time), "want %s got %s", tt.want, ts.Time)
		})
	}
}

func TestTextAndFlagScan(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	texts := []struct {
		src  any
		want string
	}{
		{"1.5", "1.5"},
		{[]byte("abc"), "abc"},
		{nil, ""},
		{int64(42), "42"},
		{1.25, "1.25"},
		{true, "true"},
		{at, "2024-05-06T07:08:09Z"},
	}
	for _, tt := range texts {
		var got text
		require.NoError(t, got.Scan(tt.src))
		assert.Equal(t, tt.want, string(got), "scan %#v", tt.src)
	}

	flags := []struct {
		src  any
		want bool
	}{
		{true, true},
		{int64(1), true},
		{int64(0), false},
		{"true", true},
		{[]byte("1"), true},
		{"yes", false},
		{nil, false},
	}
	for _, tt := range flags {
		var got flag
		require.NoError(t, got.Scan(tt.src))
		assert.Equal(t, tt.want, bool(got), "scan %#v", tt.src)
	}
}
