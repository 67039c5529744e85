package store

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"raffledash/internal/models"
)

//go:embed schema.sql
var schemaSQL string

func init() {
	sqlx.BindDriver("libsql", sqlx.QUESTION)
}

// SQLStore reads the raffles and rafflebuyers tables. It serves Turso
// (libsql), local SQLite files and PostgreSQL with the same queries.
type SQLStore struct {
	db *sqlx.DB
}

// OpenSQL connects with the given database/sql driver name. Local SQLite
// files get the schema created so a fresh file is usable.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", driver, err)
	}

	s := &SQLStore{db: db}
	if driver == "sqlite3" {
		// SQLite only supports one writer at a time
		db.SetMaxOpenConns(1)
		if err := s.CreateSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewSQLStore wraps an open connection
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// CreateSchema creates both tables if they do not exist
func (s *SQLStore) CreateSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

type raffleRow struct {
	ID         text      `db:"id"`
	Name       text      `db:"name"`
	Creator    text      `db:"creator"`
	StartTime  timestamp `db:"start_time"`
	FloorPrice text      `db:"floor_price"`
	IsDeleted  flag      `db:"is_deleted"`
}

type buyerRow struct {
	ID        text           `db:"id"`
	RaffleID  text           `db:"raffle_id"`
	Buyer     text           `db:"buyer"`
	Tickets   models.Tickets `db:"tickets"`
	CreatedAt timestamp      `db:"created_at"`
	UpdatedAt timestamp      `db:"updated_at"`
}

func (s *SQLStore) ListRaffles(ctx context.Context) ([]models.Raffle, error) {
	var rows []raffleRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, name, creator, start_time, floor_price, is_deleted FROM raffles`)
	if err != nil {
		return nil, fetchErr("raffles", err)
	}

	raffles := make([]models.Raffle, 0, len(rows))
	for _, r := range rows {
		raffles = append(raffles, models.Raffle{
			ID:         string(r.ID),
			Name:       string(r.Name),
			Creator:    string(r.Creator),
			StartTime:  r.StartTime.Time,
			FloorPrice: string(r.FloorPrice),
			IsDeleted:  bool(r.IsDeleted),
		})
	}
	return raffles, nil
}

func (s *SQLStore) ListBuyers(ctx context.Context, raffleID string) ([]models.Buyer, error) {
	var rows []buyerRow
	query := s.db.Rebind(`SELECT id, raffle_id, buyer, tickets, created_at, updated_at
FROM rafflebuyers
WHERE raffle_id = ?`)
	if err := s.db.SelectContext(ctx, &rows, query, raffleID); err != nil {
		return nil, fetchErr("rafflebuyers", err)
	}

	buyers := make([]models.Buyer, 0, len(rows))
	for _, r := range rows {
		buyers = append(buyers, models.Buyer{
			ID:        string(r.ID),
			RaffleID:  string(r.RaffleID),
			Buyer:     string(r.Buyer),
			Tickets:   r.Tickets,
			CreatedAt: r.CreatedAt.Time,
			UpdatedAt: r.UpdatedAt.Time,
		})
	}
	return buyers, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// timestamp scans a TIMESTAMP column whatever the driver returns for it.
// Values it cannot read scan as the zero time.
type timestamp struct {
	time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
	case int64:
		t.Time = time.Unix(v, 0).UTC()
	case []byte:
		t.Time = parseTime(string(v))
	case string:
		t.Time = parseTime(v)
	default:
		t.Time = time.Time{}
	}
	return nil
}

// text scans a TEXT column, reading NULL as empty and numbers as their
// decimal form
type text string

func (t *text) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*t = text(v)
	case []byte:
		*t = text(v)
	case int64:
		*t = text(strconv.FormatInt(v, 10))
	case float64:
		*t = text(formatFloat(v))
	case bool:
		*t = text(strconv.FormatBool(v))
	case time.Time:
		*t = text(v.UTC().Format(time.RFC3339Nano))
	default:
		*t = ""
	}
	return nil
}

// flag scans a BOOLEAN column that may hold a number or text
type flag bool

func (f *flag) Scan(src any) error {
	switch v := src.(type) {
	case bool:
		*f = flag(v)
	case int64:
		*f = v != 0
	case float64:
		*f = v != 0
	case []byte:
		*f = flag(parseFlag(string(v)))
	case string:
		*f = flag(parseFlag(v))
	default:
		*f = false
	}
	return nil
}
