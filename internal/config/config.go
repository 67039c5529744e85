package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverMongo    = "mongo"
	DriverLibSQL   = "libsql"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Defaults
const (
	DefaultPort         = "8080"
	DefaultViewTTL      = 30 * time.Minute
	DefaultDebounce     = 300 * time.Millisecond
	DefaultFetchTimeout = 15 * time.Second
)

type Config struct {
	Port     string
	Store    Store
	Telegram Telegram
	ViewTTL  time.Duration
	Debounce time.Duration
}

// Store selects and locates the backend holding the raffles and rafflebuyers collections
type Store struct {
	Driver       string
	MongoURI     string
	Database     string
	DSN          string
	Fixtures     string
	FetchTimeout time.Duration
}

type Telegram struct {
	Token string
}

// Load reads an optional .env file and then the environment. An explicit
// envFile must exist; the default ".env" may be missing.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load() // Load .env file if exists
	}

	return FromEnv()
}

// FromEnv builds a Config from environment variables only
func FromEnv() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", DefaultPort),
		Store: Store{
			Driver:   strings.ToLower(getenv("STORE_DRIVER", DriverMongo)),
			Database: os.Getenv("DATABASE_NAME"),
			DSN:      os.Getenv("DATABASE_URL"),
			Fixtures: os.Getenv("FIXTURES"),
		},
		Telegram: Telegram{Token: os.Getenv("TELEGRAM_TOKEN")},
	}

	var err error
	if cfg.ViewTTL, err = durationEnv("VIEW_TTL", DefaultViewTTL); err != nil {
		return Config{}, err
	}
	if cfg.Debounce, err = durationEnv("DEBOUNCE", DefaultDebounce); err != nil {
		return Config{}, err
	}
	if cfg.Store.FetchTimeout, err = durationEnv("FETCH_TIMEOUT", DefaultFetchTimeout); err != nil {
		return Config{}, err
	}

	switch cfg.Store.Driver {
	case DriverMongo:
		cfg.Store.MongoURI = os.Getenv("MONGODB_URI")
		if cfg.Store.MongoURI == "" {
			cluster := os.Getenv("CLUSTER_NAME")
			if cluster == "" || cfg.Store.Database == "" {
				return Config{}, errors.New("mongo store needs MONGODB_URI or CLUSTER_NAME and DATABASE_NAME")
			}
			cfg.Store.MongoURI = MongoURI(
				firstEnv("MONGO_USERNAME", "USERNAME"),
				firstEnv("MONGO_PASSWORD", "PASSWORD"),
				cluster,
				cfg.Store.Database,
			)
		}
		if cfg.Store.Database == "" {
			return Config{}, errors.New("mongo store needs DATABASE_NAME")
		}
	case DriverLibSQL:
		if cfg.Store.DSN == "" {
			return Config{}, errors.New("libsql store needs DATABASE_URL")
		}
		if token := os.Getenv("TURSO_AUTH_TOKEN"); token != "" {
			cfg.Store.DSN = withQueryParam(cfg.Store.DSN, "authToken", token)
		}
	case DriverSQLite, DriverPostgres:
		if cfg.Store.DSN == "" {
			return Config{}, fmt.Errorf("%s store needs DATABASE_URL", cfg.Store.Driver)
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}

	return cfg, nil
}

// MongoURI builds the Atlas SRV connection string used by the dashboard
func MongoURI(username, password, cluster, database string) string {
	u := url.URL{
		Scheme:   "mongodb+srv",
		Host:     cluster,
		Path:     "/" + database,
		RawQuery: "retryWrites=true&w=majority",
	}
	if username != "" {
		u.User = url.UserPassword(username, password)
	}
	return u.String()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func withQueryParam(dsn, key, value string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + url.QueryEscape(value)
}
