package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	StoreCouchDB = "couchdb"
	StoreMongo   = "mongo"

	devSecretKey = "development_secret_key"
)

// Config is built once in main and handed to every component that needs it.
type Config struct {
	Port          string   `env:"PORT,            default=8000"`
	Env           string   `env:"ENV,             default=development"`
	LogLevel      string   `env:"LOG_LEVEL,       default=info"`
	SecretKey     string   `env:"SECRET_KEY,      default=development_secret_key"`
	FrontendURL   string   `env:"FRONTEND_URL,    default=http://localhost:5173"`
	PublicBaseURL string   `env:"PUBLIC_BASE_URL, default=http://localhost:8000"`
	CORSOrigins   []string `env:"BACKEND_CORS_ORIGINS, default=http://localhost:5173,http://localhost:3000"`
	RateLimit     float64  `env:"RATE_LIMIT,      default=20"`

	Google OAuthClientConfig `env:", prefix=GOOGLE_"`
	GitHub OAuthClientConfig `env:", prefix=GITHUB_"`

	Store    StoreConfig
	Redis    RedisConfig
	Timeouts TimeoutConfig
	Fetch    FetchConfig
}

type OAuthClientConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
}

// Enabled reports whether both halves of the client credentials are present.
func (c OAuthClientConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type StoreConfig struct {
	Driver         string `env:"STORE_DRIVER,          default=couchdb"`
	ServiceAccount string `env:"STORE_SERVICE_ACCOUNT"`

	CouchDB CouchDBConfig
	Mongo   MongoConfig
}

// Admin returns the account granted admin rights on every per-user resource.
func (c StoreConfig) Admin() string {
	if c.ServiceAccount != "" {
		return c.ServiceAccount
	}
	if c.Driver == StoreCouchDB {
		return c.CouchDB.User
	}
	return "kernel-api"
}

type CouchDBConfig struct {
	URL      string `env:"COUCHDB_URL,  default=http://localhost:5984"`
	User     string `env:"COUCHDB_USER, default=admin"`
	Password string `env:"COUCHDB_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=kernel"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type TimeoutConfig struct {
	Provider time.Duration `env:"PROVIDER_TIMEOUT, default=10s"`
	Store    time.Duration `env:"STORE_TIMEOUT,    default=5s"`
	Fetch    time.Duration `env:"FETCH_TIMEOUT,    default=10s"`
}

type FetchConfig struct {
	MaxBytes int64 `env:"FETCH_MAX_BYTES, default=5242880"`
}

// IsDevelopment reports whether the process runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Env != EnvProduction
}

// Validate rejects combinations that would boot a broken or unsafe service.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.Env == EnvProduction && c.SecretKey == devSecretKey {
		errs = append(errs, errors.New("SECRET_KEY must be changed in production"))
	}
	if c.Store.Driver != StoreCouchDB && c.Store.Driver != StoreMongo {
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreCouchDB, StoreMongo, c.Store.Driver))
	}
	if c.FrontendURL == "" {
		errs = append(errs, errors.New("FRONTEND_URL is required"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom is Load with an explicit lookuper, used by tests.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load that panics, for main.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}
