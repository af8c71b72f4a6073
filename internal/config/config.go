// Package config loads Clubhouse settings from an optional YAML file, a .env
// file and CLUBHOUSE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const envPrefix = "CLUBHOUSE"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Ledger   LedgerConfig
	Blob     BlobConfig
	RSVP     RSVPConfig
	Log      LogConfig
}

type ServerConfig struct {
	Addr            string
	PublicBaseURL   string // used to build RSVP links and blob URLs
	StaticDir       string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP. Enable
	// only behind a proxy that overwrites those headers.
	TrustProxy bool
}

type DatabaseConfig struct {
	Driver          string // sqlite or postgres
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type LedgerConfig struct {
	// BaseInitialBalance is the balance before the earliest posting.
	BaseInitialBalance decimal.Decimal
	// MonthlyFee is the default amount GenerateMonthlyFees bills.
	MonthlyFee decimal.Decimal
	// FeeAccountID is the revenue account fee payments are posted to.
	FeeAccountID string
}

type BlobConfig struct {
	Dir string
}

type RSVPConfig struct {
	RedirectDelay time.Duration
	RateLimit     float64 // requests per second per client IP
	Burst         int
}

type LogConfig struct {
	Level string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.public_base_url", "http://localhost:8080")
	v.SetDefault("server.static_dir", "../frontend/dist")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/clubhouse.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.query_timeout", 5*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("ledger.base_initial_balance", "0")
	v.SetDefault("ledger.monthly_fee", "0")
	v.SetDefault("ledger.fee_account_id", "")

	v.SetDefault("blob.dir", "data/files")

	v.SetDefault("rsvp.redirect_delay", 2*time.Second)
	v.SetDefault("rsvp.rate_limit", 1.0)
	v.SetDefault("rsvp.burst", 5)

	v.SetDefault("log.level", "info")
}

// Load reads configuration. path may be empty; a missing .env file is ignored.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for existing deployments
	_ = v.BindEnv("server.addr", envPrefix+"_SERVER_ADDR", "ADDR")
	_ = v.BindEnv("database.dsn", envPrefix+"_DATABASE_DSN", "DB_PATH", "DATABASE_URL")
	_ = v.BindEnv("server.static_dir", envPrefix+"_SERVER_STATIC_DIR", "STATIC_DIR")
	_ = v.BindEnv("auth.jwt_secret", envPrefix+"_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("log.level", envPrefix+"_LOG_LEVEL", "LOG_LEVEL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			PublicBaseURL:   strings.TrimRight(v.GetString("server.public_base_url"), "/"),
			StaticDir:       v.GetString("server.static_dir"),
			AllowedOrigins:  v.GetStringSlice("server.allowed_origins"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			TrustProxy:      v.GetBool("server.trust_proxy"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			DSN:             v.GetString("database.dsn"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			QueryTimeout:    v.GetDuration("database.query_timeout"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Ledger: LedgerConfig{
			FeeAccountID: v.GetString("ledger.fee_account_id"),
		},
		Blob: BlobConfig{
			Dir: v.GetString("blob.dir"),
		},
		RSVP: RSVPConfig{
			RedirectDelay: v.GetDuration("rsvp.redirect_delay"),
			RateLimit:     v.GetFloat64("rsvp.rate_limit"),
			Burst:         v.GetInt("rsvp.burst"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}

	var err error
	cfg.Ledger.BaseInitialBalance, err = decimal.NewFromString(v.GetString("ledger.base_initial_balance"))
	if err != nil {
		return nil, fmt.Errorf("invalid ledger.base_initial_balance: %w", err)
	}
	cfg.Ledger.MonthlyFee, err = decimal.NewFromString(v.GetString("ledger.monthly_fee"))
	if err != nil {
		return nil, fmt.Errorf("invalid ledger.monthly_fee: %w", err)
	}
	if cfg.Ledger.MonthlyFee.IsNegative() {
		return nil, errors.New("ledger.monthly_fee must not be negative")
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}

	return cfg, nil
}

// ValidateServe checks the settings only the server needs.
func (c *Config) ValidateServe() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.RSVP.RateLimit <= 0 || c.RSVP.Burst <= 0 {
		return errors.New("rsvp.rate_limit and rsvp.burst must be positive")
	}
	return nil
}

// BlobBaseURL is the public prefix uploaded files are served from.
func (c *Config) BlobBaseURL() string {
	return c.Server.PublicBaseURL + "/files"
}
