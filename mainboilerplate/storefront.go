package mainboilerplate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"go.storefront.dev/core/auth"
	"go.storefront.dev/core/catalog"
	"go.storefront.dev/core/store"
)

// Application environments.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// AppConfig configures the application environment.
type AppConfig struct {
	Env string `long:"env" env:"ENV" default:"development" choice:"development" choice:"test" choice:"production" description:"Application environment"`
}

func (cfg AppConfig) IsProduction() bool  { return cfg.Env == EnvProduction }
func (cfg AppConfig) IsDevelopment() bool { return cfg.Env == EnvDevelopment }
func (cfg AppConfig) IsTest() bool        { return cfg.Env == EnvTest }

// DatabaseConfig configures the storefront database.
type DatabaseConfig struct {
	URL string `long:"url" env:"URL" default:"sqlite://storefront.db" description:"Database URL (sqlite://path, file:path, postgres://...)"`
}

// Validate returns an error if the DatabaseConfig is not well-formed.
func (cfg DatabaseConfig) Validate() error {
	for _, prefix := range []string{"sqlite://", "file:", "postgres://", "postgresql://"} {
		if strings.HasPrefix(cfg.URL, prefix) {
			return nil
		}
	}
	return fmt.Errorf("database URL must start with sqlite://, file:, postgres://, or postgresql:// (got %q)", cfg.URL)
}

// MustOpen opens the configured Store, retrying a database which isn't yet
// reachable until |ctx| is done.
func (cfg DatabaseConfig) MustOpen(ctx context.Context) *store.Store {
	Must(cfg.Validate(), "invalid database configuration")

	for attempt := 1; ; attempt++ {
		var db, err = store.Open(ctx, cfg.URL)
		if err == nil {
			return db
		} else if ctx.Err() != nil || attempt == 5 {
			Must(err, "failed to open database")
		}
		log.WithFields(log.Fields{"err": err, "attempt": attempt}).Warn("failed to open database (will retry)")

		select {
		case <-ctx.Done():
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
}

// SessionConfig configures user sessions.
type SessionConfig struct {
	Secret    string `long:"secret" env:"SECRET" description:"Secret for signing session tokens (at least 32 characters)"`
	ExpiresIn string `long:"expires-in" env:"EXPIRES_IN" default:"14d" description:"Session lifetime, as <n><ms|s|m|h|d|w|y> or integer seconds"`
}

// BuildSessions returns auth.Sessions of the SessionConfig.
func (cfg SessionConfig) BuildSessions() (*auth.Sessions, error) {
	var ttl, err = auth.ParseExpiry(cfg.ExpiresIn)
	if err != nil {
		return nil, err
	}
	return auth.NewSessions(cfg.Secret, ttl)
}

// HTTPConfig configures the storefront HTTP API.
type HTTPConfig struct {
	CORSOrigin string `long:"cors-origin" env:"CORS_ORIGIN" default:"http://localhost:5173" description:"Comma-separated origins allowed to make credentialed requests"`
	MaxBody    string `long:"max-body" env:"MAX_BODY" default:"1MB" description:"Maximum size of a JSON request body (eg 100KiB, 1MB)"`
	WebDir     string `long:"web-dir" env:"WEB_DIR" description:"Directory of a built web bundle to serve. Not served if empty"`
	NoGzip     bool   `long:"no-gzip" env:"NO_GZIP" description:"Disable compression of responses"`
}

// Origins returns the CORS allow-list of the HTTPConfig.
func (cfg HTTPConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(cfg.CORSOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, strings.TrimSuffix(o, "/"))
		}
	}
	return out
}

// MaxBodyBytes parses MaxBody.
func (cfg HTTPConfig) MaxBodyBytes() (int64, error) {
	var n, err = humanize.ParseBytes(cfg.MaxBody)
	if err != nil {
		return 0, fmt.Errorf("parsing max body size: %w", err)
	} else if n == 0 {
		return 0, fmt.Errorf("max body size must be positive")
	}
	return int64(n), nil
}

// CacheConfig configures the item cache.
type CacheConfig struct {
	Size int           `long:"size" env:"SIZE" default:"1024" description:"Number of items cached in memory"`
	TTL  time.Duration `long:"ttl" env:"TTL" default:"1m" description:"Time-to-live of cached items"`
}

// BuildItemCache returns a catalog.ItemCache of the CacheConfig, or nil if
// caching is disabled.
func (cfg CacheConfig) BuildItemCache() *catalog.ItemCache {
	if cfg.Size <= 0 {
		return nil
	}
	return catalog.NewItemCache(cfg.Size, cfg.TTL)
}
