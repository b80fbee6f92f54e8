package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/gotadate/server/timezone"
)

// EnvPrefix is the prefix of every environment variable read by the profile.
const EnvPrefix = "GOTADATE_"

// Profile is the configuration shared by the CLI and the server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where extraction runs are stored
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Extraction configuration
	Timezone      string        // GOTADATE_TIMEZONE (default: Local)
	CacheCapacity int           // GOTADATE_CACHE_CAPACITY (default: 1000, 0 disables)
	CacheTTL      time.Duration // GOTADATE_CACHE_TTL (default: 10m)
	BatchLimit    int           // GOTADATE_BATCH_LIMIT (default: 4)

	// API rate limiting, per client IP
	RateLimit float64 // GOTADATE_RATE_LIMIT (default: 10 req/s)
	RateBurst int     // GOTADATE_RATE_BURST (default: 20)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnvOrDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getFloatEnvOrDefault(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnvOrDefault(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnvOrDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// FromEnv loads the extraction settings from GOTADATE_* environment variables.
// Unset or malformed values fall back to the defaults.
func (p *Profile) FromEnv() {
	p.Timezone = getEnvOrDefault("TIMEZONE", "Local")
	p.CacheCapacity = getIntEnvOrDefault("CACHE_CAPACITY", 1000)
	p.CacheTTL = getDurationEnvOrDefault("CACHE_TTL", 10*time.Minute)
	p.BatchLimit = getIntEnvOrDefault("BATCH_LIMIT", 4)
	p.RateLimit = getFloatEnvOrDefault("RATE_LIMIT", 10)
	p.RateBurst = getIntEnvOrDefault("RATE_BURST", 20)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q", p.Driver)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres")
	}

	if p.Timezone != "" {
		if _, err := timezone.ParseTimezone(p.Timezone); err != nil {
			return errors.Wrapf(err, "invalid timezone %s", p.Timezone)
		}
	}
	if p.CacheCapacity < 0 {
		return errors.Errorf("cache capacity must not be negative, got %d", p.CacheCapacity)
	}
	if p.RateLimit <= 0 || p.RateBurst <= 0 {
		return errors.Errorf("rate limit and burst must be positive, got %v/%d", p.RateLimit, p.RateBurst)
	}
	if p.BatchLimit <= 0 {
		p.BatchLimit = 1
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "gotadate")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/gotadate"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("gotadate_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
