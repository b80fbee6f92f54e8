package profile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TIMEZONE", "CACHE_CAPACITY", "CACHE_TTL", "BATCH_LIMIT", "RATE_LIMIT", "RATE_BURST"} {
		t.Setenv(EnvPrefix+key, "")
	}
}

// TestProfileDefaults checks the values used when no variables are set.
func TestProfileDefaults(t *testing.T) {
	clearEnv(t)

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "Local", p.Timezone)
	assert.Equal(t, 1000, p.CacheCapacity)
	assert.Equal(t, 10*time.Minute, p.CacheTTL)
	assert.Equal(t, 4, p.BatchLimit)
	assert.Equal(t, 10.0, p.RateLimit)
	assert.Equal(t, 20, p.RateBurst)
}

func TestProfileFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		field func(*Profile) any
		want  any
	}{
		{"timezone", "TIMEZONE", "Europe/Paris", func(p *Profile) any { return p.Timezone }, "Europe/Paris"},
		{"cache capacity", "CACHE_CAPACITY", "0", func(p *Profile) any { return p.CacheCapacity }, 0},
		{"cache ttl", "CACHE_TTL", "90s", func(p *Profile) any { return p.CacheTTL }, 90 * time.Second},
		{"batch limit", "BATCH_LIMIT", "16", func(p *Profile) any { return p.BatchLimit }, 16},
		{"rate limit", "RATE_LIMIT", "2.5", func(p *Profile) any { return p.RateLimit }, 2.5},
		{"rate burst", "RATE_BURST", "5", func(p *Profile) any { return p.RateBurst }, 5},
		{"malformed falls back", "RATE_BURST", "lots", func(p *Profile) any { return p.RateBurst }, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvPrefix+tt.key, tt.value)

			p := &Profile{}
			p.FromEnv()
			assert.Equal(t, tt.want, tt.field(p))
		})
	}
}

func validProfile(t *testing.T) *Profile {
	t.Helper()
	clearEnv(t)
	p := &Profile{Mode: "dev", Data: t.TempDir()}
	p.FromEnv()
	return p
}

func TestValidate(t *testing.T) {
	t.Run("sqlite dsn derived from data dir", func(t *testing.T) {
		p := validProfile(t)
		require.NoError(t, p.Validate())
		assert.Equal(t, "sqlite", p.Driver)
		assert.Equal(t, filepath.Join(p.Data, "gotadate_dev.db"), p.DSN)
	})

	t.Run("unknown mode becomes demo", func(t *testing.T) {
		p := validProfile(t)
		p.Mode = "staging"
		require.NoError(t, p.Validate())
		assert.Equal(t, "demo", p.Mode)
		assert.True(t, p.IsDev())
	})

	t.Run("missing data dir", func(t *testing.T) {
		p := validProfile(t)
		p.Data = filepath.Join(p.Data, "does-not-exist")
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unable to access data folder")
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Profile)
			want   string
		}{
			{"driver", func(p *Profile) { p.Driver = "mysql" }, "unsupported driver"},
			{"postgres without dsn", func(p *Profile) { p.Driver = "postgres" }, "dsn is required"},
			{"timezone", func(p *Profile) { p.Timezone = "Nowhere/Special" }, "invalid timezone"},
			{"cache", func(p *Profile) { p.CacheCapacity = -1 }, "cache capacity"},
			{"rate", func(p *Profile) { p.RateLimit = 0 }, "rate limit"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := validProfile(t)
				tt.mutate(p)
				err := p.Validate()
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.want)
			})
		}
	})
}
