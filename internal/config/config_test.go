package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
server:
  http_port: 8080
database:
  host: localhost
  user: rental
  database: rental
auth:
  secret: 0123456789abcdef0123456789abcdef
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.GRPCPort)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "memory", cfg.Locker)
	assert.Equal(t, 14, cfg.Engine.ForwardProbeDays)
	assert.Equal(t, 7, cfg.Engine.BackwardProbeDays)
	assert.Equal(t, 3, cfg.Engine.MaxSuggestions)
	assert.Equal(t, 30*time.Minute, cfg.CartHoldTTL())
	assert.Equal(t, time.Minute, cfg.RateTableTTL())
	assert.Equal(t, 5*time.Second, cfg.LockTTL())
	assert.False(t, cfg.RateLimit.TrustProxy)
	assert.Equal(t, 10*time.Minute, cfg.RateLimitIdle())
	assert.True(t, cfg.TaxRate().IsZero())
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, "0 */5 * * * *", cfg.Scheduler.ExpireCartHolds)
	assert.Equal(t, "postgres://rental:@localhost:5432/rental?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("TAX_RATE", "0.0825")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOCKER", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)
	assert.Equal(t, "0.0825", cfg.TaxRate().String())
	assert.Equal(t, ":9090", cfg.GetHTTPAddress())
	assert.Equal(t, "redis", cfg.Locker)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		env   map[string]string
	}{
		{"Bad tax rate", "", map[string]string{"TAX_RATE": "abc"}},
		{"Tax rate too high", "", map[string]string{"TAX_RATE": "1.5"}},
		{"Unknown locker", "", map[string]string{"LOCKER": "zookeeper"}},
		{"Redis locker without addr", "", map[string]string{"LOCKER": "redis"}},
		{"Short secret", "", map[string]string{"AUTH_SECRET": "short"}},
		{"Bad timezone", "engine:\n  timezone: Mars/Olympus\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse([]byte(minimal + tt.extra))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSecurityLevels(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("health"))
	assert.Equal(t, SecurityRead, GetSecurityLevel("quote"))
	assert.Equal(t, SecurityWrite, GetSecurityLevel("place_hold"))
	assert.Equal(t, SecurityWrite, GetSecurityLevel("unknown"))
	assert.Equal(t, SecurityPublic, GetSecurityLevel("/grpc.health.v1.Health/Check"))
	assert.Equal(t, SecurityRead, GetSecurityLevel("/rental.engine.v1.Engine/Quote"))
	assert.Equal(t, SecurityWrite, GetSecurityLevel("/rental.engine.v1.Engine/PlaceHold"))

	assert.True(t, SecurityPublic.Allows(""))
	assert.True(t, SecurityRead.Allows(ScopeRead))
	assert.True(t, SecurityRead.Allows(ScopeWrite))
	assert.False(t, SecurityWrite.Allows(ScopeRead))
	assert.True(t, SecurityWrite.Allows(ScopeWrite))
}
