package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "PantryMatch", cfg.App.Name)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 200, cfg.Matching.CandidateLimit)
	assert.Equal(t, 5, cfg.Matching.DefaultMaxResults)
	assert.Equal(t, 10, cfg.Matching.APIDefaultMaxResults)
	assert.Equal(t, 50, cfg.Matching.MaxResultsLimit)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
app:
  log_level: debug
database:
  driver: postgres
  database: pantry
  read_replicas: ["replica-1", "replica-2"]
matching:
  candidate_limit: 50
`)
	t.Setenv("PANTRYMATCH_SERVER_PORT", "9090")
	t.Setenv("PANTRYMATCH_MATCHING_API_DEFAULT_MAX_RESULTS", "20")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []string{"replica-1", "replica-2"}, cfg.Database.ReadReplicas)
	assert.Equal(t, 50, cfg.Matching.CandidateLimit)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Matching.APIDefaultMaxResults)
	assert.Equal(t, "host=localhost port=5432 user= password= dbname=pantry sslmode=disable", cfg.GetDSN())
	assert.Contains(t, cfg.DSNForHost("replica-1"), "host=replica-1 ")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"missing database", func(c *Config) { c.Database.Database = "" }, "database.database"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"zero candidate limit", func(c *Config) { c.Matching.CandidateLimit = 0 }, "candidate_limit"},
		{"api default above limit", func(c *Config) { c.Matching.APIDefaultMaxResults = 51 }, "api_default_max_results"},
		{"redis limiter without redis", func(c *Config) { c.RateLimit.UseRedis = true }, "rate_limit.use_redis"},
		{"sampling rate", func(c *Config) { c.Monitoring.SamplingRate = 2 }, "sampling_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWatch_AppliesValidChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "app:\n  log_level: info\n")

	var level atomic.Value
	level.Store("info")
	watching, err := Watch(path, func(c *Config) { level.Store(c.App.LogLevel) }, nil)
	require.NoError(t, err)
	require.True(t, watching)

	writeConfig(t, dir, "app:\n  log_level: debug\n")

	assert.Eventually(t, func() bool { return level.Load() == "debug" }, 5*time.Second, 50*time.Millisecond)
}

func TestWatch_NoFile(t *testing.T) {
	chdir(t, t.TempDir())

	watching, err := Watch("", func(*Config) {}, nil)

	require.NoError(t, err)
	assert.False(t, watching)
}
