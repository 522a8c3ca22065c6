package container

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/pantrymatch/server/internal/infrastructure/config"
	"github.com/pantrymatch/server/internal/ports/inbound"
	"github.com/pantrymatch/server/pkg/healthcheck"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T) fx.Option {
	port := freePort(t)
	return fx.Decorate(func(cfg *config.Config) *config.Config {
		c := *cfg
		c.Server.Host = "127.0.0.1"
		c.Server.Port = port
		c.Database.Driver = "sqlite"
		c.Database.Database = fmt.Sprintf("file:container_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
		c.Database.AutoMigrate = true
		c.Database.SeedSampleCatalog = true
		c.Redis.Enabled = false
		c.RateLimit.UseRedis = false
		c.Monitoring.EnableTracing = false
		return &c
	})
}

func TestModule_Validates(t *testing.T) {
	require.NoError(t, fx.ValidateApp(Module, fx.NopLogger))
}

func TestModule_StartsAndServes(t *testing.T) {
	var (
		cfg     *config.Config
		service inbound.SuggestionService
		health  *healthcheck.HealthCheck
	)

	app := fxtest.New(t,
		fx.NopLogger,
		Module,
		testConfig(t),
		fx.Populate(&cfg, &service, &health),
	)
	app.RequireStart()
	defer app.RequireStop()

	suggestions, err := service.SuggestRecipes(context.Background(), nil, inbound.SuggestOptions{})
	require.NoError(t, err)
	assert.Empty(t, suggestions)

	assert.NotEqual(t, healthcheck.StatusUnhealthy, health.Check(context.Background()).Status)

	resp, err := http.Get(fmt.Sprintf("http://%s/health/live", cfg.ServerAddr()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
