package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lynx-api/internal/resolver"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("LYNX_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "Lynx API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "Asia/Jakarta", cfg.Timezone)
	require.Equal(t, resolver.DuplicateFirst, cfg.DuplicatePolicy)
	require.Equal(t, 3, cfg.BoardLimitOnGoing)
	require.Equal(t, 3, cfg.BoardLimitSubmitted)
	require.Equal(t, 2, cfg.BoardLimitGraded)
	require.Equal(t, 10, cfg.SubmissionMaxMB)
	require.Equal(t, 5, cfg.ChatFileMaxMB)
	require.Equal(t, 5*time.Minute, cfg.DashboardCacheTTL)
	require.Equal(t, "lynx", cfg.AIProvider)
	require.Equal(t, "https://lynx-ai.up.railway.app", cfg.LynxAPIURL)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("LYNX_JWT_SECRET", "secret")
	t.Setenv("LYNX_APP_PORT", ":9090")
	t.Setenv("LYNX_DUPLICATE_POLICY", "LATEST")
	t.Setenv("LYNX_DASHBOARD_CACHE_TTL", "90s")
	t.Setenv("LYNX_AI_PROVIDER", "openai")
	t.Setenv("LYNX_LYNX_API_URL", "http://localhost:8000/")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, resolver.DuplicateLatest, cfg.DuplicatePolicy)
	require.Equal(t, 90*time.Second, cfg.DashboardCacheTTL)
	require.Equal(t, "openai", cfg.AIProvider)
	require.Equal(t, "http://localhost:8000", cfg.LynxAPIURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("LYNX_JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("LYNX_JWT_SECRET", "secret")
	t.Setenv("LYNX_DUPLICATE_POLICY", "random")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("LYNX_DUPLICATE_POLICY", "first")
	t.Setenv("LYNX_DASHBOARD_CACHE_TTL", "soon")
	_, err = Load()
	require.Error(t, err)
}
