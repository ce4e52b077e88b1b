package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_CreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	m, err := config.NewManager(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "expected default config file to be written")

	cfg := m.Get()
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 30*24*time.Hour, cfg.Dashboard.Window())
	assert.Equal(t, 6, cfg.Dashboard.DefaultSalesMonths)
	assert.Equal(t, 10, cfg.Dashboard.DefaultRecentOrders)
}

func TestNewManager_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dashboard:\n  window_days: 7\n"), 0o644))

	m, err := config.NewManager(path)
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, 7, cfg.Dashboard.WindowDays)
	assert.Equal(t, 24, cfg.Dashboard.MaxSalesMonths)
	assert.Equal(t, 168, cfg.Auth.TokenTTLHours)
}

func TestNewManager_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  bcrypt_cost: 99\n"), 0o644))

	_, err := config.NewManager(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bcrypt_cost")
}

func TestManager_GetReturnsCopy(t *testing.T) {
	m, err := config.NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	cfg := m.Get()
	cfg.Dashboard.WindowDays = 1
	assert.Equal(t, 30, m.Get().Dashboard.WindowDays)
}
