package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/n3phtys/rustixbl/internal/config"
)

func TestNewWithMissingFileFallsBackToDefaults(t *testing.T) {
	loader, err := config.New(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	cfg, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, 20, cfg.UsersPerPage)
	require.Equal(t, 10, cfg.UsersInTopUsers)
	require.Equal(t, 5, cfg.TopDrinksPerUser)
	require.True(t, cfg.UsePersistence)
	require.Equal(t, "./data", cfg.PersistenceFilePath)
}

func TestNewWithEmptyPathUsesDefaultsOnly(t *testing.T) {
	loader, err := config.New("")
	require.NoError(t, err)

	cfg, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, 20, cfg.UsersPerPage)
}

func TestNewReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledgerd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users_per_page: 42\nuse_persistence: false\n"), 0o600))

	loader, err := config.New(path)
	require.NoError(t, err)

	cfg, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, 42, cfg.UsersPerPage)
	require.False(t, cfg.UsePersistence)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledgerd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users_per_page: 42\n"), 0o600))

	t.Setenv("RUSTIXBL_USERS_PER_PAGE", "7")

	loader, err := config.New(path)
	require.NoError(t, err)

	cfg, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, 7, cfg.UsersPerPage)
}

func TestWatchInvokesOnReloadOnlyForHotReloadableKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledgerd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users_per_page: 20\n"), 0o600))

	loader, err := config.New(path)
	require.NoError(t, err)

	reloaded := make(chan *config.Config, 1)
	ignored := make(chan string, 1)
	loader.Watch(func(cfg *config.Config) {
		reloaded <- cfg
	}, func(key string) {
		ignored <- key
	})

	require.NoError(t, os.WriteFile(path, []byte("users_per_page: 30\n"), 0o600))

	select {
	case cfg := <-reloaded:
		require.Equal(t, 30, cfg.UsersPerPage)
	case key := <-ignored:
		t.Fatalf("expected reload, got ignored change to %q", key)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config file watch to fire")
	}
}
