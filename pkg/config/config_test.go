package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pedidos-sync/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "pedidos-sync", cfg.App.Name)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, "processing", cfg.WC.StatusFilter)
	assert.Equal(t, 1, cfg.Sync.Workers)
	assert.False(t, cfg.Sync.AllowOversell, "el oversell viene cerrado por defecto")
	assert.Equal(t, 5, cfg.Sync.RetryMaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval())
	assert.Equal(t, time.Minute, cfg.Sync.SweepInterval())
	assert.Empty(t, cfg.AI.OllamaURL, "sin OLLAMA_URL el enriquecimiento queda deshabilitado")
}

func TestLoad_LasVariablesDeEntornoTienenPrioridad(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("SYNC_WORKERS", "4")
	t.Setenv("SYNC_ALLOW_OVERSELL", "true")
	t.Setenv("WC_URL", "https://tienda.example.com")
	t.Setenv("SYNC_RETRY_BASE_SECONDS", "30")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.Equal(t, 4, cfg.Sync.Workers)
	assert.True(t, cfg.Sync.AllowOversell)
	assert.Equal(t, "https://tienda.example.com", cfg.WC.URL)
	assert.Equal(t, 30, cfg.Sync.RetryBaseSeconds)
}

func TestDBConfig_DSNEscapaLaContrasena(t *testing.T) {
	db := config.DBConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "app",
		Password: "p@ss:w/rd",
		DBName:   "pedidos_sync",
		SSLMode:  "disable",
	}
	dsn := db.DSN()
	assert.Contains(t, dsn, "p%40ss%3Aw%2Frd", "los caracteres especiales deben ir URL-encoded")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestDBConfig_DatabaseURLTienePrioridad(t *testing.T) {
	db := config.DBConfig{
		DatabaseURL: "postgres://completo@remoto/db",
		Host:        "ignorado",
	}
	assert.Equal(t, "postgres://completo@remoto/db", db.ConnectionString())
}

func TestHTTPConfig_Addr(t *testing.T) {
	h := config.HTTPConfig{Host: "0.0.0.0", Port: 8080}
	assert.Equal(t, "0.0.0.0:8080", h.Addr())
}
