package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "HTTP_ADDR", "ADMIN_EMAILS", "CATALOG_PATH_MAX_DEPTH", "DB_MAX_CONNS", "LOG_ENCODING"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Equal(t, 4, cfg.CatalogPathMaxDepth)
	assert.Empty(t, cfg.AdminEmails)
	assert.Empty(t, cfg.LogEncoding)
	assert.True(t, cfg.IsDev())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("CATALOG_PATH_MAX_DEPTH", "6")
	t.Setenv("ADMIN_EMAILS", " Owner@Shop.test, ,ops@shop.test ")

	cfg := Load()
	assert.False(t, cfg.IsDev())
	assert.Equal(t, 6, cfg.CatalogPathMaxDepth)
	assert.Equal(t, []string{"owner@shop.test", "ops@shop.test"}, cfg.AdminEmails)
}

func TestGetIntIgnoresGarbage(t *testing.T) {
	t.Setenv("DB_MIN_CONNS", "two")
	assert.Equal(t, 2, Load().DBMinConns)
}
