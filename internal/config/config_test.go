package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestNewConfig_LoadsYAML(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9090"
  session_secret: "test-secret"
  cors_origins:
    - "http://localhost:3000"
database:
  url: "postgres://localhost/gearreport_test?sslmode=disable"
storage:
  bucket: "gearreport-photos"
  region: "eu-north-1"
gallery:
  jitter_radius_deg: 0.2
`)
	t.Setenv("GEARREPORT_CONFIG_FILE", path)

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "test-secret", cfg.Server.SessionSecret)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "gearreport-photos", cfg.Storage.Bucket)
	assert.InDelta(t, 0.2, cfg.Gallery.JitterRadiusDeg, 1e-9)
}

func TestNewConfig_EnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9090"
database:
  url: "postgres://localhost/filedb"
`)
	t.Setenv("GEARREPORT_CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://localhost/envdb")
	t.Setenv("STORAGE_BUCKET", "env-bucket")
	t.Setenv("SERVER_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/envdb", cfg.Database.URL)
	assert.Equal(t, "env-bucket", cfg.Storage.Bucket)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestNewConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: "postgres://localhost/gearreport"
`)
	t.Setenv("GEARREPORT_CONFIG_FILE", path)

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.InDelta(t, DefaultJitterRadiusDeg, cfg.Gallery.JitterRadiusDeg, 1e-9)
}

func TestNewConfig_MissingFile(t *testing.T) {
	t.Setenv("GEARREPORT_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := NewConfig()
	assert.Error(t, err)
}
