package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Fepozopo/lunaratelier/pkg/adjust"
)

// chdirTemp runs the test from an empty directory so no stray .env is read.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "JWT_SECRET", "FRONTEND_URL", "DATABASE_PATH", "MAX_BODY_BYTES", "FETCH_TIMEOUT", "MAX_IMAGE_PIXELS", "TOKEN_TTL", "LOG_LEVEL", "PREVIEW_DEBUG"} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, ":5001", cfg.Addr())
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.FrontendURLs)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, int64(50_000_000), cfg.Images.MaxPixels)
	assert.False(t, cfg.Images.AllowPrivateNetworks)
	assert.True(t, cfg.UsingDefaultSecret())
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)

	path := filepath.Join(dir, "lunar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
  frontend_urls: ["https://lunar.example"]
auth:
  jwt_secret: s3cret
  token_ttl: 24h
images:
  fetch_timeout: 3s
logging:
  level: debug
presets:
  - name: harvest-moon
    label: Harvest
    settings:
      brightness: 130
      contrast: 120
      saturate: 140
      blur: 0
      hue: 0
      temperature: 90
  - name: cool-night
    settings:
      temperature: -30
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 3*time.Second, cfg.Images.FetchTimeout)
	assert.Equal(t, "lunar.db", cfg.Database.Path, "unset keys keep defaults")

	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	p, ok := cat.Lookup("harvest-moon")
	require.True(t, ok)
	assert.Equal(t, 50.0, p.Settings.Temperature, "out of range values are clamped")
	p, ok = cat.Lookup("cool-night")
	require.True(t, ok)
	want := adjust.Neutral()
	want.Temperature = -30
	assert.Equal(t, want, p.Settings, "keys left out stay neutral")
	assert.Len(t, cat.All(), 6)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	cfg, err := Load(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5001, cfg.Server.Port)
}

func TestLoadBadYAML(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("FRONTEND_URL", "https://a.example, https://b.example")
	t.Setenv("DATABASE_PATH", "/tmp/x.db")
	t.Setenv("MAX_BODY_BYTES", "1024")
	t.Setenv("FETCH_TIMEOUT", "2s")
	t.Setenv("MAX_IMAGE_PIXELS", "1000000")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("PREVIEW_DEBUG", "1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.False(t, cfg.UsingDefaultSecret())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.FrontendURLs)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, int64(1024), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 2*time.Second, cfg.Images.FetchTimeout)
	assert.Equal(t, int64(1_000_000), cfg.Images.MaxPixels)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Logging.PreviewDebug)
}

func TestEnvOverridesInvalid(t *testing.T) {
	chdirTemp(t)
	for _, kv := range [][2]string{{"PORT", "abc"}, {"MAX_BODY_BYTES", "x"}, {"FETCH_TIMEOUT", "soon"}, {"MAX_IMAGE_PIXELS", "many"}, {"TOKEN_TTL", "7d"}} {
		t.Run(kv[0], func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	os.Unsetenv("JWT_SECRET")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=dotenv-secret\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("JWT_SECRET") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-secret", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Logging.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Presets = []adjust.Preset{{Name: "monochrome"}}
	assert.Error(t, cfg.Validate(), "duplicate preset name")
}

func TestSaveRoundTrip(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	cfg := DefaultConfig()
	cfg.Server.Port = 7000
	path := filepath.Join(dir, "sub", "lunar.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, loaded.Server.Port)
}
