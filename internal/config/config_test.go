package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadReadsYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
catalog:
  language: kor
  ttl: 1h
map:
  path: /srv/world.svg
  zoom_factor: 1.25
  clamp_pan: false
  wheel_requires_secondary: true
quiz:
  questions: 5
aliases:
  kr: ["한국", "남한"]
  "capital:kr": ["서울"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "kor", cfg.Catalog.Language)
	assert.Equal(t, time.Hour, TTLDuration(cfg.Catalog.TTL, time.Minute))
	assert.Equal(t, "/srv/world.svg", cfg.Map.Path)
	assert.Equal(t, 1.25, cfg.Map.ZoomFactor)
	require.NotNil(t, cfg.Map.ClampPan)
	assert.False(t, *cfg.Map.ClampPan)
	assert.True(t, cfg.Map.WheelRequiresSecondary)
	assert.Equal(t, 5, cfg.Quiz.Questions)
	assert.Equal(t, 4, cfg.Quiz.Options)
	assert.Equal(t, []string{"서울"}, cfg.Aliases["capital:kr"])
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Quiz.Questions)
	assert.Equal(t, 60, cfg.Quiz.FrameRate)
	require.NotNil(t, cfg.Map.ClampPan)
	assert.True(t, *cfg.Map.ClampPan)
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9090\"\nredis:\n  addr: file:6379\n")
	t.Setenv("PORT", "7070")
	t.Setenv("REDIS_ADDR", "env:6379")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("QUIZ_SEED", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "env:6379", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NotNil(t, cfg.Quiz.Seed)
	assert.Equal(t, int64(42), *cfg.Quiz.Seed)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unterminated"))
	assert.Error(t, err)
}

func TestTTLDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
	assert.Equal(t, 90*time.Second, TTLDuration("90s", time.Minute))
}

func TestSampleConfigUsesGentleMapDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Map.PinchSensitivity)
	assert.GreaterOrEqual(t, cfg.Map.ZoomFactor, 1.2)
	assert.LessOrEqual(t, cfg.Map.ZoomFactor, 1.25)
	assert.Equal(t, "assets/world.svg", cfg.Map.Path)
}
