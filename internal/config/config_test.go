package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"SKUSIM_PORT", "LOG_LEVEL", "DEV_MODE", "EXPORT_DIR",
		"EXPORT_S3_BUCKET", "EXPORT_S3_PREFIX", "AWS_REGION", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.True(t, filepath.IsAbs(cfg.ExportDir))
	assert.Equal(t, "exports", filepath.Base(cfg.ExportDir))
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.UsesS3())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("SKUSIM_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("EXPORT_DIR", dir)
	t.Setenv("EXPORT_S3_BUCKET", "sku-exports")
	t.Setenv("EXPORT_S3_PREFIX", "/sim/")
	t.Setenv("AWS_REGION", "ap-northeast-1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, dir, cfg.ExportDir)
	assert.True(t, cfg.UsesS3())
	assert.Equal(t, "sim", cfg.S3Prefix)
	assert.Equal(t, "ap-northeast-1", cfg.AWSRegion)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SKUSIM_PORT", "eighty")
	t.Setenv("DEV_MODE", "sometimes")
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.Port)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_RejectsPortOutOfRange(t *testing.T) {
	clearEnv(t)
	t.Setenv("SKUSIM_PORT", "70000")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid port")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Port: 8001, AllowedOrigins: []string{"*"}}, false},
		{"zero port", Config{Port: 0, AllowedOrigins: []string{"*"}}, true},
		{"no origins", Config{Port: 8001}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
