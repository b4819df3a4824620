package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.RunAddress)
	assert.Equal(t, "migrations", cfg.DB.Migrations)
	assert.Equal(t, 15*time.Second, cfg.Verifier.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("RUN_ADDRESS", ":9000")
	t.Setenv("DATABASE_URI", "postgres://u:p@localhost:5432/steps")
	t.Setenv("VERIFIER_URL", "http://verifier:8090/")
	t.Setenv("VERIFIER_TIMEOUT_SECONDS", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("S3_BUCKET", "evidence")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, ":9000", cfg.Server.RunAddress)
	assert.Equal(t, "postgres://u:p@localhost:5432/steps", cfg.DB.DatabaseURI)
	assert.Equal(t, "http://verifier:8090", cfg.Verifier.URL)
	assert.Equal(t, 3*time.Second, cfg.Verifier.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "evidence", cfg.S3.Bucket)
}
