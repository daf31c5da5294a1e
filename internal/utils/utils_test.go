package utils

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("CM_STR", "  value ")
	t.Setenv("CM_INT", "42")
	t.Setenv("CM_BAD_INT", "-3")
	t.Setenv("CM_BOOL", "true")
	t.Setenv("CM_FLOAT", "0.6")
	t.Setenv("CM_BAD_FLOAT", "NaN")

	assert.Equal(t, "value", EnvString("CM_STR", "d"))
	assert.Equal(t, "d", EnvString("CM_MISSING", "d"))
	assert.Equal(t, 42, EnvInt("CM_INT", 1))
	assert.Equal(t, 1, EnvInt("CM_BAD_INT", 1))
	assert.True(t, EnvBool("CM_BOOL", false))
	assert.True(t, EnvBool("CM_MISSING", true))
	assert.Equal(t, 0.6, EnvFloat("CM_FLOAT", 0.4))
	assert.Equal(t, 0.4, EnvFloat("CM_BAD_FLOAT", 0.4))
}

func TestLoadEnvFilesKeepsProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CM_FROM_FILE=file\nCM_PRESET=file\n"), 0o600))
	t.Setenv("CM_PRESET", "process")
	t.Setenv("CM_FROM_FILE", "")
	os.Unsetenv("CM_FROM_FILE")

	loaded := LoadEnvFiles(path)
	assert.Contains(t, loaded, path)
	assert.Equal(t, "file", os.Getenv("CM_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("CM_PRESET"))
}

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("PG_USER", "clock")
	t.Setenv("PG_PASSWORD", "p@ss")
	t.Setenv("PG_DB", "")
	t.Setenv("PG_SSLMODE", "")
	assert.Equal(t, "postgres://clock:p%40ss@db:6543/clockmap?sslmode=disable", BuildPostgresDSNFromEnv())
}

func TestOpenRedisFromEnv(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "false")
	assert.Nil(t, OpenRedisFromEnv())

	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_HOST", mr.Host())
	t.Setenv("REDIS_PORT", mr.Port())
	rc := OpenRedisFromEnv()
	require.NotNil(t, rc)
	defer rc.Close()
	assert.NoError(t, rc.Ping(t.Context()).Err())
}

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "certs", "server.crt")
	key := filepath.Join(dir, "certs", "server.key")
	require.NoError(t, EnsureSelfSignedCert(cert, key, "clock-map.local"))

	_, err := tls.LoadX509KeyPair(cert, key)
	require.NoError(t, err)
	st, err := os.Stat(key)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	before, _ := os.ReadFile(cert)
	require.NoError(t, EnsureSelfSignedCert(cert, key, "clock-map.local"))
	after, _ := os.ReadFile(cert)
	assert.Equal(t, before, after)
}
