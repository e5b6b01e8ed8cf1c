package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"daybook-server"}, args...)
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, 60*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 7*24*time.Hour, c.ShareTokenValidityDuration)
	assert.Empty(t, c.RedisAddr)
	assert.Equal(t, "daybook", c.S3Bucket)
}

func TestParseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"endpoint_addr_grpc":             "0.0.0.0:7000",
		"database_dsn":                   "postgres://x",
		"access_token_validity_duration": "15m",
		"share_token_validity_duration":  int64(48 * time.Hour),
		"redis_addr":                     "redis:6379",
		"metrics_addr":                   "",
	})
	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseJson(&c))

	want := Config{}
	want.LoadDefaults()
	want.EndpointAddrGRPC = "0.0.0.0:7000"
	want.DatabaseDSN = "postgres://x"
	want.AccessTokenValidityDuration = 15 * time.Minute
	want.ShareTokenValidityDuration = 48 * time.Hour
	want.RedisAddr = "redis:6379"
	want.MetricsAddr = ""

	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJson_Errors(t *testing.T) {
	withArgs(t, "-config", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, parseJson(&Config{}))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	withArgs(t, "-c", bad)
	assert.Error(t, parseJson(&Config{}))
}

func TestParseEnv(t *testing.T) {
	t.Setenv("DAYBOOK_GRPC_ADDR", ":6000")
	t.Setenv("DAYBOOK_STREAK_CACHE_TTL", "30s")

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseEnv(&c))
	assert.Equal(t, ":6000", c.EndpointAddrGRPC)
	assert.Equal(t, 30*time.Second, c.StreakCacheTTL)
	assert.Equal(t, "secretKey", c.SecretKey)

	t.Setenv("DAYBOOK_ACCESS_TOKEN_TTL", "soon")
	assert.Error(t, parseEnv(&c))
}

func TestParseFlags(t *testing.T) {
	withArgs(t, "-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-t", "5", "-r", "localhost:6379", "-m", "", "-unknown", "x")

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseFlags(&c))

	assert.Equal(t, "127.0.0.1:9090", c.EndpointAddrGRPC)
	assert.Equal(t, "db", c.DatabaseDSN)
	assert.Equal(t, "secret", c.SecretKey)
	assert.Equal(t, 5*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
	assert.Equal(t, "", c.MetricsAddr)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"endpoint_addr_grpc": ":1111", "secret_key": "from-json"})
	t.Setenv("DAYBOOK_GRPC_ADDR", ":2222")
	withArgs(t, "-c", path, "-a", ":3333")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":3333", c.EndpointAddrGRPC)
	assert.Equal(t, "from-json", c.SecretKey)
}
