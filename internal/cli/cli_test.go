package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/cache"
	"github.com/ppiankov/pap/internal/model"
)

func TestMask(t *testing.T) {
	require.Equal(t, "", mask(""))
	require.Equal(t, "****", mask("short"))
	require.Equal(t, "AIza****yz", mask("AIzaSyA-0123456789xyz"))

	cfg := model.DefaultConfig()
	cfg.AI.APIKey = "sk-0123456789abcdef"
	cfg.Remote.RedisPassword = "hunter2"
	out := masked(cfg)
	require.Equal(t, "sk-0****ef", out.AI.APIKey)
	require.Equal(t, "****", out.Remote.RedisPassword)
	require.Equal(t, "sk-0123456789abcdef", cfg.AI.APIKey)
}

func TestLoadConfig_FileEnvAndAliases(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("remote:\n  namespace: staging\nai:\n  timeout: 5s\n"), 0600))
	cfgFile = path
	t.Cleanup(func() { cfgFile = "" })

	t.Setenv("FIREBASE_DATABASE_URL", "https://pap-demo.firebaseio.com")
	t.Setenv("GEMINI_API_KEY", "AIzaSyA-0123456789xyz")
	t.Setenv("PAP_SERVER_ADDR", "127.0.0.1:9999")
	initConfig()

	cfg, err := loadConfig()
	require.NoError(t, err)
	require.Equal(t, "staging", cfg.Remote.Namespace)
	require.Equal(t, 5*time.Second, cfg.AI.Timeout)
	require.Equal(t, "https://pap-demo.firebaseio.com", cfg.Remote.DatabaseURL)
	require.Equal(t, "AIzaSyA-0123456789xyz", cfg.AI.APIKey)
	require.Equal(t, "gemini", cfg.AI.Provider)
	require.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	require.Equal(t, 15, cfg.AI.RequestsPerMinute)
}

func TestOpenCache(t *testing.T) {
	dir := t.TempDir()

	for _, backend := range []string{"disk", "badger"} {
		t.Run(backend, func(t *testing.T) {
			c, closeFn, err := openCache(model.CacheConfig{Dir: filepath.Join(dir, backend), Backend: backend, MemoryTTL: time.Minute}, zap.NewNop())
			require.NoError(t, err)
			require.NoError(t, c.Set("k", []byte("v"), 0))
			got, ok := c.Get("k")
			require.True(t, ok)
			require.Equal(t, []byte("v"), got)
			require.NoError(t, closeFn())
		})
	}

	_, _, err := openCache(model.CacheConfig{Dir: dir, Backend: "sqlite"}, zap.NewNop())
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "a b c", truncate("a\n b   c", 10))
	require.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestRequirePersistence(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	offline = true
	t.Cleanup(func() { offline = false })

	dir := t.TempDir()
	viper.Set("cache.dir", dir)

	a, err := openApp(context.Background(), zap.ErrorLevel)
	require.NoError(t, err)
	require.True(t, a.coord.DemoMode())
	require.ErrorIs(t, a.requirePersistence(), errDemoMode)
	require.NoError(t, a.Close())

	claim := model.Claim{ID: "l1", ClaimantID: "c1", Text: "The ring road will be finished by 2027"}
	claim.Normalize()
	require.True(t, cache.NewStore(cache.NewDiskCache(dir, 0), zap.NewNop()).Save(cache.CollectionClaims, []model.Claim{claim}))

	a, err = openApp(context.Background(), zap.ErrorLevel)
	require.NoError(t, err)
	require.NoError(t, a.requirePersistence())
	_, err = a.coord.SaveClaim(model.ClaimInput{ClaimantName: "Hari Bahadur", Text: "Melamchi water will reach every household by 2026"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	a, err = openApp(context.Background(), zap.ErrorLevel)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	require.Len(t, a.coord.Claims(), 2)
}
