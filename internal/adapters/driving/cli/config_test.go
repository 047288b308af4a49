package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/treeutils/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/treeutils/internal/core/services"
)

func noEnv(string) string { return "" }

func TestResolveSettings_Defaults(t *testing.T) {
	s := resolveSettings(memory.NewConfigStore(nil), noEnv)

	assert.Equal(t, backendSQLite, s.Backend)
	assert.Equal(t, filepath.Join(os.TempDir(), "treeutils"), s.Scratch)
	assert.Equal(t, defaultAddr, s.Addr)
	assert.Equal(t, "local", s.User)
	assert.Empty(t, s.WorkspaceURL)
	assert.Empty(t, s.Token)
}

func TestResolveSettings_FromConfig(t *testing.T) {
	cfg := memory.NewConfigStore(map[string]any{
		"backend":                   "kbase",
		"scratch":                   "/kb/module/work/tmp",
		"workspace.url":             "https://ws.example.com",
		"callback.url":              "http://callback:9999",
		"auth.token":                "file-token",
		"kbase.requests_per_second": 2.5,
		"kbase.burst":               3,
		"sqlite.data_dir":           "/data",
		"packages.dir":              "/packages",
		"server.addr":               ":8080",
	})

	s := resolveSettings(cfg, func(key string) string {
		if key == "USER" {
			return "alice"
		}
		return ""
	})

	assert.Equal(t, settings{
		Backend:           "kbase",
		Scratch:           "/kb/module/work/tmp",
		WorkspaceURL:      "https://ws.example.com",
		CallbackURL:       "http://callback:9999",
		Token:             "file-token",
		RequestsPerSecond: 2.5,
		Burst:             3,
		SQLiteDir:         "/data",
		PackagesDir:       "/packages",
		Addr:              ":8080",
		User:              "alice",
	}, s)
}

func TestResolveSettings_EnvironmentWins(t *testing.T) {
	cfg := memory.NewConfigStore(map[string]any{
		"workspace.url": "https://file.example.com",
		"callback.url":  "http://file-callback",
		"auth.token":    "file-token",
	})
	env := map[string]string{
		"KBASE_WORKSPACE_URL": "https://env.example.com",
		"SDK_CALLBACK_URL":    "http://env-callback",
		"KB_AUTH_TOKEN":       "env-token",
	}

	s := resolveSettings(cfg, func(key string) string { return env[key] })

	assert.Equal(t, "https://env.example.com", s.WorkspaceURL)
	assert.Equal(t, "http://env-callback", s.CallbackURL)
	assert.Equal(t, "env-token", s.Token)
}

func TestBuildTreeService_Memory(t *testing.T) {
	svc, closer, err := buildTreeService(settings{Backend: backendMemory, Scratch: t.TempDir()})

	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.IsType(t, &services.TreeService{}, svc)
}

func TestBuildTreeService_SQLite(t *testing.T) {
	dir := t.TempDir()
	svc, closer, err := buildTreeService(settings{
		Backend:     backendSQLite,
		Scratch:     t.TempDir(),
		SQLiteDir:   filepath.Join(dir, "data"),
		PackagesDir: filepath.Join(dir, "packages"),
		User:        "tester",
	})

	require.NoError(t, err)
	require.NotNil(t, closer)
	assert.NotNil(t, svc)
	assert.FileExists(t, filepath.Join(dir, "data", "objects.db"))
	assert.DirExists(t, filepath.Join(dir, "packages"))
	assert.NoError(t, closer())
}

func TestBuildTreeService_KBase(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		svc, closer, err := buildTreeService(settings{
			Backend:      backendKBase,
			WorkspaceURL: "https://ws.example.com",
			CallbackURL:  "http://callback:9999",
		})
		require.NoError(t, err)
		assert.Nil(t, closer)
		assert.NotNil(t, svc)
	})

	t.Run("missing workspace url", func(t *testing.T) {
		_, _, err := buildTreeService(settings{Backend: backendKBase, CallbackURL: "http://callback"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "KBASE_WORKSPACE_URL")
	})

	t.Run("missing callback url", func(t *testing.T) {
		_, _, err := buildTreeService(settings{Backend: backendKBase, WorkspaceURL: "https://ws"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SDK_CALLBACK_URL")
	})
}

func TestBuildTreeService_UnknownBackend(t *testing.T) {
	_, _, err := buildTreeService(settings{Backend: "postgres"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "postgres"`)
}
