package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/treeutils/internal/adapters/driven/config/file"
	"github.com/custodia-labs/treeutils/internal/adapters/driven/kbase"
	"github.com/custodia-labs/treeutils/internal/adapters/driven/packager"
	"github.com/custodia-labs/treeutils/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/treeutils/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/treeutils/internal/core/ports/driven"
	"github.com/custodia-labs/treeutils/internal/core/ports/driving"
	"github.com/custodia-labs/treeutils/internal/core/services"
	"github.com/custodia-labs/treeutils/internal/logger"
)

// Backend names accepted by the "backend" key.
const (
	backendKBase  = "kbase"
	backendSQLite = "sqlite"
	backendMemory = "memory"
)

const defaultAddr = ":5000"

// envOverrides maps config keys to the environment variables that
// take precedence over them.
var envOverrides = map[string]string{
	"callback.url":  "SDK_CALLBACK_URL",
	"auth.token":    "KB_AUTH_TOKEN",
	"workspace.url": "KBASE_WORKSPACE_URL",
}

// settings is the resolved runtime configuration.
type settings struct {
	Backend           string
	Scratch           string
	WorkspaceURL      string
	CallbackURL       string
	Token             string
	RequestsPerSecond float64
	Burst             int
	SQLiteDir         string
	PackagesDir       string
	Addr              string
	User              string
}

// loadSettings reads the config file named by --config, or the default
// one, and applies environment overrides.
func loadSettings() (settings, error) {
	store, err := openConfigStore()
	if err != nil {
		return settings{}, err
	}
	return resolveSettings(store, os.Getenv), nil
}

// openConfigStore opens the file named by --config, or the default one.
func openConfigStore() (driven.ConfigStore, error) {
	var (
		store *file.ConfigStore
		err   error
	)
	if configPath != "" {
		store, err = file.NewConfigStoreFromFile(configPath)
	} else {
		store, err = file.NewConfigStore("")
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger.Debug("config loaded from %s", store.Path())
	return store, nil
}

// resolveSettings fills defaults and applies environment overrides.
func resolveSettings(cfg driven.ConfigStore, getenv func(string) string) settings {
	get := func(key string) string {
		if env, ok := envOverrides[key]; ok {
			if v := getenv(env); v != "" {
				return v
			}
		}
		return cfg.GetString(key)
	}

	s := settings{
		Backend:           cfg.GetString("backend"),
		Scratch:           cfg.GetString("scratch"),
		WorkspaceURL:      get("workspace.url"),
		CallbackURL:       get("callback.url"),
		Token:             get("auth.token"),
		RequestsPerSecond: cfg.GetFloat("kbase.requests_per_second"),
		Burst:             cfg.GetInt("kbase.burst"),
		SQLiteDir:         cfg.GetString("sqlite.data_dir"),
		PackagesDir:       cfg.GetString("packages.dir"),
		Addr:              cfg.GetString("server.addr"),
		User:              getenv("USER"),
	}
	if s.Backend == "" {
		s.Backend = backendSQLite
	}
	if s.Scratch == "" {
		s.Scratch = filepath.Join(os.TempDir(), "treeutils")
	}
	if s.Addr == "" {
		s.Addr = defaultAddr
	}
	if s.User == "" {
		s.User = "local"
	}
	return s
}

// buildTreeService wires the configured backend into a tree service.
// The returned closer releases the backend and may be nil.
func buildTreeService(s settings) (driving.TreeService, func() error, error) {
	var (
		objects  driven.ObjectStore
		exporter driven.PackageExporter
		closer   func() error
	)

	switch s.Backend {
	case backendKBase:
		if s.WorkspaceURL == "" {
			return nil, nil, errors.New("kbase backend requires workspace.url or KBASE_WORKSPACE_URL")
		}
		if s.CallbackURL == "" {
			return nil, nil, errors.New("kbase backend requires callback.url or SDK_CALLBACK_URL")
		}
		clientCfg := kbase.Config{
			Token:             s.Token,
			RequestsPerSecond: s.RequestsPerSecond,
			Burst:             s.Burst,
		}
		wsCfg, dfuCfg := clientCfg, clientCfg
		wsCfg.URL = s.WorkspaceURL
		dfuCfg.URL = s.CallbackURL
		dfu := kbase.NewClient("DataFileUtil", dfuCfg)
		objects = kbase.NewObjectStore(kbase.NewClient("Workspace", wsCfg), dfu)
		exporter = kbase.NewPackageExporter(dfu)

	case backendSQLite:
		store, err := sqlite.NewStore(s.SQLiteDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		zips, err := packager.NewZipExporter(s.PackagesDir)
		if err != nil {
			store.Close() //nolint:errcheck
			return nil, nil, err
		}
		objects = store.ObjectStore(s.User)
		exporter = zips
		closer = store.Close
		logger.Debug("using sqlite store at %s", store.Path())

	case backendMemory:
		objects = memory.NewObjectStore(s.User)
		exporter = memory.NewPackageExporter()

	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want %s, %s or %s)",
			s.Backend, backendKBase, backendSQLite, backendMemory)
	}

	svc := services.NewTreeService(objects, exporter, s.Scratch, services.BuildInfo{
		Version:       version,
		GitURL:        gitURL,
		GitCommitHash: gitCommit,
	})
	return svc, closer, nil
}
