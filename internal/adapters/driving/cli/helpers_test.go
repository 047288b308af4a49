package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/treeutils/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/treeutils/internal/core/services"
)

// testEnv holds the memory backends behind an injected tree service.
type testEnv struct {
	objects  *memory.ObjectStore
	exporter *memory.PackageExporter
	scratch  string
}

// setupTestServices injects a memory-backed tree service and restores
// the previous service and flag values on cleanup.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		objects:  memory.NewObjectStore("tester"),
		exporter: memory.NewPackageExporter(),
		scratch:  t.TempDir(),
	}

	oldService, oldCloser := treeService, closeTreeService
	treeService = services.NewTreeService(env.objects, env.exporter, env.scratch, services.BuildInfo{
		Version: "test",
	})
	closeTreeService = nil

	t.Cleanup(func() {
		treeService, closeTreeService = oldService, oldCloser
		treeIncludedFields = nil
		treeOutput = "json"
		treeWSID = 0
		treeName = ""
		treeDest = "."
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
	return env
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// writeFile writes content to name under a temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
