package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/treeutils/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/treeutils/internal/core/domain"
	"github.com/custodia-labs/treeutils/internal/core/ports/driving"
	"github.com/custodia-labs/treeutils/internal/core/services"
)

// tokenRecorder wraps a tree service and records the caller token.
type tokenRecorder struct {
	driving.TreeService
	token string
}

func (r *tokenRecorder) GetTrees(ctx context.Context, params driving.GetTreesParams) ([]domain.ObjectData, error) {
	r.token = domain.AuthToken(ctx)
	return r.TreeService.GetTrees(ctx, params)
}

type testEnv struct {
	srv      *httptest.Server
	objects  *memory.ObjectStore
	exporter *memory.PackageExporter
	tree     *tokenRecorder
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	objects := memory.NewObjectStore("tester")
	exporter := memory.NewPackageExporter()
	tree := &tokenRecorder{TreeService: services.NewTreeService(objects, exporter, t.TempDir(), services.BuildInfo{
		Version: "1.0.0",
	})}

	server, err := NewServer(tree)
	require.NoError(t, err)
	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, objects: objects, exporter: exporter, tree: tree}
}

// call posts a request and decodes the response.
func (e *testEnv) call(t *testing.T, method string, params ...any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(map[string]any{
		"version": "1.1",
		"method":  method,
		"params":  params,
		"id":      "42",
	})
	require.NoError(t, err)
	return e.post(t, body)
}

func (e *testEnv) post(t *testing.T, body []byte) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "user-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func decodeError(t *testing.T, out map[string]json.RawMessage) Error {
	t.Helper()
	require.Contains(t, out, "error")
	var e Error
	require.NoError(t, json.Unmarshal(out["error"], &e))
	assert.Equal(t, "JSONRPCError", e.Name)
	return e
}

func TestNewServer_RequiresTreeService(t *testing.T) {
	_, err := NewServer(nil)
	assert.ErrorIs(t, err, ErrMissingTreeService)
}

func TestServer_SaveAndGetTrees(t *testing.T) {
	env := setupTestServer(t)

	resp, out := env.call(t, "TreeUtils.save_trees", map[string]any{
		"ws_id": 3,
		"trees": []any{map[string]any{"name": "t1", "data": map[string]any{"tree": "(A,B);"}}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"42"`, string(out["id"]))

	var saved [][]domain.ObjectInfo
	require.NoError(t, json.Unmarshal(out["result"], &saved))
	require.Len(t, saved, 1)
	require.Len(t, saved[0], 1)
	assert.Equal(t, "t1", saved[0][0].Name)
	assert.Equal(t, domain.TreeType, saved[0][0].Type)

	resp, out = env.call(t, "TreeUtils.get_trees", map[string]any{"tree_refs": []string{"3/t1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got [][]domain.ObjectData
	require.NoError(t, json.Unmarshal(out["result"], &got))
	require.Len(t, got[0], 1)
	assert.Equal(t, "(A,B);", got[0][0].Data["tree"])
	assert.Equal(t, "user-token", env.tree.token)
}

func TestServer_Warnings(t *testing.T) {
	env := setupTestServer(t)

	_, out := env.call(t, "TreeUtils.save_trees", map[string]any{
		"ws_id": 1,
		"trees": []any{map[string]any{"data": map[string]any{"tree": "A;"}, "nmae": "x"}},
		"tree":  "oops",
	})
	require.Contains(t, out, "result")

	var warnings []services.ParamWarning
	require.NoError(t, json.Unmarshal(out["warnings"], &warnings))
	assert.Equal(t, []services.ParamWarning{
		{Key: "tree", Suggestion: "trees"},
		{Key: "trees[0].nmae", Suggestion: "name"},
	}, warnings)
}

func TestServer_ProvenanceIsAccepted(t *testing.T) {
	env := setupTestServer(t)

	_, out := env.call(t, "TreeUtils.save_trees", map[string]any{
		"ws_id": 1,
		"trees": []any{map[string]any{
			"name":       "t1",
			"data":       map[string]any{"tree": "A;"},
			"provenance": []any{map[string]any{"service": "TreeUtils"}},
		}},
	})
	require.Contains(t, out, "result")
	assert.NotContains(t, out, "warnings")
}

func TestServer_ValidationErrors(t *testing.T) {
	env := setupTestServer(t)

	t.Run("missing required keys", func(t *testing.T) {
		resp, out := env.call(t, "TreeUtils.tree_to_newick_file", map[string]any{})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		e := decodeError(t, out)
		assert.Equal(t, CodeInvalidParams, e.Code)
		assert.Contains(t, e.Message, "destination_dir, input_ref")
	})

	t.Run("invalid newick", func(t *testing.T) {
		_, out := env.call(t, "TreeUtils.save_trees", map[string]any{
			"ws_id": 1,
			"trees": []any{map[string]any{"data": map[string]any{"tree": "(A,B"}}},
		})
		e := decodeError(t, out)
		assert.Equal(t, CodeInvalidParams, e.Code)
		assert.Equal(t, "object 0 has an invalid newick tree: (A,B", e.Message)
	})

	t.Run("tree without data", func(t *testing.T) {
		_, out := env.call(t, "TreeUtils.save_trees", map[string]any{
			"ws_id": 1,
			"trees": []any{map[string]any{"name": "x"}},
		})
		e := decodeError(t, out)
		assert.Equal(t, CodeInvalidParams, e.Code)
		assert.Contains(t, e.Message, "object 0")
	})

	t.Run("wrong param type", func(t *testing.T) {
		_, out := env.call(t, "TreeUtils.get_trees", map[string]any{"tree_refs": "1/1"})
		e := decodeError(t, out)
		assert.Equal(t, CodeInvalidParams, e.Code)
	})

	t.Run("params not an object", func(t *testing.T) {
		_, out := env.call(t, "TreeUtils.get_trees", []string{"1/1"})
		e := decodeError(t, out)
		assert.Equal(t, CodeInvalidParams, e.Code)
	})

	t.Run("too many params", func(t *testing.T) {
		_, out := env.call(t, "TreeUtils.get_trees", map[string]any{}, map[string]any{})
		e := decodeError(t, out)
		assert.Equal(t, CodeInvalidParams, e.Code)
	})
}

func TestServer_ProtocolErrors(t *testing.T) {
	env := setupTestServer(t)

	_, out := env.post(t, []byte("{not json"))
	assert.Equal(t, CodeParseError, decodeError(t, out).Code)

	_, out = env.post(t, []byte(`{"version":"1.1","method":"","params":[]}`))
	assert.Equal(t, CodeInvalidRequest, decodeError(t, out).Code)

	_, out = env.call(t, "TreeUtils.delete_trees", map[string]any{})
	assert.Equal(t, CodeMethodNotFound, decodeError(t, out).Code)

	_, out = env.call(t, "Other.get_trees", map[string]any{})
	assert.Equal(t, CodeMethodNotFound, decodeError(t, out).Code)
}

func TestServer_ServerError(t *testing.T) {
	env := setupTestServer(t)

	_, out := env.call(t, "TreeUtils.get_trees", map[string]any{"tree_refs": []string{"9/9"}})
	e := decodeError(t, out)
	assert.Equal(t, CodeServerError, e.Code)
	assert.NotEmpty(t, e.Detail)
}

func TestServer_TreeToNewickFileAndExport(t *testing.T) {
	env := setupTestServer(t)
	_, err := env.objects.SaveObjects(context.Background(), 1, []domain.ObjectSaveData{{
		Type: domain.TreeType, Name: "t1", Data: domain.TreeData{"tree": "(A,B);"},
	}})
	require.NoError(t, err)

	dest := t.TempDir()
	_, out := env.call(t, "TreeUtils.tree_to_newick_file", map[string]any{
		"destination_dir": dest,
		"input_ref":       "1/t1",
	})
	var files []driving.TreeToNewickFileOutput
	require.NoError(t, json.Unmarshal(out["result"], &files))
	assert.Equal(t, filepath.Join(dest, "t1.newick"), files[0].FilePath)
	data, err := os.ReadFile(files[0].FilePath)
	require.NoError(t, err)
	assert.Equal(t, "(A,B);", string(data))

	_, out = env.call(t, "TreeUtils.export_tree_newick", map[string]any{"input_ref": "1/t1"})
	var exports []driving.ExportTreeOutput
	require.NoError(t, json.Unmarshal(out["result"], &exports))
	pkg, err := env.exporter.Get(exports[0].ShockID)
	require.NoError(t, err)
	assert.Equal(t, []byte("(A,B);"), pkg.Files["t1.newick"])
}

func TestServer_Status(t *testing.T) {
	env := setupTestServer(t)

	_, out := env.call(t, "TreeUtils.status")
	var status []domain.Status
	require.NoError(t, json.Unmarshal(out["result"], &status))
	assert.Equal(t, "OK", status[0].State)
	assert.Equal(t, "1.0.0", status[0].Version)
}

func TestServer_Metrics(t *testing.T) {
	env := setupTestServer(t)
	env.call(t, "TreeUtils.status")
	env.call(t, "TreeUtils.nope", map[string]any{})

	resp, err := http.Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `treeutils_rpc_calls_total{code="0",method="status"} 1`), text)
	assert.Contains(t, text, `treeutils_rpc_calls_total{code="-32601",method="unknown"} 1`)
	assert.Contains(t, text, "treeutils_rpc_call_duration_seconds")
}

func TestServer_MethodNotAllowed(t *testing.T) {
	env := setupTestServer(t)

	resp, err := http.Get(env.srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
