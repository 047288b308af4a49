package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/treeutils/internal/core/domain"
	"github.com/custodia-labs/treeutils/internal/core/ports/driving"
)

func TestServer_handleGetTrees(t *testing.T) {
	ctx := context.Background()

	t.Run("returns trees", func(t *testing.T) {
		mockTree := &mockTreeService{
			objects: []domain.ObjectData{{
				Data: domain.TreeData{"tree": "(A,B);"},
				Info: domain.ObjectInfo{ObjID: 2, Name: "t1", Type: domain.TreeType, Version: 1, WSID: 5},
			}},
		}
		server, err := NewServer(&Ports{Tree: mockTree})
		require.NoError(t, err)

		_, output, err := server.handleGetTrees(ctx, nil, GetTreesInput{TreeRefs: []string{"5/2"}})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "5/2/1", output.Trees[0].Ref)
		assert.Equal(t, "t1", output.Trees[0].Name)
		assert.Equal(t, "(A,B);", output.Trees[0].Data["tree"])
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Tree: &mockTreeService{err: domain.ErrNotFound}})
		require.NoError(t, err)

		_, _, err = server.handleGetTrees(ctx, nil, GetTreesInput{TreeRefs: []string{"5/2"}})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleSaveTrees(t *testing.T) {
	ctx := context.Background()

	mockTree := &mockTreeService{
		infos: []domain.ObjectInfo{{ObjID: 1, Name: "t1", Type: domain.TreeType, Version: 1, WSID: 5, Checksum: "abc"}},
	}
	server, err := NewServer(&Ports{Tree: mockTree})
	require.NoError(t, err)

	_, output, err := server.handleSaveTrees(ctx, nil, SaveTreesInput{
		WSID:  5,
		Trees: []TreeInput{{Name: "t1", Data: map[string]any{"tree": "(A,B);"}, Hidden: 1}},
	})

	require.NoError(t, err)
	require.Len(t, output.Saved, 1)
	assert.Equal(t, "5/1/1", output.Saved[0].Ref)
	assert.Equal(t, "abc", output.Saved[0].Checksum)

	require.Len(t, mockTree.saved, 1)
	assert.Equal(t, int64(5), mockTree.saved[0].WSID)
	assert.Equal(t, "t1", mockTree.saved[0].Trees[0].Name)
	assert.Equal(t, 1, mockTree.saved[0].Trees[0].Hidden)
}

func TestServer_handleSaveTrees_ObjIDAndProvenance(t *testing.T) {
	mockTree := &mockTreeService{
		infos: []domain.ObjectInfo{{ObjID: 3, Name: "t3", Type: domain.TreeType, Version: 2, WSID: 5}},
	}
	server, err := NewServer(&Ports{Tree: mockTree})
	require.NoError(t, err)

	provenance := []any{map[string]any{"service": "TreeUtils"}}
	_, output, err := server.handleSaveTrees(context.Background(), nil, SaveTreesInput{
		WSID:  5,
		Trees: []TreeInput{{ObjID: 3, Data: map[string]any{"tree": "A;"}, Provenance: provenance}},
	})

	require.NoError(t, err)
	assert.Equal(t, "5/3/2", output.Saved[0].Ref)
	require.Len(t, mockTree.saved, 1)
	assert.Equal(t, int64(3), mockTree.saved[0].Trees[0].ObjID)
	assert.Equal(t, provenance, mockTree.saved[0].Trees[0].Provenance)
}

func TestServer_handleTreeToNewickFile(t *testing.T) {
	mockTree := &mockTreeService{file: &driving.TreeToNewickFileOutput{FilePath: "/tmp/t1.newick"}}
	server, err := NewServer(&Ports{Tree: mockTree})
	require.NoError(t, err)

	_, output, err := server.handleTreeToNewickFile(context.Background(), nil, TreeToNewickFileInput{
		InputRef: "1/1", DestinationDir: "/tmp",
	})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/t1.newick", output.FilePath)

	mockTree.err = errors.New("boom")
	_, _, err = server.handleTreeToNewickFile(context.Background(), nil, TreeToNewickFileInput{})
	assert.Error(t, err)
}

func TestServer_handleExportTreeNewick(t *testing.T) {
	mockTree := &mockTreeService{export: &driving.ExportTreeOutput{ShockID: "pkg-1"}}
	server, err := NewServer(&Ports{Tree: mockTree})
	require.NoError(t, err)

	_, output, err := server.handleExportTreeNewick(context.Background(), nil, ExportTreeNewickInput{InputRef: "1/1"})
	require.NoError(t, err)
	assert.Equal(t, "pkg-1", output.ShockID)
}

func TestServer_handleValidateNewick(t *testing.T) {
	server, err := NewServer(&Ports{Tree: &mockTreeService{}})
	require.NoError(t, err)

	_, output, err := server.handleValidateNewick(context.Background(), nil, ValidateNewickInput{Tree: "(A,B);"})
	require.NoError(t, err)
	assert.True(t, output.Valid)

	_, output, err = server.handleValidateNewick(context.Background(), nil, ValidateNewickInput{Tree: "(A,B;"})
	require.NoError(t, err)
	assert.False(t, output.Valid)
	assert.Equal(t, "unbalanced '('", output.Reason)
	assert.Equal(t, 4, output.Offset)
}
