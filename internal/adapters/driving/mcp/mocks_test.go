package mcp

import (
	"context"

	"github.com/custodia-labs/treeutils/internal/core/domain"
	"github.com/custodia-labs/treeutils/internal/core/ports/driving"
)

// mockTreeService is a mock implementation of driving.TreeService.
type mockTreeService struct {
	objects  []domain.ObjectData
	infos    []domain.ObjectInfo
	file     *driving.TreeToNewickFileOutput
	export   *driving.ExportTreeOutput
	status   domain.Status
	err      error
	getCalls []driving.GetTreesParams
	saved    []driving.SaveTreesParams
}

func (m *mockTreeService) GetTrees(_ context.Context, params driving.GetTreesParams) ([]domain.ObjectData, error) {
	m.getCalls = append(m.getCalls, params)
	return m.objects, m.err
}

func (m *mockTreeService) SaveTrees(_ context.Context, params driving.SaveTreesParams) ([]domain.ObjectInfo, error) {
	m.saved = append(m.saved, params)
	return m.infos, m.err
}

func (m *mockTreeService) TreeToNewickFile(
	_ context.Context,
	_ driving.TreeToNewickFileParams,
) (*driving.TreeToNewickFileOutput, error) {
	return m.file, m.err
}

func (m *mockTreeService) ExportTreeNewick(
	_ context.Context,
	_ driving.ExportTreeParams,
) (*driving.ExportTreeOutput, error) {
	return m.export, m.err
}

func (m *mockTreeService) Status(_ context.Context) domain.Status {
	return m.status
}
