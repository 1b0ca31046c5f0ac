package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openRepo(t *testing.T) *ProjectRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.db")
	repo, err := Open(context.Background(), path, nil, zap.NewNop())
	if err != nil {
		// The driver needs cgo
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newProject(t *testing.T, name string) *aggregates.Project {
	t.Helper()
	p, err := aggregates.NewProject(name, nil)
	require.NoError(t, err)
	_, err = p.Canvas().CreateNode(aggregates.NodeSpec{
		Type:    entities.NodeTypeList,
		Content: &entities.Content{Items: []string{"one", "two"}},
	})
	require.NoError(t, err)
	return p
}

func TestProjectRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	p := newProject(t, "Offsite")

	require.NoError(t, repo.Save(ctx, p))
	require.NoError(t, p.Rename("Offsite 2026"))
	require.NoError(t, repo.Save(ctx, p))
	assert.Equal(t, 2, p.Version())

	loaded, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, "Offsite 2026", loaded.Name())
	assert.Equal(t, 2, loaded.Version())
	require.Len(t, loaded.Canvas().Nodes(), 1)
	assert.Equal(t, []string{"one", "two"}, loaded.Canvas().Nodes()[0].Content().Items)
}

func TestProjectRepository_StaleWriteRejected(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	p := newProject(t, "Deck")
	require.NoError(t, repo.Save(ctx, p))

	stale, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	err = repo.Save(ctx, stale)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVersionConflict))

	fresh, err := aggregates.NewProject("Fresh", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, fresh))
}

func TestProjectRepository_ListOrderAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	older := newProject(t, "Older")
	newer := newProject(t, "Newer")
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Newer", list[0].Name)
	assert.Equal(t, 1, list[0].NodeCount)

	list, err = repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, older.ID()))
	assert.True(t, pkgerrors.IsNotFound(repo.Delete(ctx, older.ID())))

	_, err = repo.FindByID(ctx, valueobjects.NewProjectID())
	assert.True(t, pkgerrors.IsNotFound(err))
}
