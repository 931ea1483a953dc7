package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

func strPtr(s string) *string { return &s }

func createTestRun(t *testing.T, ctx context.Context, repo GenerationRunRepository, seed uint64) (*models.GenerationRun, []models.RunNode) {
	t.Helper()

	run := &models.GenerationRun{
		ID:           uuid.New(),
		Seed:         seed,
		StudentCount: 120,
		Status:       models.RunStatusPending,
	}
	require.NoError(t, repo.Create(ctx, run))

	names := models.AllRunNodes()
	nodes := make([]models.RunNode, len(names))
	for i, name := range names {
		nodes[i] = models.RunNode{
			ID:        uuid.New(),
			RunID:     run.ID,
			NodeName:  string(name),
			NodeOrder: models.RunNodeOrder[name],
			Status:    models.RunNodeStatusPending,
		}
	}
	require.NoError(t, repo.CreateNodes(ctx, nodes))
	return run, nodes
}

// testRunRepositoryContract exercises behaviour every implementation shares.
func testRunRepositoryContract(t *testing.T, newRepo func(t *testing.T) GenerationRunRepository) {
	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		run, _ := createTestRun(t, ctx, repo, 8760)

		got, err := repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(8760), got.Seed)
		assert.Equal(t, 120, got.StudentCount)
		assert.Equal(t, models.RunStatusPending, got.Status)
		assert.Nil(t, got.StartedAt)
		assert.Empty(t, got.Nodes)
	})

	t.Run("large seed round trips", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		run, _ := createTestRun(t, ctx, repo, ^uint64(0))

		got, err := repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, ^uint64(0), got.Seed)
	})

	t.Run("get missing run", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("nodes come back in execution order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		run, _ := createTestRun(t, ctx, repo, 1)

		got, err := repo.GetByIDWithNodes(ctx, run.ID)
		require.NoError(t, err)
		require.Len(t, got.Nodes, len(models.AllRunNodes()))
		for i, name := range models.AllRunNodes() {
			assert.Equal(t, string(name), got.Nodes[i].NodeName)
			assert.Equal(t, i+1, got.Nodes[i].NodeOrder)
		}
	})

	t.Run("status transitions set timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		run, _ := createTestRun(t, ctx, repo, 1)

		current := string(models.NodeCatalogBuild)
		require.NoError(t, repo.UpdateStatus(ctx, run.ID, models.RunStatusRunning, &current, nil))
		got, err := repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RunStatusRunning, got.Status)
		require.NotNil(t, got.CurrentNode)
		assert.Equal(t, current, *got.CurrentNode)
		assert.NotNil(t, got.StartedAt)
		assert.Nil(t, got.CompletedAt)

		require.NoError(t, repo.UpdateStatus(ctx, run.ID, models.RunStatusFailed, nil, strPtr("boom")))
		got, err = repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.True(t, got.HasFailed())
		assert.Nil(t, got.CurrentNode)
		require.NotNil(t, got.ErrorMessage)
		assert.Equal(t, "boom", *got.ErrorMessage)
		assert.NotNil(t, got.CompletedAt)
	})

	t.Run("node status and progress", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		run, nodes := createTestRun(t, ctx, repo, 1)
		target := nodes[3]

		require.NoError(t, repo.UpdateNodeStatus(ctx, target.ID, models.RunNodeStatusRunning, nil))
		require.NoError(t, repo.UpdateNodeProgress(ctx, target.ID, &models.RunNodeProgress{
			Current: 40, Total: 120, Message: "Simulating enrollments...",
		}))
		require.NoError(t, repo.UpdateNodeStatus(ctx, target.ID, models.RunNodeStatusCompleted, nil))

		got, err := repo.GetNodesByRun(ctx, run.ID)
		require.NoError(t, err)
		node := got[3]
		assert.Equal(t, target.ID, node.ID)
		assert.Equal(t, models.RunNodeStatusCompleted, node.Status)
		require.NotNil(t, node.Progress)
		assert.Equal(t, 33, node.Progress.Percentage())
		assert.Equal(t, "Simulating enrollments...", node.Progress.Message)
		assert.NotNil(t, node.StartedAt)
		assert.NotNil(t, node.CompletedAt)

		withNodes, err := repo.GetByIDWithNodes(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, withNodes.CompletedNodeCount())
	})

	t.Run("update missing node", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.UpdateNodeStatus(context.Background(), uuid.New(), models.RunNodeStatusFailed, strPtr("x"))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("latest run", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		createTestRun(t, ctx, repo, 1)
		time.Sleep(10 * time.Millisecond)
		second, _ := createTestRun(t, ctx, repo, 2)

		latest, err := repo.GetLatest(ctx)
		require.NoError(t, err)
		assert.Equal(t, second.ID, latest.ID)
	})
}

func TestMemoryRunRepository(t *testing.T) {
	testRunRepositoryContract(t, func(t *testing.T) GenerationRunRepository {
		return NewMemoryRunRepository()
	})
}

func TestMemoryRunRepository_GetLatestEmpty(t *testing.T) {
	_, err := NewMemoryRunRepository().GetLatest(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryRunRepository_CreateNodesRequiresRun(t *testing.T) {
	repo := NewMemoryRunRepository()
	err := repo.CreateNodes(context.Background(), []models.RunNode{{ID: uuid.New(), RunID: uuid.New()}})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryRunRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRunRepository()
	ctx := context.Background()
	run, _ := createTestRun(t, ctx, repo, 1)

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	got.Status = models.RunStatusCompleted

	again, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusPending, again.Status)
}
