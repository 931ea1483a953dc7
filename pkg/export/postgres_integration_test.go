//go:build integration

package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/testhelpers"
)

func TestPostgresWriter_Write(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()
	w := NewPostgresWriter(testDB.DB.Pool, zap.NewNop())

	ds := testDataset(t, 20)
	require.NoError(t, w.Write(ctx, ds))

	for _, rs := range ds.RecordSets() {
		var n int
		err := testDB.DB.QueryRow(ctx, "SELECT COUNT(*) FROM "+tablePrefix+rs.Name).Scan(&n)
		require.NoError(t, err, rs.Name)
		assert.Equal(t, rs.Len(), n, rs.Name)
	}

	var graded, completed int
	err := testDB.DB.QueryRow(ctx, `
		SELECT COUNT(grade_point), COUNT(*) FILTER (WHERE completion_status = 'completed')
		FROM sim_enrollments`).Scan(&graded, &completed)
	require.NoError(t, err)
	assert.Equal(t, completed, graded)

	// A second write replaces rather than appends.
	smaller := testDataset(t, 5)
	require.NoError(t, w.Write(ctx, smaller))

	var students int
	require.NoError(t, testDB.DB.QueryRow(ctx, "SELECT COUNT(*) FROM sim_students").Scan(&students))
	assert.Equal(t, 5, students)
}
