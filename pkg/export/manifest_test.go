package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

func TestManifest_WriteRead(t *testing.T) {
	ds := testDataset(t, 12)
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))

	m := BuildManifest(ds, "v1.2.0", []string{"csv", "xlsx"}, now)

	assert.Equal(t, ds.RunID.String(), m.RunID)
	assert.Equal(t, ds.Seed, m.Seed)
	assert.Equal(t, time.UTC, m.GeneratedAt.Location())
	require.Len(t, m.RecordSets, 7)
	assert.Equal(t, models.RecordSetStudents, m.RecordSets[3].Name)
	assert.Equal(t, 12, m.RecordSets[3].Rows)
	assert.Equal(t, models.StudentColumns, m.RecordSets[3].Columns)

	dir := t.TempDir()
	require.NoError(t, WriteManifest(dir, m))

	loaded, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.True(t, m.GeneratedAt.Equal(loaded.GeneratedAt))
	loaded.GeneratedAt = m.GeneratedAt
	assert.Equal(t, m, loaded)
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	assert.ErrorContains(t, err, "read manifest")
}
