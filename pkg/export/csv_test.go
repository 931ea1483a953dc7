package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/services"
)

func TestCSVWriter_WritesEveryRecordSet(t *testing.T) {
	ds := testDataset(t, 15)
	dir := t.TempDir()

	require.NoError(t, NewCSVWriter(dir).Write(context.Background(), ds))

	for _, rs := range ds.RecordSets() {
		f, err := os.Open(CSVPath(dir, rs.Name))
		require.NoError(t, err, rs.Name)
		records, err := csv.NewReader(f).ReadAll()
		f.Close()
		require.NoError(t, err, rs.Name)

		require.Len(t, records, rs.Len()+1, rs.Name)
		assert.Equal(t, rs.Columns, records[0], rs.Name)
		assert.Equal(t, rs.Rows, records[1:], rs.Name)
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	ds := testDataset(t, 25)
	dir := t.TempDir()
	require.NoError(t, NewCSVWriter(dir).Write(context.Background(), ds))

	loaded, err := ReadCSVDataset(dir)
	require.NoError(t, err)

	assert.Equal(t, ds.Students, loaded.Students)
	assert.Equal(t, ds.Offerings, loaded.Offerings)
	assert.Equal(t, ds.Preferences, loaded.Preferences)
	assert.Len(t, loaded.Courses, len(ds.Courses))
	assert.Len(t, loaded.Requirements, len(ds.Requirements))
	assert.Len(t, loaded.Performance, len(ds.Performance))

	// The selection path is an in-memory audit field and is not written.
	want := make([]models.Enrollment, len(ds.Enrollments))
	for i, e := range ds.Enrollments {
		e.Selection = ""
		want[i] = e
	}
	assert.Equal(t, want, loaded.Enrollments)
	assert.Equal(t, 1, loaded.LedgerStart())

	// Flattened rows are identical after a round trip.
	for i, rs := range loaded.RecordSets() {
		assert.Equal(t, ds.RecordSets()[i].Rows, rs.Rows, rs.Name)
	}

	assert.NoError(t, services.ValidateDataset(loaded))
}

func TestReadCSVDataset_Errors(t *testing.T) {
	_, err := ReadCSVDataset(t.TempDir())
	assert.ErrorContains(t, err, "open courses")

	ds := testDataset(t, 5)
	dir := t.TempDir()
	require.NoError(t, NewCSVWriter(dir).Write(context.Background(), ds))

	bad := "student_id,admit_term\nSTU-0001,2024X\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, models.RecordSetStudents+".csv"), []byte(bad), 0o644))

	_, err = ReadCSVDataset(dir)
	require.Error(t, err)
	assert.ErrorContains(t, err, "students line 2")
}
