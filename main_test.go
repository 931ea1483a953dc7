package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/config"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/export"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/services"
)

func testConfig(dir string, seed uint64, students int) *config.Config {
	return &config.Config{
		Env:     "test",
		Version: "test",
		Generation: config.GenerationConfig{
			Seed:         seed,
			StudentCount: students,
		},
		Output: config.OutputConfig{
			Dir:     dir,
			Formats: []string{config.FormatCSV},
		},
	}
}

func TestRun_WritesDataset(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, run(context.Background(), testConfig(dir, 3, 5), "", zap.NewNop()))

	ds, err := export.ReadCSVDataset(dir)
	require.NoError(t, err)
	assert.Len(t, ds.Students, 5)
	assert.Equal(t, "ENR-00001", ds.Enrollments[0].ID)
	assert.NoError(t, services.ValidateDataset(ds))

	manifest, err := export.ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), manifest.Seed)
}

func TestRun_ResumeAppendsInPlace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, run(ctx, testConfig(dir, 3, 5), "", zap.NewNop()))
	before, err := export.ReadCSVDataset(dir)
	require.NoError(t, err)

	require.NoError(t, run(ctx, testConfig(dir, 99, 4), dir, zap.NewNop()))
	after, err := export.ReadCSVDataset(dir)
	require.NoError(t, err)

	// Earlier rows survive unchanged and new rows follow them.
	require.Len(t, after.Students, 9)
	assert.Equal(t, before.Students, after.Students[:5])
	assert.Equal(t, "STU-0006", after.Students[5].ID)

	require.Greater(t, len(after.Enrollments), len(before.Enrollments))
	assert.Equal(t, before.Enrollments, after.Enrollments[:len(before.Enrollments)])
	assert.Equal(t, "ENR-00001", after.Enrollments[0].ID)
	assert.Equal(t, models.EnrollmentID(len(before.Enrollments)+1), after.Enrollments[len(before.Enrollments)].ID)

	assert.Equal(t, before.Preferences, after.Preferences[:len(before.Preferences)])
	assert.Equal(t, before.Offerings, after.Offerings)
	assert.Len(t, after.Performance, 9)
	assert.NoError(t, services.ValidateDataset(after))
}

func TestRun_ResumeFromMissingDir(t *testing.T) {
	dir := t.TempDir()

	err := run(context.Background(), testConfig(dir, 3, 5), dir+"/missing", zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read existing dataset")
}
