//go:build integration

package testhelpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestDB_MigrationsApplied(t *testing.T) {
	testDB := GetTestDB(t)
	ctx := context.Background()

	tables := []string{
		"generation_runs",
		"generation_run_nodes",
		"sim_courses",
		"sim_course_offerings",
		"sim_degree_requirements",
		"sim_students",
		"sim_student_performance",
		"sim_enrollments",
		"sim_student_preferences",
	}

	for _, table := range tables {
		var exists bool
		err := testDB.DB.Pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)",
			table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "table %s should exist", table)
	}
}

func TestTestRedis_Ping(t *testing.T) {
	testRedis := GetTestRedis(t)

	pong, err := testRedis.Client.Ping(context.Background()).Result()
	require.NoError(t, err)
	assert.Equal(t, "PONG", pong)
}
