//go:build integration

package export

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/testhelpers"
)

func TestRedisWriter_Write(t *testing.T) {
	client := testhelpers.GetTestRedis(t).Client
	ctx := context.Background()
	prefix := "export-test"
	w := NewRedisWriter(client, prefix, zap.NewNop())

	ds := testDataset(t, 10)
	require.NoError(t, w.Write(ctx, ds))

	student, err := client.HGetAll(ctx, prefix+":students:STU-0001").Result()
	require.NoError(t, err)
	assert.Equal(t, "STU-0001", student["student_id"])
	assert.Equal(t, ds.Students[0].AdmitTerm.String(), student["admit_term"])

	ids, err := client.SCard(ctx, prefix+":enrollments:ids").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(len(ds.Enrollments)), ids)

	prefs, err := client.LRange(ctx, prefix+":student_preferences:STU-0001", 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, prefs, 4)
	var first map[string]string
	require.NoError(t, json.Unmarshal([]byte(prefs[0]), &first))
	assert.Equal(t, "STU-0001", first["student_id"])

	run, err := client.HGetAll(ctx, prefix+":run").Result()
	require.NoError(t, err)
	assert.Equal(t, ds.RunID.String(), run["run_id"])
	assert.Equal(t, strconv.FormatUint(ds.Seed, 10), run["seed"])
	assert.Equal(t, strconv.Itoa(len(ds.Students)), run[models.RecordSetStudents])

	// Rewriting clears keys from the previous dataset.
	smaller := testDataset(t, 3)
	require.NoError(t, w.Write(ctx, smaller))

	exists, err := client.Exists(ctx, prefix+":students:STU-0010").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	prefs, err = client.LRange(ctx, prefix+":student_preferences:STU-0001", 0, -1).Result()
	require.NoError(t, err)
	assert.Len(t, prefs, 4)
}
