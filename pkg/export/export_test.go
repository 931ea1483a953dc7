package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/repositories"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/services"
)

func testDataset(t *testing.T, students int) *models.Dataset {
	t.Helper()
	svc := services.NewGenerationDAGService(repositories.NewMemoryRunRepository(), zap.NewNop())
	ds, err := svc.Run(context.Background(), services.RunRequest{Seed: 8760, StudentCount: students})
	require.NoError(t, err)
	return ds
}
