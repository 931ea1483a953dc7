package dag

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

// PerformanceAggregationMethods derives performance profiles.
type PerformanceAggregationMethods interface {
	AggregateAll(students []models.Student, enrollments []models.Enrollment, catalog *models.Catalog) []models.PerformanceProfile
}

// PerformanceAggregationNode recomputes every student's performance profile.
type PerformanceAggregationNode struct {
	*BaseNode
	methods PerformanceAggregationMethods
}

// NewPerformanceAggregationNode creates a new performance aggregation node.
func NewPerformanceAggregationNode(progress ProgressReporter, methods PerformanceAggregationMethods, logger *zap.Logger) *PerformanceAggregationNode {
	return &PerformanceAggregationNode{
		BaseNode: NewBaseNode(models.NodePerformanceAggregation, progress, logger),
		methods:  methods,
	}
}

func (n *PerformanceAggregationNode) Execute(ctx context.Context, run *models.GenerationRun, ws *Workspace) error {
	if err := requireStage(n.Name(), ws.Catalog != nil, "catalog"); err != nil {
		return err
	}

	total := len(ws.Dataset.Students)
	n.ReportProgress(ctx, 0, total, "Aggregating performance...")

	ws.Dataset.Performance = n.methods.AggregateAll(ws.Dataset.Students, ws.Dataset.Enrollments, ws.Catalog)

	n.ReportProgress(ctx, total, total, countMessage("Aggregated", len(ws.Dataset.Performance), "profile"))
	n.Logger().Info("Performance aggregated",
		zap.String("run_id", run.ID.String()),
		zap.Int("profiles", len(ws.Dataset.Performance)))
	return nil
}
