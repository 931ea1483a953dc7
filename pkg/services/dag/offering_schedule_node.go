package dag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/sampling"
)

// OfferingScheduleMethods schedules course sections.
type OfferingScheduleMethods interface {
	ScheduleOfferings(catalog *models.Catalog, src *sampling.Source) ([]models.Offering, error)
}

// OfferingScheduleNode schedules offerings for every catalog course.
type OfferingScheduleNode struct {
	*BaseNode
	methods OfferingScheduleMethods
}

// NewOfferingScheduleNode creates a new offering schedule node.
func NewOfferingScheduleNode(progress ProgressReporter, methods OfferingScheduleMethods, logger *zap.Logger) *OfferingScheduleNode {
	return &OfferingScheduleNode{
		BaseNode: NewBaseNode(models.NodeOfferingSchedule, progress, logger),
		methods:  methods,
	}
}

func (n *OfferingScheduleNode) Execute(ctx context.Context, run *models.GenerationRun, ws *Workspace) error {
	if err := requireStage(n.Name(), ws.Catalog != nil, "catalog"); err != nil {
		return err
	}
	if len(ws.Dataset.Offerings) > 0 {
		// Offerings carried over from a base dataset stay as published.
		n.ReportProgress(ctx, 1, 1, countMessage("Kept", len(ws.Dataset.Offerings), "offering"))
		n.Logger().Info("Offerings carried over",
			zap.String("run_id", run.ID.String()),
			zap.Int("offerings", len(ws.Dataset.Offerings)))
		return nil
	}

	n.ReportProgress(ctx, 0, 1, "Scheduling course offerings...")

	offerings, err := n.methods.ScheduleOfferings(ws.Catalog, ws.Source)
	if err != nil {
		return nodeError(n.Name(), fmt.Errorf("schedule offerings: %w", err))
	}
	ws.Dataset.Offerings = offerings

	n.ReportProgress(ctx, 1, 1, countMessage("Scheduled", len(offerings), "offering"))
	n.Logger().Info("Offerings scheduled",
		zap.String("run_id", run.ID.String()),
		zap.Int("offerings", len(offerings)))
	return nil
}
