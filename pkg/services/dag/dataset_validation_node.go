package dag

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

// DatasetValidationMethods checks a finished dataset.
type DatasetValidationMethods interface {
	ValidateDataset(ds *models.Dataset) error
}

// DatasetValidationNode rejects a dataset that breaks a ledger or
// referential invariant, so nothing inconsistent is ever written.
type DatasetValidationNode struct {
	*BaseNode
	methods DatasetValidationMethods
}

// NewDatasetValidationNode creates a new dataset validation node.
func NewDatasetValidationNode(progress ProgressReporter, methods DatasetValidationMethods, logger *zap.Logger) *DatasetValidationNode {
	return &DatasetValidationNode{
		BaseNode: NewBaseNode(models.NodeDatasetValidation, progress, logger),
		methods:  methods,
	}
}

func (n *DatasetValidationNode) Execute(ctx context.Context, run *models.GenerationRun, ws *Workspace) error {
	n.ReportProgress(ctx, 0, 1, "Validating dataset...")

	if err := n.methods.ValidateDataset(ws.Dataset); err != nil {
		return nodeError(n.Name(), err)
	}

	n.ReportProgress(ctx, 1, 1, "Dataset valid")
	n.Logger().Info("Dataset validated", zap.String("run_id", run.ID.String()))
	return nil
}
