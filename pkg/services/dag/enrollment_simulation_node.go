package dag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/sampling"
)

// EnrollmentSimulationMethods walks students through their terms.
type EnrollmentSimulationMethods interface {
	SimulateEnrollments(
		catalog *models.Catalog,
		students []models.Student,
		src *sampling.Source,
		ids *models.IDCounter,
	) ([]models.Enrollment, error)
}

// EnrollmentSimulationNode produces the enrollment ledger.
type EnrollmentSimulationNode struct {
	*BaseNode
	methods EnrollmentSimulationMethods
}

// NewEnrollmentSimulationNode creates a new enrollment simulation node.
func NewEnrollmentSimulationNode(progress ProgressReporter, methods EnrollmentSimulationMethods, logger *zap.Logger) *EnrollmentSimulationNode {
	return &EnrollmentSimulationNode{
		BaseNode: NewBaseNode(models.NodeEnrollmentSimulation, progress, logger),
		methods:  methods,
	}
}

// Execute simulates enrollments for the run's cohort and appends them to the
// ledger once the whole cohort has been simulated.
func (n *EnrollmentSimulationNode) Execute(ctx context.Context, run *models.GenerationRun, ws *Workspace) error {
	if err := requireStage(n.Name(), ws.Catalog != nil, "catalog"); err != nil {
		return err
	}
	if err := requireStage(n.Name(), len(ws.Cohort()) > 0, "students"); err != nil {
		return err
	}

	cohort := ws.Cohort()
	total := len(cohort)
	n.ReportProgress(ctx, 0, total, "Simulating enrollments...")

	firstSeq := ws.IDs.Peek()
	enrollments, err := n.methods.SimulateEnrollments(ws.Catalog, cohort, ws.Source, ws.IDs)
	if err != nil {
		return nodeError(n.Name(), fmt.Errorf("simulate enrollments: %w", err))
	}
	ws.Dataset.Enrollments = append(ws.Dataset.Enrollments, enrollments...)

	n.ReportProgress(ctx, total, total, countMessage("Simulated", len(enrollments), "enrollment"))
	n.Logger().Info("Enrollments simulated",
		zap.String("run_id", run.ID.String()),
		zap.Int("enrollments", len(enrollments)),
		zap.Int("ledger_size", len(ws.Dataset.Enrollments)),
		zap.String("first_id", models.EnrollmentID(firstSeq)),
		zap.Int("next_seq", ws.IDs.Peek()))
	return nil
}
