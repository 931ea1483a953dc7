package dag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/sampling"
)

// StudentPopulationMethods generates admitted students.
type StudentPopulationMethods interface {
	GenerateStudents(firstSeq, count int, src *sampling.Source) ([]models.Student, error)
}

// StudentPopulationNode admits the run's student cohort.
type StudentPopulationNode struct {
	*BaseNode
	methods StudentPopulationMethods
}

// NewStudentPopulationNode creates a new student population node.
func NewStudentPopulationNode(progress ProgressReporter, methods StudentPopulationMethods, logger *zap.Logger) *StudentPopulationNode {
	return &StudentPopulationNode{
		BaseNode: NewBaseNode(models.NodeStudentPopulation, progress, logger),
		methods:  methods,
	}
}

func (n *StudentPopulationNode) Execute(ctx context.Context, run *models.GenerationRun, ws *Workspace) error {
	n.ReportProgress(ctx, 0, ws.StudentCount, "Generating students...")

	students, err := n.methods.GenerateStudents(ws.FirstStudentSeq, ws.StudentCount, ws.Source)
	if err != nil {
		return nodeError(n.Name(), fmt.Errorf("generate students: %w", err))
	}
	ws.Dataset.Students = append(ws.Dataset.Students, students...)

	n.ReportProgress(ctx, len(students), ws.StudentCount, countMessage("Generated", len(students), "student"))
	n.Logger().Info("Students generated",
		zap.String("run_id", run.ID.String()),
		zap.Int("students", len(students)),
		zap.String("first_id", models.StudentID(ws.FirstStudentSeq)),
		zap.Int("total", len(ws.Dataset.Students)))
	return nil
}
