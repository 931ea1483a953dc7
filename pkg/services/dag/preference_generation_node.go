package dag

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/sampling"
)

// PreferenceGenerationMethods builds preference tuples.
type PreferenceGenerationMethods interface {
	GeneratePreferences(students []models.Student, src *sampling.Source) []models.PreferenceTuple
	EnrichPreferences(
		students []models.Student,
		enrollments []models.Enrollment,
		catalog *models.Catalog,
		src *sampling.Source,
	) []models.PreferenceTuple
}

// PreferenceGenerationNode builds base preferences and, when enabled, the
// enrichment tuples derived from elective enrollments.
type PreferenceGenerationNode struct {
	*BaseNode
	methods PreferenceGenerationMethods
}

// NewPreferenceGenerationNode creates a new preference generation node.
func NewPreferenceGenerationNode(progress ProgressReporter, methods PreferenceGenerationMethods, logger *zap.Logger) *PreferenceGenerationNode {
	return &PreferenceGenerationNode{
		BaseNode: NewBaseNode(models.NodePreferenceGeneration, progress, logger),
		methods:  methods,
	}
}

func (n *PreferenceGenerationNode) Execute(ctx context.Context, run *models.GenerationRun, ws *Workspace) error {
	if err := requireStage(n.Name(), ws.Catalog != nil, "catalog"); err != nil {
		return err
	}

	steps := 1
	if ws.EnrichPreferences {
		steps = 2
	}
	n.ReportProgress(ctx, 0, steps, "Generating preferences...")

	cohort := ws.Cohort()
	prefs := n.methods.GeneratePreferences(cohort, ws.Source)
	base := len(prefs)
	n.ReportProgress(ctx, 1, steps, countMessage("Generated", base, "preference"))

	if ws.EnrichPreferences {
		extra := n.methods.EnrichPreferences(cohort, ws.Dataset.Enrollments, ws.Catalog, ws.Source)
		prefs = append(prefs, extra...)
		n.ReportProgress(ctx, 2, 2, countMessage("Added", len(extra), "enriched preference"))
	}
	ws.Dataset.Preferences = append(ws.Dataset.Preferences, prefs...)

	n.Logger().Info("Preferences generated",
		zap.String("run_id", run.ID.String()),
		zap.Int("base", base),
		zap.Int("added", len(prefs)),
		zap.Int("total", len(ws.Dataset.Preferences)))
	return nil
}
