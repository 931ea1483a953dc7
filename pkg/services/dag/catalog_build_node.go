package dag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

// CatalogBuildMethods builds the static course catalog and degree requirements.
type CatalogBuildMethods interface {
	BuildCatalog() (*models.Catalog, error)
	BuildDegreeRequirements(catalog *models.Catalog) ([]models.DegreeRequirement, error)
}

// CatalogBuildNode builds the course catalog and degree requirements.
type CatalogBuildNode struct {
	*BaseNode
	methods CatalogBuildMethods
}

// NewCatalogBuildNode creates a new catalog build node.
func NewCatalogBuildNode(progress ProgressReporter, methods CatalogBuildMethods, logger *zap.Logger) *CatalogBuildNode {
	return &CatalogBuildNode{
		BaseNode: NewBaseNode(models.NodeCatalogBuild, progress, logger),
		methods:  methods,
	}
}

// Execute builds the catalog and stores it with its requirements in the workspace.
func (n *CatalogBuildNode) Execute(ctx context.Context, run *models.GenerationRun, ws *Workspace) error {
	n.ReportProgress(ctx, 0, 2, "Building course catalog...")

	catalog, err := n.methods.BuildCatalog()
	if err != nil {
		return nodeError(n.Name(), fmt.Errorf("build catalog: %w", err))
	}
	n.ReportProgress(ctx, 1, 2, countMessage("Built", catalog.Len(), "course"))

	requirements, err := n.methods.BuildDegreeRequirements(catalog)
	if err != nil {
		return nodeError(n.Name(), fmt.Errorf("build degree requirements: %w", err))
	}

	ws.Catalog = catalog
	ws.Dataset.Courses = catalog.Courses()
	ws.Dataset.Requirements = requirements

	n.ReportProgress(ctx, 2, 2, countMessage("Built", len(requirements), "degree requirement"))
	n.Logger().Info("Catalog built",
		zap.String("run_id", run.ID.String()),
		zap.Int("courses", catalog.Len()),
		zap.Int("requirements", len(requirements)))
	return nil
}
