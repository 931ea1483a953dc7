package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/repositories"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/services/dag"
)

// RunRequest describes one generation run.
type RunRequest struct {
	Seed              uint64
	StudentCount      int
	EnrichPreferences bool

	// Base is an existing dataset to append to. Its students, offerings,
	// enrollments and preferences are kept as they are; StudentCount new
	// students are admitted after its highest student id and the ledger
	// continues after its highest enrollment id. Nil starts a new dataset.
	Base *models.Dataset
}

// GenerationDAGService orchestrates dataset generation as a sequence of
// pipeline nodes, recording run and node state for inspection.
type GenerationDAGService interface {
	// Run executes every node in order and returns the validated dataset.
	// On failure no dataset is returned and the run is marked failed.
	Run(ctx context.Context, req RunRequest) (*models.Dataset, error)

	// GetRun returns a run with all node states.
	GetRun(ctx context.Context, runID uuid.UUID) (*models.GenerationRun, error)
}

type generationDAGService struct {
	runRepo repositories.GenerationRunRepository

	catalogMethods     dag.CatalogBuildMethods
	offeringMethods    dag.OfferingScheduleMethods
	populationMethods  dag.StudentPopulationMethods
	enrollmentMethods  dag.EnrollmentSimulationMethods
	performanceMethods dag.PerformanceAggregationMethods
	preferenceMethods  dag.PreferenceGenerationMethods
	validationMethods  dag.DatasetValidationMethods

	logger *zap.Logger
}

// NewGenerationDAGService creates a GenerationDAGService wired to the default
// simulation services.
func NewGenerationDAGService(runRepo repositories.GenerationRunRepository, logger *zap.Logger) GenerationDAGService {
	return &generationDAGService{
		runRepo:            runRepo,
		catalogMethods:     NewCatalogService(logger),
		offeringMethods:    NewOfferingService(logger),
		populationMethods:  NewPopulationService(logger),
		enrollmentMethods:  NewEnrollmentService(logger),
		performanceMethods: NewPerformanceService(logger),
		preferenceMethods:  NewPreferenceService(logger),
		validationMethods:  ValidatorFunc(ValidateDataset),
		logger:             logger.Named("generation-dag"),
	}
}

var _ GenerationDAGService = (*generationDAGService)(nil)

func (s *generationDAGService) Run(ctx context.Context, req RunRequest) (*models.Dataset, error) {
	if req.StudentCount < 1 {
		return nil, fmt.Errorf("%w: student count must be at least 1, got %d", apperrors.ErrInvalidInput, req.StudentCount)
	}

	opts := dag.WorkspaceOptions{
		Seed:              req.Seed,
		StudentCount:      req.StudentCount,
		EnrichPreferences: req.EnrichPreferences,
		Base:              req.Base,
	}
	if req.Base != nil {
		ids, err := models.ResumeIDCounter(req.Base.Enrollments)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
		}
		firstStudent, err := models.NextStudentSeq(req.Base.Students)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
		}
		opts.IDs = ids
		opts.FirstStudentSeq = firstStudent
	}

	run := &models.GenerationRun{
		ID:           uuid.New(),
		Seed:         req.Seed,
		StudentCount: req.StudentCount,
		Status:       models.RunStatusPending,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	nodes := s.createNodes(run.ID)
	if err := s.runRepo.CreateNodes(ctx, nodes); err != nil {
		return nil, fmt.Errorf("create nodes: %w", err)
	}

	s.logger.Info("Starting generation run",
		zap.String("run_id", run.ID.String()),
		zap.Uint64("seed", req.Seed),
		zap.Int("students", req.StudentCount),
		zap.Bool("appending", req.Base != nil))

	opts.RunID = run.ID
	ws := dag.NewWorkspace(opts)

	start := time.Now()
	for i := range nodes {
		if err := ctx.Err(); err != nil {
			s.markRunFailed(run.ID, &nodes[i], fmt.Sprintf("cancelled: %v", err))
			return nil, fmt.Errorf("run cancelled: %w", err)
		}

		if err := s.executeNode(ctx, run, &nodes[i], ws); err != nil {
			s.logger.Error("Node execution failed",
				zap.String("run_id", run.ID.String()),
				zap.String("node_name", nodes[i].NodeName),
				zap.Error(err))
			s.markRunFailed(run.ID, &nodes[i], err.Error())
			return nil, err
		}
	}

	s.markRunCompleted(run.ID)
	s.logger.Info("Generation run completed",
		zap.String("run_id", run.ID.String()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("enrollments", len(ws.Dataset.Enrollments)))
	return ws.Dataset, nil
}

func (s *generationDAGService) GetRun(ctx context.Context, runID uuid.UUID) (*models.GenerationRun, error) {
	run, err := s.runRepo.GetByIDWithNodes(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// createNodes creates all pipeline nodes in pending state.
func (s *generationDAGService) createNodes(runID uuid.UUID) []models.RunNode {
	allNodes := models.AllRunNodes()
	nodes := make([]models.RunNode, len(allNodes))

	for i, nodeName := range allNodes {
		nodes[i] = models.RunNode{
			ID:        uuid.New(),
			RunID:     runID,
			NodeName:  string(nodeName),
			NodeOrder: models.RunNodeOrder[nodeName],
			Status:    models.RunNodeStatusPending,
		}
	}

	return nodes
}

// executeNode runs a single node exactly once. Nodes draw from the run's
// Source and IDCounter, so a re-run would shift every later draw and leave
// gaps in the ledger; they must never be wrapped in a retry.
func (s *generationDAGService) executeNode(ctx context.Context, run *models.GenerationRun, node *models.RunNode, ws *dag.Workspace) error {
	s.logger.Debug("Executing node",
		zap.String("run_id", run.ID.String()),
		zap.String("node_name", node.NodeName))

	nodeName := node.NodeName
	if err := s.runRepo.UpdateStatus(ctx, run.ID, models.RunStatusRunning, &nodeName, nil); err != nil {
		return fmt.Errorf("update current node: %w", err)
	}
	if err := s.runRepo.UpdateNodeStatus(ctx, node.ID, models.RunNodeStatusRunning, nil); err != nil {
		return fmt.Errorf("mark node running: %w", err)
	}

	executor, err := s.getNodeExecutor(models.RunNodeName(node.NodeName), node.ID)
	if err != nil {
		return fmt.Errorf("get node executor: %w", err)
	}

	if err := executor.Execute(ctx, run, ws); err != nil {
		return err
	}

	if err := s.runRepo.UpdateNodeStatus(ctx, node.ID, models.RunNodeStatusCompleted, nil); err != nil {
		return fmt.Errorf("mark node completed: %w", err)
	}
	node.Status = models.RunNodeStatusCompleted
	return nil
}

// getNodeExecutor returns the executor for a node.
func (s *generationDAGService) getNodeExecutor(nodeName models.RunNodeName, nodeID uuid.UUID) (dag.NodeExecutor, error) {
	var executor interface {
		dag.NodeExecutor
		SetCurrentNodeID(uuid.UUID)
	}

	switch nodeName {
	case models.NodeCatalogBuild:
		executor = dag.NewCatalogBuildNode(s.runRepo, s.catalogMethods, s.logger)
	case models.NodeOfferingSchedule:
		executor = dag.NewOfferingScheduleNode(s.runRepo, s.offeringMethods, s.logger)
	case models.NodeStudentPopulation:
		executor = dag.NewStudentPopulationNode(s.runRepo, s.populationMethods, s.logger)
	case models.NodeEnrollmentSimulation:
		executor = dag.NewEnrollmentSimulationNode(s.runRepo, s.enrollmentMethods, s.logger)
	case models.NodePerformanceAggregation:
		executor = dag.NewPerformanceAggregationNode(s.runRepo, s.performanceMethods, s.logger)
	case models.NodePreferenceGeneration:
		executor = dag.NewPreferenceGenerationNode(s.runRepo, s.preferenceMethods, s.logger)
	case models.NodeDatasetValidation:
		executor = dag.NewDatasetValidationNode(s.runRepo, s.validationMethods, s.logger)
	default:
		return nil, fmt.Errorf("unknown node: %s", nodeName)
	}

	executor.SetCurrentNodeID(nodeID)
	return executor, nil
}

// markRunFailed records the error on the failing node and fails the run.
// A fresh context is used so a cancelled run still gets recorded.
func (s *generationDAGService) markRunFailed(runID uuid.UUID, node *models.RunNode, errMsg string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if node != nil {
		if err := s.runRepo.UpdateNodeStatus(ctx, node.ID, models.RunNodeStatusFailed, &errMsg); err != nil {
			s.logger.Error("Failed to update node status with error",
				zap.String("node_id", node.ID.String()),
				zap.Error(err))
		}
	}

	if err := s.runRepo.UpdateStatus(ctx, runID, models.RunStatusFailed, nil, &errMsg); err != nil {
		s.logger.Error("Failed to mark run as failed", zap.Error(err))
	}

	s.logger.Error("Generation run failed",
		zap.String("run_id", runID.String()),
		zap.String("error", errMsg))
}

// markRunCompleted marks the run as completed.
func (s *generationDAGService) markRunCompleted(runID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.runRepo.UpdateStatus(ctx, runID, models.RunStatusCompleted, nil, nil); err != nil {
		s.logger.Error("Failed to mark run as completed", zap.Error(err))
	}
}
