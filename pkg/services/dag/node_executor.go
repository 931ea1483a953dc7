package dag

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

// NodeExecutor defines the interface for pipeline node execution.
// Each node wraps a service method and reports progress.
type NodeExecutor interface {
	// Name returns the node name (e.g., "EnrollmentSimulation")
	Name() models.RunNodeName

	// Execute runs the node's work against the shared workspace.
	Execute(ctx context.Context, run *models.GenerationRun, ws *Workspace) error
}

// ProgressReporter persists node progress. GenerationRunRepository satisfies it.
type ProgressReporter interface {
	UpdateNodeProgress(ctx context.Context, nodeID uuid.UUID, progress *models.RunNodeProgress) error
}

// BaseNode provides common functionality for all pipeline nodes.
type BaseNode struct {
	nodeName      models.RunNodeName
	progress      ProgressReporter
	logger        *zap.Logger
	currentNodeID uuid.UUID
}

// NewBaseNode creates a new base node with common dependencies.
func NewBaseNode(nodeName models.RunNodeName, progress ProgressReporter, logger *zap.Logger) *BaseNode {
	return &BaseNode{
		nodeName: nodeName,
		progress: progress,
		logger:   logger.Named(string(nodeName)),
	}
}

// Name returns the node name.
func (b *BaseNode) Name() models.RunNodeName {
	return b.nodeName
}

// SetCurrentNodeID sets the node ID for progress reporting.
func (b *BaseNode) SetCurrentNodeID(nodeID uuid.UUID) {
	b.currentNodeID = nodeID
}

// ReportProgress updates the node's progress. Failures are logged, not returned:
// progress is informational and must not fail a run.
func (b *BaseNode) ReportProgress(ctx context.Context, current, total int, message string) {
	if b.currentNodeID == uuid.Nil || b.progress == nil {
		return
	}

	err := b.progress.UpdateNodeProgress(ctx, b.currentNodeID, &models.RunNodeProgress{
		Current: current,
		Total:   total,
		Message: message,
	})
	if err != nil {
		b.logger.Warn("Failed to report progress", zap.Error(err))
	}
}

// Logger returns the node's logger.
func (b *BaseNode) Logger() *zap.Logger {
	return b.logger
}

// countMessage renders e.g. "Generated 120 students", "Built 1 catalog".
func countMessage(verb string, n int, noun string) string {
	if n != 1 {
		noun = inflection.Plural(noun)
	}
	return fmt.Sprintf("%s %d %s", verb, n, noun)
}

// NodeError marks a failure inside node logic. Simulation is deterministic,
// so a node error is never retried.
type NodeError struct {
	Node models.RunNodeName
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// IsRetryable implements retry.RetryableError.
func (e *NodeError) IsRetryable() bool {
	return false
}

func nodeError(node models.RunNodeName, err error) error {
	var existing *NodeError
	if errors.As(err, &existing) {
		return err
	}
	return &NodeError{Node: node, Err: err}
}

// requireStage fails when an upstream node has not produced its output.
func requireStage(node models.RunNodeName, ok bool, missing string) error {
	if ok {
		return nil
	}
	return nodeError(node, fmt.Errorf("%s not available; upstream node has not run", missing))
}
