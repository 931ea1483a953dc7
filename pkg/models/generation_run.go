package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Run Status
// ============================================================================

// RunStatus represents the execution status of a generation run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ValidRunStatuses contains all valid run status values.
var ValidRunStatuses = []RunStatus{
	RunStatusPending,
	RunStatusRunning,
	RunStatusCompleted,
	RunStatusFailed,
}

// IsValidRunStatus checks if the given status is valid.
func IsValidRunStatus(s RunStatus) bool {
	for _, v := range ValidRunStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the run status is terminal (completed or failed).
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// ============================================================================
// Run Node Status
// ============================================================================

// RunNodeStatus represents the execution status of a pipeline node.
type RunNodeStatus string

const (
	RunNodeStatusPending   RunNodeStatus = "pending"
	RunNodeStatusRunning   RunNodeStatus = "running"
	RunNodeStatusCompleted RunNodeStatus = "completed"
	RunNodeStatusFailed    RunNodeStatus = "failed"
	RunNodeStatusSkipped   RunNodeStatus = "skipped"
)

// IsTerminal returns true if the node status is terminal.
func (s RunNodeStatus) IsTerminal() bool {
	return s == RunNodeStatusCompleted || s == RunNodeStatusFailed || s == RunNodeStatusSkipped
}

// ============================================================================
// Node Names
// ============================================================================

// RunNodeName represents the name of a node in the generation pipeline.
type RunNodeName string

const (
	NodeCatalogBuild           RunNodeName = "CatalogBuild"
	NodeOfferingSchedule       RunNodeName = "OfferingSchedule"
	NodeStudentPopulation      RunNodeName = "StudentPopulation"
	NodeEnrollmentSimulation   RunNodeName = "EnrollmentSimulation"
	NodePerformanceAggregation RunNodeName = "PerformanceAggregation"
	NodePreferenceGeneration   RunNodeName = "PreferenceGeneration"
	NodeDatasetValidation      RunNodeName = "DatasetValidation"
)

// RunNodeOrder defines the execution order for each node.
var RunNodeOrder = map[RunNodeName]int{
	NodeCatalogBuild:           1,
	NodeOfferingSchedule:       2,
	NodeStudentPopulation:      3,
	NodeEnrollmentSimulation:   4,
	NodePerformanceAggregation: 5,
	NodePreferenceGeneration:   6,
	NodeDatasetValidation:      7,
}

// AllRunNodes returns all node names in execution order.
// The order is also the order random draws are consumed in, so changing it
// changes every dataset generated from a given seed.
func AllRunNodes() []RunNodeName {
	return []RunNodeName{
		NodeCatalogBuild,
		NodeOfferingSchedule,
		NodeStudentPopulation,
		NodeEnrollmentSimulation,
		NodePerformanceAggregation,
		NodePreferenceGeneration,
		NodeDatasetValidation,
	}
}

// ============================================================================
// Node Progress
// ============================================================================

// RunNodeProgress tracks the progress of a pipeline node.
type RunNodeProgress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message,omitempty"`
}

// Percentage returns the completion percentage (0-100).
func (p *RunNodeProgress) Percentage() int {
	if p == nil || p.Total == 0 {
		return 0
	}
	return int(float64(p.Current) / float64(p.Total) * 100)
}

// ============================================================================
// Generation Run Model
// ============================================================================

// GenerationRun represents one end-to-end synthesis of the dataset.
type GenerationRun struct {
	ID           uuid.UUID `json:"id"`
	Seed         uint64    `json:"seed"`
	StudentCount int       `json:"student_count"`

	// Execution state
	Status       RunStatus `json:"status"`
	CurrentNode  *string   `json:"current_node,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`

	// Timing
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Nodes (populated when fetching with nodes)
	Nodes []RunNode `json:"nodes,omitempty"`
}

// IsComplete returns true if the run completed successfully.
func (r *GenerationRun) IsComplete() bool {
	return r.Status == RunStatusCompleted
}

// HasFailed returns true if the run failed.
func (r *GenerationRun) HasFailed() bool {
	return r.Status == RunStatusFailed
}

// CompletedNodeCount returns the number of completed nodes.
func (r *GenerationRun) CompletedNodeCount() int {
	count := 0
	for _, node := range r.Nodes {
		if node.Status == RunNodeStatusCompleted {
			count++
		}
	}
	return count
}

// ============================================================================
// Run Node Model
// ============================================================================

// RunNode represents a node within a generation run.
type RunNode struct {
	ID    uuid.UUID `json:"id"`
	RunID uuid.UUID `json:"run_id"`

	NodeName  string `json:"node_name"`
	NodeOrder int    `json:"node_order"`

	Status   RunNodeStatus    `json:"status"`
	Progress *RunNodeProgress `json:"progress,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	ErrorMessage *string `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasFailed returns true if the node failed.
func (n *RunNode) HasFailed() bool {
	return n.Status == RunNodeStatusFailed
}
