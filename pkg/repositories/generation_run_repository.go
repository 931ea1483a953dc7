package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

// GenerationRunRepository provides data access for generation runs.
type GenerationRunRepository interface {
	// Run operations
	Create(ctx context.Context, run *models.GenerationRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationRun, error)
	GetByIDWithNodes(ctx context.Context, id uuid.UUID) (*models.GenerationRun, error)
	GetLatest(ctx context.Context) (*models.GenerationRun, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RunStatus, currentNode *string, errorMsg *string) error

	// Node operations
	CreateNodes(ctx context.Context, nodes []models.RunNode) error
	GetNodesByRun(ctx context.Context, runID uuid.UUID) ([]models.RunNode, error)
	UpdateNodeStatus(ctx context.Context, nodeID uuid.UUID, status models.RunNodeStatus, errorMsg *string) error
	UpdateNodeProgress(ctx context.Context, nodeID uuid.UUID, progress *models.RunNodeProgress) error
}

// ============================================================================
// In-memory implementation
// ============================================================================

type memoryRunRepository struct {
	mu    sync.RWMutex
	runs  map[uuid.UUID]*models.GenerationRun
	nodes map[uuid.UUID]*models.RunNode
}

// NewMemoryRunRepository returns a GenerationRunRepository that keeps runs in
// process memory. Used when no database is configured.
func NewMemoryRunRepository() GenerationRunRepository {
	return &memoryRunRepository{
		runs:  make(map[uuid.UUID]*models.GenerationRun),
		nodes: make(map[uuid.UUID]*models.RunNode),
	}
}

var _ GenerationRunRepository = (*memoryRunRepository)(nil)

func (r *memoryRunRepository) Create(ctx context.Context, run *models.GenerationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	run.CreatedAt = now
	run.UpdatedAt = now
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if _, exists := r.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}

	stored := *run
	stored.Nodes = nil
	r.runs[run.ID] = &stored
	return nil
}

func (r *memoryRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, apperrors.ErrNotFound)
	}
	out := *run
	return &out, nil
}

func (r *memoryRunRepository) GetByIDWithNodes(ctx context.Context, id uuid.UUID) (*models.GenerationRun, error) {
	run, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	nodes, err := r.GetNodesByRun(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Nodes = nodes
	return run, nil
}

func (r *memoryRunRepository) GetLatest(ctx context.Context) (*models.GenerationRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.GenerationRun
	for _, run := range r.runs {
		if latest == nil || run.CreatedAt.After(latest.CreatedAt) {
			latest = run
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("latest run: %w", apperrors.ErrNotFound)
	}
	out := *latest
	return &out, nil
}

func (r *memoryRunRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RunStatus, currentNode *string, errorMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return fmt.Errorf("run %s: %w", id, apperrors.ErrNotFound)
	}

	now := time.Now()
	run.Status = status
	run.CurrentNode = currentNode
	if errorMsg != nil {
		run.ErrorMessage = errorMsg
	}
	if status == models.RunStatusRunning && run.StartedAt == nil {
		run.StartedAt = &now
	}
	if status.IsTerminal() {
		run.CompletedAt = &now
	}
	run.UpdatedAt = now
	return nil
}

func (r *memoryRunRepository) CreateNodes(ctx context.Context, nodes []models.RunNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for i := range nodes {
		node := &nodes[i]
		if _, ok := r.runs[node.RunID]; !ok {
			return fmt.Errorf("run %s: %w", node.RunID, apperrors.ErrNotFound)
		}
		node.CreatedAt = now
		node.UpdatedAt = now
		if node.ID == uuid.Nil {
			node.ID = uuid.New()
		}
		stored := *node
		r.nodes[node.ID] = &stored
	}
	return nil
}

func (r *memoryRunRepository) GetNodesByRun(ctx context.Context, runID uuid.UUID) ([]models.RunNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var nodes []models.RunNode
	for _, node := range r.nodes {
		if node.RunID == runID {
			out := *node
			if node.Progress != nil {
				p := *node.Progress
				out.Progress = &p
			}
			nodes = append(nodes, out)
		}
	}
	slices.SortFunc(nodes, func(a, b models.RunNode) int { return a.NodeOrder - b.NodeOrder })
	return nodes, nil
}

func (r *memoryRunRepository) UpdateNodeStatus(ctx context.Context, nodeID uuid.UUID, status models.RunNodeStatus, errorMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %s: %w", nodeID, apperrors.ErrNotFound)
	}

	now := time.Now()
	node.Status = status
	if errorMsg != nil {
		node.ErrorMessage = errorMsg
	}
	if status == models.RunNodeStatusRunning {
		node.StartedAt = &now
	}
	if status.IsTerminal() {
		node.CompletedAt = &now
	}
	node.UpdatedAt = now
	return nil
}

func (r *memoryRunRepository) UpdateNodeProgress(ctx context.Context, nodeID uuid.UUID, progress *models.RunNodeProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %s: %w", nodeID, apperrors.ErrNotFound)
	}
	if progress != nil {
		p := *progress
		node.Progress = &p
	} else {
		node.Progress = nil
	}
	node.UpdatedAt = time.Now()
	return nil
}

// ============================================================================
// PostgreSQL implementation
// ============================================================================

type postgresRunRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRunRepository returns a GenerationRunRepository backed by the
// generation_runs and generation_run_nodes tables.
func NewPostgresRunRepository(pool *pgxpool.Pool) GenerationRunRepository {
	return &postgresRunRepository{pool: pool}
}

var _ GenerationRunRepository = (*postgresRunRepository)(nil)

const runColumns = `
	id, seed, student_count, status, current_node, error_message,
	started_at, completed_at, created_at, updated_at`

const nodeColumns = `
	id, run_id, node_name, node_order, status, progress,
	started_at, completed_at, error_message, created_at, updated_at`

func (r *postgresRunRepository) Create(ctx context.Context, run *models.GenerationRun) error {
	now := time.Now()
	run.CreatedAt = now
	run.UpdatedAt = now
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	// seed is stored as the int64 with the same bit pattern
	query := `INSERT INTO generation_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		run.ID, int64(run.Seed), run.StudentCount, run.Status, run.CurrentNode, run.ErrorMessage,
		run.StartedAt, run.CompletedAt, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (r *postgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationRun, error) {
	query := `SELECT ` + runColumns + ` FROM generation_runs WHERE id = $1`
	run, err := scanRunRow(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, apperrors.ErrNotFound)
	}
	return run, err
}

func (r *postgresRunRepository) GetByIDWithNodes(ctx context.Context, id uuid.UUID) (*models.GenerationRun, error) {
	run, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	nodes, err := r.GetNodesByRun(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Nodes = nodes

	return run, nil
}

func (r *postgresRunRepository) GetLatest(ctx context.Context) (*models.GenerationRun, error) {
	query := `SELECT ` + runColumns + ` FROM generation_runs ORDER BY created_at DESC LIMIT 1`
	run, err := scanRunRow(r.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("latest run: %w", apperrors.ErrNotFound)
	}
	return run, err
}

func (r *postgresRunRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RunStatus, currentNode *string, errorMsg *string) error {
	var startedAt, completedAt *time.Time
	now := time.Now()
	if status == models.RunStatusRunning {
		startedAt = &now
	}
	if status.IsTerminal() {
		completedAt = &now
	}

	query := `
		UPDATE generation_runs
		SET status = $2,
		    current_node = $3,
		    error_message = COALESCE($4, error_message),
		    started_at = COALESCE(started_at, $5),
		    completed_at = COALESCE($6, completed_at),
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, status, currentNode, errorMsg, startedAt, completedAt)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *postgresRunRepository) CreateNodes(ctx context.Context, nodes []models.RunNode) error {
	if len(nodes) == 0 {
		return nil
	}

	now := time.Now()
	query := `INSERT INTO generation_run_nodes (` + nodeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	batch := &pgx.Batch{}
	for i := range nodes {
		node := &nodes[i]
		node.CreatedAt = now
		node.UpdatedAt = now
		if node.ID == uuid.Nil {
			node.ID = uuid.New()
		}

		progressJSON, err := marshalProgress(node.Progress)
		if err != nil {
			return err
		}

		batch.Queue(query,
			node.ID, node.RunID, node.NodeName, node.NodeOrder, node.Status, progressJSON,
			node.StartedAt, node.CompletedAt, node.ErrorMessage, node.CreatedAt, node.UpdatedAt,
		)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to create nodes: %w", err)
	}
	return nil
}

func (r *postgresRunRepository) GetNodesByRun(ctx context.Context, runID uuid.UUID) ([]models.RunNode, error) {
	query := `SELECT ` + nodeColumns + ` FROM generation_run_nodes WHERE run_id = $1 ORDER BY node_order`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []models.RunNode
	for rows.Next() {
		node, err := scanNodeRow(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	return nodes, nil
}

func (r *postgresRunRepository) UpdateNodeStatus(ctx context.Context, nodeID uuid.UUID, status models.RunNodeStatus, errorMsg *string) error {
	var startedAt, completedAt *time.Time
	now := time.Now()
	if status == models.RunNodeStatusRunning {
		startedAt = &now
	}
	if status.IsTerminal() {
		completedAt = &now
	}

	query := `
		UPDATE generation_run_nodes
		SET status = $2,
		    error_message = COALESCE($3, error_message),
		    started_at = COALESCE($4, started_at),
		    completed_at = COALESCE($5, completed_at),
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, nodeID, status, errorMsg, startedAt, completedAt)
	if err != nil {
		return fmt.Errorf("failed to update node status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", nodeID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *postgresRunRepository) UpdateNodeProgress(ctx context.Context, nodeID uuid.UUID, progress *models.RunNodeProgress) error {
	progressJSON, err := marshalProgress(progress)
	if err != nil {
		return err
	}

	query := `
		UPDATE generation_run_nodes
		SET progress = $2,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, nodeID, progressJSON)
	if err != nil {
		return fmt.Errorf("failed to update node progress: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", nodeID, apperrors.ErrNotFound)
	}
	return nil
}

// ============================================================================
// Helper Functions - Scan
// ============================================================================

func marshalProgress(progress *models.RunNodeProgress) ([]byte, error) {
	if progress == nil {
		return nil, nil
	}
	data, err := json.Marshal(progress)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress: %w", err)
	}
	return data, nil
}

func scanRunRow(row pgx.Row) (*models.GenerationRun, error) {
	var run models.GenerationRun
	var seed int64

	err := row.Scan(
		&run.ID, &seed, &run.StudentCount, &run.Status, &run.CurrentNode, &run.ErrorMessage,
		&run.StartedAt, &run.CompletedAt, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.Seed = uint64(seed)

	return &run, nil
}

func scanNodeRow(row pgx.Row) (*models.RunNode, error) {
	var node models.RunNode
	var progressJSON []byte

	err := row.Scan(
		&node.ID, &node.RunID, &node.NodeName, &node.NodeOrder, &node.Status, &progressJSON,
		&node.StartedAt, &node.CompletedAt, &node.ErrorMessage, &node.CreatedAt, &node.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan node: %w", err)
	}

	if len(progressJSON) > 0 {
		node.Progress = &models.RunNodeProgress{}
		if err := json.Unmarshal(progressJSON, node.Progress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
		}
	}

	return &node, nil
}
