// prune-runs removes old generation runs from the run store. Node rows
// cascade with their run.
//
// Usage: go run ./scripts/prune-runs [-keep N] [-failed-only] [-dry-run=false]
//
// Database connection: the same config.yaml and PG* environment variables
// the generator reads.
//
// Flags:
//
//	-keep         Number of most recent runs to keep (default: 20)
//	-failed-only  Only consider failed runs
//	-dry-run      Show what would be deleted without actually deleting (default: true)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/config"
)

// candidatesQuery lists runs beyond the newest $1, optionally only failed ones.
const candidatesQuery = `
	SELECT id, seed, student_count, status, COALESCE(error_message, ''), created_at
	FROM generation_runs
	WHERE ($2 = false OR status = 'failed')
	ORDER BY created_at DESC
	OFFSET $1`

type runRow struct {
	id           uuid.UUID
	seed         int64
	studentCount int
	status       string
	errorMessage string
	createdAt    time.Time
}

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to config file")
	keep := flag.Int("keep", 20, "Number of most recent runs to keep")
	failedOnly := flag.Bool("failed-only", false, "Only consider failed runs")
	dryRun := flag.Bool("dry-run", true, "Show what would be deleted without actually deleting")
	flag.Parse()

	if *keep < 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-keep N] [-failed-only] [-dry-run=false]\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	if *dryRun {
		fmt.Println("DRY RUN - no changes will be made")
		fmt.Println("Run with -dry-run=false to actually delete runs")
		fmt.Println()
	}

	candidates, err := findCandidates(ctx, conn, *keep, *failedOnly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		os.Exit(1)
	}
	if len(candidates) == 0 {
		fmt.Println("No runs to prune")
		return
	}

	for _, r := range candidates {
		line := fmt.Sprintf("  %s  %s  seed=%d students=%d  %s",
			r.createdAt.Format(time.RFC3339), r.id, uint64(r.seed), r.studentCount, r.status)
		if r.errorMessage != "" {
			line += " (" + truncate(r.errorMessage, 60) + ")"
		}
		fmt.Println(line)
	}

	if *dryRun {
		fmt.Printf("\nTotal runs that would be deleted: %d\n", len(candidates))
		return
	}

	deleted, err := deleteRuns(ctx, conn, candidates)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting runs: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nTotal runs deleted: %d\n", deleted)
}

func findCandidates(ctx context.Context, conn *pgx.Conn, keep int, failedOnly bool) ([]runRow, error) {
	rows, err := conn.Query(ctx, candidatesQuery, keep, failedOnly)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []runRow
	for rows.Next() {
		var r runRow
		if err := rows.Scan(&r.id, &r.seed, &r.studentCount, &r.status, &r.errorMessage, &r.createdAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return out, nil
}

func deleteRuns(ctx context.Context, conn *pgx.Conn, runs []runRow) (int64, error) {
	ids := make([]uuid.UUID, len(runs))
	for i, r := range runs {
		ids[i] = r.id
	}

	result, err := conn.Exec(ctx, `DELETE FROM generation_runs WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	return result.RowsAffected(), nil
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
