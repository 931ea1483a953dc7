// assess-dataset reads a CSV dataset back from disk and re-checks every
// ledger and referential invariant the generator guarantees.
//
// Usage: go run ./scripts/assess-dataset <dataset-dir>
//
// Exits 0 when the dataset is consistent, 1 otherwise.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/export"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/services"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <dataset-dir>\n", os.Args[0])
		os.Exit(1)
	}
	dir := os.Args[1]

	ds, err := export.ReadCSVDataset(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read dataset: %v\n", err)
		os.Exit(1)
	}

	if m, err := export.ReadManifest(dir); err == nil {
		fmt.Printf("Run %s (seed %d, version %s)\n", m.RunID, m.Seed, m.Version)
	}
	for _, rs := range ds.RecordSets() {
		fmt.Printf("  %-22s %6d rows\n", rs.Name, rs.Len())
	}
	printStatusBreakdown(ds)

	if err := services.ValidateDataset(ds); err != nil {
		fmt.Println("\nFAIL")
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				fmt.Printf("  - %v\n", e)
			}
		} else {
			fmt.Printf("  - %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Println("\nPASS")
}

func printStatusBreakdown(ds *models.Dataset) {
	counts := make(map[models.CompletionStatus]int)
	for _, e := range ds.Enrollments {
		counts[e.Status]++
	}
	fmt.Printf("\nEnrollments: %d completed, %d in-progress, %d withdrawn\n",
		counts[models.StatusCompleted], counts[models.StatusInProgress], counts[models.StatusWithdrawn])

	risks := make(map[models.RiskFlag]int)
	for _, p := range ds.Performance {
		risks[p.RiskFlag]++
	}
	fmt.Printf("Risk flags: %d none, %d performance-drop, %d co-op-risk\n",
		risks[models.RiskNone], risks[models.RiskPerformanceDrop], risks[models.RiskCoop])
}
