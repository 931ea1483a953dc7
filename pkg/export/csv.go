package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

// CSVWriter writes one <record set>.csv file per record set into Dir.
type CSVWriter struct {
	Dir string
}

// NewCSVWriter creates a CSV writer rooted at dir.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{Dir: dir}
}

var _ Writer = (*CSVWriter)(nil)

func (w *CSVWriter) Name() string { return "csv" }

func (w *CSVWriter) Write(ctx context.Context, ds *models.Dataset) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, rs := range ds.RecordSets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeCSVFile(CSVPath(w.Dir, rs.Name), &rs); err != nil {
			return fmt.Errorf("write %s: %w", rs.Name, err)
		}
	}
	return nil
}

// CSVPath returns the file a record set is written to.
func CSVPath(dir, recordSet string) string {
	return filepath.Join(dir, recordSet+".csv")
}

func writeCSVFile(path string, rs *models.RecordSet) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.Write(rs.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(rs.Rows); err != nil {
		return err
	}
	return cw.Error()
}
