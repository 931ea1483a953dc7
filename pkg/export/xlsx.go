package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

// WorkbookName is the file XLSXWriter produces inside its directory.
const WorkbookName = "dataset.xlsx"

// XLSXWriter writes a single workbook with one sheet per record set.
type XLSXWriter struct {
	Dir string
}

// NewXLSXWriter creates a workbook writer rooted at dir.
func NewXLSXWriter(dir string) *XLSXWriter {
	return &XLSXWriter{Dir: dir}
}

var _ Writer = (*XLSXWriter)(nil)

func (w *XLSXWriter) Name() string { return "xlsx" }

func (w *XLSXWriter) Write(ctx context.Context, ds *models.Dataset) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, rs := range ds.RecordSets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeSheet(f, &rs, headerStyle); err != nil {
			return fmt.Errorf("write sheet %s: %w", rs.Name, err)
		}
		if i == 0 {
			idx, err := f.GetSheetIndex(rs.Name)
			if err != nil {
				return err
			}
			f.SetActiveSheet(idx)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	return f.SaveAs(filepath.Join(w.Dir, WorkbookName))
}

func writeSheet(f *excelize.File, rs *models.RecordSet, headerStyle int) error {
	if _, err := f.NewSheet(rs.Name); err != nil {
		return err
	}

	header := rs.Columns
	if err := f.SetSheetRow(rs.Name, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(rs.Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(rs.Name, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetPanes(rs.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	for i := range rs.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := rs.Rows[i]
		if err := f.SetSheetRow(rs.Name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
