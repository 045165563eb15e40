// Package audit builds spreadsheet exports: the on-demand lists of the
// dashboard and the monthly archive of every table.
package audit

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var errNoSheet = errors.New("no active sheet")

// Writer writes rows into an xlsx workbook sheet by sheet.
type Writer struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
	headerStyle  int
}

func NewWriter() *Writer {
	return &Writer{file: excelize.NewFile(), headerStyle: -1}
}

// AddSheet starts a new sheet; the first call renames the default one.
func (w *Writer) AddSheet(name string) error {
	// Excel limits sheet names to 31 characters
	if utf8.RuneCountInString(name) > 31 {
		name = string([]rune(name)[:31])
	}

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes bold column headers and freezes them.
func (w *Writer) WriteHeader(columns []string) error {
	if w.currentSheet == "" {
		return errNoSheet
	}
	if err := w.writeCells(&columns); err != nil {
		return err
	}

	if w.headerStyle < 0 {
		style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		w.headerStyle = style
	}
	start, _ := excelize.CoordinatesToCellName(1, w.currentRow)
	end, _ := excelize.CoordinatesToCellName(max(len(columns), 1), w.currentRow)
	if err := w.file.SetCellStyle(w.currentSheet, start, end, w.headerStyle); err != nil {
		return err
	}
	_ = w.file.SetPanes(w.currentSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	})

	w.currentRow++
	return nil
}

// WriteRow writes a data row to the current sheet.
func (w *Writer) WriteRow(row []any) error {
	if w.currentSheet == "" {
		return errNoSheet
	}
	if err := w.writeCells(&row); err != nil {
		return err
	}
	w.currentRow++
	return nil
}

// writeCells takes a pointer to a slice, as SetSheetRow expects.
func (w *Writer) writeCells(values any) error {
	cell, err := excelize.CoordinatesToCellName(1, w.currentRow)
	if err != nil {
		return err
	}
	return w.file.SetSheetRow(w.currentSheet, cell, values)
}

// Save writes the workbook to wr.
func (w *Writer) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

// SaveToFile writes the workbook to disk.
func (w *Writer) SaveToFile(path string) error {
	return w.file.SaveAs(path)
}

// Close releases resources.
func (w *Writer) Close() error {
	return w.file.Close()
}
