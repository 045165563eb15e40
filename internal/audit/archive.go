package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// TableExporter provides access to database tables for export.
type TableExporter interface {
	GetTableNames(ctx context.Context) ([]string, error)
	GetTableData(ctx context.Context, tableName string) ([]map[string]any, []string, error)
}

// MonthNames in Portuguese for filename generation.
var MonthNames = map[time.Month]string{
	time.January:   "Janeiro",
	time.February:  "Fevereiro",
	time.March:     "Março",
	time.April:     "Abril",
	time.May:       "Maio",
	time.June:      "Junho",
	time.July:      "Julho",
	time.August:    "Agosto",
	time.September: "Setembro",
	time.October:   "Outubro",
	time.November:  "Novembro",
	time.December:  "Dezembro",
}

// GenerateFilename creates a filename like "Janeiro_2026.xlsx".
func GenerateFilename(t time.Time) string {
	return fmt.Sprintf("%s_%d.xlsx", MonthNames[t.Month()], t.Year())
}

// Archiver writes a workbook with one sheet per table, named after the
// month that just ended.
type Archiver struct {
	exporter TableExporter
	dir      string
	logger   zerolog.Logger
	now      func() time.Time
}

func NewArchiver(exporter TableExporter, dir string, logger zerolog.Logger) *Archiver {
	return &Archiver{
		exporter: exporter,
		dir:      dir,
		logger:   logger.With().Str("component", "archiver").Logger(),
		now:      time.Now,
	}
}

// Run exports every table and returns the written path. Tables that fail to
// load are skipped and logged.
func (a *Archiver) Run(ctx context.Context) (string, error) {
	tables, err := a.exporter.GetTableNames(ctx)
	if err != nil {
		return "", fmt.Errorf("get table names: %w", err)
	}
	if len(tables) == 0 {
		return "", fmt.Errorf("no tables to export")
	}

	xl := NewWriter()
	defer xl.Close()

	exported := 0
	for _, table := range tables {
		data, columns, err := a.exporter.GetTableData(ctx, table)
		if err != nil {
			a.logger.Error().Err(err).Str("table", table).Msg("Failed to get table data")
			continue
		}
		if err := xl.AddSheet(table); err != nil {
			return "", err
		}
		if err := xl.WriteHeader(columns); err != nil {
			return "", err
		}
		for _, row := range data {
			values := make([]any, len(columns))
			for i, col := range columns {
				values[i] = row[col]
			}
			if err := xl.WriteRow(values); err != nil {
				return "", fmt.Errorf("write %s row: %w", table, err)
			}
		}
		exported++
		a.logger.Debug().Str("table", table).Int("rows", len(data)).Msg("Exported table")
	}
	if exported == 0 {
		return "", fmt.Errorf("every table failed to export")
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	now := a.now()
	previous := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	path := filepath.Join(a.dir, GenerateFilename(previous))
	if err := xl.SaveToFile(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	a.logger.Info().Str("path", path).Int("tables", exported).Msg("Monthly archive written")
	return path, nil
}
