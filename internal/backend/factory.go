// Package backend selects the recap export implementation from
// configuration. The worker runs against the in-memory store locally and
// against Google Sheets in production.
package backend

import (
	"context"
	"fmt"

	"scadenze/internal/config"
	"scadenze/internal/log"
	"scadenze/internal/sheets"
	gsheet "scadenze/internal/sheets/google"
	"scadenze/internal/sheets/memory"
)

// ExportTarget names a recap exporter implementation.
type ExportTarget string

const (
	MemoryTarget ExportTarget = "memory"
	SheetsTarget ExportTarget = "sheets"
)

func (t ExportTarget) String() string {
	return string(t)
}

// IsValid returns true if the export target is known.
func (t ExportTarget) IsValid() bool {
	switch t {
	case MemoryTarget, SheetsTarget:
		return true
	default:
		return false
	}
}

// NewRecapExporter builds the exporter the configuration names.
func NewRecapExporter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.RecapExporter, error) {
	target := ExportTarget(cfg.ExportTarget)
	if !target.IsValid() {
		return nil, fmt.Errorf("invalid export target: %s", cfg.ExportTarget)
	}

	switch target {
	case SheetsTarget:
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize sheets exporter: %w", err)
		}
		logger.Info("Initialized sheets exporter",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleRecapSheet)
		return client, nil
	default:
		logger.Info("Initialized in-memory exporter")
		return memory.New(), nil
	}
}
