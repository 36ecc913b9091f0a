package sheets

import (
	"context"

	"scadenze/internal/core"
)

// RecapExporter appends one plan-month recap digest to an external sheet.
type RecapExporter interface {
	AppendRecap(ctx context.Context, planName string, recap core.RecapSummary) (rowRef string, err error)
}
