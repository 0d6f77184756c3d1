// Package export ships settlement summaries to external targets.
package export

import (
	"context"

	"fairshare/internal/settle"
	"fairshare/internal/snapshot"
)

// SummaryExporter writes a settlement summary to an external target.
type SummaryExporter interface {
	// Name identifies the target in logs and metrics.
	Name() string

	// Export writes the summary for the given snapshot and result.
	Export(ctx context.Context, snap snapshot.Snapshot, result settle.Result) error
}
