package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fairshare/internal/report"
	"fairshare/internal/settle"
	"fairshare/internal/snapshot"
)

// FileExporter writes the latest settlement summary as a plain-text
// file in a target directory.
type FileExporter struct {
	dir string
	now func() time.Time
}

var _ SummaryExporter = (*FileExporter)(nil)

func NewFileExporter(dir string) (*FileExporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &FileExporter{dir: dir, now: time.Now}, nil
}

func (f *FileExporter) Name() string { return "file" }

// Export overwrites summary.txt with the current settlement report.
// The write goes through a temp file and rename so readers never see a
// partial summary.
func (f *FileExporter) Export(ctx context.Context, snap snapshot.Snapshot, result settle.Result) error {
	var b strings.Builder
	b.WriteString(report.ShareText(result, snap.CurrencyCode))

	if len(result.Balances) > 0 {
		b.WriteString("\nBalances:\n")
		for _, line := range report.BalanceLines(result, snap.CurrencyCode) {
			b.WriteString("- " + line + "\n")
		}
	}
	fmt.Fprintf(&b, "\nExported at %s\n", f.now().UTC().Format(time.RFC3339))

	path := filepath.Join(f.dir, "summary.txt")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write summary temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace summary file: %w", err)
	}

	slog.DebugContext(ctx, "Exported settlement summary to file",
		"path", path,
		"participants", len(snap.Participants),
		"debts", len(result.Debts))

	return nil
}
