// Package export writes capsule snapshots to the filesystem for downstream
// rendering.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"NewsCapsule/internal/domain"
	"NewsCapsule/internal/ports"
	"NewsCapsule/internal/report"
)

const (
	markdownFilename = "news_capsules.md"
	jsonFilename     = "news_capsules.json"
)

// FileExporter writes the Markdown and JSON forms into one directory,
// overwriting the previous run's snapshot.
type FileExporter struct {
	dir string
}

var _ ports.ReportExporter = (*FileExporter)(nil)

// NewFileExporter targets the given directory, defaulting to the working
// directory.
func NewFileExporter(dir string) *FileExporter {
	if dir == "" {
		dir = "."
	}
	return &FileExporter{dir: dir}
}

// Export writes both forms; either failing fails the export as a whole.
func (e *FileExporter) Export(r domain.Report, markdown string) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	mdPath := filepath.Join(e.dir, markdownFilename)
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	payload, err := json.MarshalIndent(report.BuildPayload(r), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	jsonPath := filepath.Join(e.dir, jsonFilename)
	if err := os.WriteFile(jsonPath, payload, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
