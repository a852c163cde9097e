package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Export writes all stored runs to a JSON file (gzipped when configured)
// in the configured output directory and returns the file path.
func (b *Backend) Export() (string, error) {
	b.mu.RLock()
	runs := make([]any, 0, len(b.runs))
	for _, r := range b.runs {
		runs = append(runs, r)
	}
	b.mu.RUnlock()

	if err := os.MkdirAll(b.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("stage_runs_%s.json", stamp)
	if b.cfg.CompressOutput {
		name += ".gz"
	}
	path := filepath.Join(b.cfg.OutputDir, strings.ReplaceAll(name, " ", "_"))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if b.cfg.CompressOutput {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		if err := json.NewEncoder(gz).Encode(runs); err != nil {
			return "", fmt.Errorf("encoding export: %w", err)
		}
		return path, nil
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(runs); err != nil {
		return "", fmt.Errorf("encoding export: %w", err)
	}
	return path, nil
}
