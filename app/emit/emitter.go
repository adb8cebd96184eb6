package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

// Emitter writes the finished run as formatted, key-sorted files in the
// output directory.
type Emitter struct {
	outputDir string
}

func NewEmitter(outputDir string) (*Emitter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Emitter{outputDir: outputDir}, nil
}

// EmitSummary writes summary.json and a YAML rendition (summary.yml) of
// the high-level processing statistics.
func (e *Emitter) EmitSummary(summary schema.ProcessingSummary) error {
	doc := summaryDocument(summary)

	if err := e.writeJSON("summary.json", doc); err != nil {
		return err
	}
	return e.writeYAML("summary.yml", doc)
}

// EmitByContentType writes by_content_type.json with records grouped by
// content type.
func (e *Emitter) EmitByContentType(groups map[string][]schema.NormalizedRecord) error {
	return e.writeJSON("by_content_type.json", groupDocument(groups))
}

// EmitByChannel writes by_channel.json with records grouped by channel.
func (e *Emitter) EmitByChannel(groups map[string][]schema.NormalizedRecord) error {
	return e.writeJSON("by_channel.json", groupDocument(groups))
}

// EmitUnclassified writes unclassified.json with records that could not
// be fully classified.
func (e *Emitter) EmitUnclassified(records []schema.NormalizedRecord) error {
	return e.writeJSON("unclassified.json", map[string]any{
		"count":   len(records),
		"records": records,
	})
}

func summaryDocument(summary schema.ProcessingSummary) map[string]any {
	return map[string]any{
		"total_files":              summary.TotalFiles,
		"total_records":            summary.TotalRecords,
		"by_content_type":          summary.ByContentType,
		"by_source":                summary.BySource,
		"by_file_type":             summary.ByFileType,
		"unclassified_files_count": len(summary.UnclassifiedFiles),
		"uncertain_records_count":  summary.UncertainRecords,
		"processing_metadata": map[string]any{
			"start_time":  summary.StartTime,
			"end_time":    summary.EndTime,
			"input_path":  summary.InputPath,
			"output_path": summary.OutputPath,
		},
	}
}

func groupDocument(groups map[string][]schema.NormalizedRecord) map[string]any {
	doc := make(map[string]any, len(groups))
	for key, records := range groups {
		doc[key] = map[string]any{
			"count":   len(records),
			"records": records,
		}
	}
	return doc
}

func (e *Emitter) writeJSON(name string, data any) error {
	path := filepath.Join(e.outputDir, name)

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	slog.Info("Wrote output file", "path", path)
	return nil
}

func (e *Emitter) writeYAML(name string, data any) error {
	path := filepath.Join(e.outputDir, name)

	encoded, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	slog.Info("Wrote output file", "path", path)
	return nil
}
