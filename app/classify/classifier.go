package classify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

// Extension to file type lookup. Anything else classifies as unknown.
var fileTypeByExtension = map[string]string{
	"json": schema.FileTypeJSON,
	"csv":  schema.FileTypeCSV,
	"html": schema.FileTypeHTML,
	"htm":  schema.FileTypeHTML,
	"txt":  schema.FileTypeTXT,
}

// Classifier detects file types and infers likely content. Classification
// is soft: it never fails, degrading to "unknown" with low confidence when
// nothing can be inferred.
type Classifier struct {
	fold cases.Caser
}

func NewClassifier() *Classifier {
	return &Classifier{fold: cases.Fold()}
}

func (c *Classifier) Run(filePath string) schema.FileClassification {
	notes := []string{}

	fileType := c.detectFileType(filePath, &notes)
	contentLikely, confidence := c.classifyContent(filePath, fileType, &notes)

	return schema.FileClassification{
		FilePath:      filePath,
		FileType:      fileType,
		ContentLikely: contentLikely,
		Confidence:    confidence,
		Notes:         notes,
	}
}

func (c *Classifier) detectFileType(filePath string, notes *[]string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")

	if fileType, ok := fileTypeByExtension[ext]; ok {
		return fileType
	}

	if ext != "" {
		*notes = append(*notes, fmt.Sprintf("Unknown extension: .%s", ext))
	}
	return schema.FileTypeUnknown
}

func (c *Classifier) classifyContent(filePath, fileType string, notes *[]string) (string, string) {
	name := c.fold.String(filepath.Base(filePath))

	for _, rule := range filenameRules {
		if rule.match(name) {
			return rule.contentLikely, rule.confidence
		}
	}

	if fileType == schema.FileTypeJSON {
		if content, confidence, ok := c.classifyJSONStructure(filePath, notes); ok {
			return content, confidence
		}
	}

	*notes = append(*notes, "Could not determine content type from filename or structure")
	return schema.ContentTypeUnknown, schema.ConfidenceLow
}

// classifyJSONStructure peeks at the top-level shape of a JSON file. Any
// read or parse error degrades to the unknown fallback instead of
// propagating.
func (c *Classifier) classifyJSONStructure(filePath string, notes *[]string) (string, string, bool) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Debug("Failed to read JSON file for structural inspection", "file", filePath, "error", err)
		return "", "", false
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		slog.Debug("Failed to parse JSON for structural inspection", "file", filePath, "error", err)
		return "", "", false
	}

	switch value := parsed.(type) {
	case []any:
		if len(value) == 0 {
			*notes = append(*notes, "Empty JSON array")
			return "empty", schema.ConfidenceHigh, true
		}
		if obj, ok := value[0].(map[string]any); ok {
			return c.classifyObjectKeys(obj, notes)
		}
	case map[string]any:
		if len(value) == 0 {
			return "", "", false
		}
		return c.classifyObjectKeys(value, notes)
	}

	*notes = append(*notes, "Unexpected JSON structure")
	return schema.ContentTypeUnknown, schema.ConfidenceLow, true
}

func (c *Classifier) classifyObjectKeys(obj map[string]any, notes *[]string) (string, string, bool) {
	for _, rule := range keyRules {
		if rule.match(obj) {
			return rule.contentLikely, rule.confidence, true
		}
	}

	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > 5 {
		keys = keys[:5]
	}

	*notes = append(*notes, fmt.Sprintf("Unrecognized JSON structure with keys: %v", keys))
	return schema.ContentTypeUnknown, schema.ConfidenceLow, true
}
