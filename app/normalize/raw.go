package normalize

import (
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

// normalizeRawText handles HTML and plain-text files. No structural
// parsing is attempted: the file becomes exactly one record preserving a
// capped slice of the raw content.
func (n *Normalizer) normalizeRawText(filePath string, cls schema.FileClassification, rawKey, note string) []schema.NormalizedRecord {
	content := ""
	if data, err := os.ReadFile(filePath); err != nil {
		content = fmt.Sprintf("Error reading file: %v", err)
	} else {
		content = string(data)
	}

	// The cap counts characters, not bytes; slicing bytes could split a
	// multibyte rune and leave invalid UTF-8 in the raw data.
	if utf8.RuneCountInString(content) > schema.MaxRawContentLength {
		content = string([]rune(content)[:schema.MaxRawContentLength])
	}

	return []schema.NormalizedRecord{{
		RecordID:           schema.RecordID(filePath, 0),
		SourceFile:         filePath,
		ContentType:        schema.ContentTypeUnknown,
		SourceType:         schema.SourceTypeUnknown,
		TimestampUncertain: true,
		RawData:            map[string]any{rawKey: content},
		DetectedFormat:     cls.FileType,
		ParsingNotes:       []string{note},
	}}
}

func (n *Normalizer) normalizeUnknown(filePath string, cls schema.FileClassification) []schema.NormalizedRecord {
	return []schema.NormalizedRecord{{
		RecordID:           schema.RecordID(filePath, 0),
		SourceFile:         filePath,
		ContentType:        schema.ContentTypeUnknown,
		SourceType:         schema.SourceTypeUnknown,
		TimestampUncertain: true,
		RawData:            map[string]any{"file_type": cls.FileType},
		DetectedFormat:     schema.FileTypeUnknown,
		ParsingNotes:       []string{fmt.Sprintf("Unknown file type: %s", cls.FileType)},
	}}
}

// errorRecord absorbs a per-file failure into a single explicit record.
// This is the load-bearing guarantee of the normalizer: a bad file yields
// a record describing the failure, never a propagated error.
func (n *Normalizer) errorRecord(filePath string, cls schema.FileClassification, message string) []schema.NormalizedRecord {
	slog.Warn("Error normalizing file", "file", filePath, "error", message)

	return []schema.NormalizedRecord{{
		RecordID:           schema.RecordID(filePath, 0),
		SourceFile:         filePath,
		ContentType:        schema.ContentTypeUnknown,
		SourceType:         schema.SourceTypeUnknown,
		TimestampUncertain: true,
		RawData:            map[string]any{"error": message},
		DetectedFormat:     cls.FileType,
		ParsingNotes:       []string{fmt.Sprintf("Parsing error: %s", message)},
	}}
}
