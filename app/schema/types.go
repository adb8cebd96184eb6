package schema

import (
	"time"
)

// Classification vocabularies. All classification is soft: values outside
// these sets never occur, but "unknown" is always a valid answer.

const (
	ContentTypeVideo      = "video"
	ContentTypeMusicVideo = "music-video"
	ContentTypeWatchEvent = "watch-event"
	ContentTypeComment    = "comment"
	ContentTypeSearch     = "search"
	ContentTypeUnknown    = "unknown"
)

const (
	SourceTypeChannel         = "channel"
	SourceTypePlatformSurface = "platform-surface"
	SourceTypeUnknown         = "unknown"
)

const (
	FileTypeJSON    = "json"
	FileTypeCSV     = "csv"
	FileTypeHTML    = "html"
	FileTypeTXT     = "txt"
	FileTypeUnknown = "unknown"
)

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// MaxRawContentLength caps how much raw HTML/TXT content is preserved
// per record.
const MaxRawContentLength = 1000

// NormalizedRecord is the common intermediate structure for all parsed
// content. Normalized fields sit alongside the original raw data so
// nothing is lost during extraction.
type NormalizedRecord struct {
	RecordID   string `json:"record_id"`
	SourceFile string `json:"source_file"`

	ContentType string `json:"content_type"` // video, music-video, watch-event, comment, search, unknown
	SourceType  string `json:"source_type"`  // channel, platform-surface, unknown

	Title              string     `json:"title,omitempty"` // empty means not found
	Timestamp          *time.Time `json:"timestamp,omitempty"`
	TimestampUncertain bool       `json:"timestamp_uncertain"`
	Channel            string     `json:"channel,omitempty"`
	URL                string     `json:"url,omitempty"`

	// Index is the record's position within its source file. Together with
	// SourceFile it makes RecordID (and output ordering) deterministic.
	Index int `json:"index"`

	RawData map[string]any `json:"raw_data"`

	DetectedFormat string   `json:"detected_format"` // json, csv, html, txt, unknown
	ParsingNotes   []string `json:"parsing_notes,omitempty"`
}

// FileClassification is the result of file type detection and content
// classification for a single input file. Created once, never mutated.
type FileClassification struct {
	FilePath      string   `json:"file_path"`
	FileType      string   `json:"file_type"`
	ContentLikely string   `json:"content_likely"`
	Confidence    string   `json:"confidence"` // high, medium, low
	Notes         []string `json:"notes,omitempty"`
}

// ProcessingSummary holds run-level statistics, accumulated while files
// stream in and finalized once at the end of the run.
type ProcessingSummary struct {
	TotalFiles   int `json:"total_files"`
	TotalRecords int `json:"total_records"`

	ByContentType map[string]int `json:"by_content_type"`
	BySource      map[string]int `json:"by_source"`
	ByFileType    map[string]int `json:"by_file_type"`

	UnclassifiedFiles []string `json:"unclassified_files"`
	UncertainRecords  int      `json:"uncertain_records"`

	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	InputPath  string     `json:"input_path,omitempty"`
	OutputPath string     `json:"output_path,omitempty"`
}
