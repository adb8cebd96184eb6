package normalize

import (
	"strings"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

const timestampNote = "Timestamp could not be parsed or is missing"

// contentTypeByHint maps the classifier's content_likely categories onto
// the record content_type vocabulary. Several likely-categories collapse
// onto one content type, and subscriptions/playlists have no mapping at
// all and fall through to unknown; the table is kept exactly as the export
// formats have been observed to behave.
var contentTypeByHint = map[string]string{
	"watch-history":     schema.ContentTypeWatchEvent,
	"watch-event":       schema.ContentTypeWatchEvent,
	"music-history":     schema.ContentTypeMusicVideo,
	"comments":          schema.ContentTypeComment,
	"search-history":    schema.ContentTypeSearch,
	"media-event":       schema.ContentTypeVideo,
	"timestamped-event": schema.ContentTypeVideo,
}

// Normalizer converts classified files into NormalizedRecords. It never
// returns an error: unknown file types, parse failures and I/O failures
// all degrade to a single error record for the file, so one bad input can
// never abort a run.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Run(filePath string, cls schema.FileClassification) []schema.NormalizedRecord {
	switch cls.FileType {
	case schema.FileTypeJSON:
		return n.normalizeJSON(filePath, cls)
	case schema.FileTypeCSV:
		return n.normalizeCSV(filePath, cls)
	case schema.FileTypeHTML:
		return n.normalizeRawText(filePath, cls, "html_content", "HTML files are not fully parsed - stored as unknown")
	case schema.FileTypeTXT:
		return n.normalizeRawText(filePath, cls, "text_content", "Text files are not fully parsed - stored as unknown")
	default:
		return n.normalizeUnknown(filePath, cls)
	}
}

func inferContentType(cls schema.FileClassification) string {
	if contentType, ok := contentTypeByHint[cls.ContentLikely]; ok {
		return contentType
	}
	return schema.ContentTypeUnknown
}

func inferSourceType(headerValue, channel string) string {
	if channel != "" {
		return schema.SourceTypeChannel
	}
	if strings.Contains(strings.ToLower(headerValue), "products") {
		return schema.SourceTypePlatformSurface
	}
	return schema.SourceTypeUnknown
}
