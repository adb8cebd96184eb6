package normalize

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func classification(filePath, fileType, contentLikely string) schema.FileClassification {
	return schema.FileClassification{
		FilePath:      filePath,
		FileType:      fileType,
		ContentLikely: contentLikely,
		Confidence:    schema.ConfidenceMedium,
	}
}

func TestNormalizer_JSONArray(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.json", `[{"title":"A","titleUrl":"http://x"},{"title":"B"}]`)
	records := normalizer.Run(path, classification(path, schema.FileTypeJSON, "watch-event"))

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Title != "A" {
		t.Errorf("Expected title 'A', got '%s'", first.Title)
	}
	if first.URL != "http://x" {
		t.Errorf("Expected url 'http://x', got '%s'", first.URL)
	}
	if first.ContentType != schema.ContentTypeWatchEvent {
		t.Errorf("Expected watch-event content type, got %s", first.ContentType)
	}

	second := records[1]
	if second.URL != "" {
		t.Errorf("Expected absent url for second record, got '%s'", second.URL)
	}
	if !second.TimestampUncertain {
		t.Error("Second record should have uncertain timestamp")
	}
}

func TestNormalizer_JSONSingleObject(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.json", `{"title":"Solo","time":"2023-05-01"}`)
	records := normalizer.Run(path, classification(path, schema.FileTypeJSON, "media-event"))

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Index != 0 {
		t.Errorf("Expected index 0, got %d", records[0].Index)
	}
	if records[0].ContentType != schema.ContentTypeVideo {
		t.Errorf("Expected video content type, got %s", records[0].ContentType)
	}
	if records[0].TimestampUncertain {
		t.Error("Timestamp should parse from 'time' key")
	}
}

func TestNormalizer_JSONSkipsNonObjects(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.json", `[1, "two", {"title":"C"}, null]`)
	records := normalizer.Run(path, classification(path, schema.FileTypeJSON, "unknown"))

	if len(records) != 1 {
		t.Fatalf("Expected 1 record (non-objects skipped), got %d", len(records))
	}
	// Index reflects the array position, not the emitted position.
	if records[0].Index != 2 {
		t.Errorf("Expected index 2, got %d", records[0].Index)
	}
}

func TestNormalizer_JSONEmptyArray(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.json", `[]`)
	records := normalizer.Run(path, classification(path, schema.FileTypeJSON, "empty"))

	if len(records) != 0 {
		t.Errorf("Expected zero records for empty array, got %d", len(records))
	}
}

func TestNormalizer_JSONChannelFromSubtitles(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.json", `[{"title":"A","subtitles":[{"name":"Some Channel","url":"http://c"}]}]`)
	records := normalizer.Run(path, classification(path, schema.FileTypeJSON, "watch-history"))

	if records[0].Channel != "Some Channel" {
		t.Errorf("Expected channel 'Some Channel', got '%s'", records[0].Channel)
	}
	if records[0].SourceType != schema.SourceTypeChannel {
		t.Errorf("Expected channel source type, got %s", records[0].SourceType)
	}
}

func TestNormalizer_JSONScalarListJoined(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.json", `[{"title":"A","author":["x","y"]}]`)
	records := normalizer.Run(path, classification(path, schema.FileTypeJSON, "unknown"))

	if records[0].Channel != "x, y" {
		t.Errorf("Expected joined channel 'x, y', got '%s'", records[0].Channel)
	}
}

func TestNormalizer_JSONPlatformSurface(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.json", `{"header":"YouTube products","title":"A"}`)
	records := normalizer.Run(path, classification(path, schema.FileTypeJSON, "unknown"))

	if records[0].SourceType != schema.SourceTypePlatformSurface {
		t.Errorf("Expected platform-surface source type, got %s", records[0].SourceType)
	}
}

func TestNormalizer_JSONMalformed(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.json", `{broken`)
	records := normalizer.Run(path, classification(path, schema.FileTypeJSON, "unknown"))

	if len(records) != 1 {
		t.Fatalf("Expected a single error record, got %d records", len(records))
	}
	if records[0].RawData["error"] == nil {
		t.Error("Error record should carry the failure message in raw_data")
	}
	if len(records[0].ParsingNotes) == 0 || !strings.Contains(records[0].ParsingNotes[0], "Parsing error") {
		t.Errorf("Expected parsing error note, got %v", records[0].ParsingNotes)
	}
}

func TestNormalizer_JSONRawDataRoundTrip(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.json", `[{"title":"A","extra":{"nested":true},"count":3}]`)
	records := normalizer.Run(path, classification(path, schema.FileTypeJSON, "unknown"))

	expected := map[string]any{
		"title": "A",
		"extra": map[string]any{"nested": true},
		"count": float64(3),
	}
	if !reflect.DeepEqual(records[0].RawData, expected) {
		t.Errorf("Expected raw data %v, got %v", expected, records[0].RawData)
	}
}

func TestNormalizer_CSV(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "music.csv", "Title,Channel Name,Date\nSong,Artist1,2023-05-01\n")
	records := normalizer.Run(path, classification(path, schema.FileTypeCSV, "music-history"))

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	record := records[0]
	if record.Title != "Song" {
		t.Errorf("Expected title 'Song', got '%s'", record.Title)
	}
	if record.Channel != "Artist1" {
		t.Errorf("Expected channel 'Artist1', got '%s'", record.Channel)
	}
	if record.TimestampUncertain {
		t.Error("Timestamp should parse from the Date column")
	}
	if record.ContentType != schema.ContentTypeMusicVideo {
		t.Errorf("Expected music-video content type, got %s", record.ContentType)
	}
}

func TestNormalizer_CSVSemicolonDelimiter(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.csv", "title;artist;date\nSong;Band;2023-05-01\n")
	records := normalizer.Run(path, classification(path, schema.FileTypeCSV, "unknown"))

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Title != "Song" {
		t.Errorf("Expected sniffed delimiter to split columns, got title '%s'", records[0].Title)
	}
	if records[0].Channel != "Band" {
		t.Errorf("Expected channel 'Band', got '%s'", records[0].Channel)
	}
}

func TestSniffDelimiter_IgnoresQuotedFields(t *testing.T) {
	// Commas inside quoted header fields must not outvote the real
	// delimiter.
	if got := sniffDelimiter(`"a,b";"c,d"` + "\n"); got != ';' {
		t.Errorf("Expected ';', got %q", got)
	}
	if got := sniffDelimiter("title,channel,date\n"); got != ',' {
		t.Errorf("Expected ',', got %q", got)
	}
}

func TestNormalizer_CSVQuotedCommasInHeader(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.csv", "title;\"notes, misc\";date\nSong;\"a, b\";2023-05-01\n")
	records := normalizer.Run(path, classification(path, schema.FileTypeCSV, "unknown"))

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Title != "Song" {
		t.Errorf("Expected title 'Song', got '%s'", records[0].Title)
	}
	if records[0].TimestampUncertain {
		t.Error("Timestamp should parse from the date column")
	}
}

func TestNormalizer_CSVShortRow(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.csv", "Title,Channel,Date\nOnly Title\n")
	records := normalizer.Run(path, classification(path, schema.FileTypeCSV, "unknown"))

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Title != "Only Title" {
		t.Errorf("Expected title 'Only Title', got '%s'", records[0].Title)
	}
	if records[0].Channel != "" {
		t.Errorf("Expected absent channel for short row, got '%s'", records[0].Channel)
	}
}

func TestNormalizer_CSVEmptyFile(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.csv", "")
	records := normalizer.Run(path, classification(path, schema.FileTypeCSV, "unknown"))

	// A file with no header row still yields one record describing the
	// problem.
	if len(records) != 1 {
		t.Fatalf("Expected a single error record, got %d", len(records))
	}
	if len(records[0].ParsingNotes) == 0 || !strings.Contains(records[0].ParsingNotes[0], "Empty CSV file") {
		t.Errorf("Expected empty-file note, got %v", records[0].ParsingNotes)
	}
}

func TestNormalizer_CSVHeaderOnly(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.csv", "Title,Channel,Date\n")
	records := normalizer.Run(path, classification(path, schema.FileTypeCSV, "unknown"))

	if len(records) != 0 {
		t.Errorf("Expected zero records for a headers-only file, got %d", len(records))
	}
}

func TestNormalizer_CSVRawDataRoundTrip(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.csv", "Title,Channel\nSong,Artist\n")
	records := normalizer.Run(path, classification(path, schema.FileTypeCSV, "unknown"))

	expected := map[string]any{"Title": "Song", "Channel": "Artist"}
	if !reflect.DeepEqual(records[0].RawData, expected) {
		t.Errorf("Expected raw data %v, got %v", expected, records[0].RawData)
	}
}

func TestNormalizer_HTML(t *testing.T) {
	normalizer := NewNormalizer()

	content := strings.Repeat("x", 2000)
	path := writeFixture(t, "page.html", content)
	records := normalizer.Run(path, classification(path, schema.FileTypeHTML, "unknown"))

	if len(records) != 1 {
		t.Fatalf("Expected exactly 1 record, got %d", len(records))
	}

	record := records[0]
	if record.ContentType != schema.ContentTypeUnknown || record.SourceType != schema.SourceTypeUnknown {
		t.Error("HTML records should classify as unknown")
	}

	preserved, _ := record.RawData["html_content"].(string)
	if utf8.RuneCountInString(preserved) != schema.MaxRawContentLength {
		t.Errorf("Expected raw content capped at %d chars, got %d", schema.MaxRawContentLength, utf8.RuneCountInString(preserved))
	}
	if len(record.ParsingNotes) == 0 {
		t.Error("Expected a note stating HTML is not structurally parsed")
	}
}

func TestNormalizer_RawTextCapCountsCharacters(t *testing.T) {
	normalizer := NewNormalizer()

	// 1200 three-byte runes; a byte-based cap would keep only 334 of them
	// and cut the last one in half.
	content := strings.Repeat("€", 1200)
	path := writeFixture(t, "page.html", content)
	records := normalizer.Run(path, classification(path, schema.FileTypeHTML, "unknown"))

	preserved, _ := records[0].RawData["html_content"].(string)
	if got := utf8.RuneCountInString(preserved); got != schema.MaxRawContentLength {
		t.Errorf("Expected %d characters preserved, got %d", schema.MaxRawContentLength, got)
	}
	if !utf8.ValidString(preserved) {
		t.Error("Capped content must remain valid UTF-8")
	}
	if !strings.HasPrefix(content, preserved) {
		t.Error("Capped content must be a prefix of the original")
	}
}

func TestNormalizer_TXT(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "notes.txt", "some plain text")
	records := normalizer.Run(path, classification(path, schema.FileTypeTXT, "unknown"))

	if len(records) != 1 {
		t.Fatalf("Expected exactly 1 record, got %d", len(records))
	}
	if records[0].RawData["text_content"] != "some plain text" {
		t.Errorf("Expected raw text preserved, got %v", records[0].RawData)
	}
	if records[0].DetectedFormat != schema.FileTypeTXT {
		t.Errorf("Expected detected format txt, got %s", records[0].DetectedFormat)
	}
}

func TestNormalizer_UnknownFileType(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "video.mp4", "binary-ish")
	records := normalizer.Run(path, classification(path, schema.FileTypeUnknown, "unknown"))

	if len(records) != 1 {
		t.Fatalf("Expected exactly 1 record, got %d", len(records))
	}
	if records[0].RawData["file_type"] != schema.FileTypeUnknown {
		t.Errorf("Expected raw data to carry the file type, got %v", records[0].RawData)
	}
}

func TestNormalizer_MissingFileNeverFails(t *testing.T) {
	normalizer := NewNormalizer()

	records := normalizer.Run("/no/such/file.json", classification("/no/such/file.json", schema.FileTypeJSON, "unknown"))

	if len(records) != 1 {
		t.Fatalf("Expected a single error record, got %d", len(records))
	}
}

func TestNormalizer_DeterministicIDs(t *testing.T) {
	normalizer := NewNormalizer()

	path := writeFixture(t, "data.json", `[{"title":"A"},{"title":"B"}]`)
	cls := classification(path, schema.FileTypeJSON, "unknown")

	first := normalizer.Run(path, cls)
	second := normalizer.Run(path, cls)

	for i := range first {
		if first[i].RecordID != second[i].RecordID {
			t.Errorf("Record %d: expected identical IDs across runs, got %s and %s",
				i, first[i].RecordID, second[i].RecordID)
		}
	}
}

func TestNormalizer_SubscriptionsFallToUnknown(t *testing.T) {
	normalizer := NewNormalizer()

	// subscriptions has no content_type mapping and falls through.
	path := writeFixture(t, "subscriptions.json", `[{"title":"Channel A"}]`)
	records := normalizer.Run(path, classification(path, schema.FileTypeJSON, "subscriptions"))

	if records[0].ContentType != schema.ContentTypeUnknown {
		t.Errorf("Expected unknown content type for subscriptions, got %s", records[0].ContentType)
	}
}
