package normalize

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

func (n *Normalizer) normalizeJSON(filePath string, cls schema.FileClassification) []schema.NormalizedRecord {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return n.errorRecord(filePath, cls, fmt.Sprintf("Failed to read file: %v", err))
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return n.errorRecord(filePath, cls, "Failed to parse JSON")
	}

	switch value := parsed.(type) {
	case []any:
		records := make([]schema.NormalizedRecord, 0, len(value))
		for index, element := range value {
			// Non-object elements carry no extractable fields.
			obj, ok := element.(map[string]any)
			if !ok {
				continue
			}
			records = append(records, n.normalizeJSONObject(obj, filePath, index, cls))
		}
		return records
	case map[string]any:
		return []schema.NormalizedRecord{n.normalizeJSONObject(value, filePath, 0, cls)}
	default:
		return n.errorRecord(filePath, cls, fmt.Sprintf("Unsupported top-level JSON value: %T", parsed))
	}
}

func (n *Normalizer) normalizeJSONObject(obj map[string]any, filePath string, index int, cls schema.FileClassification) schema.NormalizedRecord {
	title := extractField(obj, jsonTitleKeys)
	channel := extractField(obj, jsonChannelKeys)
	url := extractField(obj, jsonURLKeys)

	timestamp, uncertain := ParseTimestamp(extractField(obj, jsonTimestampKeys))

	header := ""
	if value, ok := obj["header"]; ok {
		header = fmt.Sprint(value)
	}

	notes := []string{}
	if uncertain {
		notes = append(notes, timestampNote)
	}

	return schema.NormalizedRecord{
		RecordID:           schema.RecordID(filePath, index),
		SourceFile:         filePath,
		ContentType:        inferContentType(cls),
		SourceType:         inferSourceType(header, channel),
		Title:              title,
		Timestamp:          timestamp,
		TimestampUncertain: uncertain,
		Channel:            channel,
		URL:                url,
		Index:              index,
		RawData:            obj,
		DetectedFormat:     schema.FileTypeJSON,
		ParsingNotes:       notes,
	}
}
