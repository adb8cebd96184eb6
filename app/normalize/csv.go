package normalize

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

const sniffSampleSize = 4096

var delimiterCandidates = []rune{',', '\t', ';', '|'}

func (n *Normalizer) normalizeCSV(filePath string, cls schema.FileClassification) []schema.NormalizedRecord {
	file, err := os.Open(filePath)
	if err != nil {
		return n.errorRecord(filePath, cls, fmt.Sprintf("Failed to read file: %v", err))
	}
	defer file.Close()

	sample := make([]byte, sniffSampleSize)
	read, err := file.Read(sample)
	if err != nil && err != io.EOF {
		return n.errorRecord(filePath, cls, fmt.Sprintf("Failed to read file: %v", err))
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return n.errorRecord(filePath, cls, fmt.Sprintf("Failed to read file: %v", err))
	}

	reader := csv.NewReader(file)
	reader.Comma = sniffDelimiter(string(sample[:read]))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return n.errorRecord(filePath, cls, "Empty CSV file")
	}
	if err != nil {
		return n.errorRecord(filePath, cls, fmt.Sprintf("Failed to parse CSV: %v", err))
	}

	records := []schema.NormalizedRecord{}
	for index := 0; ; index++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n.errorRecord(filePath, cls, fmt.Sprintf("Failed to parse CSV: %v", err))
		}
		records = append(records, n.normalizeCSVRow(rowToMap(header, row), filePath, index, cls))
	}

	return records
}

func (n *Normalizer) normalizeCSVRow(row map[string]string, filePath string, index int, cls schema.FileClassification) schema.NormalizedRecord {
	title := extractFieldFold(row, csvTitleKeys)
	channel := extractFieldFold(row, csvChannelKeys)
	url := extractFieldFold(row, csvURLKeys)

	timestamp, uncertain := ParseTimestamp(extractFieldFold(row, csvTimestampKeys))

	notes := []string{}
	if uncertain {
		notes = append(notes, timestampNote)
	}

	rawData := make(map[string]any, len(row))
	for key, value := range row {
		rawData[key] = value
	}

	return schema.NormalizedRecord{
		RecordID:           schema.RecordID(filePath, index),
		SourceFile:         filePath,
		ContentType:        inferContentType(cls),
		SourceType:         inferSourceType(row["header"], channel),
		Title:              title,
		Timestamp:          timestamp,
		TimestampUncertain: uncertain,
		Channel:            channel,
		URL:                url,
		Index:              index,
		RawData:            rawData,
		DetectedFormat:     schema.FileTypeCSV,
		ParsingNotes:       notes,
	}
}

// sniffDelimiter picks the candidate delimiter that appears most often in
// the first line of the sample, falling back to comma when nothing stands
// out. Characters inside double-quoted fields do not count.
func sniffDelimiter(sample string) rune {
	line, _, _ := strings.Cut(sample, "\n")

	counts := map[rune]int{}
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best := ','
	bestCount := 0
	for _, candidate := range delimiterCandidates {
		if counts[candidate] > bestCount {
			best = candidate
			bestCount = counts[candidate]
		}
	}
	return best
}

// rowToMap zips a header onto a data row. Short rows read as empty cells;
// cells beyond the header are dropped.
func rowToMap(header, row []string) map[string]string {
	result := make(map[string]string, len(header))
	for i, column := range header {
		if i < len(row) {
			result[column] = row[i]
		} else {
			result[column] = ""
		}
	}
	return result
}
