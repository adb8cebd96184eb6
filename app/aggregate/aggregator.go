package aggregate

import (
	"sort"
	"sync"
	"time"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

// Aggregator accumulates counts and groupings from normalized records and
// file classifications. All mutation is serialized behind a mutex so
// parallel workers can feed it; grouped output is sorted at read time
// (source file, then in-file index), which keeps results reproducible
// regardless of worker interleaving.
type Aggregator struct {
	mu sync.Mutex

	summary              schema.ProcessingSummary
	allRecords           []schema.NormalizedRecord
	recordsByContentType map[string][]schema.NormalizedRecord
	recordsByChannel     map[string][]schema.NormalizedRecord
	unclassifiedRecords  []schema.NormalizedRecord
	finalized            bool
}

func NewAggregator(inputPath, outputPath string) *Aggregator {
	now := time.Now()

	return &Aggregator{
		summary: schema.ProcessingSummary{
			ByContentType:     map[string]int{},
			BySource:          map[string]int{},
			ByFileType:        map[string]int{},
			UnclassifiedFiles: []string{},
			StartTime:         &now,
			InputPath:         inputPath,
			OutputPath:        outputPath,
		},
		recordsByContentType: map[string][]schema.NormalizedRecord{},
		recordsByChannel:     map[string][]schema.NormalizedRecord{},
	}
}

// AddFile tracks file-level statistics for one classification.
func (a *Aggregator) AddFile(cls schema.FileClassification) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.summary.TotalFiles++

	if cls.Confidence == schema.ConfidenceLow || cls.ContentLikely == schema.ContentTypeUnknown {
		a.summary.UnclassifiedFiles = append(a.summary.UnclassifiedFiles, cls.FilePath)
	}
}

// AddRecords folds a batch of normalized records into the running counts
// and groupings.
func (a *Aggregator) AddRecords(records []schema.NormalizedRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, record := range records {
		a.summary.TotalRecords++
		a.allRecords = append(a.allRecords, record)

		a.summary.ByContentType[record.ContentType]++
		a.recordsByContentType[record.ContentType] = append(a.recordsByContentType[record.ContentType], record)

		if record.Channel != "" {
			a.summary.BySource[record.Channel]++
			a.recordsByChannel[record.Channel] = append(a.recordsByChannel[record.Channel], record)
		} else {
			a.summary.BySource[record.SourceType]++
		}

		if record.ContentType == schema.ContentTypeUnknown || record.SourceType == schema.SourceTypeUnknown {
			a.unclassifiedRecords = append(a.unclassifiedRecords, record)
		}

		if record.TimestampUncertain || len(record.ParsingNotes) > 0 {
			a.summary.UncertainRecords++
		}

		if record.DetectedFormat != "" {
			a.summary.ByFileType[record.DetectedFormat]++
		}
	}
}

// Finalize stamps the end of the run. The summary must not be read before
// Finalize has been called.
func (a *Aggregator) Finalize() {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	a.summary.EndTime = &now
	sort.Strings(a.summary.UnclassifiedFiles)
	a.finalized = true
}

// Summary returns the finalized processing summary.
func (a *Aggregator) Summary() schema.ProcessingSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.finalized {
		panic("aggregator summary read before Finalize")
	}
	return a.summary
}

// Records returns every aggregated record in stable order.
func (a *Aggregator) Records() []schema.NormalizedRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	records := make([]schema.NormalizedRecord, len(a.allRecords))
	copy(records, a.allRecords)
	sortRecords(records)
	return records
}

// RecordsByContentType returns all records grouped by content type in
// stable order.
func (a *Aggregator) RecordsByContentType() map[string][]schema.NormalizedRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return sortedGroups(a.recordsByContentType)
}

// RecordsByChannel returns all records grouped by channel in stable order.
func (a *Aggregator) RecordsByChannel() map[string][]schema.NormalizedRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return sortedGroups(a.recordsByChannel)
}

// UnclassifiedRecords returns records whose content or source could not be
// classified, in stable order.
func (a *Aggregator) UnclassifiedRecords() []schema.NormalizedRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	records := make([]schema.NormalizedRecord, len(a.unclassifiedRecords))
	copy(records, a.unclassifiedRecords)
	sortRecords(records)
	return records
}

func sortedGroups(groups map[string][]schema.NormalizedRecord) map[string][]schema.NormalizedRecord {
	result := make(map[string][]schema.NormalizedRecord, len(groups))
	for key, records := range groups {
		sorted := make([]schema.NormalizedRecord, len(records))
		copy(sorted, records)
		sortRecords(sorted)
		result[key] = sorted
	}
	return result
}

func sortRecords(records []schema.NormalizedRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].SourceFile != records[j].SourceFile {
			return records[i].SourceFile < records[j].SourceFile
		}
		return records[i].Index < records[j].Index
	})
}
