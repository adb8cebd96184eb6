package database

import (
	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

type RunRepository interface {
	InsertRun(summary schema.ProcessingSummary) (int64, error)
	GetLatestRun() (*Run, error)
}

type RecordRepository interface {
	InsertRecords(runID int64, records []schema.NormalizedRecord) error
	GetRecords(runID int64, filter RecordFilter) ([]schema.NormalizedRecord, error)
	GetRecordCount(runID int64) (int, error)
	GetCountsByContentType(runID int64) (map[string]int, error)
}
