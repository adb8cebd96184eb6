package database

import (
	"time"
)

type Run struct {
	ID               int64
	InputPath        string
	OutputPath       string
	StartedAt        time.Time
	FinishedAt       time.Time
	TotalFiles       int
	TotalRecords     int
	UncertainRecords int
	CreatedAt        time.Time
}

// RecordFilter narrows catalog record queries. Zero values mean "no
// constraint".
type RecordFilter struct {
	ContentType string
	Channel     string
	Limit       int
	Offset      int
}
