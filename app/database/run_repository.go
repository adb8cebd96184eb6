package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

// SQLRunRepository persists run-level summaries.
type SQLRunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *SQLRunRepository {
	return &SQLRunRepository{db: db}
}

func (r *SQLRunRepository) InsertRun(summary schema.ProcessingSummary) (int64, error) {
	startedAt := time.Time{}
	if summary.StartTime != nil {
		startedAt = *summary.StartTime
	}
	finishedAt := time.Time{}
	if summary.EndTime != nil {
		finishedAt = *summary.EndTime
	}

	result, err := r.db.Exec(`
		INSERT INTO runs (input_path, output_path, started_at, finished_at, total_files, total_records, uncertain_records)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, summary.InputPath, summary.OutputPath, startedAt, finishedAt,
		summary.TotalFiles, summary.TotalRecords, summary.UncertainRecords)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	return id, nil
}

func (r *SQLRunRepository) GetLatestRun() (*Run, error) {
	var run Run
	err := r.db.QueryRow(`
		SELECT id, input_path, output_path, started_at, finished_at, total_files, total_records, uncertain_records, created_at
		FROM runs
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&run.ID, &run.InputPath, &run.OutputPath, &run.StartedAt, &run.FinishedAt,
		&run.TotalFiles, &run.TotalRecords, &run.UncertainRecords, &run.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return &run, nil
}
