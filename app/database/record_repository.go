package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

// SQLRecordRepository persists normalized records. Raw data and parsing
// notes are stored as JSON text so the original payload stays recoverable.
type SQLRecordRepository struct {
	db *DB
}

func NewRecordRepository(db *DB) *SQLRecordRepository {
	return &SQLRecordRepository{db: db}
}

func (r *SQLRecordRepository) InsertRecords(runID int64, records []schema.NormalizedRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO records (record_id, run_id, source_file, record_index, content_type, source_type,
			title, channel, url, event_at, timestamp_uncertain, detected_format, raw_data, parsing_notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		rawData, err := json.Marshal(record.RawData)
		if err != nil {
			return fmt.Errorf("failed to encode raw data for %s: %w", record.RecordID, err)
		}
		notes, err := json.Marshal(record.ParsingNotes)
		if err != nil {
			return fmt.Errorf("failed to encode parsing notes for %s: %w", record.RecordID, err)
		}

		var eventAt any
		if record.Timestamp != nil {
			eventAt = *record.Timestamp
		}

		if _, err := stmt.Exec(record.RecordID, runID, record.SourceFile, record.Index,
			record.ContentType, record.SourceType, record.Title, record.Channel, record.URL,
			eventAt, record.TimestampUncertain, record.DetectedFormat,
			string(rawData), string(notes)); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", record.RecordID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}

	return nil
}

func (r *SQLRecordRepository) GetRecords(runID int64, filter RecordFilter) ([]schema.NormalizedRecord, error) {
	query := `
		SELECT record_id, source_file, record_index, content_type, source_type,
			title, channel, url, event_at, timestamp_uncertain, detected_format, raw_data, parsing_notes
		FROM records
		WHERE run_id = ?
	`
	args := []any{runID}

	if filter.ContentType != "" {
		query += " AND content_type = ?"
		args = append(args, filter.ContentType)
	}
	if filter.Channel != "" {
		query += " AND channel = ?"
		args = append(args, filter.Channel)
	}

	query += " ORDER BY source_file, record_index"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []schema.NormalizedRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func (r *SQLRecordRepository) GetRecordCount(runID int64) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM records WHERE run_id = ?", runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

func (r *SQLRecordRepository) GetCountsByContentType(runID int64) (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT content_type, COUNT(*)
		FROM records
		WHERE run_id = ?
		GROUP BY content_type
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count by content type: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var contentType string
		var count int
		if err := rows.Scan(&contentType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan content type count: %w", err)
		}
		counts[contentType] = count
	}

	return counts, rows.Err()
}

func scanRecord(rows *sql.Rows) (schema.NormalizedRecord, error) {
	var record schema.NormalizedRecord
	var eventAt sql.NullTime
	var rawData, notes string

	if err := rows.Scan(&record.RecordID, &record.SourceFile, &record.Index,
		&record.ContentType, &record.SourceType, &record.Title, &record.Channel, &record.URL,
		&eventAt, &record.TimestampUncertain, &record.DetectedFormat, &rawData, &notes); err != nil {
		return record, fmt.Errorf("failed to scan record: %w", err)
	}

	if eventAt.Valid {
		ts := eventAt.Time
		record.Timestamp = &ts
	}
	if err := json.Unmarshal([]byte(rawData), &record.RawData); err != nil {
		return record, fmt.Errorf("failed to decode raw data for %s: %w", record.RecordID, err)
	}
	if err := json.Unmarshal([]byte(notes), &record.ParsingNotes); err != nil {
		return record, fmt.Errorf("failed to decode parsing notes for %s: %w", record.RecordID, err)
	}

	return record, nil
}
