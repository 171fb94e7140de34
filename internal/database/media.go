package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// MediaRecord represents a row in the media_records ledger. Username is
// populated only by the admin-facing join query.
type MediaRecord struct {
	ID           int64
	StoredName   string
	OriginalName string
	FileType     string
	EventName    string
	Remarks      string
	Tags         string
	Checksum     string
	SizeBytes    int64
	UploadDate   string
	AccountID    int64
	Username     string
}

// MediaFilter narrows an owner-scoped media query.
type MediaFilter struct {
	EventName string
}

// MediaSort describes the requested ordering of a media query.
type MediaSort struct {
	By    string // date | name | event
	Order string // asc | desc
}

// EventSummary is the derived per-event aggregation: a grouping of the
// ledger by event label, never stored.
type EventSummary struct {
	Name       string
	MediaCount int64
	LastUpload string
}

// FileTypeCount is one bucket of the per-owner file type histogram.
type FileTypeCount struct {
	FileType string
	Count    int64
}

// InsertMediaRecord appends one record to the ledger and returns its id.
func InsertMediaRecord(db *sql.DB, rec *MediaRecord) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO media_records
			(stored_name, original_name, file_type, event_name, remarks, tags,
			 checksum, size_bytes, upload_date, account_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.StoredName, rec.OriginalName, rec.FileType, rec.EventName, rec.Remarks,
		rec.Tags, rec.Checksum, rec.SizeBytes, rec.UploadDate, rec.AccountID)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

const mediaColumns = `id, stored_name, original_name, file_type, event_name,
	remarks, tags, checksum, size_bytes, upload_date, account_id`

func scanMediaRecord(row interface{ Scan(...interface{}) error }) (*MediaRecord, error) {
	var rec MediaRecord
	var originalName, fileType sql.NullString
	err := row.Scan(&rec.ID, &rec.StoredName, &originalName, &fileType,
		&rec.EventName, &rec.Remarks, &rec.Tags, &rec.Checksum, &rec.SizeBytes,
		&rec.UploadDate, &rec.AccountID)
	if err != nil {
		return nil, err
	}
	rec.OriginalName = originalName.String
	rec.FileType = fileType.String
	return &rec, nil
}

// GetMediaRecordByID returns the record with the given id, or nil when
// no such record exists.
func GetMediaRecordByID(db *sql.DB, id int64) (*MediaRecord, error) {
	row := db.QueryRow("SELECT "+mediaColumns+" FROM media_records WHERE id = ?", id)
	rec, err := scanMediaRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// sortColumns maps API sort keys to ledger columns. Unknown keys leave
// the ordering unchanged rather than erroring.
var sortColumns = map[string]string{
	"date":  "upload_date",
	"name":  "original_name",
	"event": "event_name",
}

// QueryMedia returns the owner's records, optionally filtered by event
// label, ordered per sort, capped at limit when limit > 0.
func QueryMedia(db *sql.DB, ownerID int64, filter MediaFilter, sort MediaSort, limit int) ([]MediaRecord, error) {
	query := "SELECT " + mediaColumns + " FROM media_records WHERE account_id = ?"
	args := []interface{}{ownerID}

	if filter.EventName != "" {
		query += " AND event_name = ?"
		args = append(args, filter.EventName)
	}

	if column, ok := sortColumns[sort.By]; ok {
		direction := "DESC"
		if sort.Order == "asc" {
			direction = "ASC"
		}
		query += " ORDER BY " + column + " " + direction
	}

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMediaRecords(rows)
}

func collectMediaRecords(rows *sql.Rows) ([]MediaRecord, error) {
	var records []MediaRecord
	for rows.Next() {
		rec, err := scanMediaRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// QueryAllMedia returns every ledger record joined with the owner's
// username, newest first. Admin view.
func QueryAllMedia(db *sql.DB) ([]MediaRecord, error) {
	rows, err := db.Query(`
		SELECT m.id, m.stored_name, m.original_name, m.file_type, m.event_name,
		       m.remarks, m.tags, m.checksum, m.size_bytes, m.upload_date,
		       m.account_id, COALESCE(a.username, '')
		FROM media_records m
		LEFT JOIN accounts a ON a.id = m.account_id
		ORDER BY m.upload_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []MediaRecord
	for rows.Next() {
		var rec MediaRecord
		var originalName, fileType sql.NullString
		err := rows.Scan(&rec.ID, &rec.StoredName, &originalName, &fileType,
			&rec.EventName, &rec.Remarks, &rec.Tags, &rec.Checksum, &rec.SizeBytes,
			&rec.UploadDate, &rec.AccountID, &rec.Username)
		if err != nil {
			return nil, err
		}
		rec.OriginalName = originalName.String
		rec.FileType = fileType.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetMediaRecordsByIDs returns the records matching the given ids; ids
// without a record are simply absent from the result.
func GetMediaRecordsByIDs(db *sql.DB, ids []int64) ([]MediaRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.Query(
		"SELECT "+mediaColumns+" FROM media_records WHERE id IN ("+placeholders+")",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMediaRecords(rows)
}

// SuggestEventNames returns the owner's distinct event labels matching the
// partial string (case-insensitive substring), most recently used first.
func SuggestEventNames(db *sql.DB, ownerID int64, partial string, limit int) ([]string, error) {
	pattern := "%" + escapeLike(partial) + "%"
	rows, err := db.Query(`
		SELECT event_name
		FROM media_records
		WHERE account_id = ? AND event_name LIKE ? ESCAPE '\'
		GROUP BY event_name
		ORDER BY MAX(upload_date) DESC
		LIMIT ?
	`, ownerID, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// ListEvents aggregates the owner's ledger by event label, descending by
// last upload. limit <= 0 returns all events.
func ListEvents(db *sql.DB, ownerID int64, limit int) ([]EventSummary, error) {
	query := `
		SELECT event_name, COUNT(*), MAX(upload_date)
		FROM media_records
		WHERE account_id = ?
		GROUP BY event_name
		ORDER BY MAX(upload_date) DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventSummary
	for rows.Next() {
		var e EventSummary
		if err := rows.Scan(&e.Name, &e.MediaCount, &e.LastUpload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountMediaByOwner returns the owner's ledger record count.
func CountMediaByOwner(db *sql.DB, ownerID int64) (int64, error) {
	var count int64
	err := db.QueryRow("SELECT COUNT(*) FROM media_records WHERE account_id = ?", ownerID).Scan(&count)
	return count, err
}

// CountDistinctEventsByOwner returns the owner's distinct event label count.
func CountDistinctEventsByOwner(db *sql.DB, ownerID int64) (int64, error) {
	var count int64
	err := db.QueryRow(`
		SELECT COUNT(DISTINCT event_name) FROM media_records WHERE account_id = ?
	`, ownerID).Scan(&count)
	return count, err
}

// ListHandlesByOwner returns every stored-file handle owned by the account.
func ListHandlesByOwner(db *sql.DB, ownerID int64) ([]string, error) {
	rows, err := db.Query("SELECT stored_name FROM media_records WHERE account_id = ?", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStrings(rows)
}

// FileTypeCountsByOwner returns the owner's file type histogram, largest
// bucket first.
func FileTypeCountsByOwner(db *sql.DB, ownerID int64) ([]FileTypeCount, error) {
	rows, err := db.Query(`
		SELECT COALESCE(file_type, ''), COUNT(*)
		FROM media_records
		WHERE account_id = ?
		GROUP BY file_type
		ORDER BY COUNT(*) DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []FileTypeCount
	for rows.Next() {
		var c FileTypeCount
		if err := rows.Scan(&c.FileType, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountAllMedia returns the full ledger record count.
func CountAllMedia(db *sql.DB) (int64, error) {
	var count int64
	err := db.QueryRow("SELECT COUNT(*) FROM media_records").Scan(&count)
	return count, err
}

// CountDistinctEventsAll returns the distinct (owner, event label) pair
// count across the whole ledger.
func CountDistinctEventsAll(db *sql.DB) (int64, error) {
	var count int64
	err := db.QueryRow(`
		SELECT COUNT(*) FROM (
			SELECT DISTINCT account_id, event_name FROM media_records
		)
	`).Scan(&count)
	return count, err
}

// CountActiveOwners returns the number of distinct accounts present in
// the ledger.
func CountActiveOwners(db *sql.DB) (int64, error) {
	var count int64
	err := db.QueryRow("SELECT COUNT(DISTINCT account_id) FROM media_records").Scan(&count)
	return count, err
}

// ListAllHandles returns every stored-file handle in the ledger.
func ListAllHandles(db *sql.DB) ([]string, error) {
	rows, err := db.Query("SELECT stored_name FROM media_records")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStrings(rows)
}

func collectStrings(rows *sql.Rows) ([]string, error) {
	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
