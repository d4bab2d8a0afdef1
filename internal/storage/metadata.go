package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// MetadataDB records every classification run in SQLite so sessions can be
// audited after their media folders are cleaned up.
type MetadataDB struct {
	db *sql.DB
}

func NewMetadataDB(dbPath string) (*MetadataDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS classification_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_session ON classification_runs(session_id);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON classification_runs(created_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MetadataDB{db: db}, nil
}

// SaveRun stores one classification record payload for a session.
func (mdb *MetadataDB) SaveRun(sessionID, filename string, payload []byte) error {
	query := `
	INSERT INTO classification_runs (session_id, filename, payload, created_at)
	VALUES (?, ?, ?, ?)
	`
	if _, err := mdb.db.Exec(query, sessionID, filename, string(payload), time.Now()); err != nil {
		return fmt.Errorf("failed to save classification run: %w", err)
	}
	return nil
}

// RunRecord is one persisted classification run.
type RunRecord struct {
	SessionID string    `json:"session_id"`
	Filename  string    `json:"filename"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// ListRuns returns the most recent classification runs.
func (mdb *MetadataDB) ListRuns(limit int) ([]RunRecord, error) {
	query := `
	SELECT session_id, filename, payload, created_at
	FROM classification_runs ORDER BY created_at DESC LIMIT ?
	`
	rows, err := mdb.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.SessionID, &r.Filename, &r.Payload, &r.CreatedAt); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (mdb *MetadataDB) Close() error {
	return mdb.db.Close()
}
