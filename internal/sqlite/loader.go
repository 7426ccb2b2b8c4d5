package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// jsonlTableMapping maps JSONL files to their SQLite tables and column lists.
// Documents load before links.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []string
}{
	{"documents.jsonl", "documents", []string{"kind", "document_id", "number", "date", "subject", "counterpart_name", "updated_at"}},
	{"links.jsonl", "links", []string{"link_id", "source_kind", "source_id", "target_kind", "target_id", "link_type", "created_by", "created_at"}},
}

// loadAllJSONL reads each JSONL file from dataDir and inserts its records
// into the corresponding table. Loading is transactional: all files load or
// the database stays empty. Malformed lines and rows that violate a
// constraint (duplicates, self-links) are skipped and counted. Unknown
// fields are ignored so files written by newer versions still load.
func loadAllJSONL(db *sql.DB, dataDir string, logger *log.Logger) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range jsonlTableMapping {
		records, malformed, err := readJSONL(filepath.Join(dataDir, mapping.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", mapping.file, err)
		}

		rejected, err := insertRecords(tx, mapping.table, mapping.columns, records)
		if err != nil {
			return fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}

		if malformed > 0 || rejected > 0 {
			logger.Warn("skipped JSONL records", "file", mapping.file, "malformed", malformed, "rejected", rejected)
		}
		logger.Debug("loaded JSONL", "file", mapping.file, "records", len(records)-rejected)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into a table and returns how
// many were rejected. Only the listed columns are extracted.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	rejected := 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			rejected++
			continue
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			val, ok := obj[col]
			if !ok || val == nil {
				// Columns are NOT NULL with '' defaults.
				args[i] = ""
				continue
			}
			args[i] = val
		}

		if _, err := stmt.Exec(args...); err != nil {
			rejected++
			continue
		}
	}

	return rejected, nil
}
