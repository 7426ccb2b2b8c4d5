package sqlite

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// jsonlFiles maps each persisted table to its JSONL file and the ORDER BY
// used when snapshotting it, so rewrites are stable and diff-friendly.
var jsonlFiles = map[string]struct {
	file    string
	orderBy string
}{
	"documents": {"documents.jsonl", "kind, document_id"},
	"links":     {"links.jsonl", "created_at, link_id"},
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage, plus the number of malformed lines skipped.
func readJSONL(path string) ([]json.RawMessage, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	skipped := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			skipped++
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, skipped, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail(fmt.Errorf("writing record: %w", err))
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail(fmt.Errorf("writing newline: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// initJSONLFiles creates empty JSONL files for every persisted table that
// does not have one yet.
func initJSONLFiles(dataDir string) error {
	for _, f := range jsonlFiles {
		path := filepath.Join(dataDir, f.file)
		_, err := os.Stat(path)
		if err == nil {
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", f.file, err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("creating %s: %w", f.file, err)
		}
	}
	return nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// persistTableJSONL snapshots every row of tableName into its JSONL file,
// one JSON object per row keyed by column name. Passing a *sql.Tx snapshots
// the uncommitted state of that transaction.
func persistTableJSONL(db queryer, dataDir, tableName string) error {
	f, ok := jsonlFiles[tableName]
	if !ok {
		return fmt.Errorf("no JSONL file for table %q", tableName)
	}

	rows, err := db.Query("SELECT * FROM " + tableName + " ORDER BY " + f.orderBy)
	if err != nil {
		return fmt.Errorf("querying %s for JSONL: %w", tableName, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("getting columns for %s: %w", tableName, err)
	}

	var records []json.RawMessage
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return fmt.Errorf("scanning %s row: %w", tableName, err)
		}
		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			rec[col] = values[i]
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling %s row: %w", tableName, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s for JSONL: %w", tableName, err)
	}

	return writeJSONL(filepath.Join(dataDir, f.file), records)
}
