// This file implements JSONL loading on Attach and table persistence after
// every write.
package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column
// lists. Tables with foreign keys load after the tables they reference.
var jsonlTableMapping = []struct {
	file    string
	table   string
	orderBy string
	columns []string
}{
	{postTypesJSONL, "post_types", "name", []string{"name", "label", "as_taxonomy", "created_at"}},
	{taxonomiesJSONL, "taxonomies", "name", []string{"name", "label", "created_at"}},
	{postsJSONL, "posts", "post_id", []string{"post_id", "post_type", "title", "slug", "status", "parent_id", "created_at", "updated_at"}},
	{postmetaJSONL, "postmeta", "post_id, meta_key", []string{"meta_id", "post_id", "meta_key", "meta_value"}},
	{termsJSONL, "terms", "term_id", []string{"term_id", "taxonomy", "name", "slug"}},
	{relationshipsJSONL, "term_relationships", "post_id, term_id", []string{"post_id", "term_id"}},
}

// loadAllJSONL reads each JSONL file from dataDir and inserts records into
// the corresponding SQLite tables inside one transaction: either everything
// loads or the database stays empty. Malformed lines and rows violating
// constraints are skipped. Unknown fields are ignored.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dataDir, mapping.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, mapping.table, mapping.columns, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into a SQLite table. Only the
// listed columns are read from each record.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) error {
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
		return fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		dec := json.NewDecoder(bytes.NewReader(rec))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			continue
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = columnValue(obj[col])
		}

		if _, err := stmt.Exec(args...); err != nil {
			continue
		}
	}
	return nil
}

// columnValue converts a decoded JSON value into a SQLite argument.
// Integral numbers stay integers so AUTOINCREMENT ids survive a reload.
func columnValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		return string(b)
	default:
		return val
	}
}

// persistTableJSONL reads every row of table from SQLite and writes it to
// its JSONL file using the atomic write pattern. The caller must hold b.mu.
func (b *Backend) persistTableJSONL(table string) error {
	for _, mapping := range jsonlTableMapping {
		if mapping.table != table {
			continue
		}
		query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
			strings.Join(mapping.columns, ", "), mapping.table, mapping.orderBy)
		rows, err := b.db.Query(query)
		if err != nil {
			return fmt.Errorf("querying %s for JSONL: %w", table, err)
		}
		defer rows.Close()

		var records []json.RawMessage
		for rows.Next() {
			values := make([]any, len(mapping.columns))
			ptrs := make([]any, len(values))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return fmt.Errorf("scanning %s row: %w", table, err)
			}
			rec := make(map[string]any, len(mapping.columns))
			for i, col := range mapping.columns {
				if raw, ok := values[i].([]byte); ok {
					rec[col] = string(raw)
					continue
				}
				rec[col] = values[i]
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshaling %s row: %w", table, err)
			}
			records = append(records, data)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating %s for JSONL: %w", table, err)
		}

		return writeJSONL(filepath.Join(b.config.DataDir, mapping.file), records)
	}
	return fmt.Errorf("no JSONL mapping for table %s", table)
}

// persistTables writes each named table to its JSONL file.
func (b *Backend) persistTables(tables ...string) error {
	for _, t := range tables {
		if err := b.persistTableJSONL(t); err != nil {
			return err
		}
	}
	return nil
}
