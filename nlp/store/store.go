// Package store persists oracle records in a SQL database through squealx.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oarkflow/squealx"
	_ "modernc.org/sqlite"

	"github.com/oarkflow/oracle/nlp/export"
)

var ErrNotFound = errors.New("store: record not found")

const schema = `CREATE TABLE IF NOT EXISTS oracles (
	doc_id     TEXT NOT NULL,
	method     TEXT NOT NULL,
	indices    TEXT NOT NULL,
	score      REAL NOT NULL DEFAULT 0,
	run_id     TEXT NOT NULL DEFAULT '',
	error      TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	PRIMARY KEY (doc_id, method)
)`

type row struct {
	DocID     string  `db:"doc_id"`
	Method    string  `db:"method"`
	Indices   string  `db:"indices"`
	Score     float64 `db:"score"`
	RunID     string  `db:"run_id"`
	Error     string  `db:"error"`
	CreatedAt int64   `db:"created_at"`
}

func (r row) record() (export.Record, error) {
	rec := export.Record{
		DocID:  r.DocID,
		Method: r.Method,
		Score:  r.Score,
		RunID:  r.RunID,
		Error:  r.Error,
	}
	if err := json.Unmarshal([]byte(r.Indices), &rec.Indices); err != nil {
		return rec, fmt.Errorf("store: indices of %s/%s: %w", r.DocID, r.Method, err)
	}
	return rec, nil
}

type Store struct {
	db *squealx.DB
}

// Open connects to the sqlite database file at dsn and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := squealx.Open("sqlite", dsn, "oracle")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// Save inserts rec, replacing any earlier record for the same document and method.
func (s *Store) Save(rec export.Record) error {
	indices, err := json.Marshal(rec.Indices)
	if err != nil {
		return err
	}
	if rec.Indices == nil {
		indices = []byte("[]")
	}
	query := `INSERT OR REPLACE INTO oracles (doc_id, method, indices, score, run_id, error, created_at)
		VALUES (:doc_id, :method, :indices, :score, :run_id, :error, :created_at)`
	_, err = s.db.NamedExec(query, map[string]any{
		"doc_id":     rec.DocID,
		"method":     rec.Method,
		"indices":    string(indices),
		"score":      rec.Score,
		"run_id":     rec.RunID,
		"error":      rec.Error,
		"created_at": time.Now().UnixNano(),
	})
	return err
}

func (s *Store) Get(docID, method string) (export.Record, error) {
	var rows []row
	query := `SELECT * FROM oracles WHERE doc_id = ? AND method = ?`
	err := s.db.Select(&rows, query, docID, method)
	if err != nil {
		return export.Record{}, err
	}
	if len(rows) == 0 {
		return export.Record{}, fmt.Errorf("%w: %s/%s", ErrNotFound, docID, method)
	}
	return rows[0].record()
}

// List returns every record of method ordered by document id. An empty method lists all
// records.
func (s *Store) List(method string) ([]export.Record, error) {
	var rows []row
	query := `SELECT * FROM oracles WHERE ? = '' OR method = ? ORDER BY doc_id, method`
	if err := s.db.Select(&rows, query, method, method); err != nil {
		return nil, err
	}
	out := make([]export.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
