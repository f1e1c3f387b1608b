// Package ledger tracks translation work in a CSV file with one row per
// (source file, target language) pair. The file is the source of truth for
// which documents still need translating.
package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/storage"
)

// Status is the lifecycle state of one translation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusTranslated Status = "translated"
	StatusFailed     Status = "failed"
	StatusUnknown    Status = "unknown"
)

// IsTerminal reports whether a target document declaring s is authoritative
// for the ledger row during a scan.
func (s Status) IsTerminal() bool {
	return s == StatusTranslated || s == StatusFailed
}

// Record is one ledger row.
type Record struct {
	SourceFile  string
	Language    string
	Status      Status
	LastUpdated string // YYYY-MM-DD
	Title       string
}

var header = []string{"source_file", "language", "status", "last_updated", "title"}

const dateLayout = "2006-01-02"

func today() string {
	return time.Now().Format(dateLayout)
}

// Ledger reads and rewrites the CSV file at path. Every mutation is a full
// read-modify-rewrite so the file never holds partial state.
type Ledger struct {
	path   string
	logger *slog.Logger
}

// New creates a Ledger over the CSV file at path. The file does not need to
// exist yet.
func New(path string, logger *slog.Logger) *Ledger {
	return &Ledger{path: path, logger: logger}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// Load reads every row. A missing file is an empty ledger.
func (l *Ledger) Load() ([]Record, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: read %s: %w", l.path, err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ledger: parse %s: %w", l.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows[0]) != len(header) || rows[0][0] != header[0] {
		return nil, fmt.Errorf("ledger: unrecognized header in %s", l.path)
	}
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, Record{
			SourceFile:  row[0],
			Language:    row[1],
			Status:      Status(row[2]),
			LastUpdated: row[3],
			Title:       row[4],
		})
	}
	return records, nil
}

// Save rewrites the whole file atomically, sorted by source file then
// language.
func (l *Ledger) Save(records []Record) error {
	sort.Slice(records, func(i, j int) bool {
		if records[i].SourceFile != records[j].SourceFile {
			return records[i].SourceFile < records[j].SourceFile
		}
		return records[i].Language < records[j].Language
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("ledger: encode: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.SourceFile, rec.Language, string(rec.Status), rec.LastUpdated, rec.Title}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("ledger: encode: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("ledger: encode: %w", err)
	}
	return storage.AtomicWrite(l.path, buf.Bytes())
}

// Pending returns rows still waiting for translation, in file order.
// A limit of zero or less means no limit.
func (l *Ledger) Pending(limit int) ([]Record, error) {
	records, err := l.Load()
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, rec := range records {
		if rec.Status != StatusPending {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// RecordResult sets the status of one row and stamps it with today's date.
func (l *Ledger) RecordResult(sourceFile, language string, status Status) error {
	records, err := l.Load()
	if err != nil {
		return err
	}
	found := false
	for i := range records {
		if records[i].SourceFile == sourceFile && records[i].Language == language {
			records[i].Status = status
			records[i].LastUpdated = today()
			found = true
		}
	}
	if !found {
		return fmt.Errorf("ledger: no row for %s (%s): %w", sourceFile, language, apperr.ErrNotFound)
	}
	return l.Save(records)
}

// ResetFailed flips every failed row back to pending so the next batch
// retries it. It returns the number of rows reset.
func (l *Ledger) ResetFailed() (int, error) {
	records, err := l.Load()
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range records {
		if records[i].Status == StatusFailed {
			records[i].Status = StatusPending
			records[i].LastUpdated = today()
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, l.Save(records)
}

// Summary aggregates row counts for status reporting.
type Summary struct {
	Total      int
	ByStatus   map[Status]int
	ByLanguage map[string]int
}

// Summarize counts rows by status and by language.
func (l *Ledger) Summarize() (Summary, error) {
	records, err := l.Load()
	if err != nil {
		return Summary{}, err
	}
	s := Summary{
		ByStatus:   make(map[Status]int),
		ByLanguage: make(map[string]int),
	}
	for _, rec := range records {
		s.Total++
		s.ByStatus[rec.Status]++
		s.ByLanguage[rec.Language]++
	}
	return s, nil
}
