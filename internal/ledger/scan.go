package ledger

import (
	"log/slog"
	"path"
	"sort"

	"github.com/starford/ansuz/internal/document"
	"github.com/starford/ansuz/internal/storage"
)

// ScanStats tallies one reconciliation pass.
type ScanStats struct {
	Files     int // markdown sources found
	Rows      int // ledger rows written
	New       int
	Corrected int
}

type recordKey struct {
	sourceFile string
	language   string
}

// Scan walks sourceDirs under the source root and rebuilds the ledger with
// one row per (source file, target language). Targets are expected at
// <language>/<source path> under the output root, and the target document
// is ground truth: a row whose target declares a terminal status is
// corrected to it, and every other existing row is preserved verbatim, so
// a repeated scan leaves the file byte-identical. Rows whose source file no
// longer exists are dropped.
func (l *Ledger) Scan(source, output storage.Provider, sourceDirs, languages []string) (ScanStats, error) {
	existing, err := l.Load()
	if err != nil {
		return ScanStats{}, err
	}
	index := make(map[recordKey]Record, len(existing))
	for _, rec := range existing {
		index[recordKey{rec.SourceFile, rec.Language}] = rec
	}

	seen := make(map[string]bool)
	var files []string
	for _, dir := range sourceDirs {
		found, err := source.List(dir)
		if err != nil {
			return ScanStats{}, err
		}
		for _, rel := range found {
			if seen[rel] {
				continue
			}
			seen[rel] = true
			files = append(files, rel)
		}
	}
	sort.Strings(files)

	stats := ScanStats{Files: len(files)}
	date := today()
	rows := make([]Record, 0, len(files)*len(languages))
	for _, rel := range files {
		title := l.sourceTitle(source, rel)
		for _, lang := range languages {
			observed := l.observeTarget(output, path.Join(lang, rel))
			if prev, ok := index[recordKey{rel, lang}]; ok {
				merged := Reconcile(prev, observed, date)
				if merged != prev {
					stats.Corrected++
				}
				rows = append(rows, merged)
			} else {
				stats.New++
				rows = append(rows, Record{
					SourceFile:  rel,
					Language:    lang,
					Status:      observed,
					LastUpdated: date,
					Title:       title,
				})
			}
		}
	}
	stats.Rows = len(rows)
	if err := l.Save(rows); err != nil {
		return ScanStats{}, err
	}
	return stats, nil
}

// Reconcile merges an existing ledger row with the status observed from its
// target document. The target wins only when it declares a terminal status
// different from the row's; anything else keeps the row untouched.
func Reconcile(existing Record, observed Status, date string) Record {
	if observed.IsTerminal() && observed != existing.Status {
		existing.Status = observed
		existing.LastUpdated = date
	}
	return existing
}

// sourceTitle pulls the title out of a source document's metadata, if any.
func (l *Ledger) sourceTitle(source storage.Provider, rel string) string {
	data, err := source.Read(rel)
	if err != nil {
		l.logger.Warn("scan: unreadable source",
			slog.String("path", rel),
			slog.String("error", err.Error()))
		return ""
	}
	meta, _, err := document.Probe(data)
	if err != nil {
		l.logger.Debug("scan: unreadable source metadata",
			slog.String("path", rel),
			slog.String("error", err.Error()))
		return ""
	}
	return meta.Title
}

// observeTarget derives a row status from the target document on disk.
// No target file means the pair is still pending. A target that cannot be
// read, or that does not declare a translation_status, observes as unknown.
func (l *Ledger) observeTarget(output storage.Provider, targetRel string) Status {
	ok, err := output.Exists(targetRel)
	if err != nil {
		return StatusUnknown
	}
	if !ok {
		return StatusPending
	}
	data, err := output.Read(targetRel)
	if err != nil {
		return StatusUnknown
	}
	meta, _, err := document.Probe(data)
	if err != nil {
		l.logger.Debug("scan: unreadable target metadata",
			slog.String("path", targetRel),
			slog.String("error", err.Error()))
		return StatusUnknown
	}
	if meta.TranslationStatus == "" {
		return StatusUnknown
	}
	return Status(meta.TranslationStatus)
}
