// Package translator turns pending ledger entries into translated documents
// by sending markdown bodies to a translation service and writing the result
// under the output root.
package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/document"
	"github.com/starford/ansuz/internal/ledger"
	"github.com/starford/ansuz/internal/storage"
)

// Translator turns text into a target-language rendition.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Stats tallies one batch run. Attempted counts entries the batch started;
// an interrupted entry is attempted but neither succeeded nor failed.
type Stats struct {
	Attempted int
	Succeeded int
	Failed    int
}

// Runner works through pending ledger entries one at a time.
type Runner struct {
	ledger *ledger.Ledger
	source storage.Provider
	output storage.Provider
	svc    Translator
	logger *slog.Logger
}

// NewRunner creates a Runner translating from the source root into the
// output root.
func NewRunner(led *ledger.Ledger, source, output storage.Provider, svc Translator, logger *slog.Logger) *Runner {
	return &Runner{
		ledger: led,
		source: source,
		output: output,
		svc:    svc,
		logger: logger,
	}
}

// Run translates up to limit pending entries (zero or less means all).
// Each entry is recorded in the ledger as soon as its outcome is known, so
// an interrupted batch leaves every finished entry accounted for. A failed
// entry is recorded and does not stop the batch.
func (r *Runner) Run(ctx context.Context, limit int) (Stats, error) {
	pending, err := r.ledger.Pending(limit)
	if err != nil {
		return Stats{}, err
	}
	r.logger.Info("translate: batch started", slog.Int("entries", len(pending)))

	var stats Stats
	for _, entry := range pending {
		select {
		case <-ctx.Done():
			r.logger.Info("translate: interrupted", slog.Int("completed", stats.Succeeded+stats.Failed))
			return stats, ctx.Err()
		default:
		}

		stats.Attempted++
		r.logger.Info("translate: entry",
			slog.String("source", entry.SourceFile),
			slog.String("language", entry.Language))

		if err := r.translateOne(ctx, entry); err != nil {
			// A cancelled entry stays pending in the ledger; the run is over.
			if errors.Is(err, context.Canceled) {
				r.logger.Info("translate: interrupted", slog.Int("completed", stats.Succeeded+stats.Failed))
				return stats, err
			}
			stats.Failed++
			r.logger.Warn("translate: entry failed",
				slog.String("source", entry.SourceFile),
				slog.String("language", entry.Language),
				slog.String("error", err.Error()))
			if recErr := r.ledger.RecordResult(entry.SourceFile, entry.Language, ledger.StatusFailed); recErr != nil {
				return stats, recErr
			}
			continue
		}

		stats.Succeeded++
		if recErr := r.ledger.RecordResult(entry.SourceFile, entry.Language, ledger.StatusTranslated); recErr != nil {
			return stats, recErr
		}
	}
	r.logger.Info("translate: batch finished",
		slog.Int("attempted", stats.Attempted),
		slog.Int("succeeded", stats.Succeeded),
		slog.Int("failed", stats.Failed))
	return stats, nil
}

// translateOne reads the source document, translates the title and body in
// one request, and writes the target document. The target path mirrors the
// source path under a per-language directory.
func (r *Runner) translateOne(ctx context.Context, entry ledger.Record) error {
	data, err := r.source.Read(entry.SourceFile)
	if err != nil {
		return err
	}
	doc, err := document.Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", entry.SourceFile, err)
	}

	title, _ := doc.Get("title")
	payload := doc.Body()
	if title != "" {
		payload = title + "\n\n" + payload
	}

	translated, err := r.svc.Translate(ctx, payload, entry.Language)
	if err != nil {
		return err
	}
	translated = strings.TrimSpace(translated)

	// The first paragraph of the response is the translated title when one
	// was sent along.
	if title != "" {
		if head, rest, ok := strings.Cut(translated, "\n\n"); ok {
			doc.Set("title", strings.TrimSpace(head))
			translated = strings.TrimSpace(rest)
		}
	}

	doc.Set("language", entry.Language)
	doc.Set("translation_status", string(ledger.StatusTranslated))
	doc.Set("translation_date", time.Now().Format("2006-01-02"))
	doc.SetBody(translated + "\n")

	out, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("serialize %s: %w", entry.SourceFile, err)
	}
	return r.output.Write(path.Join(entry.Language, entry.SourceFile), out)
}
