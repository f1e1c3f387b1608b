package links

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/document"
	"github.com/starford/ansuz/internal/storage"
)

const (
	statusReady     = "interlinking-ready"
	statusProcessed = "html-ready"
)

// Processor rewrites the links of staged documents and writes the
// publishable copy next to the source file.
type Processor struct {
	store    storage.Provider
	resolver *Resolver
	logger   *slog.Logger
}

// NewProcessor creates a Processor over the given content root.
func NewProcessor(store storage.Provider, resolver *Resolver, logger *slog.Logger) *Processor {
	return &Processor{
		store:    store,
		resolver: resolver,
		logger:   logger,
	}
}

// Process rewrites one document and returns the relative path written.
// Documents whose status is not "interlinking-ready", or that carry no
// language, are reported with an error wrapping apperr.ErrNotReady.
func (p *Processor) Process(rel string) (string, error) {
	data, err := p.store.Read(rel)
	if err != nil {
		return "", err
	}
	doc, err := document.Parse(data)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", rel, err)
	}

	status, _ := doc.Get("status")
	if status != statusReady {
		return "", fmt.Errorf("%s has status %q: %w", rel, status, apperr.ErrNotReady)
	}
	language, _ := doc.Get("language")
	if language == "" {
		return "", fmt.Errorf("%s has no language: %w", rel, apperr.ErrNotReady)
	}

	doc.SetBody(p.resolver.Rewrite(doc.Body(), language))
	doc.Set("status", statusProcessed)

	out, err := doc.Bytes()
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", rel, err)
	}
	outRel := path.Join(path.Dir(rel), outputName(doc, rel, language))
	if err := p.store.Write(outRel, out); err != nil {
		return "", err
	}
	return outRel, nil
}

// outputName picks the published file name: <code>.md for English and
// <code>_<language>.md otherwise. A document without a code keeps the stem
// of its source file.
func outputName(doc *document.Document, rel, language string) string {
	code, _ := doc.Get("code")
	if code == "" {
		base := path.Base(rel)
		code = strings.TrimSuffix(base, path.Ext(base))
	}
	if language == "en" {
		return code + ".md"
	}
	return code + "_" + language + ".md"
}

// Stats tallies one directory pass.
type Stats struct {
	Processed int
	Skipped   int
	Failed    int
}

// ProcessTree runs Process over every markdown file under dir, relative to
// the processor's root. Documents that are not staged are skipped, and
// per-file failures are logged without stopping the pass.
func (p *Processor) ProcessTree(dir string) (Stats, error) {
	files, err := p.store.List(dir)
	if err != nil {
		return Stats{}, err
	}
	var stats Stats
	for _, rel := range files {
		out, err := p.Process(rel)
		switch {
		case errors.Is(err, apperr.ErrNotReady):
			stats.Skipped++
			p.logger.Debug("links: skipped",
				slog.String("path", rel),
				slog.String("reason", err.Error()))
		case err != nil:
			stats.Failed++
			p.logger.Warn("links: failed",
				slog.String("path", rel),
				slog.String("error", err.Error()))
		default:
			stats.Processed++
			p.logger.Info("links: rewrote",
				slog.String("path", rel),
				slog.String("output", out))
		}
	}
	return stats, nil
}
