// Package internal wires configuration, logging, and the pipeline components
// behind each CLI command.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/canonical"
	"github.com/starford/ansuz/internal/concat"
	"github.com/starford/ansuz/internal/convert"
	"github.com/starford/ansuz/internal/ledger"
	"github.com/starford/ansuz/internal/links"
	"github.com/starford/ansuz/internal/slugindex"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/translator"
)

// NewLogger builds the process-wide structured logger. verbose forces debug
// level regardless of the configured one. Logs go to stderr so command
// output on stdout stays clean.
func NewLogger(level slog.Level, verbose bool) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// RunLinks rewrites wiki links under input, a file or directory defaulting
// to the configured content path. With watch it keeps processing files as
// they change until the context is cancelled.
func RunLinks(ctx context.Context, cfg *Config, logger *slog.Logger, input string, watch bool) error {
	if input == "" {
		input = cfg.Content.LocalPath
	}
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input path %s: %w", input, err)
	}

	indexFS, err := storage.NewFS(cfg.Content.IndexPath)
	if err != nil {
		return fmt.Errorf("index path: %w", err)
	}
	canon := canonical.New(cfg.Content.IndexAliases)

	// Each pass gets a fresh slug index so edits to index documents are
	// picked up between watch events.
	newProcessor := func(store storage.Provider) *links.Processor {
		idx := slugindex.New(indexFS, logger)
		resolver := links.NewResolver(canon, idx, cfg.BaseURLs, logger)
		return links.NewProcessor(store, resolver, logger)
	}

	if !info.IsDir() {
		if watch {
			return fmt.Errorf("watch needs a directory, got file %s", input)
		}
		store, err := storage.NewFS(filepath.Dir(input))
		if err != nil {
			return err
		}
		return processOne(newProcessor(store), filepath.Base(input), logger)
	}

	store, err := storage.NewFS(input)
	if err != nil {
		return err
	}
	stats, err := newProcessor(store).ProcessTree("")
	if err != nil {
		return err
	}
	logger.Info("links: pass complete",
		slog.Int("processed", stats.Processed),
		slog.Int("skipped", stats.Skipped),
		slog.Int("failed", stats.Failed))

	if !watch {
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	events := make(chan string, 16)

	g.Go(func() error {
		defer close(events)
		return links.Watch(gCtx, store.Root(), logger, events)
	})
	g.Go(func() error {
		for rel := range events {
			_ = processOne(newProcessor(store), rel, logger)
		}
		return nil
	})
	return g.Wait()
}

// processOne runs a single document through the processor. A document that
// is not staged for link resolution is skipped, not an error.
func processOne(proc *links.Processor, rel string, logger *slog.Logger) error {
	out, err := proc.Process(rel)
	switch {
	case errors.Is(err, apperr.ErrNotReady):
		logger.Debug("links: skipped",
			slog.String("path", rel),
			slog.String("reason", err.Error()))
		return nil
	case err != nil:
		logger.Warn("links: failed",
			slog.String("path", rel),
			slog.String("error", err.Error()))
		return err
	}
	logger.Info("links: rewrote",
		slog.String("path", rel),
		slog.String("output", out))
	return nil
}

// RunScan reconciles the translation ledger with the source tree and the
// translated documents already on disk.
func RunScan(cfg *Config, logger *slog.Logger, resetFailed bool) error {
	t := cfg.Translation
	if len(t.TargetLanguages) == 0 {
		return fmt.Errorf("translation.target_languages is empty")
	}
	source, err := storage.NewFS(t.SourcePath)
	if err != nil {
		return fmt.Errorf("source path: %w", err)
	}
	if err := os.MkdirAll(t.OutputPath, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	output, err := storage.NewFS(t.OutputPath)
	if err != nil {
		return fmt.Errorf("output path: %w", err)
	}

	led := ledger.New(t.LedgerPath, logger)
	if resetFailed {
		n, err := led.ResetFailed()
		if err != nil {
			return err
		}
		logger.Info("scan: failed rows reset", slog.Int("rows", n))
	}

	dirs := t.SourceDirectories
	if len(dirs) == 0 {
		dirs = []string{""}
	}
	stats, err := led.Scan(source, output, dirs, t.TargetLanguages)
	if err != nil {
		return err
	}
	logger.Info("scan: complete",
		slog.String("ledger", led.Path()),
		slog.Int("files", stats.Files),
		slog.Int("rows", stats.Rows),
		slog.Int("new", stats.New),
		slog.Int("corrected", stats.Corrected))
	return nil
}

// RunTranslate works through pending ledger entries. limit overrides the
// configured batch size when positive.
func RunTranslate(ctx context.Context, cfg *Config, logger *slog.Logger, limit int) error {
	t := cfg.Translation

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is not set; export it or put it in .env")
	}

	prompt := ""
	if t.PromptPath != "" {
		data, err := os.ReadFile(t.PromptPath)
		if err != nil {
			return fmt.Errorf("prompt file: %w", err)
		}
		prompt = string(data)
	}

	source, err := storage.NewFS(t.SourcePath)
	if err != nil {
		return fmt.Errorf("source path: %w", err)
	}
	if err := os.MkdirAll(t.OutputPath, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	output, err := storage.NewFS(t.OutputPath)
	if err != nil {
		return fmt.Errorf("output path: %w", err)
	}

	if limit <= 0 {
		limit = t.BatchSize
	}

	client := translator.NewAnthropicClient(translator.ClientConfig{
		BaseURL:   t.BaseURL,
		APIKey:    apiKey,
		Model:     t.Model,
		MaxTokens: t.MaxTokens,
		Prompt:    prompt,
		Timeout:   time.Duration(t.TimeoutSeconds) * time.Second,
	})
	led := ledger.New(t.LedgerPath, logger)
	runner := translator.NewRunner(led, source, output, client, logger)

	stats, err := runner.Run(ctx, limit)
	if errors.Is(err, context.Canceled) {
		logger.Info("translate: stopped early; finished entries are recorded",
			slog.Int("attempted", stats.Attempted),
			slog.Int("succeeded", stats.Succeeded),
			slog.Int("failed", stats.Failed))
		return nil
	}
	return err
}

// RunStatus prints a ledger summary to stdout.
func RunStatus(cfg *Config, logger *slog.Logger) error {
	led := ledger.New(cfg.Translation.LedgerPath, logger)
	s, err := led.Summarize()
	if err != nil {
		return err
	}
	fmt.Printf("ledger: %s\n", led.Path())
	fmt.Printf("rows:   %d\n", s.Total)
	for _, st := range []ledger.Status{ledger.StatusPending, ledger.StatusTranslated, ledger.StatusFailed, ledger.StatusUnknown} {
		if n := s.ByStatus[st]; n > 0 {
			fmt.Printf("  %-12s %d\n", string(st)+":", n)
		}
	}
	if len(s.ByLanguage) > 0 {
		langs := make([]string, 0, len(s.ByLanguage))
		for lang := range s.ByLanguage {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		fmt.Println("by language:")
		for _, lang := range langs {
			fmt.Printf("  %-12s %d\n", lang+":", s.ByLanguage[lang])
		}
	}
	return nil
}

// RunConcat combines section documents under dir, defaulting to the
// configured input path.
func RunConcat(cfg *Config, logger *slog.Logger, dir string) error {
	if dir == "" {
		dir = cfg.Concat.InputPath
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		return fmt.Errorf("input path: %w", err)
	}
	c := concat.New(store, concat.Options{
		OutputFolder: cfg.Concat.OutputFolder,
		OutputType:   cfg.Concat.OutputType,
		References:   cfg.Concat.References,
	}, logger)
	stats, err := c.Run()
	if err != nil {
		return err
	}
	logger.Info("concat: complete",
		slog.Int("groups", stats.Groups),
		slog.Int("sections", stats.Sections))
	return nil
}

// RunConvert renders one markdown file through pandoc.
func RunConvert(ctx context.Context, cfg *Config, logger *slog.Logger, input, output, format string) error {
	r := convert.New(convert.Options{
		Bibliography: cfg.Convert.BibliographyPath,
		CSL:          cfg.Convert.CSLPath,
		FiltersDir:   cfg.Convert.FiltersDir,
		Format:       cfg.Convert.DefaultOutputFormat,
	}, logger)
	out, err := r.Convert(ctx, input, output, format)
	if err != nil {
		return err
	}
	logger.Info("convert: complete", slog.String("output", out))
	return nil
}
