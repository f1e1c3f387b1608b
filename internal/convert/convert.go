// Package convert shells out to pandoc to turn processed markdown into
// publishable formats, wiring in the lua filters the pipeline's citation
// styling needs.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Options carries the conversion knobs.
type Options struct {
	Bibliography string // citation database passed to --citeproc
	CSL          string // optional citation style file
	FiltersDir   string // where the embedded lua filters are materialized
	Format       string // output format used when the caller passes none
}

const imageSizeLua = `function Image (img)
  img.attributes['style'] = 'width: 50%;'
  return img
end
`

const referenceListLua = `function Div (div)
  if div.classes[1] == 'references' then
    local items = pandoc.List({})
    for _, item in ipairs(div.content) do
      if item.t == 'Div' and item.classes[1] == 'csl-entry' then
        items:insert(pandoc.BulletList({item.content}))
      end
    end
    return pandoc.Div(items, pandoc.Attr('', {'references'}))
  end
  return div
end
`

const removeCaptionsLua = `function Image (img)
  img.caption = pandoc.List({})
  img.title = ''
  return img
end
`

// luaFilters are materialized into FiltersDir before every conversion, in
// this order, so pandoc runs them deterministically.
var luaFilters = []struct {
	name   string
	source string
}{
	{"image-size.lua", imageSizeLua},
	{"reference-list.lua", referenceListLua},
	{"remove-captions.lua", removeCaptionsLua},
}

// Runner drives pandoc.
type Runner struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Runner with the given options.
func New(opts Options, logger *slog.Logger) *Runner {
	return &Runner{opts: opts, logger: logger}
}

// EnsureFilters writes any missing lua filters into the filters directory
// and returns their paths in run order. Filters already on disk are left
// alone so local edits survive.
func (r *Runner) EnsureFilters() ([]string, error) {
	if err := os.MkdirAll(r.opts.FiltersDir, 0o755); err != nil {
		return nil, fmt.Errorf("convert: create filters dir: %w", err)
	}
	paths := make([]string, 0, len(luaFilters))
	for _, f := range luaFilters {
		p := filepath.Join(r.opts.FiltersDir, f.name)
		if _, err := os.Stat(p); os.IsNotExist(err) {
			if writeErr := os.WriteFile(p, []byte(f.source), 0o644); writeErr != nil {
				return nil, fmt.Errorf("convert: write filter %s: %w", f.name, writeErr)
			}
			r.logger.Debug("convert: wrote filter", slog.String("path", p))
		} else if err != nil {
			return nil, fmt.Errorf("convert: stat filter %s: %w", f.name, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// pandocFormat maps short format names onto pandoc writer names.
func pandocFormat(format string) string {
	if format == "md" {
		return "markdown"
	}
	return format
}

// OutputPath derives the output file for input when the caller gives none.
func OutputPath(input, format string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

// BuildArgs assembles the pandoc argument list for one conversion.
func BuildArgs(input, output, format, bibliography, csl string, filters []string) []string {
	args := []string{
		input,
		"-f", "markdown",
		"-t", pandocFormat(format),
		"--bibliography", bibliography,
		"--citeproc",
	}
	for _, f := range filters {
		args = append(args, "--lua-filter", f)
	}
	args = append(args, "-o", output)
	if csl != "" {
		args = append(args, "--csl", csl)
	}
	return args
}

// Convert runs pandoc on one input file and returns the path written.
// An empty format falls back to the configured default, then to html; an
// empty output falls back to the input name with the format's extension.
func (r *Runner) Convert(ctx context.Context, input, output, format string) (string, error) {
	if format == "" {
		format = r.opts.Format
	}
	if format == "" {
		format = "html"
	}
	if output == "" {
		output = OutputPath(input, format)
	}

	if _, err := os.Stat(input); err != nil {
		return "", fmt.Errorf("convert: input %s: %w", input, err)
	}
	if r.opts.Bibliography == "" {
		return "", fmt.Errorf("convert: no bibliography configured")
	}
	if _, err := os.Stat(r.opts.Bibliography); err != nil {
		return "", fmt.Errorf("convert: bibliography %s: %w", r.opts.Bibliography, err)
	}
	if r.opts.CSL != "" {
		if _, err := os.Stat(r.opts.CSL); err != nil {
			return "", fmt.Errorf("convert: csl style %s: %w", r.opts.CSL, err)
		}
	}

	filters, err := r.EnsureFilters()
	if err != nil {
		return "", err
	}

	pandocPath, err := exec.LookPath("pandoc")
	if err != nil {
		return "", fmt.Errorf("convert: pandoc not found; install it from https://pandoc.org")
	}

	args := BuildArgs(input, output, format, r.opts.Bibliography, r.opts.CSL, filters)
	r.logger.Debug("convert: running pandoc", slog.String("args", strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, pandocPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("convert: pandoc failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("convert: pandoc failed: %w", err)
	}
	return output, nil
}
