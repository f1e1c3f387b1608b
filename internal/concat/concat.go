// Package concat stitches section documents into combined documents, one per
// (code, language) group, staged for link resolution.
package concat

import (
	"log/slog"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/starford/ansuz/internal/document"
	"github.com/starford/ansuz/internal/storage"
)

// Options carries the concatenation knobs.
type Options struct {
	OutputFolder string            // subdirectory created beside each group's sections
	OutputType   string            // type written into combined documents
	References   map[string]string // localized heading for the trailing references section
}

// Stats tallies one concatenation pass.
type Stats struct {
	Groups   int
	Sections int
}

type section struct {
	rel  string
	meta document.Meta
	body string
}

type group struct {
	code     string
	sections []section
}

type groupKey struct {
	dir string
	key string
}

// Concatenator combines section documents found under one input root.
type Concatenator struct {
	store  storage.Provider
	opts   Options
	logger *slog.Logger
}

// New creates a Concatenator over the given input root.
func New(store storage.Provider, opts Options, logger *slog.Logger) *Concatenator {
	return &Concatenator{store: store, opts: opts, logger: logger}
}

// Run walks the input root, groups section documents by code and language
// within each directory, and writes one combined document per group into the
// output folder beside the sections. Combined documents are staged
// "interlinking-ready" for the link resolution step.
func (c *Concatenator) Run() (Stats, error) {
	files, err := c.store.List("")
	if err != nil {
		return Stats{}, err
	}

	groups := make(map[groupKey]*group)
	var stats Stats
	for _, rel := range files {
		data, err := c.store.Read(rel)
		if err != nil {
			c.logger.Warn("concat: unreadable file",
				slog.String("path", rel),
				slog.String("error", err.Error()))
			continue
		}
		meta, body, err := document.Probe(data)
		if err != nil {
			c.logger.Debug("concat: unreadable metadata",
				slog.String("path", rel),
				slog.String("error", err.Error()))
			continue
		}
		if !isSection(meta.Type) {
			continue
		}
		if meta.Code == "" {
			c.logger.Debug("concat: section without code", slog.String("path", rel))
			continue
		}

		lang := meta.Language
		if lang == "" {
			lang = "en"
		}
		key := meta.Code
		if lang != "en" {
			key = meta.Code + "_" + lang
		}

		gk := groupKey{dir: path.Dir(rel), key: key}
		g := groups[gk]
		if g == nil {
			g = &group{code: meta.Code}
			groups[gk] = g
		}
		g.sections = append(g.sections, section{rel: rel, meta: meta, body: strings.TrimSpace(string(body))})
		stats.Sections++
	}

	keys := make([]groupKey, 0, len(groups))
	for gk := range groups {
		keys = append(keys, gk)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].dir != keys[j].dir {
			return keys[i].dir < keys[j].dir
		}
		return keys[i].key < keys[j].key
	})

	for _, gk := range keys {
		outRel, err := c.writeGroup(gk, groups[gk])
		if err != nil {
			return stats, err
		}
		stats.Groups++
		c.logger.Info("concat: wrote",
			slog.String("output", outRel),
			slog.Int("sections", len(groups[gk].sections)))
	}
	return stats, nil
}

// writeGroup serializes one combined document, sections in order.
func (c *Concatenator) writeGroup(gk groupKey, g *group) (string, error) {
	sort.SliceStable(g.sections, func(i, j int) bool {
		return orderRank(g.sections[i].meta.Order) < orderRank(g.sections[j].meta.Order)
	})

	lang := g.sections[0].meta.Language
	if lang == "" {
		lang = "en"
	}

	out := document.New()
	out.Set("code", g.code)
	out.Set("type", c.opts.OutputType)
	out.Set("language", lang)
	out.Set("status", "interlinking-ready")

	var b strings.Builder
	for i, s := range g.sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("## ")
		b.WriteString(s.meta.Title)
		b.WriteString("\n\n")
		b.WriteString(s.body)
	}
	b.WriteString("\n\n## ")
	b.WriteString(c.referencesHeading(lang))
	b.WriteString("\n")
	out.SetBody(b.String())

	data, err := out.Bytes()
	if err != nil {
		return "", err
	}
	outRel := path.Join(gk.dir, c.opts.OutputFolder, gk.key+"_temp.md")
	if err := c.store.Write(outRel, data); err != nil {
		return "", err
	}
	return outRel, nil
}

// referencesHeading picks the localized heading, falling back to English and
// then to the literal default.
func (c *Concatenator) referencesHeading(lang string) string {
	if v := c.opts.References[lang]; v != "" {
		return v
	}
	if v := c.opts.References["en"]; v != "" {
		return v
	}
	return "References"
}

// isSection matches a document type of "section", declared either as a
// scalar or as a list member.
func isSection(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "section"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "section" {
				return true
			}
		}
	}
	return false
}

// orderRank turns an order value into a sortable rank. Documents without a
// numeric order sort last.
func orderRank(order any) float64 {
	switch v := order.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return math.Inf(1)
}
