// Package links rewrites wiki-style [[target|alias]] links into publishable
// markdown links and stages the result for the HTML render step.
package links

import (
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/starford/ansuz/internal/canonical"
	"github.com/starford/ansuz/internal/slugindex"
)

var wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)

// Resolver maps wiki link targets to published URLs.
type Resolver struct {
	canon    *canonical.Canonicalizer
	index    *slugindex.Store
	baseURLs map[string]string // language code -> site base URL
	logger   *slog.Logger
}

// NewResolver creates a Resolver over the given index store. baseURLs maps
// language codes to the site roots links are published under.
func NewResolver(canon *canonical.Canonicalizer, index *slugindex.Store, baseURLs map[string]string, logger *slog.Logger) *Resolver {
	return &Resolver{
		canon:    canon,
		index:    index,
		baseURLs: baseURLs,
		logger:   logger,
	}
}

// Rewrite replaces every [[target|alias]] token in body whose target
// resolves to a published URL for language. Tokens that do not resolve are
// left byte-for-byte as written.
func (r *Resolver) Rewrite(body, language string) string {
	return wikilinkRe.ReplaceAllStringFunc(body, func(token string) string {
		content := token[2 : len(token)-2]
		return r.rewriteToken(content, language)
	})
}

func (r *Resolver) rewriteToken(content, language string) string {
	original := "[[" + content + "]]"

	target, alias, hasAlias := strings.Cut(content, "|")
	display := alias
	if !hasAlias {
		display = path.Base(target)
	}

	key := r.canon.Key(target)
	entry, ok := r.index.Get(key)
	if !ok {
		r.logger.Debug("links: no index entry",
			slog.String("target", target),
			slog.String("key", key))
		return original
	}
	slug := entry.Slugs[language]
	if slug == "" {
		r.logger.Debug("links: no slug for language",
			slog.String("key", key),
			slog.String("language", language))
		return original
	}
	base := r.baseURLs[language]
	if base == "" {
		r.logger.Debug("links: no base URL for language",
			slog.String("language", language))
		return original
	}
	return "[" + display + "](" + base + "/" + slug + ")"
}
