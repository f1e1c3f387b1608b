// Package canonical normalizes wiki-link targets into canonical lookup keys.
package canonical

import (
	"path"
	"strings"
)

// Canonicalizer maps raw wiki-link targets to canonical keys. The zero value
// is usable and drops only traversal segments.
type Canonicalizer struct {
	aliases map[string]struct{}
}

// New returns a Canonicalizer that additionally drops the given index-root
// alias segments (directory names used purely as index-root markers).
func New(aliases []string) *Canonicalizer {
	c := &Canonicalizer{aliases: make(map[string]struct{}, len(aliases))}
	for _, a := range aliases {
		c.aliases[a] = struct{}{}
	}
	return c
}

// Key canonicalizes a raw target path. Pure and total: separators are
// normalized to "/", the file extension is stripped, and segments that are
// empty, ".", "..", or an index-root alias are dropped. Key is idempotent.
func (c *Canonicalizer) Key(raw string) string {
	clean := strings.ReplaceAll(raw, `\`, "/")
	// Strip the extension, but a leading dot alone is not an extension.
	if ext := path.Ext(clean); ext != "" && ext != path.Base(clean) {
		clean = strings.TrimSuffix(clean, ext)
	}

	parts := strings.Split(clean, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		if _, drop := c.aliases[p]; drop {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}
