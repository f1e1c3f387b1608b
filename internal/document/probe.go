package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// Meta is a typed, read-only view of the recognized frontmatter keys. Keys
// outside the recognized set (per-language slugs among them) land in Rest.
type Meta struct {
	Type              any    `yaml:"type"`
	Order             any    `yaml:"order"`
	Code              string `yaml:"code"`
	Language          string `yaml:"language"`
	Status            string `yaml:"status"`
	Title             string `yaml:"title"`
	TranslationStatus string `yaml:"translation_status"`

	Rest map[string]any `yaml:",inline"`
}

// Probe decodes frontmatter into a Meta and returns the remaining body bytes.
// Input without frontmatter yields a zero Meta and the full input as body.
func Probe(data []byte) (Meta, []byte, error) {
	var m Meta
	body, err := frontmatter.Parse(bytes.NewReader(data), &m)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("document: probe frontmatter: %w", err)
	}
	return m, body, nil
}

// Slugs collects every "<lang>-slug" key into a language → slug map.
func (m Meta) Slugs() map[string]string {
	if len(m.Rest) == 0 {
		return nil
	}
	var slugs map[string]string
	for k, v := range m.Rest {
		lang, ok := strings.CutSuffix(k, "-slug")
		if !ok || lang == "" {
			continue
		}
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		if slugs == nil {
			slugs = make(map[string]string)
		}
		slugs[lang] = s
	}
	return slugs
}
