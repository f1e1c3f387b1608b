// Package document parses and serializes markdown documents carrying YAML
// frontmatter. Frontmatter key order is preserved across a parse → mutate →
// serialize round trip.
package document

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatterBlock matches a YAML frontmatter block at the start of a file.
var frontmatterBlock = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---\r?\n?`)

// Document is a markdown document split into an ordered frontmatter mapping
// and a free-form body.
type Document struct {
	// node is the frontmatter mapping root. nil means no frontmatter.
	node *yaml.Node
	body string
}

// Parse splits raw markdown into frontmatter and body.
//
// A document with no leading delimiter has empty frontmatter and a body equal
// to the full input; that is never an error. Malformed YAML between valid
// delimiters, or a non-mapping frontmatter document, is an error and callers
// decide whether to degrade or skip.
func Parse(data []byte) (*Document, error) {
	m := frontmatterBlock.FindSubmatchIndex(data)
	if m == nil {
		return &Document{body: string(data)}, nil
	}

	raw := data[m[2]:m[3]]
	body := strings.TrimPrefix(string(data[m[1]:]), "\n")

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("document: parse frontmatter: %w", err)
	}

	doc := &Document{body: body}
	if len(root.Content) > 0 {
		mapping := root.Content[0]
		if mapping.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("document: frontmatter is not a mapping")
		}
		doc.node = mapping
	}
	return doc, nil
}

// New returns an empty document. Frontmatter keys appear in the order they
// are Set.
func New() *Document {
	return &Document{}
}

// HasFrontmatter reports whether the document carries any frontmatter keys.
func (d *Document) HasFrontmatter() bool {
	return d.node != nil && len(d.node.Content) > 0
}

// Get returns the scalar string value for key, if present.
func (d *Document) Get(key string) (string, bool) {
	if d.node == nil {
		return "", false
	}
	for i := 0; i+1 < len(d.node.Content); i += 2 {
		if d.node.Content[i].Value != key {
			continue
		}
		val := d.node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return "", false
		}
		return val.Value, true
	}
	return "", false
}

// Set updates key to a string value, preserving its position, or appends the
// key when absent. A document without frontmatter gains a frontmatter block.
func (d *Document) Set(key, value string) {
	if d.node == nil {
		d.node = &yaml.Node{Kind: yaml.MappingNode}
	}
	for i := 0; i+1 < len(d.node.Content); i += 2 {
		if d.node.Content[i].Value == key {
			d.node.Content[i+1].SetString(value)
			return
		}
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
	v := &yaml.Node{}
	v.SetString(value)
	d.node.Content = append(d.node.Content, k, v)
}

// Keys returns the frontmatter keys in document order.
func (d *Document) Keys() []string {
	if d.node == nil {
		return nil
	}
	keys := make([]string, 0, len(d.node.Content)/2)
	for i := 0; i+1 < len(d.node.Content); i += 2 {
		keys = append(keys, d.node.Content[i].Value)
	}
	return keys
}

// Body returns the document body.
func (d *Document) Body() string {
	return d.body
}

// SetBody replaces the document body.
func (d *Document) SetBody(body string) {
	d.body = body
}

// Bytes serializes the document. A document with frontmatter is written as
// "---\n<yaml>---\n\n<body>"; one without is the body alone.
func (d *Document) Bytes() ([]byte, error) {
	if !d.HasFrontmatter() {
		return []byte(d.body), nil
	}
	fm, err := yaml.Marshal(d.node)
	if err != nil {
		return nil, fmt.Errorf("document: marshal frontmatter: %w", err)
	}
	var b strings.Builder
	b.Grow(len(fm) + len(d.body) + 10)
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(d.body)
	return []byte(b.String()), nil
}
