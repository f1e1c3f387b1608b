package document

import (
	"strings"
	"testing"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ncode: hello-guide\n---\n\n# Hello\nBody text.\n")
	d, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title, _ := d.Get("title"); title != "Hello" {
		t.Errorf("title = %q, want %q", title, "Hello")
	}
	if code, _ := d.Get("code"); code != "hello-guide" {
		t.Errorf("code = %q, want %q", code, "hello-guide")
	}
	if d.Body() != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", d.Body())
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	d, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.HasFrontmatter() {
		t.Error("expected no frontmatter")
	}
	if d.Body() != string(input) {
		t.Errorf("body = %q, want full input", d.Body())
	}
}

func TestParse_InvalidYAMLIsAnError(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	if _, err := Parse(input); err == nil {
		t.Fatal("expected error for invalid YAML frontmatter")
	}
}

func TestParse_NonMappingFrontmatterIsAnError(t *testing.T) {
	input := []byte("---\njust a scalar\n---\nBody\n")
	if _, err := Parse(input); err == nil {
		t.Fatal("expected error for non-mapping frontmatter")
	}
}

func TestBytes_RoundTripPreservesKeyOrder(t *testing.T) {
	input := []byte("---\ntitle: T\norder: 3\ncode: c\nen-slug: t-guide\n---\n\nBody.\n")
	d, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(out) != string(input) {
		t.Errorf("round trip = %q, want %q", out, input)
	}

	got := d.Keys()
	want := []string{"title", "order", "code", "en-slug"}
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSet_UpdatesInPlaceAndAppends(t *testing.T) {
	d, err := Parse([]byte("---\nstatus: interlinking-ready\ntitle: T\n---\n\nBody.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.Set("status", "html-ready")
	d.Set("language", "es")

	out, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := "---\nstatus: html-ready\ntitle: T\nlanguage: es\n---\n\nBody.\n"
	if string(out) != want {
		t.Errorf("serialized = %q, want %q", out, want)
	}
}

func TestSet_CreatesFrontmatterWhenMissing(t *testing.T) {
	d, err := Parse([]byte("Plain body only.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.Set("language", "es")
	out, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !strings.HasPrefix(string(out), "---\nlanguage: es\n---\n\n") {
		t.Errorf("serialized = %q", out)
	}
}

func TestProbe_TypedFieldsAndSlugs(t *testing.T) {
	input := []byte("---\ntitle: Venlafaxine\nstatus: interlinking-ready\nen-slug: venlafaxine-guide\nes-slug: guia-venlafaxina\n---\n\nBody.\n")
	m, body, err := Probe(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Title != "Venlafaxine" {
		t.Errorf("title = %q, want %q", m.Title, "Venlafaxine")
	}
	if m.Status != "interlinking-ready" {
		t.Errorf("status = %q", m.Status)
	}
	slugs := m.Slugs()
	if slugs["en"] != "venlafaxine-guide" || slugs["es"] != "guia-venlafaxina" {
		t.Errorf("slugs = %v", slugs)
	}
	if strings.TrimSpace(string(body)) != "Body." {
		t.Errorf("body = %q", body)
	}
}

func TestProbe_NoFrontmatter(t *testing.T) {
	m, body, err := Probe([]byte("No metadata here.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Title != "" || m.Status != "" {
		t.Errorf("expected zero meta, got %+v", m)
	}
	if string(body) != "No metadata here.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSlugs_IgnoresNonStringAndBareSuffix(t *testing.T) {
	m := Meta{Rest: map[string]any{
		"en-slug": "ok",
		"fr-slug": 7,
		"-slug":   "nope",
		"other":   "x",
	}}
	slugs := m.Slugs()
	if len(slugs) != 1 || slugs["en"] != "ok" {
		t.Errorf("slugs = %v, want only en", slugs)
	}
}
