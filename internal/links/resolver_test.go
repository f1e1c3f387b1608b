package links

import (
	"testing"

	"github.com/starford/ansuz/internal/canonical"
	"github.com/starford/ansuz/internal/slugindex"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/testutil"
)

var testBaseURLs = map[string]string{
	"en": "https://example.org/en",
	"es": "https://example.org/es",
}

func newTestResolver(t *testing.T, indexRoot string, baseURLs map[string]string) *Resolver {
	t.Helper()
	store, err := storage.NewFS(indexRoot)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	idx := slugindex.New(store, testutil.DiscardLogger())
	canon := canonical.New([]string{"Index", "Brain Guides"})
	return NewResolver(canon, idx, baseURLs, testutil.DiscardLogger())
}

func writeIndexDoc(t *testing.T, root string) {
	t.Helper()
	testutil.WriteFile(t, root, "Drugs/Venlafaxine.md",
		"---\ntitle: Venlafaxine\nen-slug: venlafaxine-guide\nes-slug: guia-venlafaxina\n---\n\nIndex body.\n")
}

func TestRewrite_ResolvesAliasedLink(t *testing.T) {
	root := t.TempDir()
	writeIndexDoc(t, root)
	r := newTestResolver(t, root, testBaseURLs)

	got := r.Rewrite("See [[Drugs/Venlafaxine.md|the drug]] for details.", "es")
	want := "See [the drug](https://example.org/es/guia-venlafaxina) for details."
	if got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewrite_DefaultDisplayKeepsExtension(t *testing.T) {
	root := t.TempDir()
	writeIndexDoc(t, root)
	r := newTestResolver(t, root, testBaseURLs)

	got := r.Rewrite("[[Drugs/Venlafaxine.md]]", "en")
	want := "[Venlafaxine.md](https://example.org/en/venlafaxine-guide)"
	if got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewrite_EquivalentSpellingsShareOneEntry(t *testing.T) {
	root := t.TempDir()
	writeIndexDoc(t, root)
	r := newTestResolver(t, root, testBaseURLs)

	for _, body := range []string{
		"[[Drugs/Venlafaxine]]",
		"[[Index/Drugs/Venlafaxine.markdown]]",
		"[[Brain Guides/Drugs/Venlafaxine.md]]",
	} {
		got := r.Rewrite(body, "en")
		if got == body {
			t.Errorf("Rewrite(%q) left the link unresolved", body)
		}
	}
}

func TestRewrite_UnresolvedTargetLeftVerbatim(t *testing.T) {
	root := t.TempDir()
	writeIndexDoc(t, root)
	r := newTestResolver(t, root, testBaseURLs)

	for _, body := range []string{
		"[[Missing Page]]",
		"[[ Drugs/Venlafaxine ]]", // surrounding spaces are part of the name
		"keep [[Missing|alias text]] as-is",
	} {
		if got := r.Rewrite(body, "en"); got != body {
			t.Errorf("Rewrite(%q) = %q, want unchanged", body, got)
		}
	}
}

func TestRewrite_NoSlugForLanguageLeftVerbatim(t *testing.T) {
	root := t.TempDir()
	writeIndexDoc(t, root)
	r := newTestResolver(t, root, testBaseURLs)

	body := "[[Drugs/Venlafaxine]]"
	if got := r.Rewrite(body, "fr"); got != body {
		t.Errorf("Rewrite = %q, want unchanged", got)
	}
}

func TestRewrite_NoBaseURLLeftVerbatim(t *testing.T) {
	root := t.TempDir()
	writeIndexDoc(t, root)
	r := newTestResolver(t, root, map[string]string{"es": "https://example.org/es"})

	body := "[[Drugs/Venlafaxine]]"
	if got := r.Rewrite(body, "en"); got != body {
		t.Errorf("Rewrite = %q, want unchanged", got)
	}
}

func TestRewrite_AliasSplitsOnFirstPipe(t *testing.T) {
	root := t.TempDir()
	writeIndexDoc(t, root)
	r := newTestResolver(t, root, testBaseURLs)

	got := r.Rewrite("[[Drugs/Venlafaxine|a|b]]", "en")
	want := "[a|b](https://example.org/en/venlafaxine-guide)"
	if got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewrite_MixedBody(t *testing.T) {
	root := t.TempDir()
	writeIndexDoc(t, root)
	r := newTestResolver(t, root, testBaseURLs)

	body := "A [[Drugs/Venlafaxine|drug]] next to [[Unknown]] and plain text."
	want := "A [drug](https://example.org/en/venlafaxine-guide) next to [[Unknown]] and plain text."
	if got := r.Rewrite(body, "en"); got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewrite_SecondPassIsStable(t *testing.T) {
	root := t.TempDir()
	writeIndexDoc(t, root)
	r := newTestResolver(t, root, testBaseURLs)

	first := r.Rewrite("A [[Drugs/Venlafaxine|drug]] next to [[Unknown]].", "en")
	if second := r.Rewrite(first, "en"); second != first {
		t.Errorf("second pass changed the body:\nfirst:  %q\nsecond: %q", first, second)
	}
}
