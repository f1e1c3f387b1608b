package canonical

import "testing"

func TestKey_CollapsesEquivalentSpellings(t *testing.T) {
	c := New([]string{"Index", "Brain Guides"})

	cases := []struct {
		in   string
		want string
	}{
		{"../../../Index/Drugs/Venlafaxine", "Drugs/Venlafaxine"},
		{"../../../Brain Guides/Index/Drugs/Venlafaxine", "Drugs/Venlafaxine"},
		{"Index/Drugs/Venlafaxine", "Drugs/Venlafaxine"},
		{"Brain Guides/Index/Drugs/Venlafaxine", "Drugs/Venlafaxine"},
		{"Drugs/Venlafaxine", "Drugs/Venlafaxine"},
		{"Drugs/Venlafaxine.md", "Drugs/Venlafaxine"},
		{"../../../Index/Drugs/Venlafaxine.md", "Drugs/Venlafaxine"},
	}
	for _, tc := range cases {
		if got := c.Key(tc.in); got != tc.want {
			t.Errorf("Key(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKey_Idempotent(t *testing.T) {
	c := New([]string{"Index", "Brain Guides"})
	inputs := []string{
		"../../../Index/Drugs/Venlafaxine.md",
		"Drugs/Venlafaxine",
		`Drugs\Venlafaxine.md`,
		"./Guides/../Intro",
	}
	for _, in := range inputs {
		once := c.Key(in)
		if twice := c.Key(once); twice != once {
			t.Errorf("Key(Key(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestKey_BackslashSeparators(t *testing.T) {
	c := New([]string{"Index"})
	if got := c.Key(`Index\Drugs\Venlafaxine.md`); got != "Drugs/Venlafaxine" {
		t.Errorf("Key = %q, want %q", got, "Drugs/Venlafaxine")
	}
}

func TestKey_DotSegmentsAndEmpty(t *testing.T) {
	c := New(nil)
	if got := c.Key("./a//b/./c"); got != "a/b/c" {
		t.Errorf("Key = %q, want %q", got, "a/b/c")
	}
	if got := c.Key(""); got != "" {
		t.Errorf("Key(\"\") = %q, want empty", got)
	}
}

func TestKey_DotfileKeepsName(t *testing.T) {
	c := New(nil)
	if got := c.Key(".env"); got != ".env" {
		t.Errorf("Key = %q, want %q", got, ".env")
	}
}

func TestKey_ZeroValueDropsTraversalOnly(t *testing.T) {
	var c Canonicalizer
	if got := c.Key("../Index/A.md"); got != "Index/A" {
		t.Errorf("Key = %q, want %q", got, "Index/A")
	}
}
