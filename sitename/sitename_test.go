package sitename

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestDetect_TitleStripsTagline(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.html": `<title>DimVital | Natural Health Products</title>`,
	})
	got, err := New(nil).Detect(root, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "DimVital" {
		t.Errorf("got %q, want DimVital", got)
	}
}

func TestDetect_WeightsAccumulate(t *testing.T) {
	// WHAT: og:site_name (90) in two files beats a single h1 (50).
	root := writeTree(t, map[string]string{
		"a.html": `<meta property="og:site_name" content="RealName">`,
		"b.html": `<meta property="og:site_name" content="RealName">`,
		"c.html": `<h1>Other Words</h1>`,
	})
	got, err := New(nil).Detect(root, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "RealName" {
		t.Errorf("got %q, want RealName", got)
	}
}

func TestDetect_GenericNamesDiscarded(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.html": `<title>Home</title><h1>Welcome</h1>`,
	})
	_, err := New(nil).Detect(root, "")
	if !errors.Is(err, ErrNoName) {
		t.Fatalf("error = %v, want ErrNoName", err)
	}
}

func TestDetect_LengthBounds(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.html": `<title>A</title>`,
	})
	if _, err := New(nil).Detect(root, ""); !errors.Is(err, ErrNoName) {
		t.Fatalf("error = %v, want ErrNoName for 1-char candidate", err)
	}
}

func TestDetect_DomainHintBonus(t *testing.T) {
	// WHAT: A candidate sharing a substring with the domain's first label
	// gets a flat +500, outranking heavier unrelated candidates.
	root := writeTree(t, map[string]string{
		"a.html": `<title>Generic Shop Portal</title>`,
		"b.html": `<h1>DimVital</h1>`,
	})
	got, err := New(nil).Detect(root, "dimvital.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "DimVital" {
		t.Errorf("got %q, want DimVital", got)
	}
}

func TestDetect_BlognameConfig(t *testing.T) {
	root := writeTree(t, map[string]string{
		"options.json": `{"blogname": "VitaShop", "users_can_register": "0"}`,
	})
	got, err := New(nil).Detect(root, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "VitaShop" {
		t.Errorf("got %q, want VitaShop", got)
	}
}

func TestDerive(t *testing.T) {
	cases := []struct{ domain, want string }{
		{"healcare.com", "HealCare"},
		{"biopure.info", "BioPure"},
		{"purezen.com", "PureZen"},
		{"mysito.info", "Mysito"},
		{"care.com", "Care"}, // bare token, no split
	}
	for _, tc := range cases {
		if got := Derive(tc.domain); got != tc.want {
			t.Errorf("Derive(%q) = %q, want %q", tc.domain, got, tc.want)
		}
	}
}

func TestRewrite_AllCaseVariants(t *testing.T) {
	// WHAT: as-is, lower, UPPER, and Capitalized variants all run.
	text, n := Rewrite("DIMVITAL dimvital Dimvital", "DimVital", "HealCare")
	if text != "HEALCARE healcare Healcare" {
		t.Errorf("text = %q", text)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestRewrite_ExactVariantToo(t *testing.T) {
	text, n := Rewrite("DimVital rocks", "DimVital", "HealCare")
	if text != "HealCare rocks" || n != 1 {
		t.Errorf("got (%q, %d)", text, n)
	}
}

func TestRewrite_WordBoundary(t *testing.T) {
	// WHAT: Substring occurrences inside larger words stay untouched.
	text, n := Rewrite("dimvitalizer is not dimvital", "dimvital", "healcare")
	if text != "dimvitalizer is not healcare" || n != 1 {
		t.Errorf("got (%q, %d)", text, n)
	}
}

func TestRewrite_EmptyNamesNoOp(t *testing.T) {
	if text, n := Rewrite("body", "", "New"); n != 0 || text != "body" {
		t.Errorf("got (%q, %d)", text, n)
	}
	if text, n := Rewrite("body", "Old", ""); n != 0 || text != "body" {
		t.Errorf("got (%q, %d)", text, n)
	}
}

func TestRewrite_IdenticalPairSkipped(t *testing.T) {
	// WHAT: Variant pairs where old == new are dropped, so identical
	// lowercase forms do not create no-op matches counted as work.
	_, n := Rewrite("shop shop", "Shop", "shop")
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}
