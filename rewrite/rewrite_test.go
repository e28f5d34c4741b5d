package rewrite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestRewriteDomain_ProtocolPass(t *testing.T) {
	// WHAT: A protocol-qualified occurrence becomes https:// regardless
	// of the original scheme, counted exactly once.
	text, n := RewriteDomain(`visit <a href="http://old.com">here</a>`, "old.com", "newsite.info")
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
	if !strings.Contains(text, "https://newsite.info") {
		t.Errorf("text = %q, missing https://newsite.info", text)
	}
	if strings.Contains(text, "old.com") {
		t.Errorf("text = %q, still contains old.com", text)
	}
}

func TestRewriteDomain_AllPasses(t *testing.T) {
	in := `https://old.com www.old.com old.com admin@old.com`
	text, n := RewriteDomain(in, "old.com", "new.info")
	want := `https://new.info www.new.info new.info admin@new.info`
	if text != want {
		t.Errorf("got  %q\nwant %q", text, want)
	}
	if n != 4 {
		t.Errorf("count = %d, want 4", n)
	}
}

func TestRewriteDomain_CaseInsensitive(t *testing.T) {
	text, n := RewriteDomain(`OLD.COM and Old.Com`, "old.com", "new.info")
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
	if strings.Contains(strings.ToLower(text), "old.com") {
		t.Errorf("text = %q", text)
	}
}

func TestRewriteDomain_StripsSchemeFromArgs(t *testing.T) {
	// WHAT: Both domains are cleaned of scheme/www before matching.
	text, n := RewriteDomain("see old.com", "https://www.old.com", "http://www.new.info")
	if n != 1 || text != "see new.info" {
		t.Errorf("got (%q, %d)", text, n)
	}
}

func TestRewriteDomain_PassOrderIsFixed(t *testing.T) {
	// WHAT: The protocol pass rewrites first; the bare pass then sees only
	// what is left. The fixed order is part of the reproducibility contract.
	text, n := RewriteDomain("http://old.com and old.com", "old.com", "new.info")
	if text != "https://new.info and new.info" {
		t.Errorf("text = %q", text)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestRewriteDomain_NoMatch(t *testing.T) {
	text, n := RewriteDomain("nothing here", "old.com", "new.info")
	if n != 0 || text != "nothing here" {
		t.Errorf("got (%q, %d)", text, n)
	}
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()

	known := filepath.Join(dir, "page.html")
	os.WriteFile(known, []byte("<html>"), 0o644)
	if Classify(known) != ClassText {
		t.Error("page.html classified binary")
	}

	image := filepath.Join(dir, "logo.png")
	os.WriteFile(image, []byte("plain text inside"), 0o644)
	if Classify(image) != ClassBinary {
		t.Error(".png classified text despite content")
	}

	unknownText := filepath.Join(dir, "notes.data")
	os.WriteFile(unknownText, []byte("just words"), 0o644)
	if Classify(unknownText) != ClassText {
		t.Error("NUL-free unknown extension classified binary")
	}

	unknownBin := filepath.Join(dir, "blob.data")
	os.WriteFile(unknownBin, []byte{0x68, 0x69, 0x00, 0x21}, 0o644)
	if Classify(unknownBin) != ClassBinary {
		t.Error("unknown extension with NUL byte classified text")
	}

	// Pure in extension+content: repeated calls agree.
	for i := 0; i < 3; i++ {
		if Classify(unknownBin) != ClassBinary {
			t.Fatal("classification changed between calls")
		}
	}
}

func TestProcessFile_BinaryUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.gif")
	content := []byte("old.com inside a gif extension")
	os.WriteFile(path, content, 0o644)

	res := New(Config{}).ProcessFile(path, "old.com", "new.info", "", "")
	if !res.Skipped || res.Replacements != 0 {
		t.Fatalf("result = %+v, want skipped", res)
	}
	got, _ := os.ReadFile(path)
	if string(got) != string(content) {
		t.Error("binary file was mutated")
	}
}

func TestProcessFile_WriteBackOnlyOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean.html")
	os.WriteFile(path, []byte("no domains here"), 0o644)
	info, _ := os.Stat(path)

	res := New(Config{}).ProcessFile(path, "old.com", "new.info", "", "")
	if res.Err != nil || res.Replacements != 0 {
		t.Fatalf("result = %+v", res)
	}
	after, _ := os.Stat(path)
	if !after.ModTime().Equal(info.ModTime()) {
		t.Error("file rewritten despite zero replacements")
	}
}

func TestProcessFile_DomainAndName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	os.WriteFile(path, []byte(`<title>OldSite</title><a href="https://oldsite.com">OldSite</a>`), 0o644)

	res := New(Config{}).ProcessFile(path, "oldsite.com", "purecare.info", "OldSite", "PureCare")
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	got, _ := os.ReadFile(path)
	text := string(got)
	if !strings.Contains(text, "https://purecare.info") {
		t.Errorf("domain not rewritten: %q", text)
	}
	if !strings.Contains(text, "<title>PureCare</title>") {
		t.Errorf("name not rewritten: %q", text)
	}
	if strings.Contains(text, "OldSite") || strings.Contains(text, "oldsite.com") {
		t.Errorf("old identity remains: %q", text)
	}
}

func TestProcessFile_PreservesCP1251(t *testing.T) {
	// WHAT: A cp1251 file is decoded, rewritten, and written back in cp1251.
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	raw, err := charmap.Windows1251.NewEncoder().Bytes([]byte("Сайт old.com работает"))
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(path, raw, 0o644)

	res := New(Config{}).ProcessFile(path, "old.com", "new.info", "", "")
	if res.Err != nil || res.Replacements != 1 {
		t.Fatalf("result = %+v", res)
	}
	got, _ := os.ReadFile(path)
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "Сайт new.info работает" {
		t.Errorf("decoded = %q", decoded)
	}
}

func TestProcessTree_Stats(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "assets"), 0o755)
	os.WriteFile(filepath.Join(dir, "a.html"), []byte("old.com old.com"), 0o644)
	os.WriteFile(filepath.Join(dir, "b.txt"), []byte("old.com"), 0o644)
	os.WriteFile(filepath.Join(dir, "assets", "logo.png"), []byte("binary"), 0o644)

	stats := New(Config{}).ProcessTree(dir, "old.com", "new.info", "", "")
	if stats.TotalFiles != 3 {
		t.Errorf("total = %d, want 3", stats.TotalFiles)
	}
	if stats.ProcessedFiles != 2 {
		t.Errorf("processed = %d, want 2", stats.ProcessedFiles)
	}
	if stats.SkippedFiles != 1 {
		t.Errorf("skipped = %d, want 1", stats.SkippedFiles)
	}
	if stats.TotalReplacements != 3 {
		t.Errorf("replacements = %d, want 3", stats.TotalReplacements)
	}
	if stats.ErrorFiles != 0 {
		t.Errorf("errors = %d: %v", stats.ErrorFiles, stats.Errors)
	}
}
