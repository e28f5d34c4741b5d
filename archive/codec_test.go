package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPackExtract_RoundTrip(t *testing.T) {
	src := t.TempDir()
	os.MkdirAll(filepath.Join(src, "css"), 0o755)
	os.WriteFile(filepath.Join(src, "index.html"), []byte("<html>hi</html>"), 0o644)
	os.WriteFile(filepath.Join(src, "css", "main.css"), []byte("body{}"), 0o644)

	c := NewCodec(nil)
	out := filepath.Join(t.TempDir(), "site.zip")
	if err := c.Pack(src, out); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	dest := t.TempDir()
	if err := c.Extract(out, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dest, "css", "main.css"))
	if err != nil {
		t.Fatalf("nested entry missing: %v", err)
	}
	if string(got) != "body{}" {
		t.Errorf("content = %q", got)
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.tar")
	os.WriteFile(path, []byte("not an archive"), 0o644)
	err := NewCodec(nil).Extract(path, t.TempDir())
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("error = %v, want ErrUnsupported", err)
	}
}

func TestExtract_CorruptZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	os.WriteFile(path, []byte("PK garbage"), 0o644)
	if err := NewCodec(nil).Extract(path, t.TempDir()); err == nil {
		t.Fatal("expected error for corrupt zip")
	}
}

func TestExtract_ZipSlipGuard(t *testing.T) {
	// WHAT: An entry named ../evil must not escape the destination.
	zipPath := filepath.Join(t.TempDir(), "slip.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("../evil.txt")
	w.Write([]byte("escaped"))
	zw.Close()
	f.Close()

	dest := t.TempDir()
	err = NewCodec(nil).Extract(zipPath, dest)
	if !errors.Is(err, ErrPathTraversal) {
		t.Fatalf("error = %v, want ErrPathTraversal", err)
	}
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(dest), "evil.txt")); statErr == nil {
		t.Fatal("entry escaped the destination")
	}
}

func TestPackMany_SkipsMissing(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.zip")
	os.WriteFile(a, []byte("content-a"), 0o644)

	out := filepath.Join(dir, "master.zip")
	c := NewCodec(nil)
	if err := c.PackMany([]string{a, filepath.Join(dir, "gone.zip")}, out); err != nil {
		t.Fatalf("PackMany: %v", err)
	}

	r, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if len(r.File) != 1 || r.File[0].Name != "a.zip" {
		t.Errorf("entries = %v", r.File)
	}
}

func TestNameFor(t *testing.T) {
	c := NewCodec(nil)
	if got := c.NameFor("newsite.info"); got != "newsite.info.zip" {
		t.Errorf("got %q", got)
	}
	if got := c.NameFor("odd/name\\here.com"); got != "odd_name_here.com.zip" {
		t.Errorf("got %q", got)
	}
}

func TestSession_CloseRemovesEverything(t *testing.T) {
	s, err := NewSession(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sub, err := s.Sub("archive_1")
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(sub, "file.txt"), []byte("x"), 0o644)

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(s.Root()); !os.IsNotExist(err) {
		t.Fatal("session root still exists after Close")
	}
}
