// CLAUDE:SUMMARY Zip/RAR extraction and zip packing with a path-traversal guard; filenames derived from domains.
// Package archive wraps container (de)compression for the duplication
// pipeline: zip and rar extraction, zip packing of rewritten copies,
// master bundling, and the per-run ephemeral workspace Session.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/nwaples/rardecode/v2"
)

// ErrUnsupported is returned for archive formats outside {zip, rar}.
var ErrUnsupported = errors.New("archive: unsupported format")

// ErrPathTraversal is returned when an archive entry escapes the
// extraction directory.
var ErrPathTraversal = errors.New("archive: entry path escapes destination")

// Codec extracts and packs site archives.
type Codec struct {
	logger *slog.Logger
}

// NewCodec creates a Codec. A nil logger falls back to slog.Default().
func NewCodec(logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Codec{logger: logger}
}

// Extract unpacks the archive at path into destDir, dispatching on the
// extension. Failures (unsupported format, multi-volume rar, corruption)
// surface as one archive-level error; the batch continues elsewhere.
func (c *Codec) Extract(path, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("archive: create dest: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return c.extractZip(path, destDir)
	case ".rar":
		return c.extractRAR(path, destDir)
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func (c *Codec) extractZip(path, destDir string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("archive: open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("archive: mkdir: %w", err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("archive: mkdir: %w", err)
		}
		if err := writeEntry(target, func() (io.ReadCloser, error) { return f.Open() }); err != nil {
			return err
		}
	}
	return nil
}

func (c *Codec) extractRAR(path, destDir string) error {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return fmt.Errorf("archive: open rar: %w", err)
	}
	defer r.Close()

	for {
		hdr, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("archive: read rar: %w", err)
		}
		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}
		if hdr.IsDir {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("archive: mkdir: %w", err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("archive: mkdir: %w", err)
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("archive: create entry: %w", err)
		}
		if _, err := io.Copy(out, r); err != nil {
			out.Close()
			return fmt.Errorf("archive: extract entry %s: %w", hdr.Name, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("archive: close entry: %w", err)
		}
	}
}

// Pack zips sourceDir into outPath, entry names relative to sourceDir.
func (c *Codec) Pack(sourceDir, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("archive: create out dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", outPath, err)
	}
	zw := newZipWriter(out)

	err = filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})
	if err != nil {
		zw.Close()
		out.Close()
		return fmt.Errorf("archive: pack %s: %w", sourceDir, err)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("archive: finalize %s: %w", outPath, err)
	}
	return out.Close()
}

// PackMany bundles already-packed archives flat into one master zip,
// entry names being their base names. Missing inputs are skipped.
func (c *Codec) PackMany(paths []string, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("archive: create out dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", outPath, err)
	}
	zw := newZipWriter(out)

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			c.logger.Warn("archive: bundle input missing, skipping", "path", p)
			continue
		}
		if err := addFile(zw, p, filepath.Base(p)); err != nil {
			zw.Close()
			out.Close()
			return fmt.Errorf("archive: bundle %s: %w", p, err)
		}
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("archive: finalize %s: %w", outPath, err)
	}
	return out.Close()
}

// NameFor derives a filesystem-safe archive filename from a domain.
func (c *Codec) NameFor(domain string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(domain) + ".zip"
}

// newZipWriter builds a zip writer with the klauspost deflate
// implementation registered at BestSpeed; copies are bulk throwaway
// output where speed beats ratio.
func newZipWriter(w io.Writer) *zip.Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})
	return zw
}

func addFile(zw *zip.Writer, path, arcname string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	w, err := zw.Create(arcname)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}

func writeEntry(target string, open func() (io.ReadCloser, error)) error {
	rc, err := open()
	if err != nil {
		return fmt.Errorf("archive: open entry: %w", err)
	}
	defer rc.Close()
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("archive: create entry: %w", err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("archive: extract entry %s: %w", target, err)
	}
	return out.Close()
}

// safeJoin validates that joining base and an archive entry name does
// not escape base (zip-slip guard).
func safeJoin(base, name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, name)
	}
	cleaned := filepath.Join(base, filepath.Clean("/"+name))
	if cleaned != filepath.Clean(base) &&
		!strings.HasPrefix(cleaned, filepath.Clean(base)+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, name)
	}
	return cleaned, nil
}
