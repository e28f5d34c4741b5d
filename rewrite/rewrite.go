// CLAUDE:SUMMARY Rewriter walks a copied site tree, substituting domain and display-name occurrences in text files.
// Package rewrite classifies site files, decodes them best-effort, and
// substitutes domain and display-name occurrences in place.
//
// Binary files are never touched. Text files are written back only when
// a pass produced at least one replacement, re-encoded in the encoding
// they were read with.
package rewrite

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vvve011/duplicator/sitename"
	"github.com/vvve011/duplicator/textenc"
)

// Config configures a Rewriter.
type Config struct {
	Logger *slog.Logger
}

// Rewriter applies domain and site-name substitutions to file trees.
type Rewriter struct {
	logger *slog.Logger
}

// New creates a Rewriter.
func New(cfg Config) *Rewriter {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Rewriter{logger: cfg.Logger}
}

// FileResult is the outcome of processing one file.
type FileResult struct {
	Replacements int
	Skipped      bool // binary, deliberately untouched
	Err          error
}

// FileError records a non-fatal per-file failure inside tree stats.
type FileError struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// TreeStats aggregates a full tree pass.
type TreeStats struct {
	TotalFiles        int         `json:"total_files"`
	ProcessedFiles    int         `json:"processed_files"`
	SkippedFiles      int         `json:"skipped_files"`
	ErrorFiles        int         `json:"error_files"`
	TotalReplacements int         `json:"total_replacements"`
	Errors            []FileError `json:"errors,omitempty"`
}

// ProcessFile rewrites one file in place. Binary files are a skipped
// success; decode and write failures are reported, not fatal.
func (rw *Rewriter) ProcessFile(path, oldDomain, newDomain, oldName, newName string) FileResult {
	if Classify(path) == ClassBinary {
		return FileResult{Skipped: true}
	}

	content, encName, err := textenc.ReadFile(path, textenc.RewriteChain)
	if err != nil {
		return FileResult{Err: fmt.Errorf("decode: %w", err)}
	}

	text, count := RewriteDomain(content, oldDomain, newDomain)
	if oldName != "" && newName != "" {
		var n int
		text, n = sitename.Rewrite(text, oldName, newName)
		count += n
	}
	if count == 0 {
		return FileResult{}
	}

	if err := os.WriteFile(path, textenc.Encode(text, encName), 0o644); err != nil {
		return FileResult{Err: fmt.Errorf("write back: %w", err)}
	}
	return FileResult{Replacements: count}
}

// ProcessTree walks every file under root and applies ProcessFile,
// tallying the outcome. Per-file errors never abort the walk.
func (rw *Rewriter) ProcessTree(root, oldDomain, newDomain, oldName, newName string) *TreeStats {
	stats := &TreeStats{}
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path != root {
				stats.ErrorFiles++
				stats.Errors = append(stats.Errors, FileError{File: path, Reason: err.Error()})
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		stats.TotalFiles++

		res := rw.ProcessFile(path, oldDomain, newDomain, oldName, newName)
		switch {
		case res.Err != nil:
			stats.ErrorFiles++
			stats.Errors = append(stats.Errors, FileError{File: path, Reason: res.Err.Error()})
			rw.logger.Debug("rewrite: file failed", "file", path, "error", res.Err)
		case res.Skipped:
			stats.SkippedFiles++
		default:
			stats.ProcessedFiles++
			stats.TotalReplacements += res.Replacements
		}
		return nil
	})
	return stats
}
