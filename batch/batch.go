// CLAUDE:SUMMARY Orchestrator runs the duplication pipeline per archive with failure isolation and a master bundle.
// Package batch orchestrates the duplication pipeline: extract each source
// archive, infer its domain and display name, synthesize N replacement
// identities, rewrite and repackage each copy, and bundle everything into
// a master archive.
//
// A failed package never aborts the run; its error is recorded and the
// batch moves on.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vvve011/duplicator/archive"
	"github.com/vvve011/duplicator/domdetect"
	"github.com/vvve011/duplicator/domsynth"
	"github.com/vvve011/duplicator/rewrite"
	"github.com/vvve011/duplicator/sitename"
)

// ProgressFunc receives human-readable progress messages. Callbacks run
// synchronously; a panicking callback is swallowed, never failing the run.
type ProgressFunc func(msg string)

// Config configures an Orchestrator.
type Config struct {
	// WorkDir hosts the per-run temp session. Empty means os.TempDir().
	WorkDir string

	// LexiconPath optionally points at a YAML lexicon for the synthesizer.
	LexiconPath string

	Logger   *slog.Logger
	Progress ProgressFunc

	// Rand seeds the synthesizer; nil uses a time-seeded source.
	Rand *rand.Rand
}

// Orchestrator wires the pipeline stages together. One instance serves a
// whole batch so domain uniqueness spans every package and copy.
type Orchestrator struct {
	cfg      Config
	codec    *archive.Codec
	detector *domdetect.Detector
	synth    *domsynth.Synthesizer
	names    *sitename.Replacer
	rewriter *rewrite.Rewriter
	logger   *slog.Logger
}

// New creates an Orchestrator. It fails only when the lexicon file exists
// but cannot be parsed.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	synth, err := domsynth.New(domsynth.Config{
		LexiconPath: cfg.LexiconPath,
		Rand:        cfg.Rand,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("batch: synthesizer: %w", err)
	}
	return &Orchestrator{
		cfg:      cfg,
		codec:    archive.NewCodec(cfg.Logger),
		detector: domdetect.New(cfg.Logger),
		synth:    synth,
		names:    sitename.New(cfg.Logger),
		rewriter: rewrite.New(rewrite.Config{Logger: cfg.Logger}),
		logger:   cfg.Logger,
	}, nil
}

// emit delivers a progress message if a callback is configured.
// Callback panics are contained here.
func (o *Orchestrator) emit(msg string) {
	if o.cfg.Progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("progress callback panicked", "panic", r)
		}
	}()
	o.cfg.Progress(msg)
}

// ProcessOne runs the full pipeline for a single source archive inside the
// given session. All failures are captured in the result, never returned.
func (o *Orchestrator) ProcessOne(ctx context.Context, archivePath string, copies int, zone domsynth.Zone, session *archive.Session) *ArchiveResult {
	base := filepath.Base(archivePath)
	res := &ArchiveResult{ArchiveName: base}
	o.emit("processing " + base)

	pkgDir, err := os.MkdirTemp(session.Root(), "pkg_")
	if err != nil {
		res.Error = fmt.Sprintf("workspace: %v", err)
		return res
	}

	extractDir := filepath.Join(pkgDir, "extracted")
	if err := o.codec.Extract(archivePath, extractDir); err != nil {
		res.Error = fmt.Errorf("%w: %v", ErrExtract, err).Error()
		o.logger.Error("extraction failed", "archive", base, "error", err)
		return res
	}

	// A full domain in the filename wins over the content scan; a bare
	// token only guides it.
	hint := domdetect.FromFilename(base)
	domain := ""
	if strings.Contains(hint, ".") && domdetect.IsValid(hint) {
		domain = hint
		o.logger.Info("domain taken from filename", "archive", base, "domain", domain)
	} else {
		domain, err = o.detector.Detect(extractDir, hint)
		if err != nil {
			res.Error = err.Error()
			o.logger.Error("domain detection failed", "archive", base, "error", err)
			return res
		}
	}
	res.OriginalDomain = domain

	// Display name is best-effort: without one, only domains are rewritten.
	oldName, err := o.names.Detect(extractDir, domain)
	if err != nil && !errors.Is(err, sitename.ErrNoName) {
		o.logger.Warn("site name detection failed", "archive", base, "error", err)
	}
	res.OriginalName = oldName

	for i := 0; i < copies; i++ {
		if ctx.Err() != nil {
			break
		}
		newDomain := o.synth.Generate(domain, zone)
		o.emit(fmt.Sprintf("%s: copy %d/%d -> %s", base, i+1, copies, newDomain))

		copyDir := filepath.Join(pkgDir, fmt.Sprintf("copy_%d", i+1))
		if err := os.CopyFS(copyDir, os.DirFS(extractDir)); err != nil {
			o.logger.Error("copy tree failed", "archive", base, "domain", newDomain, "error", err)
			continue
		}

		newName := ""
		if oldName != "" {
			newName = sitename.Derive(newDomain)
		}
		stats := o.rewriter.ProcessTree(copyDir, domain, newDomain, oldName, newName)

		outPath := filepath.Join(pkgDir, o.codec.NameFor(newDomain))
		if err := o.codec.Pack(copyDir, outPath); err != nil {
			o.logger.Error("packaging failed", "archive", base, "domain", newDomain,
				"error", fmt.Errorf("%w: %v", ErrPack, err))
			os.RemoveAll(copyDir)
			continue
		}
		os.RemoveAll(copyDir)

		res.Copies = append(res.Copies, CopyInfo{
			Domain: newDomain,
			Name:   newName,
			Path:   outPath,
			Stats:  stats,
		})
	}

	res.Success = len(res.Copies) > 0
	if !res.Success && res.Error == "" {
		res.Error = "no copies produced"
	}
	return res
}

// ProcessMany runs the pipeline for every archive and bundles all produced
// copies into a master archive under outputDir. A panic anywhere in the run
// is converted into a general batch error without discarding what was
// already collected.
func (o *Orchestrator) ProcessMany(ctx context.Context, archives []string, copies int, zone domsynth.Zone, outputDir string) (result *BatchResult) {
	result = &BatchResult{}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("batch panicked", "panic", r)
			result.Success = false
			result.Errors = append(result.Errors, BatchError{Archive: "general", Reason: fmt.Sprint(r)})
		}
	}()

	if len(archives) == 0 {
		result.Errors = append(result.Errors, BatchError{Archive: "general", Reason: ErrNoInput.Error()})
		return result
	}

	session, err := archive.NewSession(o.cfg.WorkDir)
	if err != nil {
		result.Errors = append(result.Errors, BatchError{Archive: "general", Reason: err.Error()})
		return result
	}
	defer session.Close()

	var bundlePaths []string
	for _, path := range archives {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, BatchError{Archive: "general", Reason: "cancelled: " + err.Error()})
			break
		}
		r := o.ProcessOne(ctx, path, copies, zone, session)
		result.Results = append(result.Results, *r)
		if r.Success {
			result.Processed++
			result.TotalCopies += len(r.Copies)
			for _, c := range r.Copies {
				bundlePaths = append(bundlePaths, c.Path)
			}
		} else {
			result.Failed++
			result.Errors = append(result.Errors, BatchError{Archive: r.ArchiveName, Reason: r.Error})
		}
	}

	if result.TotalCopies == 0 {
		o.emit("batch finished: nothing produced")
		return result
	}

	master := filepath.Join(outputDir, "duplicates_"+time.Now().Format("20060102_150405")+".zip")
	if err := o.codec.PackMany(bundlePaths, master); err != nil {
		result.Errors = append(result.Errors, BatchError{Archive: "general", Reason: "master bundle: " + err.Error()})
		return result
	}
	result.MasterPath = master
	result.Success = result.Processed > 0
	o.emit(fmt.Sprintf("batch finished: %d copies in %s", result.TotalCopies, filepath.Base(master)))
	return result
}

// InspectReport is the outcome of a read-only archive analysis.
type InspectReport struct {
	ArchiveName  string         `json:"archive_name"`
	FilenameHint string         `json:"filename_hint,omitempty"`
	Domain       string         `json:"domain,omitempty"`
	SiteName     string         `json:"site_name,omitempty"`
	Statistics   map[string]int `json:"statistics,omitempty"`
}

// Inspect extracts an archive into a throwaway session and reports what
// detection would see, without rewriting anything.
func (o *Orchestrator) Inspect(ctx context.Context, archivePath string) (*InspectReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session, err := archive.NewSession(o.cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	extractDir, err := session.Sub("extracted")
	if err != nil {
		return nil, err
	}
	if err := o.codec.Extract(archivePath, extractDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtract, err)
	}

	base := filepath.Base(archivePath)
	report := &InspectReport{
		ArchiveName:  base,
		FilenameHint: domdetect.FromFilename(base),
	}

	if strings.Contains(report.FilenameHint, ".") && domdetect.IsValid(report.FilenameHint) {
		report.Domain = report.FilenameHint
	} else if domain, err := o.detector.Detect(extractDir, report.FilenameHint); err == nil {
		report.Domain = domain
	}
	if name, err := o.names.Detect(extractDir, report.Domain); err == nil {
		report.SiteName = name
	}
	if stats, err := o.detector.Statistics(extractDir); err == nil {
		report.Statistics = stats
	}
	return report, nil
}

// GenerateDomains synthesizes count domains from an original, sharing the
// batch-wide uniqueness set.
func (o *Orchestrator) GenerateDomains(original string, count int, zone domsynth.Zone) []string {
	return o.synth.GenerateMany(original, count, zone)
}
