package batch

import (
	"fmt"
	"strings"

	"github.com/vvve011/duplicator/rewrite"
)

// CopyInfo describes one synthesized copy of a source package.
type CopyInfo struct {
	Domain string             `json:"domain"`
	Name   string             `json:"name,omitempty"`
	Path   string             `json:"path"`
	Stats  *rewrite.TreeStats `json:"stats,omitempty"`
}

// ArchiveResult is the outcome of processing one source archive.
type ArchiveResult struct {
	Success        bool       `json:"success"`
	ArchiveName    string     `json:"archive_name"`
	OriginalDomain string     `json:"original_domain,omitempty"`
	OriginalName   string     `json:"original_name,omitempty"`
	Copies         []CopyInfo `json:"copies,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// BatchError records a failure attributed to one archive, or to the run
// as a whole (archive "general").
type BatchError struct {
	Archive string `json:"archive"`
	Reason  string `json:"reason"`
}

// BatchResult aggregates a whole run. Failed packages never hide the
// results collected before or after them.
type BatchResult struct {
	Success     bool            `json:"success"`
	Processed   int             `json:"processed"`
	Failed      int             `json:"failed"`
	TotalCopies int             `json:"total_copies"`
	MasterPath  string          `json:"master_path,omitempty"`
	Results     []ArchiveResult `json:"results"`
	Errors      []BatchError    `json:"errors,omitempty"`
}

// Summary renders a human-readable account of the run.
func (r *BatchResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Processed: %d, failed: %d, copies: %d\n", r.Processed, r.Failed, r.TotalCopies)
	for _, res := range r.Results {
		status := "ok"
		if !res.Success {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "  [%s] %s", status, res.ArchiveName)
		if res.OriginalDomain != "" {
			fmt.Fprintf(&b, " (%s", res.OriginalDomain)
			if res.OriginalName != "" {
				fmt.Fprintf(&b, " / %s", res.OriginalName)
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
		for _, c := range res.Copies {
			fmt.Fprintf(&b, "    -> %s", c.Domain)
			if c.Stats != nil {
				fmt.Fprintf(&b, " (%d replacements in %d files)", c.Stats.TotalReplacements, c.Stats.ProcessedFiles)
			}
			b.WriteString("\n")
		}
		if res.Error != "" {
			fmt.Fprintf(&b, "    error: %s\n", res.Error)
		}
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "  error [%s]: %s\n", e.Archive, e.Reason)
	}
	if r.MasterPath != "" {
		fmt.Fprintf(&b, "Bundle: %s\n", r.MasterPath)
	}
	return b.String()
}
