// CLAUDE:SUMMARY Infers a packaged site's original domain from priority markup markers and weighted frequency tallies.
// Package domdetect infers the original domain of a packaged website.
//
// Detection runs two tiers over the extracted file tree. Priority
// patterns are structural markers an author writes once and means
// (canonical link, og:url, base href, WordPress home constants); any
// validating priority match wins outright. Only when no marker exists
// does detection fall back to frequency counting: every domain-looking
// token in every recognized text file, tallied per registrable domain
// and weighted by how authoritative the file class is.
package domdetect

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/vvve011/duplicator/textenc"
)

// ErrNoDomain is returned when no file yields a valid domain candidate.
var ErrNoDomain = errors.New("domdetect: no domain detected")

// extWeight maps recognized text extensions to their tally weight.
// Markup and script files name the site's own domain far more reliably
// than config files, which in turn beat plain text assets.
var extWeight = map[string]int{
	".html": 3, ".htm": 3, ".php": 3, ".js": 3,
	".json": 2, ".xml": 2, ".sql": 2, ".conf": 2, ".config": 2,
	".htaccess": 2, ".env": 2, ".ini": 2, ".yaml": 2, ".yml": 2,
	".css": 1, ".txt": 1,
}

// markupExts are the file classes scanned for priority patterns.
var markupExts = map[string]bool{".html": true, ".htm": true, ".php": true, ".js": true}

// Priority-pattern authority weights. Highest validating match wins,
// ties going to the first one encountered.
const (
	weightCanonical  = 100
	weightOGURL      = 95
	weightBaseHref   = 90
	weightWPHome     = 85
	weightWPSiteURL  = 80
	weightConfigSite = 70
)

var (
	reWPHome     = regexp.MustCompile(`(?i)define\(\s*['"]WP_HOME['"]\s*,\s*['"]([^'"]+)['"]`)
	reWPSiteURL  = regexp.MustCompile(`(?i)define\(\s*['"]WP_SITEURL['"]\s*,\s*['"]([^'"]+)['"]`)
	reConfigSite = regexp.MustCompile(`(?i)['"](?:siteurl|site_url|home)['"]\s*(?:=>|[=:])\s*['"](https?://[^'"]+)['"]`)

	reFreqProto  = regexp.MustCompile(`(?i)https?://(?:www\.)?([a-zA-Z0-9-]+\.[a-zA-Z]{2,})`)
	reFreqWWW    = regexp.MustCompile(`(?i)www\.([a-zA-Z0-9-]+\.[a-zA-Z]{2,})`)
	reFreqBare   = regexp.MustCompile(`(?i)\b([a-zA-Z0-9-]+\.[a-zA-Z]{2,})\b`)
	reFreqQuoted = regexp.MustCompile(`(?i)["']([a-zA-Z0-9-]+\.[a-zA-Z]{2,})["']`)
)

// Detector scans extracted site trees for their original domain.
type Detector struct {
	logger *slog.Logger
}

// New creates a Detector. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

type priorityMatch struct {
	token  string
	weight int
}

// Detect returns the site's registrable original domain, or ErrNoDomain.
//
// hint is an optional zoneless token recovered from the archive filename.
// It biases nothing in the scan itself; it is carried for logging only,
// documented best-effort behaviour.
func (d *Detector) Detect(root, hint string) (string, error) {
	if hint != "" {
		d.logger.Debug("domdetect: scanning with filename hint", "root", root, "hint", hint)
	}

	var bestPriority string
	bestWeight := 0
	freq := make(map[string]int)
	var order []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		w, ok := extWeight[ext]
		if !ok {
			return nil
		}
		content, _, err := textenc.ReadFile(path, textenc.DetectChain)
		if err != nil {
			return nil // unreadable files are skipped
		}

		if markupExts[ext] {
			for _, pm := range priorityMatches(content) {
				clean := CleanToken(pm.token)
				if !IsValid(clean) {
					continue
				}
				if pm.weight > bestWeight {
					bestWeight = pm.weight
					bestPriority = Registrable(clean)
				}
			}
		}

		for _, token := range frequencyMatches(content) {
			clean := CleanToken(token)
			if !IsValid(clean) {
				continue
			}
			reg := Registrable(clean)
			if _, seen := freq[reg]; !seen {
				order = append(order, reg)
			}
			freq[reg] += w
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if bestWeight > 0 {
		d.logger.Debug("domdetect: priority match", "domain", bestPriority, "weight", bestWeight)
		return bestPriority, nil
	}

	var top string
	topCount := 0
	for _, dom := range order {
		if freq[dom] > topCount {
			top = dom
			topCount = freq[dom]
		}
	}
	if top == "" {
		return "", ErrNoDomain
	}
	d.logger.Debug("domdetect: frequency match", "domain", top, "tally", topCount)
	return top, nil
}

// Statistics returns the full validated-domain tally for a tree,
// keyed by cleaned domain. Used by inspection surfaces.
func (d *Detector) Statistics(root string) (map[string]int, error) {
	stats := make(map[string]int)
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		if _, ok := extWeight[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		content, _, err := textenc.ReadFile(path, textenc.DetectChain)
		if err != nil {
			return nil
		}
		for _, token := range frequencyMatches(content) {
			clean := CleanToken(token)
			if IsValid(clean) {
				stats[clean]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// priorityMatches extracts structural domain markers from one file:
// HTML markers via a tolerant parse, config-style markers via regexps.
func priorityMatches(content string) []priorityMatch {
	var matches []priorityMatch

	if doc, err := html.Parse(strings.NewReader(content)); err == nil {
		var walk func(n *html.Node)
		walk = func(n *html.Node) {
			if n.Type == html.ElementNode {
				switch n.Data {
				case "link":
					if attr(n, "rel") == "canonical" {
						if href := attr(n, "href"); href != "" {
							matches = append(matches, priorityMatch{href, weightCanonical})
						}
					}
				case "meta":
					if strings.EqualFold(attr(n, "property"), "og:url") {
						if c := attr(n, "content"); c != "" {
							matches = append(matches, priorityMatch{c, weightOGURL})
						}
					}
				case "base":
					if href := attr(n, "href"); href != "" {
						matches = append(matches, priorityMatch{href, weightBaseHref})
					}
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		walk(doc)
	}

	for _, m := range reWPHome.FindAllStringSubmatch(content, -1) {
		matches = append(matches, priorityMatch{m[1], weightWPHome})
	}
	for _, m := range reWPSiteURL.FindAllStringSubmatch(content, -1) {
		matches = append(matches, priorityMatch{m[1], weightWPSiteURL})
	}
	for _, m := range reConfigSite.FindAllStringSubmatch(content, -1) {
		matches = append(matches, priorityMatch{m[1], weightConfigSite})
	}
	return matches
}

// frequencyMatches extracts every domain-looking token from one file.
func frequencyMatches(content string) []string {
	var tokens []string
	for _, re := range []*regexp.Regexp{reFreqProto, reFreqWWW, reFreqBare, reFreqQuoted} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			tokens = append(tokens, m[1])
		}
	}
	return tokens
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
