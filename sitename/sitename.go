// CLAUDE:SUMMARY Detects a site's display name from weighted markup patterns, derives one from a domain, rewrites all case variants.
// Package sitename handles the human-readable site title, which lives
// independently of the domain: detection from weighted markup patterns,
// derivation from a synthesized domain, and case-variant rewriting.
package sitename

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vvve011/duplicator/textenc"
)

// ErrNoName is returned when no file yields a usable display name.
// Non-fatal for callers: copies still get domain rewriting.
var ErrNoName = errors.New("sitename: no site name detected")

// textExtensions mirrors the detection scan set (no source-code extras).
var textExtensions = map[string]bool{
	".html": true, ".htm": true, ".php": true, ".css": true, ".js": true,
	".txt": true, ".json": true, ".xml": true, ".sql": true, ".conf": true,
	".config": true, ".htaccess": true, ".env": true, ".ini": true,
	".yaml": true, ".yml": true,
}

// genericNames never identify a site: template defaults and error pages.
var genericNames = map[string]bool{
	"home": true, "index": true, "main": true, "page": true, "site": true,
	"website": true, "welcome": true, "test": true, "demo": true,
	"example": true, "untitled": true, "document": true, "new page": true,
	"loading": true, "error": true, "404": true, "403": true, "500": true,
}

// namePatterns are tried on every scanned file; weights accumulate per
// cleaned candidate across the whole tree.
var namePatterns = []struct {
	re     *regexp.Regexp
	weight int
}{
	{regexp.MustCompile(`(?im)<title>([^<|]+)`), 100},
	{regexp.MustCompile(`(?im)<meta\s+property=["']og:site_name["']\s+content=["']([^"']+)`), 90},
	{regexp.MustCompile(`(?im)<meta\s+name=["']application-name["']\s+content=["']([^"']+)`), 85},
	{regexp.MustCompile(`(?im)["']blogname["']\s*[=:]\s*["']([^"']+)`), 70},
	{regexp.MustCompile(`(?im)["']site_title["']\s*[=:]\s*["']([^"']+)`), 70},
	{regexp.MustCompile(`(?im)<h1[^>]*>([^<]+)</h1>`), 50},
}

// reTagline strips " | slogan" / " - slogan" trailers from candidates.
var reTagline = regexp.MustCompile(`\s*[\|\-–—]\s*.*$`)

// hintBonus is the flat weight added when a candidate shares a substring
// relation with the detected domain's first label.
const hintBonus = 500

// Replacer detects and derives site display names.
type Replacer struct {
	logger *slog.Logger
}

// New creates a Replacer. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Replacer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replacer{logger: logger}
}

// Detect scans the tree for the site's display name. domainHint, when
// non-empty, boosts candidates related to the domain's first label.
func (r *Replacer) Detect(root, domainHint string) (string, error) {
	weights := make(map[string]int)
	var order []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		if !textExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		content, _, err := textenc.ReadFile(path, textenc.DetectChain)
		if err != nil {
			return nil
		}
		for _, p := range namePatterns {
			for _, m := range p.re.FindAllStringSubmatch(content, -1) {
				name := cleanCandidate(m[1])
				if len(name) < 2 || len(name) > 50 || genericNames[strings.ToLower(name)] {
					continue
				}
				if _, seen := weights[name]; !seen {
					order = append(order, name)
				}
				weights[name] += p.weight
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if domainHint != "" {
		label := strings.ToLower(strings.SplitN(domainHint, ".", 2)[0])
		for name := range weights {
			lower := strings.ToLower(name)
			if strings.Contains(lower, label) || strings.Contains(label, lower) {
				weights[name] += hintBonus
			}
		}
	}

	var best string
	bestWeight := 0
	for _, name := range order {
		if weights[name] > bestWeight {
			best = name
			bestWeight = weights[name]
		}
	}
	if best == "" {
		return "", ErrNoName
	}
	r.logger.Debug("sitename: detected", "name", best, "weight", bestWeight)
	return best, nil
}

func cleanCandidate(raw string) string {
	name := strings.TrimSpace(raw)
	name = reTagline.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// commonParts are short semantic tokens a synthesized label often starts
// or ends with; a match splits the derived name into two title-cased words.
var commonParts = []string{
	"bio", "vita", "pure", "care", "health", "life", "well", "zen",
	"slim", "fit", "pro", "max", "neo", "air", "sun", "lux", "nova",
	"heal", "medz", "nutr", "opti", "rise", "wave", "zest", "flex",
	"glow", "herb", "leaf", "trim", "calm", "peak", "zone", "core",
}

// Derive builds a display name from a domain's first label:
// "healcare.com" -> "HealCare", "mysite.info" -> "Mysite".
func Derive(domain string) string {
	label := strings.SplitN(domain, ".", 2)[0]
	lower := strings.ToLower(label)
	for _, part := range commonParts {
		if strings.HasPrefix(lower, part) && len(lower) > len(part) {
			return capitalize(label[:len(part)]) + capitalize(label[len(part):])
		}
	}
	for _, part := range commonParts {
		if strings.HasSuffix(lower, part) && len(lower) > len(part) {
			cut := len(label) - len(part)
			return capitalize(label[:cut]) + capitalize(label[cut:])
		}
	}
	return capitalize(label)
}

// Rewrite substitutes oldName with newName across four case variants:
// as-is, lower, UPPER, and Capitalized. Every variant pass runs with
// word-boundary matching and its count adds to the total.
func Rewrite(text, oldName, newName string) (string, int) {
	if oldName == "" || newName == "" {
		return text, 0
	}
	variants := [][2]string{
		{oldName, newName},
		{strings.ToLower(oldName), strings.ToLower(newName)},
		{strings.ToUpper(oldName), strings.ToUpper(newName)},
		{capitalize(oldName), capitalize(newName)},
	}

	total := 0
	seen := make(map[[2]string]bool)
	for _, v := range variants {
		if v[0] == v[1] || seen[v] {
			continue
		}
		seen[v] = true
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(v[0]) + `\b`)
		if err != nil {
			continue
		}
		if n := len(re.FindAllStringIndex(text, -1)); n > 0 {
			text = re.ReplaceAllLiteralString(text, v[1])
			total += n
		}
	}
	return text, total
}

// capitalize upcases the first letter and lowercases the rest,
// matching how derived names are normalized everywhere else.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
