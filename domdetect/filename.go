// CLAUDE:SUMMARY Recovers a domain (or a zoneless hint) from an archive filename before any content scan.
package domdetect

import (
	"path/filepath"
	"regexp"
	"strings"
)

var archiveSuffixes = []string{".zip", ".rar", ".tar", ".gz", ".tgz", ".7z"}

// bundleTokens are filler words people append when packaging a site.
// They are dropped segment-wise so that names like "mysite" survive.
var bundleTokens = map[string]bool{
	"backup": true, "archive": true, "www": true, "site": true,
	"final": true, "old": true, "new": true, "copy": true, "dump": true,
}

var (
	reDigitRun   = regexp.MustCompile(`[-_.]?\d{4,8}`)
	reFullDomain = regexp.MustCompile(`[a-z0-9-]+(?:\.[a-z0-9-]+)*\.[a-z]{2,}`)
	reHintToken  = regexp.MustCompile(`^[a-z0-9]{3,}$`)
)

// FromFilename recovers a domain from an archive filename.
//
// It returns a fully qualified registrable domain when one survives the
// stripping heuristics ("example.com.zip" -> "example.com",
// "mysite_net_2024.zip" -> "mysite.net"), a zoneless hint token when
// only a bare name remains ("random_backup.rar" -> "random"), or ""
// when nothing usable is left. Callers distinguish the first two cases
// by the presence of a dot.
func FromFilename(name string) string {
	s := strings.ToLower(filepath.Base(name))

	// Strip stacked archive suffixes (site.tar.gz).
	for stripped := true; stripped; {
		stripped = false
		for _, suf := range archiveSuffixes {
			if strings.HasSuffix(s, suf) {
				s = strings.TrimSuffix(s, suf)
				stripped = true
			}
		}
	}

	// Split on bundling separators; drop filler tokens and embedded
	// date-like digit runs per segment.
	var kept []string
	for _, seg := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' }) {
		if bundleTokens[seg] {
			continue
		}
		seg = reDigitRun.ReplaceAllString(seg, "")
		if seg != "" {
			kept = append(kept, seg)
		}
	}
	if len(kept) == 0 {
		return ""
	}

	if m := reFullDomain.FindString(strings.Join(kept, "_")); m != "" {
		clean := CleanToken(m)
		if IsValid(clean) {
			return Registrable(clean)
		}
	}

	// Reinterpret the trailing segments as dot labels, preferring three
	// so compound zones survive (shop-example-co-uk).
	for _, take := range []int{3, 2} {
		if len(kept) < take {
			continue
		}
		clean := CleanToken(strings.Join(kept[len(kept)-take:], "."))
		if IsValid(clean) {
			return Registrable(clean)
		}
	}

	// No zone recovered: the leading segment may still hint the site name.
	if reHintToken.MatchString(kept[0]) {
		return kept[0]
	}
	return ""
}
