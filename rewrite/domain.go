// CLAUDE:SUMMARY Four ordered case-insensitive domain substitution passes: protocol, www, bare, email.
package rewrite

import (
	"regexp"
	"strings"
)

var schemeStripper = strings.NewReplacer("www.", "", "http://", "", "https://", "")

// RewriteDomain substitutes oldDomain with newDomain across four ordered
// case-insensitive passes, most specific first:
//
//  1. protocol-qualified -> "https://" + new, whatever the original scheme
//  2. "www." + old       -> "www." + new
//  3. bare word-boundary -> new
//  4. "@" + old          -> "@" + new (email addresses)
//
// Each pass adds its own replacement count to the total. The ordering is
// part of the contract: passes are not idempotent against each other when
// old/new substrings overlap, and later passes may re-match text an
// earlier pass produced. Reproducibility depends on this fixed order.
func RewriteDomain(text, oldDomain, newDomain string) (string, int) {
	oldClean := schemeStripper.Replace(oldDomain)
	newClean := schemeStripper.Replace(newDomain)
	if oldClean == "" {
		return text, 0
	}
	quoted := regexp.QuoteMeta(oldClean)

	passes := []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`(?i)https?://(www\.)?` + quoted), "https://" + newClean},
		{regexp.MustCompile(`(?i)\bwww\.` + quoted), "www." + newClean},
		{regexp.MustCompile(`(?i)\b` + quoted + `\b`), newClean},
		{regexp.MustCompile(`(?i)@` + quoted), "@" + newClean},
	}

	total := 0
	for _, p := range passes {
		if n := len(p.re.FindAllStringIndex(text, -1)); n > 0 {
			text = p.re.ReplaceAllLiteralString(text, p.repl)
			total += n
		}
	}
	return text, total
}
