// CLAUDE:SUMMARY Domain token cleaning, validation against a service denylist, and registrable-form normalization.
package domdetect

import (
	"regexp"
	"strings"
)

// ignoreDomains lists CDN, tracking, and ecosystem hosts that appear in
// almost every packaged site and never identify it.
var ignoreDomains = map[string]bool{
	"google.com":       true,
	"facebook.com":     true,
	"twitter.com":      true,
	"instagram.com":    true,
	"youtube.com":      true,
	"googleapis.com":   true,
	"jquery.com":       true,
	"bootstrap.com":    true,
	"cloudflare.com":   true,
	"jsdelivr.net":     true,
	"unpkg.com":        true,
	"cdnjs.com":        true,
	"fontawesome.com":  true,
	"fonts.google.com": true,
	"w3.org":           true,
	"schema.org":       true,
	"example.com":      true,
	"localhost":        true,
	"mailchimp.com":    true,
	"gstatic.com":      true,
}

// compoundZones are country zones where the registrable form keeps three
// labels instead of two (shop.example.co.uk -> example.co.uk).
var compoundZones = map[string]bool{
	"co.uk":  true,
	"com.au": true,
	"co.jp":  true,
	"com.br": true,
	"co.za":  true,
}

var labelRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// CleanToken lowercases a captured token and strips the www prefix,
// any port, and any path component.
func CleanToken(token string) string {
	d := strings.ToLower(strings.TrimSpace(token))
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.IndexByte(d, ':'); i >= 0 {
		d = d[:i]
	}
	return d
}

// IsValid reports whether a cleaned token looks like a real site domain:
// at least 4 chars, dot-separated labels of [A-Za-z0-9-], an alphabetic
// final label, and not a known service domain.
func IsValid(domain string) bool {
	if len(domain) < 4 || !strings.Contains(domain, ".") {
		return false
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" || !labelRe.MatchString(l) {
			return false
		}
	}
	zone := labels[len(labels)-1]
	for _, r := range zone {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	if ignoreDomains[domain] || ignoreDomains[Registrable(domain)] {
		return false
	}
	return true
}

// Registrable collapses a domain to its registrable form: the last two
// labels, or three when the suffix is a compound country zone.
func Registrable(domain string) string {
	labels := strings.Split(domain, ".")
	if len(labels) <= 2 {
		return domain
	}
	suffix := strings.Join(labels[len(labels)-2:], ".")
	if compoundZones[suffix] && len(labels) >= 3 {
		return strings.Join(labels[len(labels)-3:], ".")
	}
	return suffix
}
