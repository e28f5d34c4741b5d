package domsynth

import "fmt"

// Zone is the top-level suffix appended to every synthesized label.
type Zone string

const (
	ZoneCom  Zone = ".com"
	ZoneInfo Zone = ".info"
)

// ParseZone normalizes a user-supplied zone ("com", ".info") against the
// fixed enumeration.
func ParseZone(s string) (Zone, error) {
	switch s {
	case "com", ".com":
		return ZoneCom, nil
	case "info", ".info":
		return ZoneInfo, nil
	}
	return "", fmt.Errorf("domsynth: unsupported zone %q (use .com or .info)", s)
}
