// CLAUDE:SUMMARY Generates unique validator-passing pseudo-domains from an original label via seven weighted strategies.
// Package domsynth procedurally synthesizes new pseudo-random domains
// from a site's original domain label.
//
// Every synthesized label passes a pronounceability validator (length
// 5-11, alphabetic, at least two vowels, no run of more than four
// consonants). Uniqueness of the full label+zone string is owned by the
// Synthesizer instance and spans every package of a batch run; Reset
// opens a fresh uniqueness scope for an independent run.
package domsynth

import (
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	// fallbackLabel replaces original labels too short to mine parts from.
	fallbackLabel = "health"
	maxAttempts   = 50
)

// Config configures a Synthesizer.
type Config struct {
	// LexiconPath points to a YAML lexicon; empty or missing uses the
	// built-in defaults. Ignored when Lexicon is set directly.
	LexiconPath string `yaml:"lexicon_path"`

	// Lexicon overrides file loading entirely (tests, embedding callers).
	Lexicon *Lexicon `yaml:"-"`

	// Rand is the random source; injectable for deterministic tests.
	Rand *rand.Rand `yaml:"-"`

	Logger *slog.Logger `yaml:"-"`
}

// Synthesizer generates unique pseudo-domains. Safe for concurrent use;
// the check-and-insert on the emitted set is guarded along with the
// random source.
type Synthesizer struct {
	mu         sync.Mutex
	lex        *Lexicon
	rng        *rand.Rand
	emitted    map[string]struct{}
	strategies []strategy
	logger     *slog.Logger
}

type strategy struct {
	name   string
	weight int
	fn     func(parts []string) string
}

// New creates a Synthesizer.
func New(cfg Config) (*Synthesizer, error) {
	lex := cfg.Lexicon
	if lex == nil {
		var err error
		lex, err = LoadLexicon(cfg.LexiconPath)
		if err != nil {
			return nil, err
		}
	} else {
		lex.defaults()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Synthesizer{
		lex:     lex,
		rng:     rng,
		emitted: make(map[string]struct{}),
		logger:  logger,
	}
	s.strategies = []strategy{
		{"part+word", 30, s.partThenWord},
		{"word+part", 30, s.wordThenPart},
		{"word+word", 15, s.twoWords},
		{"triple", 10, s.triple},
		{"reversed-part", 10, s.reversedPart},
		{"consonant-bridge", 3, s.consonantBridge},
		{"vowel-mutation", 2, s.vowelMutation},
	}
	return s, nil
}

// Generate returns one unique full domain (label+zone) derived from the
// original domain. After 50 failed attempts it falls back to a
// deterministic construction returned without a uniqueness check — an
// accepted last-resort collision risk.
func (s *Synthesizer) Generate(original string, zone Zone) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	label := cleanLabel(original)
	parts := extractParts(label)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		st := s.pickStrategy()
		candidate := strings.ToLower(st.fn(parts))
		if !validLabel(candidate) {
			continue
		}
		full := candidate + string(zone)
		if _, dup := s.emitted[full]; dup {
			continue
		}
		s.emitted[full] = struct{}{}
		return full
	}

	base := label
	if len(parts) > 0 {
		base = s.pick(parts)
	}
	fallback := strings.ToLower(head(base, 4) + head(s.pick(s.lex.ShortWords), 4) + s.pick(s.lex.ConsonantPool))
	s.logger.Warn("domsynth: attempts exhausted, using fallback label",
		"original", original, "fallback", fallback)
	return fallback + string(zone)
}

// GenerateMany returns count unique full domains for one original.
func (s *Synthesizer) GenerateMany(original string, count int, zone Zone) []string {
	domains := make([]string, 0, count)
	for i := 0; i < count; i++ {
		domains = append(domains, s.Generate(original, zone))
	}
	return domains
}

// Reset clears the emitted set, opening a fresh uniqueness scope.
func (s *Synthesizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitted = make(map[string]struct{})
}

// pickStrategy samples the strategy list by cumulative weight.
func (s *Synthesizer) pickStrategy() strategy {
	total := 0
	for _, st := range s.strategies {
		total += st.weight
	}
	r := s.rng.Intn(total)
	for _, st := range s.strategies {
		r -= st.weight
		if r < 0 {
			return st
		}
	}
	return s.strategies[len(s.strategies)-1]
}

func (s *Synthesizer) pick(list []string) string {
	return list[s.rng.Intn(len(list))]
}

func (s *Synthesizer) pickOr(parts []string, fallback []string) string {
	if len(parts) > 0 {
		return s.pick(parts)
	}
	return s.pick(fallback)
}

// --- strategies ---

func (s *Synthesizer) partThenWord(parts []string) string {
	return s.pickOr(parts, s.lex.ShortWords) + s.pick(s.lex.ShortWords)
}

func (s *Synthesizer) wordThenPart(parts []string) string {
	return s.pick(s.lex.ShortWords) + s.pickOr(parts, s.lex.ShortWords)
}

func (s *Synthesizer) twoWords(_ []string) string {
	w1 := s.pick(s.lex.ShortWords)
	w2 := s.pick(s.lex.ShortWords)
	for w2 == w1 && len(s.lex.ShortWords) > 1 {
		w2 = s.pick(s.lex.ShortWords)
	}
	return w1 + w2
}

func (s *Synthesizer) triple(parts []string) string {
	w1 := s.pick(s.lex.ShortWords)
	w2 := s.pick(s.lex.ShortWords)
	part := s.pickOr(parts, s.lex.ShortWords)
	combos := []string{
		w1 + w2 + head(part, 3),
		w1 + head(part, 3) + head(w2, 3),
		head(part, 3) + w1 + head(w2, 3),
	}
	return s.pick(combos)
}

func (s *Synthesizer) reversedPart(parts []string) string {
	part := s.pickOr(parts, s.lex.ShortWords)
	rev := head(reverse(part), 4)
	word := s.pick(s.lex.ShortWords)
	combos := []string{
		rev + word,
		word + rev,
		rev + head(word, 4),
	}
	return s.pick(combos)
}

func (s *Synthesizer) consonantBridge(parts []string) string {
	part := s.pickOr(parts, s.lex.ShortWords)
	word := s.pick(s.lex.ShortWords)
	consonant := s.pick(s.lex.ConsonantPool)
	combos := []string{
		part + consonant + word,
		word + consonant + part,
		head(part, 3) + consonant + word,
	}
	return s.pick(combos)
}

func (s *Synthesizer) vowelMutation(parts []string) string {
	part := s.pickOr(parts, s.lex.ShortWords)
	mutated := []byte(part)
	for i := range mutated {
		repl, ok := s.lex.VowelReplacements[string(mutated[i])]
		if ok && len(repl) > 0 && s.rng.Float64() < 0.5 {
			mutated[i] = s.pick(repl)[0]
		}
	}
	word := s.pick(s.lex.ShortWords)
	combos := []string{
		string(mutated) + word,
		word + string(mutated),
	}
	return s.pick(combos)
}

// --- label helpers ---

// cleanLabel strips zone suffixes, scheme, and www from the original
// domain and keeps letters only. Anything shorter than 3 chars is not
// worth mining parts from and gets the fixed fallback.
func cleanLabel(original string) string {
	s := strings.ToLower(original)
	for _, zone := range []string{".com", ".net", ".org", ".ru", ".info", ".io", ".co"} {
		s = strings.ReplaceAll(s, zone, "")
	}
	s = strings.NewReplacer("www.", "", "http://", "", "https://", "").Replace(s)
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	if b.Len() < 3 {
		return fallbackLabel
	}
	return b.String()
}

// extractParts mines 3-6 char substrings from the prefix, the suffix,
// and (for labels longer than 6) a middle window, deduplicated in
// first-seen order.
func extractParts(label string) []string {
	n := len(label)
	seen := make(map[string]bool)
	var parts []string
	add := func(p string) {
		if len(p) >= 3 && len(p) <= 6 && !seen[p] {
			seen[p] = true
			parts = append(parts, p)
		}
	}
	for i := 3; i <= 6 && i <= n; i++ {
		add(label[:i])
	}
	for i := 3; i <= 6 && i <= n; i++ {
		add(label[n-i:])
	}
	if n > 6 {
		mid := n / 3
		for i := 3; i <= 6; i++ {
			if mid+i <= n {
				add(label[mid : mid+i])
			}
		}
	}
	return parts
}

// validLabel enforces the synthesis validator: length 5-11, alphabetic
// only, at least two vowels, no more than 4 consecutive consonants
// (y counts as a consonant).
func validLabel(label string) bool {
	if len(label) < 5 || len(label) > 11 {
		return false
	}
	vowels := 0
	streak := 0
	for _, r := range label {
		if r < 'a' || r > 'z' {
			return false
		}
		if strings.ContainsRune("aeiou", r) {
			vowels++
			streak = 0
		} else {
			streak++
			if streak > 4 {
				return false
			}
		}
	}
	return vowels >= 2
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
