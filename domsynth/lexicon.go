// CLAUDE:SUMMARY Dictionary resource for domain synthesis: short words, consonant/vowel pools, vowel replacement table.
package domsynth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon is the dictionary resource feeding the synthesis strategies.
// Loaded once at synthesizer construction; a missing file falls back to
// the built-in defaults, which are fixed for compatibility — generated
// names must not drift between deployments that ship no lexicon file.
type Lexicon struct {
	ShortWords        []string            `yaml:"short_words"`
	ConsonantPool     []string            `yaml:"consonant_pool"`
	VowelPool         []string            `yaml:"vowel_pool"`
	VowelReplacements map[string][]string `yaml:"vowel_replacements"`
}

// DefaultLexicon returns the built-in dictionary.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		ShortWords:        []string{"bio", "pure", "care", "well", "zen", "lux", "nova", "via"},
		ConsonantPool:     []string{"x", "z", "q", "w", "k"},
		VowelPool:         []string{"a", "e", "i", "o", "u", "y"},
		VowelReplacements: map[string][]string{},
	}
}

// LoadLexicon reads a YAML lexicon file. A missing file is not an error:
// the built-in defaults apply. Fields absent from the file are filled
// from the defaults as well.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultLexicon(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("domsynth: read lexicon: %w", err)
	}
	lex := &Lexicon{}
	if err := yaml.Unmarshal(data, lex); err != nil {
		return nil, fmt.Errorf("domsynth: parse lexicon: %w", err)
	}
	lex.defaults()
	return lex, nil
}

func (l *Lexicon) defaults() {
	def := DefaultLexicon()
	if len(l.ShortWords) == 0 {
		l.ShortWords = def.ShortWords
	}
	if len(l.ConsonantPool) == 0 {
		l.ConsonantPool = def.ConsonantPool
	}
	if len(l.VowelPool) == 0 {
		l.VowelPool = def.VowelPool
	}
	if l.VowelReplacements == nil {
		l.VowelReplacements = map[string][]string{}
	}
}
