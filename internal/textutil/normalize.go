package textutil

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	spaces     = regexp.MustCompile(`\s+`)
)

// Normalize produces a comparison-stable version of transcript text:
// lowercase, diacritics stripped, whitespace collapsed. It is idempotent
// and never fails; empty input yields an empty string.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	t, _, err := transform.String(stripMarks, text)
	if err != nil {
		// Transform failures leave the input usable as-is
		t = text
	}
	t = strings.ToLower(t)
	t = spaces.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// Canonicalizer rewrites known ASR misspellings of a product name into one
// canonical token. It must run after Normalize and before phrase matching,
// since every rubric phrase assumes the canonical form.
type Canonicalizer struct {
	canonical string
	patterns  []*regexp.Regexp
}

// NewCanonicalizer compiles the variant patterns. Patterns are applied in
// order, so broader variants should come last.
func NewCanonicalizer(canonical string, variants []string) (*Canonicalizer, error) {
	c := &Canonicalizer{canonical: canonical}
	for _, v := range variants {
		re, err := regexp.Compile(v)
		if err != nil {
			return nil, fmt.Errorf("compile product variant %q: %w", v, err)
		}
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

// Apply rewrites every variant occurrence to the canonical token.
func (c *Canonicalizer) Apply(normalized string) string {
	out := normalized
	for _, re := range c.patterns {
		out = re.ReplaceAllString(out, c.canonical)
	}
	return out
}

// Canonical returns the canonical product token.
func (c *Canonicalizer) Canonical() string {
	return c.canonical
}
