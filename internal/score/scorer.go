// Package score implements the rule-based scorers that turn a normalized
// transcript into the numeric and boolean signals of an evaluation. All
// scorers are pure: deterministic for the same transcript and rubric, no
// I/O, no state between calls.
package score

import (
	"github.com/stephaneavril/leo-medico/internal/rubric"
)

// Scorer evaluates transcripts against a rubric.
type Scorer struct {
	rubric *rubric.Rubric
}

// NewScorer creates a scorer bound to the given rubric.
func NewScorer(r *rubric.Rubric) *Scorer {
	return &Scorer{rubric: r}
}

// Rubric returns the rubric this scorer was built with.
func (s *Scorer) Rubric() *rubric.Rubric {
	return s.rubric
}
