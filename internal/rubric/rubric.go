// Package rubric holds the phrase/weight tables that drive every scorer.
// The tables were hand-edited repeatedly during pilot trainings, so they
// live as data: an embedded default set plus optional YAML overrides.
package rubric

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stephaneavril/leo-medico/internal/model"
	"github.com/stephaneavril/leo-medico/internal/textutil"
)

// WeightedPhrase is a rubric phrase with its point value.
type WeightedPhrase struct {
	Phrase string `yaml:"phrase"`
	Points int    `yaml:"points"`
}

// ChecklistItem is a named sub-item of a phase; it is satisfied if any of
// its phrases matches (binary, not a point sum).
type ChecklistItem struct {
	Name    string   `yaml:"name"`
	Phrases []string `yaml:"phrases"`
}

// PhaseRules carries the two parallel phrase lists for one Da Vinci phase.
// Scoring is strict and point-weighted; Flags is looser and only drives the
// boolean "phase applied" signal. The separation is deliberate: the flag is
// lenient (did they attempt the phase at all) while the score rewards
// quality of execution.
type PhaseRules struct {
	Scoring   []WeightedPhrase `yaml:"scoring"`
	Flags     []string         `yaml:"flags"`
	Checklist []ChecklistItem  `yaml:"checklist,omitempty"`
}

// Category is one product-message category: full weight awarded on any hit.
type Category struct {
	Weight  int      `yaml:"weight"`
	Phrases []string `yaml:"phrases"`
}

// Product describes the promoted product and its ASR misspelling patterns.
type Product struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// Signals groups the short phrase lists behind the interaction-quality and
// red-flag detectors.
type Signals struct {
	Listening     []string `yaml:"listening"`
	Closing       []string `yaml:"closing"`
	Objection     []string `yaml:"objection"`
	Absolutes     []string `yaml:"absolutes"`
	Disqualifying []string `yaml:"disqualifying"`
	Sensitive     []string `yaml:"sensitive"`
}

// Thresholds are the fuzzy-match cutoffs per detector family. The strict
// cutoff exists because false positives on disqualifying language are
// costly: it demands near-exact matches.
type Thresholds struct {
	Match     float64 `yaml:"match"`     // general phrase matching
	Legacy    float64 `yaml:"legacy"`    // legacy keyword count
	Sensitive float64 `yaml:"sensitive"` // sensitive-topic detector
	Strict    float64 `yaml:"strict"`    // disqualifying/absolute-claim detectors
}

// Risk holds the risk-classification policy.
type Risk struct {
	// EscalateOnRedFlags forces the ALTO tier whenever disqualifying or
	// absolute-claim language is detected, regardless of the numeric score.
	EscalateOnRedFlags bool `yaml:"escalate_on_red_flags"`
}

// Rubric is the complete scoring configuration.
type Rubric struct {
	Product        Product               `yaml:"product"`
	LegacyKeywords []string              `yaml:"legacy_keywords"`
	Knowledge      []WeightedPhrase      `yaml:"knowledge"`
	Phases         map[string]PhaseRules `yaml:"phases"`
	Categories     map[string]Category   `yaml:"product_claims"`
	Signals        Signals               `yaml:"signals"`
	Thresholds     Thresholds            `yaml:"thresholds"`
	Risk           Risk                  `yaml:"risk"`
}

// Load reads a rubric from a YAML file, normalizes its phrases and
// validates it. An empty path returns the embedded default rubric.
func Load(path string) (*Rubric, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rubric: %w", err)
	}

	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse rubric: %w", err)
	}

	r.normalize()
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("rubric %s: %w", path, err)
	}
	return &r, nil
}

// normalize rewrites every phrase into comparison form, since matching runs
// against normalized transcripts.
func (r *Rubric) normalize() {
	norm := func(ss []string) {
		for i := range ss {
			ss[i] = textutil.Normalize(ss[i])
		}
	}
	normWeighted := func(ps []WeightedPhrase) {
		for i := range ps {
			ps[i].Phrase = textutil.Normalize(ps[i].Phrase)
		}
	}

	norm(r.LegacyKeywords)
	normWeighted(r.Knowledge)
	for name, ph := range r.Phases {
		normWeighted(ph.Scoring)
		norm(ph.Flags)
		for i := range ph.Checklist {
			norm(ph.Checklist[i].Phrases)
		}
		r.Phases[name] = ph
	}
	for name, cat := range r.Categories {
		norm(cat.Phrases)
		r.Categories[name] = cat
	}
	norm(r.Signals.Listening)
	norm(r.Signals.Closing)
	norm(r.Signals.Objection)
	norm(r.Signals.Absolutes)
	norm(r.Signals.Disqualifying)
	norm(r.Signals.Sensitive)
}

// Validate checks the structural invariants of the tables.
func (r *Rubric) Validate() error {
	if r.Product.Canonical == "" {
		return fmt.Errorf("product canonical token is empty")
	}
	for _, p := range r.Knowledge {
		if p.Points < 1 || p.Points > 3 {
			return fmt.Errorf("knowledge phrase %q: points %d out of range 1-3", p.Phrase, p.Points)
		}
	}
	for _, name := range model.Phases {
		ph, ok := r.Phases[name]
		if !ok {
			return fmt.Errorf("phase %q missing", name)
		}
		for _, p := range ph.Scoring {
			if p.Points < 1 || p.Points > 2 {
				return fmt.Errorf("phase %q phrase %q: points %d out of range 1-2", name, p.Phrase, p.Points)
			}
		}
		if len(ph.Flags) == 0 {
			return fmt.Errorf("phase %q has no flag phrases", name)
		}
	}
	for name, cat := range r.Categories {
		if cat.Weight <= 0 {
			return fmt.Errorf("category %q: weight must be positive", name)
		}
		if len(cat.Phrases) == 0 {
			return fmt.Errorf("category %q has no phrases", name)
		}
	}
	for _, t := range []struct {
		name string
		v    float64
	}{
		{"match", r.Thresholds.Match},
		{"legacy", r.Thresholds.Legacy},
		{"sensitive", r.Thresholds.Sensitive},
		{"strict", r.Thresholds.Strict},
	} {
		if t.v <= 0 || t.v > 1 {
			return fmt.Errorf("threshold %q: %v out of range (0,1]", t.name, t.v)
		}
	}
	return nil
}

// MaxProductScore is the sum of all category weights.
func (r *Rubric) MaxProductScore() int {
	total := 0
	for _, cat := range r.Categories {
		total += cat.Weight
	}
	return total
}

// ChecklistTotal counts the checklist sub-items across all phases.
func (r *Rubric) ChecklistTotal() int {
	total := 0
	for _, ph := range r.Phases {
		total += len(ph.Checklist)
	}
	return total
}
