package score

import (
	"strings"
	"unicode"

	"github.com/stephaneavril/leo-medico/internal/model"
	"github.com/stephaneavril/leo-medico/internal/textutil"
)

// Listening-level cutoffs over counted active-listening phrase hits.
const (
	listeningHigh     = 4
	listeningModerate = 2
)

// Interaction derives descriptive conversation signals from the raw and
// normalized transcript.
func (s *Scorer) Interaction(raw, normalized string) model.InteractionQuality {
	iq := model.InteractionQuality{ListeningLevel: model.OrdinalLow}
	tokens := len(strings.Fields(normalized))
	iq.TokenCount = tokens

	questions := strings.Count(raw, "?")
	div := tokens
	if div < 1 {
		div = 1
	}
	iq.QuestionRate = float64(questions) / float64(div) * 100

	if normalized == "" {
		return iq
	}

	thr := s.rubric.Thresholds.Match
	iq.ClosingPresent = textutil.AnyFuzzy(normalized, s.rubric.Signals.Closing, thr)
	iq.ObjectionHandling = textutil.AnyFuzzy(normalized, s.rubric.Signals.Objection, thr)

	hits := textutil.CountFuzzyAny(normalized, s.rubric.Signals.Listening, thr)
	switch {
	case hits >= listeningHigh:
		iq.ListeningLevel = model.OrdinalHigh
	case hits >= listeningModerate:
		iq.ListeningLevel = model.OrdinalModerate
	}
	return iq
}

// RedFlags detects risky language. Absolutes and admitted improvisation use
// the strict threshold: wrongly flagging a trainee as dishonest is costly,
// so those matchers demand near-exact hits.
func (s *Scorer) RedFlags(normalized string) model.RedFlags {
	if normalized == "" {
		return model.RedFlags{}
	}
	return model.RedFlags{
		Absolutes: textutil.AnyFuzzy(normalized, s.rubric.Signals.Absolutes, s.rubric.Thresholds.Strict),
		Ignorance: textutil.AnyFuzzy(normalized, s.rubric.Signals.Disqualifying, s.rubric.Thresholds.Strict),
		Sensitive: textutil.AnyFuzzy(normalized, s.rubric.Signals.Sensitive, s.rubric.Thresholds.Sensitive),
	}
}

// Confidence estimates transcript quality: very short inputs or a high
// non-alphabetic character ratio indicate a noisy ASR pass.
func (s *Scorer) Confidence(raw string) model.Confidence {
	normalized := textutil.Normalize(raw)
	if len(strings.Fields(normalized)) < 25 {
		return model.ConfidenceLow
	}
	nonAlpha := 0
	for _, r := range raw {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			nonAlpha++
		}
	}
	total := len([]rune(raw))
	if total < 1 {
		total = 1
	}
	ratio := float64(nonAlpha) / float64(total)
	switch {
	case ratio > 0.18:
		return model.ConfidenceLow
	case ratio > 0.12:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceHigh
	}
}
