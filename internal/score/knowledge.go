package score

import (
	"github.com/stephaneavril/leo-medico/internal/model"
	"github.com/stephaneavril/leo-medico/internal/textutil"
)

// maxLegacyScore caps the legacy keyword count, matching the fixed
// denominator of the older scoring displays.
const maxLegacyScore = 8

// Knowledge computes the weighted rubric total plus the legacy keyword
// count. A phrase contributes its points at most once per evaluation:
// presence is scored, not frequency. Empty transcripts score zero.
func (s *Scorer) Knowledge(normalized string) model.KnowledgeScore {
	ks := model.KnowledgeScore{}
	if normalized == "" {
		return ks
	}

	legacy := textutil.CountFuzzyAny(normalized, s.rubric.LegacyKeywords, s.rubric.Thresholds.Legacy)
	if legacy > maxLegacyScore {
		legacy = maxLegacyScore
	}
	ks.LegacyCount = legacy

	for _, p := range s.rubric.Knowledge {
		if textutil.FuzzyContains(normalized, p.Phrase, s.rubric.Thresholds.Match) {
			ks.WeightedTotal += p.Points
			ks.Breakdown = append(ks.Breakdown, model.PhraseHit{Phrase: p.Phrase, Points: p.Points})
		}
	}
	return ks
}
