package score

import (
	"github.com/stephaneavril/leo-medico/internal/model"
	"github.com/stephaneavril/leo-medico/internal/textutil"
)

// Phases scores all five Da Vinci phases. The point score comes from the
// strict scoring list; the applied flag from the looser flag list. A
// nonzero score always implies the flag, so a phase can never score points
// while reading as "not attempted". Zero matches is the expected
// needs-improvement signal, not an error.
func (s *Scorer) Phases(normalized string) map[string]model.PhaseResult {
	out := make(map[string]model.PhaseResult, len(model.Phases))
	thr := s.rubric.Thresholds.Match

	for _, name := range model.Phases {
		rules := s.rubric.Phases[name]
		res := model.PhaseResult{}

		if normalized != "" {
			for _, p := range rules.Scoring {
				if textutil.FuzzyContains(normalized, p.Phrase, thr) {
					res.Score += p.Points
					res.Matched = append(res.Matched, p.Phrase)
				}
			}
			res.Applied = textutil.AnyFuzzy(normalized, rules.Flags, thr) || res.Score > 0
		}
		out[name] = res
	}
	return out
}

// Checklist runs the stricter sub-item completeness scorer over the phases
// that define one. A sub-item is satisfied if any of its phrases matches;
// the phase score is the count of satisfied sub-items.
func (s *Scorer) Checklist(normalized string) map[string]model.ChecklistResult {
	out := make(map[string]model.ChecklistResult)
	thr := s.rubric.Thresholds.Match

	for _, name := range model.Phases {
		rules := s.rubric.Phases[name]
		if len(rules.Checklist) == 0 {
			continue
		}
		res := model.ChecklistResult{Max: len(rules.Checklist)}
		for _, item := range rules.Checklist {
			if normalized != "" && textutil.AnyFuzzy(normalized, item.Phrases, thr) {
				res.Satisfied = append(res.Satisfied, item.Name)
				res.Score++
			} else {
				res.Missing = append(res.Missing, item.Name)
			}
		}
		out[name] = res
	}
	return out
}

// AppliedPct returns the percentage of the five phases that were attempted.
func AppliedPct(phases map[string]model.PhaseResult) float64 {
	applied := 0
	for _, name := range model.Phases {
		if phases[name].Applied {
			applied++
		}
	}
	return float64(applied) / float64(len(model.Phases)) * 100
}

// ChecklistIndex aggregates all checklist results into a 0-10 KPI.
func ChecklistIndex(checklists map[string]model.ChecklistResult) float64 {
	satisfied, total := 0, 0
	for _, res := range checklists {
		satisfied += res.Score
		total += res.Max
	}
	if total == 0 {
		return 0
	}
	return 10 * float64(satisfied) / float64(total)
}
