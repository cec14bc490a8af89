package score

import (
	"github.com/stephaneavril/leo-medico/internal/model"
	"github.com/stephaneavril/leo-medico/internal/textutil"
)

// Product computes message coverage per category: the full category weight
// is awarded if at least one of its phrases matches, else zero. Coverage,
// not frequency: one correct mention counts the same as ten, which rewards
// breadth of correct messaging over repetition.
func (s *Scorer) Product(normalized string) model.ProductCompliance {
	pc := model.ProductCompliance{Detail: make(map[string]model.CategoryScore, len(s.rubric.Categories))}
	thr := s.rubric.Thresholds.Match

	for name, cat := range s.rubric.Categories {
		cs := model.CategoryScore{Weight: cat.Weight}
		if normalized != "" {
			for _, p := range cat.Phrases {
				if textutil.FuzzyContains(normalized, p, thr) {
					cs.Matched = append(cs.Matched, p)
				}
			}
		}
		if len(cs.Matched) > 0 {
			cs.Score = cat.Weight
		}
		pc.Detail[name] = cs
		pc.Total += cs.Score
	}
	return pc
}
