package score

import (
	"math"

	"github.com/stephaneavril/leo-medico/internal/model"
)

// Risk tier cutoffs over the 0-14 composite score.
const (
	riskHighMax   = 4
	riskMediumMax = 9
)

// FallbackLabels derives qualitative phase labels from the rule-based
// signals when no LLM labels are available. The composite layer must always
// be computable, so this never returns a missing phase.
func (s *Scorer) FallbackLabels(
	phases map[string]model.PhaseResult,
	product model.ProductCompliance,
	interaction model.InteractionQuality,
) map[string]model.PhaseLabel {
	labels := make(map[string]model.PhaseLabel, len(model.Phases))

	applied := func(name string) model.PhaseLabel {
		if phases[name].Applied {
			return model.LabelGood
		}
		return model.LabelNeedsImprovement
	}
	labels[model.PhasePreparation] = applied(model.PhasePreparation)
	labels[model.PhaseOpening] = applied(model.PhaseOpening)

	// Persuasion quality tracks how many core message categories landed.
	core := 0
	for _, name := range []string{"mecanismo", "uso_posologia", "evidencia", "diferenciales"} {
		if product.Detail[name].Score > 0 {
			core++
		}
	}
	switch {
	case core >= 3:
		labels[model.PhasePersuasion] = model.LabelExcellent
	case core >= 1:
		labels[model.PhasePersuasion] = model.LabelGood
	default:
		labels[model.PhasePersuasion] = model.LabelNeedsImprovement
	}

	if interaction.ClosingPresent {
		labels[model.PhaseClosing] = model.LabelExcellent
	} else {
		labels[model.PhaseClosing] = model.LabelNeedsImprovement
	}

	if interaction.ObjectionHandling {
		labels[model.PhasePostAnalysis] = model.LabelGood
	} else {
		labels[model.PhasePostAnalysis] = model.LabelNeedsImprovement
	}
	return labels
}

// Composite aggregates KPI values and the 0-14 score plus risk tier.
// Missing labels default to Necesita Mejora so a partial LLM response can
// never break aggregation.
func (s *Scorer) Composite(
	labels map[string]model.PhaseLabel,
	phases map[string]model.PhaseResult,
	checklists map[string]model.ChecklistResult,
	legacy int,
	flags model.RedFlags,
	disqualified bool,
) (model.KPISet, int, model.RiskTier) {
	sum := 0
	for _, name := range model.Phases {
		sum += labels[name].Numeric() // zero-value label maps to 1
	}
	avgPhase := float64(sum) / float64(len(model.Phases))

	kpis := model.KPISet{
		AvgPhaseScore:    avgPhase,
		AvgScore010:      (avgPhase - 1) * 5,
		PhasesAppliedPct: AppliedPct(phases),
		ChecklistIndex:   ChecklistIndex(checklists),
		LegacyCount:      legacy,
	}

	score14 := legacy + int(math.Round((avgPhase-1)*3))
	if score14 < 0 {
		score14 = 0
	}
	if score14 > 14 {
		score14 = 14
	}

	risk := model.RiskLow
	switch {
	case score14 <= riskHighMax:
		risk = model.RiskHigh
	case score14 <= riskMediumMax:
		risk = model.RiskMedium
	}
	if s.rubric.Risk.EscalateOnRedFlags && (disqualified || flags.Absolutes) {
		risk = model.RiskHigh
	}
	return kpis, score14, risk
}
