package score

import (
	"strings"
	"testing"

	"github.com/stephaneavril/leo-medico/internal/model"
	"github.com/stephaneavril/leo-medico/internal/rubric"
	"github.com/stephaneavril/leo-medico/internal/textutil"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	return NewScorer(rubric.Default())
}

func TestKnowledge_EmptyTranscript(t *testing.T) {
	s := newTestScorer(t)
	ks := s.Knowledge("")
	if ks.LegacyCount != 0 || ks.WeightedTotal != 0 || len(ks.Breakdown) != 0 {
		t.Errorf("Expected zero knowledge score for empty input, got %+v", ks)
	}
}

func TestKnowledge_WeightedHits(t *testing.T) {
	s := newTestScorer(t)
	raw := "esoxx one forma una barrera bioadhesiva que protege el esofago del reflujo"
	ks := s.Knowledge(textutil.Normalize(raw))

	wantHits := map[string]int{
		"barrera bioadhesiva": 3,
		"reflujo":             1,
		"esoxx one":           1,
	}
	for phrase, points := range wantHits {
		found := false
		for _, hit := range ks.Breakdown {
			if hit.Phrase == phrase {
				found = true
				if hit.Points != points {
					t.Errorf("Expected %d points for %q, got %d", points, phrase, hit.Points)
				}
			}
		}
		if !found {
			t.Errorf("Expected breakdown to contain %q", phrase)
		}
	}
	if ks.WeightedTotal < 5 {
		t.Errorf("Expected weighted total >= 5, got %d", ks.WeightedTotal)
	}
}

func TestKnowledge_LegacyCount(t *testing.T) {
	s := newTestScorer(t)
	raw := "el mecanismo del producto ayuda a los pacientes con reflujo cronico de larga evolucion"
	ks := s.Knowledge(textutil.Normalize(raw))
	if ks.LegacyCount != 2 {
		t.Errorf("Expected 2 legacy keywords (mecanismo, reflujo), got %d", ks.LegacyCount)
	}
}

func TestKnowledge_LegacyCapped(t *testing.T) {
	s := newTestScorer(t)
	raw := "beneficio estudio mecanismo posologia reflujo erge ibp seguridad " +
		"beneficio estudio mecanismo posologia reflujo erge ibp seguridad"
	ks := s.Knowledge(textutil.Normalize(raw))
	if ks.LegacyCount != maxLegacyScore {
		t.Errorf("Expected legacy count capped at %d, got %d", maxLegacyScore, ks.LegacyCount)
	}
}

func TestPhases_EmptyTranscript(t *testing.T) {
	s := newTestScorer(t)
	phases := s.Phases("")
	if len(phases) != len(model.Phases) {
		t.Fatalf("Expected %d phases, got %d", len(model.Phases), len(phases))
	}
	for name, res := range phases {
		if res.Applied || res.Score != 0 {
			t.Errorf("Expected phase %q untouched for empty input, got %+v", name, res)
		}
	}
}

func TestPhases_OpeningScored(t *testing.T) {
	s := newTestScorer(t)
	raw := "buenos dias doctor gracias por recibirme hoy"
	phases := s.Phases(textutil.Normalize(raw))

	opening := phases[model.PhaseOpening]
	if !opening.Applied {
		t.Error("Expected opening phase applied")
	}
	if opening.Score != 2 {
		t.Errorf("Expected opening score 2, got %d", opening.Score)
	}
	if phases[model.PhasePreparation].Applied {
		t.Error("Did not expect preparation phase applied")
	}
}

func TestPhases_ScoreImpliesApplied(t *testing.T) {
	s := newTestScorer(t)
	// Matches a closing scoring phrase but none of the closing flag words.
	raw := "puedo contar con usted para ello"
	phases := s.Phases(textutil.Normalize(raw))

	closing := phases[model.PhaseClosing]
	if closing.Score == 0 {
		t.Fatal("Expected closing scoring phrase to match")
	}
	if !closing.Applied {
		t.Error("Expected nonzero score to imply applied")
	}
}

func TestChecklist_Persuasion(t *testing.T) {
	s := newTestScorer(t)
	raw := "esoxx one forma una barrera bioadhesiva la posologia es " +
		"un stick despues de cada comida y uno antes de dormir"
	out := s.Checklist(textutil.Normalize(raw))

	persuasion, ok := out[model.PhasePersuasion]
	if !ok {
		t.Fatal("Expected persuasion checklist result")
	}
	if persuasion.Max != 4 {
		t.Errorf("Expected 4 persuasion sub-items, got %d", persuasion.Max)
	}
	assertContains(t, persuasion.Satisfied, "mecanismo_correcto")
	assertContains(t, persuasion.Satisfied, "posologia_completa")
	assertContains(t, persuasion.Missing, "evidencia_trazable")

	if _, ok := out[model.PhasePreparation]; ok {
		t.Error("Did not expect a checklist for preparacion")
	}
}

func TestChecklistIndex(t *testing.T) {
	checklists := map[string]model.ChecklistResult{
		"a": {Score: 3, Max: 3},
		"b": {Score: 2, Max: 4},
		"c": {Score: 0, Max: 3},
	}
	if got := ChecklistIndex(checklists); got != 5 {
		t.Errorf("Expected checklist index 5, got %v", got)
	}
	if got := ChecklistIndex(nil); got != 0 {
		t.Errorf("Expected 0 for empty checklists, got %v", got)
	}
}

func TestAppliedPct(t *testing.T) {
	phases := map[string]model.PhaseResult{
		model.PhasePreparation: {Applied: true},
		model.PhaseOpening:     {Applied: true},
	}
	if got := AppliedPct(phases); got != 40 {
		t.Errorf("Expected 40%% applied, got %v", got)
	}
}

func TestProduct_CategoryWeightAllOrNothing(t *testing.T) {
	s := newTestScorer(t)
	raw := "el producto forma una barrera bioadhesiva con acido hialuronico"
	pc := s.Product(textutil.Normalize(raw))

	mech := pc.Detail["mecanismo"]
	if mech.Score != mech.Weight {
		t.Errorf("Expected full weight %d for matched category, got %d", mech.Weight, mech.Score)
	}
	if len(mech.Matched) < 2 {
		t.Errorf("Expected at least 2 matched mechanism phrases, got %v", mech.Matched)
	}
	if pc.Detail["eficacia"].Score != 0 {
		t.Errorf("Expected zero for unmatched category, got %d", pc.Detail["eficacia"].Score)
	}
	if pc.Total != mech.Score {
		t.Errorf("Expected total %d, got %d", mech.Score, pc.Total)
	}
}

func TestProduct_EmptyTranscript(t *testing.T) {
	s := newTestScorer(t)
	pc := s.Product("")
	if pc.Total != 0 {
		t.Errorf("Expected zero product total, got %d", pc.Total)
	}
	if len(pc.Detail) != 6 {
		t.Errorf("Expected all 6 categories present, got %d", len(pc.Detail))
	}
}

func TestInteraction_QuestionRate(t *testing.T) {
	s := newTestScorer(t)
	raw := "¿Qué le preocupa de sus pacientes? ¿Cuántos ve al mes?"
	iq := s.Interaction(raw, textutil.Normalize(raw))

	if iq.TokenCount != 11 {
		t.Errorf("Expected 11 tokens, got %d", iq.TokenCount)
	}
	want := 2.0 / 11.0 * 100
	if iq.QuestionRate < want-0.01 || iq.QuestionRate > want+0.01 {
		t.Errorf("Expected question rate %.2f, got %.2f", want, iq.QuestionRate)
	}
}

func TestInteraction_ListeningLevels(t *testing.T) {
	s := newTestScorer(t)

	raw := "entiendo doctor comprendo la situacion de sus pacientes"
	iq := s.Interaction(raw, textutil.Normalize(raw))
	if iq.ListeningLevel != model.OrdinalModerate {
		t.Errorf("Expected moderate listening, got %v", iq.ListeningLevel)
	}

	raw = "entiendo comprendo veo que si entiendo bien que le preocupa a sus pacientes"
	iq = s.Interaction(raw, textutil.Normalize(raw))
	if iq.ListeningLevel != model.OrdinalHigh {
		t.Errorf("Expected high listening, got %v", iq.ListeningLevel)
	}

	iq = s.Interaction("", "")
	if iq.ListeningLevel != model.OrdinalLow {
		t.Errorf("Expected low listening for empty input, got %v", iq.ListeningLevel)
	}
}

func TestInteraction_ClosingAndObjection(t *testing.T) {
	s := newTestScorer(t)
	raw := "entiendo su punto doctor podemos acordar un siguiente paso"
	iq := s.Interaction(raw, textutil.Normalize(raw))
	if !iq.ClosingPresent {
		t.Error("Expected closing signal detected")
	}
	if !iq.ObjectionHandling {
		t.Error("Expected objection handling detected")
	}
}

func TestRedFlags(t *testing.T) {
	s := newTestScorer(t)

	raw := "es el mejor producto y no tengo idea si sirve en embarazadas"
	flags := s.RedFlags(textutil.Normalize(raw))
	if !flags.Absolutes {
		t.Error("Expected absolute-claim flag")
	}
	if !flags.Ignorance {
		t.Error("Expected disqualifying-language flag")
	}
	if !flags.Sensitive {
		t.Error("Expected sensitive-topic flag")
	}

	raw = "la posologia es un stick despues de cada comida"
	flags = s.RedFlags(textutil.Normalize(raw))
	if flags.Absolutes || flags.Ignorance || flags.Sensitive {
		t.Errorf("Did not expect flags on clean transcript, got %+v", flags)
	}
}

func TestConfidence(t *testing.T) {
	s := newTestScorer(t)

	if got := s.Confidence("muy corto"); got != model.ConfidenceLow {
		t.Errorf("Expected low confidence for short input, got %v", got)
	}

	clean := strings.TrimSpace(strings.Repeat("palabra limpia sobre pacientes ", 10))
	if got := s.Confidence(clean); got != model.ConfidenceHigh {
		t.Errorf("Expected high confidence for clean input, got %v", got)
	}

	noisy := strings.TrimSpace(strings.Repeat("1234 ", 30))
	if got := s.Confidence(noisy); got != model.ConfidenceLow {
		t.Errorf("Expected low confidence for symbol-heavy input, got %v", got)
	}

	mixed := strings.Repeat("palabra ", 25) + strings.Repeat("!", 30)
	if got := s.Confidence(mixed); got != model.ConfidenceMedium {
		t.Errorf("Expected medium confidence for mildly noisy input, got %v", got)
	}
}

func TestComposite_Bounds(t *testing.T) {
	s := newTestScorer(t)

	all := func(l model.PhaseLabel) map[string]model.PhaseLabel {
		m := make(map[string]model.PhaseLabel, len(model.Phases))
		for _, name := range model.Phases {
			m[name] = l
		}
		return m
	}

	kpis, score14, risk := s.Composite(all(model.LabelExcellent), nil, nil, 8, model.RedFlags{}, false)
	if score14 != 14 {
		t.Errorf("Expected top score 14, got %d", score14)
	}
	if risk != model.RiskLow {
		t.Errorf("Expected BAJO risk, got %v", risk)
	}
	if kpis.AvgPhaseScore != 3 || kpis.AvgScore010 != 10 {
		t.Errorf("Expected avg 3 / 10, got %v / %v", kpis.AvgPhaseScore, kpis.AvgScore010)
	}

	_, score14, risk = s.Composite(all(model.LabelNeedsImprovement), nil, nil, 2, model.RedFlags{}, false)
	if score14 != 2 {
		t.Errorf("Expected score 2, got %d", score14)
	}
	if risk != model.RiskHigh {
		t.Errorf("Expected ALTO risk, got %v", risk)
	}

	_, score14, risk = s.Composite(all(model.LabelGood), nil, nil, 4, model.RedFlags{}, false)
	if score14 != 7 {
		t.Errorf("Expected score 7 (4 legacy + 3), got %d", score14)
	}
	if risk != model.RiskMedium {
		t.Errorf("Expected MEDIO risk, got %v", risk)
	}
}

func TestComposite_MissingLabelsDefaultLow(t *testing.T) {
	s := newTestScorer(t)
	_, score14, _ := s.Composite(map[string]model.PhaseLabel{}, nil, nil, 0, model.RedFlags{}, false)
	if score14 != 0 {
		t.Errorf("Expected score 0 with no labels and no legacy hits, got %d", score14)
	}
}

func TestComposite_RedFlagEscalation(t *testing.T) {
	s := newTestScorer(t)
	labels := map[string]model.PhaseLabel{}
	for _, name := range model.Phases {
		labels[name] = model.LabelExcellent
	}

	_, _, risk := s.Composite(labels, nil, nil, 8, model.RedFlags{Absolutes: true}, false)
	if risk != model.RiskHigh {
		t.Errorf("Expected escalation to ALTO on absolute claims, got %v", risk)
	}

	_, _, risk = s.Composite(labels, nil, nil, 8, model.RedFlags{}, true)
	if risk != model.RiskHigh {
		t.Errorf("Expected escalation to ALTO on disqualifying language, got %v", risk)
	}

	r := rubric.Default()
	r.Risk.EscalateOnRedFlags = false
	relaxed := NewScorer(r)
	_, _, risk = relaxed.Composite(labels, nil, nil, 8, model.RedFlags{Absolutes: true}, true)
	if risk != model.RiskLow {
		t.Errorf("Expected no escalation with override disabled, got %v", risk)
	}
}

func TestFallbackLabels_AlwaysComplete(t *testing.T) {
	s := newTestScorer(t)
	labels := s.FallbackLabels(
		map[string]model.PhaseResult{},
		model.ProductCompliance{Detail: map[string]model.CategoryScore{}},
		model.InteractionQuality{},
	)
	for _, name := range model.Phases {
		if _, ok := labels[name]; !ok {
			t.Errorf("Expected fallback label for phase %q", name)
		}
	}
}

func TestFallbackLabels_Signals(t *testing.T) {
	s := newTestScorer(t)
	labels := s.FallbackLabels(
		map[string]model.PhaseResult{
			model.PhasePreparation: {Applied: true},
		},
		model.ProductCompliance{Detail: map[string]model.CategoryScore{
			"mecanismo":     {Score: 3},
			"uso_posologia": {Score: 3},
			"evidencia":     {Score: 2},
		}},
		model.InteractionQuality{ClosingPresent: true, ObjectionHandling: false},
	)

	if labels[model.PhasePreparation] != model.LabelGood {
		t.Errorf("Expected Bien for applied preparation, got %v", labels[model.PhasePreparation])
	}
	if labels[model.PhaseOpening] != model.LabelNeedsImprovement {
		t.Errorf("Expected Necesita Mejora for unattempted opening, got %v", labels[model.PhaseOpening])
	}
	if labels[model.PhasePersuasion] != model.LabelExcellent {
		t.Errorf("Expected Excelente for 3 core categories, got %v", labels[model.PhasePersuasion])
	}
	if labels[model.PhaseClosing] != model.LabelExcellent {
		t.Errorf("Expected Excelente for closing present, got %v", labels[model.PhaseClosing])
	}
	if labels[model.PhasePostAnalysis] != model.LabelNeedsImprovement {
		t.Errorf("Expected Necesita Mejora without objection handling, got %v", labels[model.PhasePostAnalysis])
	}
}

func assertContains(t *testing.T, items []string, want string) {
	t.Helper()
	for _, item := range items {
		if item == want {
			return
		}
	}
	t.Errorf("Expected %v to contain %q", items, want)
}
