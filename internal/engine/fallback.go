package engine

import (
	"errors"

	"github.com/stephaneavril/leo-medico/internal/llm"
	"github.com/stephaneavril/leo-medico/internal/model"
)

var errNoStore = errors.New("no result store configured")

// categoryOrder fixes the iteration order over product categories so the
// deterministic narrative is stable run to run.
var categoryOrder = []string{
	"mecanismo", "eficacia", "evidencia", "uso_posologia", "diferenciales", "mensajes_base",
}

// Hardcoded narrative defaults. Every output field must end up non-empty
// even with no LLM and an empty transcript, so these are the floor the
// signal-derived text builds on.
var (
	defaultPublicSummary = "Gracias por entrenar con Leo. Refuerza evidencia y posología completa; cierra con un siguiente paso acordado."

	defaultStrengths = []string{
		"Trato cordial.",
		"Buena disposición al diálogo.",
	}

	defaultOpportunities = []string{
		"Estructura Da Vinci incompleta.",
		"Posología no declarada con precisión.",
		"Falta evidencia trazable.",
	}

	defaultCoaching3 = []string{
		"Decir posología completa: 1 stick post-comida + 1 antes de dormir; esperar 30–60 min.",
		"Sustituir absolutos por lenguaje clínico moderado.",
		"Citar un estudio con autor/año y resultado principal.",
	}

	defaultGuidePhrase = "ESOXX ONE: barrera bioadhesiva tópica; protege mucosa y complementa IBP con posología clara."

	defaultKPIsNext = []string{
		"% pacientes con alivio temprano",
		"Adherencia a ventana 30–60 min",
		"Uso combinado con IBP",
	}
)

// strengthByCategory maps a covered message category to a factual strength.
var strengthByCategory = map[string]string{
	"mecanismo":     "Comunica correctamente el mecanismo de acción.",
	"eficacia":      "Transmite beneficios de eficacia con claridad.",
	"evidencia":     "Apoya sus mensajes en evidencia clínica.",
	"uso_posologia": "Declara la posología con precisión.",
	"diferenciales": "Posiciona los diferenciales frente a monoterapia.",
	"mensajes_base": "Mantiene los mensajes base del producto.",
}

// opportunityByCategory maps a missed category to a concrete opportunity.
var opportunityByCategory = map[string]string{
	"mecanismo":     "Explicar el mecanismo: barrera bioadhesiva con ácido hialurónico y condroitina.",
	"eficacia":      "Mencionar los beneficios de eficacia esperados para el paciente.",
	"evidencia":     "Citar evidencia trazable: autor, año y resultado principal.",
	"uso_posologia": "Declarar la posología completa: un stick después de cada comida y uno antes de dormir.",
	"diferenciales": "Destacar el beneficio adyuvante frente a monoterapia con IBP.",
	"mensajes_base": "Reforzar los mensajes base sobre reflujo y protección de la mucosa.",
}

const closingOpportunity = "Cerrar con un siguiente paso acordado y fecha de seguimiento."

// narrative is the merged qualitative text block: LLM output where present
// and parseable, deterministic synthesis everywhere else.
type narrative struct {
	publicSummary string
	strengths     []string
	opportunities []string
	coaching3     []string
	guidePhrase   string
	kpisNext      []string
}

// buildNarrative merges the coaching response with the rule-derived
// fallback field by field. The result always satisfies the brief contract:
// 2-4 strengths, 3-5 opportunities, exactly 3 coaching items, one guide
// phrase, 2-4 KPI strings, non-empty summary.
func (e *Engine) buildNarrative(
	coaching *llm.CoachingResponse,
	product model.ProductCompliance,
	interaction model.InteractionQuality,
	flags model.RedFlags,
	disqualified bool,
) narrative {
	n := e.fallbackNarrative(product, interaction, flags, disqualified)

	if coaching == nil {
		return n
	}
	if coaching.PublicSummary != "" {
		n.publicSummary = coaching.PublicSummary
	}
	if len(coaching.RH.Strengths) > 0 {
		n.strengths = coaching.RH.Strengths
	}
	if len(coaching.RH.Opportunities) > 0 {
		n.opportunities = coaching.RH.Opportunities
	}
	if len(coaching.RH.Coaching3) > 0 {
		n.coaching3 = coaching.RH.Coaching3
	}
	if coaching.RH.GuidePhrase != "" {
		n.guidePhrase = coaching.RH.GuidePhrase
	}
	if len(coaching.RH.KPIsNext) > 0 {
		n.kpisNext = coaching.RH.KPIsNext
	}
	n.clamp()
	return n
}

// fallbackNarrative synthesizes the brief deterministically from the
// rule-based signals.
func (e *Engine) fallbackNarrative(
	product model.ProductCompliance,
	interaction model.InteractionQuality,
	flags model.RedFlags,
	disqualified bool,
) narrative {
	n := narrative{
		publicSummary: defaultPublicSummary,
		coaching3:     append([]string(nil), defaultCoaching3...),
		guidePhrase:   defaultGuidePhrase,
		kpisNext:      append([]string(nil), defaultKPIsNext...),
	}

	for _, name := range categoryOrder {
		if product.Detail[name].Score > 0 {
			n.strengths = append(n.strengths, strengthByCategory[name])
		} else {
			n.opportunities = append(n.opportunities, opportunityByCategory[name])
		}
	}
	if interaction.ListeningLevel == model.OrdinalHigh {
		n.strengths = append(n.strengths, "Demuestra escucha activa con el médico.")
	}
	if !interaction.ClosingPresent {
		n.opportunities = append(n.opportunities, closingOpportunity)
	}
	if flags.Absolutes {
		n.opportunities = append(n.opportunities, "Sustituir absolutos por lenguaje clínico moderado.")
	}
	if disqualified {
		n.opportunities = append(n.opportunities, "Preparar respuestas: evitar improvisar o declarar desconocimiento.")
	}
	if flags.Sensitive {
		n.opportunities = append(n.opportunities, "Evitar temas sensibles fuera de indicación (embarazo, pediatría, precios).")
	}

	n.clamp()
	return n
}

// clamp enforces the brief cardinalities, padding from the defaults when a
// list runs short and truncating when it runs long.
func (n *narrative) clamp() {
	if n.publicSummary == "" {
		n.publicSummary = defaultPublicSummary
	}
	n.strengths = fit(n.strengths, defaultStrengths, 2, 4)
	n.opportunities = fit(n.opportunities, defaultOpportunities, 3, 5)
	n.coaching3 = fit(n.coaching3, defaultCoaching3, 3, 3)
	if n.guidePhrase == "" {
		n.guidePhrase = defaultGuidePhrase
	}
	n.kpisNext = fit(n.kpisNext, defaultKPIsNext, 2, 4)
}

// fit pads a list from fillers (skipping duplicates) up to lo and trims it
// down to hi.
func fit(items, fillers []string, lo, hi int) []string {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		seen[it] = true
	}
	for _, f := range fillers {
		if len(items) >= lo {
			break
		}
		if !seen[f] {
			items = append(items, f)
			seen[f] = true
		}
	}
	if len(items) > hi {
		items = items[:hi]
	}
	return items
}
