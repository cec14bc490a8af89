package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/stephaneavril/leo-medico/internal/model"
)

// renderPublicBlock builds the trainee-facing text: the diplomatic summary
// plus a short reminder list. Raw scores and the visual verdict are kept
// out of this block on purpose.
func renderPublicBlock(summary string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(summary))
	b.WriteString("\n\nÁreas sugeridas:\n")
	b.WriteString("• Apoya con evidencia trazable y posología concreta.\n")
	b.WriteString("• Cierra con un siguiente paso acordado.\n")
	b.WriteString("• Refuerza preguntas y estructura.")
	return b.String()
}

// renderCardText assembles the dense trainer card stored in the record.
func renderCardText(r *model.EvaluationResult) string {
	joined := func(items []string) string {
		return strings.TrimRight(strings.Join(items, "; "), ".")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sesión: %s · Score: %d/14 · Riesgo: %s\n",
		r.CreatedAt.Format("2006-01-02 15:04"), r.Compact.Score14, r.Compact.Risk)
	fmt.Fprintf(&b, "Fortalezas: %s\n", joined(r.Compact.Strengths))
	fmt.Fprintf(&b, "Oportunidades clave: %s\n", joined(r.Compact.Opportunities))
	b.WriteString("Coaching inmediato (3):\n")
	for _, c := range r.Compact.Coaching3 {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("Frase guía sugerida:\n")
	b.WriteString(r.Compact.GuidePhrase)
	b.WriteString("\n")
	fmt.Fprintf(&b, "KPI próxima visita: %s\n", joined(r.Compact.KPIsNext))
	fmt.Fprintf(&b, "Confianza del análisis (calidad de transcripción): %s", r.InputConfidence)
	return b.String()
}

// Renderer writes evaluation outcomes to files for the CLI harness.
type Renderer struct{}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the internal record as indented JSON.
func (r *Renderer) RenderJSON(result *model.EvaluationResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes a trainer-facing Markdown card.
func (r *Renderer) RenderMarkdown(out model.Outcome, path string) error {
	res := out.Internal

	var b strings.Builder
	b.WriteString("# Evaluación de visita — Leo Virtual Trainer\n\n")
	fmt.Fprintf(&b, "- **Score:** %d/14\n", res.Compact.Score14)
	fmt.Fprintf(&b, "- **Riesgo:** %s\n", res.Compact.Risk)
	fmt.Fprintf(&b, "- **Fases aplicadas:** %.0f%%\n", res.KPIs.PhasesAppliedPct)
	fmt.Fprintf(&b, "- **Índice de checklist:** %.1f/10\n", res.KPIs.ChecklistIndex)
	fmt.Fprintf(&b, "- **Cobertura de mensajes:** %d\n", res.Product.Total)
	fmt.Fprintf(&b, "- **Confianza de transcripción:** %s\n\n", res.InputConfidence)

	b.WriteString("## Modelo Da Vinci\n\n")
	for _, name := range model.Phases {
		fmt.Fprintf(&b, "- %s: %s (puntos: %d)\n", name, res.DaVinciStatus[name], res.Phases[name].Score)
	}

	b.WriteString("\n## Tarjeta RH\n\n```\n")
	b.WriteString(res.Compact.CardText)
	b.WriteString("\n```\n\n## Mensaje al representante\n\n")
	b.WriteString(out.Public)
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints a one-screen summary to stdout.
func (r *Renderer) RenderSummary(out model.Outcome) {
	res := out.Internal
	fmt.Printf("Score: %d/14 · Riesgo: %s · Fases aplicadas: %.0f%% · Nivel: %s\n",
		res.Compact.Score14, res.Compact.Risk, res.KPIs.PhasesAppliedPct, out.Level)
}
