// Package llm holds the optional narrative-polish layer: a provider
// interface, the OpenAI implementation and a caching summarizer wrapper.
// The engine never depends on this layer succeeding; every caller must be
// prepared for a nil response and fall back to deterministic text.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stephaneavril/leo-medico/internal/model"
)

// Provider defines the interface for coaching-narrative providers.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Coach generates the qualitative coaching block for one session.
	Coach(ctx context.Context, req CoachingRequest) (*CoachingResponse, error)
}

// CoachingRequest is the input for narrative generation. Context carries
// the rule-based signals so the model describes what was detected instead
// of inventing findings.
type CoachingRequest struct {
	Transcript string
	Context    SignalContext
	MaxTokens  int
}

// SignalContext is serialized into the user prompt verbatim.
type SignalContext struct {
	Score14           int                         `json:"score"`
	Risk              model.RiskTier              `json:"risk"`
	InputConfidence   model.Confidence            `json:"input_confidence"`
	PhasesApplied     []string                    `json:"phases_applied"`
	ProductCategories []string                    `json:"product_categories_present"`
	RedFlags          model.RedFlags              `json:"red_flags"`
	DaVinci           map[string]model.PhaseLabel `json:"da_vinci_status"`
}

// CoachingResponse is the strict JSON contract the provider must return.
type CoachingResponse struct {
	PublicSummary string  `json:"public_summary"`
	RH            RHBlock `json:"rh"`
}

// RHBlock is the trainer-facing portion of the response.
type RHBlock struct {
	Strengths         []string          `json:"strengths"`
	Opportunities     []string          `json:"opportunities"`
	Coaching3         []string          `json:"coaching_3"`
	GuidePhrase       string            `json:"guide_phrase"`
	KPIsNext          []string          `json:"kpis_next"`
	OverallEvaluation string            `json:"overall_evaluation"`
	DaVinci           map[string]string `json:"da_vinci,omitempty"`
}

// SystemPrompt instructs the model to return the strict JSON shape.
const SystemPrompt = `Eres un coach farmacéutico senior. Evalúa SOLO lo que aparece en el texto; ` +
	`usa tono profesional. Devuelve JSON con la forma: ` +
	`{"public_summary": "...", ` +
	`"rh": {"strengths":[],"opportunities":[],"coaching_3":[],"guide_phrase":"","kpis_next":[],"overall_evaluation":"","da_vinci":{}}}`

// BuildUserPrompt assembles the user message: transcript plus the detected
// signals, with explicit instructions not to invent data.
func BuildUserPrompt(req CoachingRequest) string {
	transcript := req.Transcript
	if transcript == "" {
		transcript = "[vacío]"
	}
	ctxJSON, err := json.Marshal(req.Context)
	if err != nil {
		ctxJSON = []byte("{}")
	}

	return fmt.Sprintf(`TRANSCRIPCIÓN (representante):
%s

CONTEXTO (no inventes):
%s

INSTRUCCIONES:
1) "public_summary": ≤120 palabras, tono amable y motivador para el usuario, sin puntajes numéricos.
2) "rh":
   - "strengths": 2-4 fortalezas factuales.
   - "opportunities": 3-5 oportunidades específicas (evita absolutos, exige posología completa, pide evidencia trazable).
   - "coaching_3": exactamente 3 bullets accionables.
   - "guide_phrase": una frase clínica guía (1 línea) sobre ESOXX ONE.
   - "kpis_next": 2-4 KPIs concretos para la próxima visita.
   - "da_vinci": etiqueta por fase ("Excelente", "Bien" o "Necesita Mejora").
No inventes datos; si falta información, sugiere prácticas seguras.`, transcript, ctxJSON)
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// CacheTTL enables response caching; zero disables it
	CacheTTL int // seconds
}

// DefaultConfig returns sensible defaults (provider disabled).
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Model:     "",
		Timeout:   45,
		MaxTokens: 900,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   int(mc.Timeout.Seconds()),
		MaxTokens: mc.MaxTokens,
		CacheTTL:  int(mc.CacheTTL.Seconds()),
	}
}

// NewProvider creates a provider based on configuration. An empty provider
// name disables the LLM path and returns nil, nil.
func NewProvider(config Config) (Provider, error) {
	switch config.Provider {
	case "openai":
		return NewOpenAIProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}
