package model

import "time"

// EvaluationResult is the complete internal record for one role-play session.
// This schema matches the JSON documents stored per session and read by the
// training-admin panel, so the (Spanish) keys are part of the contract.
type EvaluationResult struct {
	EvaluationID string    `json:"evaluation_id"`         // Unique id for this evaluation run
	CreatedAt    time.Time `json:"created_at"`            // When the evaluation ran (UTC)

	InputConfidence Confidence `json:"input_confidence"`  // Transcript quality estimate (Alta/Media/Baja)

	Knowledge   KnowledgeScore         `json:"knowledge"`        // Weighted phrase + legacy keyword scores
	Phases      map[string]PhaseResult `json:"phases"`           // Per-phase score/applied, keyed by phase name
	Checklist   map[string]ChecklistResult `json:"checklist"`    // Strict sub-item completeness (apertura/persuasion/cierre)
	Product     ProductCompliance      `json:"product_claims"`   // Per-category message coverage
	Interaction InteractionQuality     `json:"interaction_quality"`
	RedFlags    RedFlags               `json:"red_flags"`
	Disqualified bool                  `json:"disqualifying_phrases_detected"`

	DaVinciStatus map[string]PhaseLabel `json:"da_vinci_status"` // Qualitative label per phase
	KPIs          KPISet                `json:"kpis"`
	Compact       CompactBrief          `json:"compact"`         // Dense trainer-facing brief
	Visual        VisualResult          `json:"visual"`          // Face-presence heuristic (internal only)

	LLM LLMTrace `json:"llm"`                                    // Which narrative path produced the text
}

// KnowledgeScore holds the weighted rubric total and the legacy keyword count.
type KnowledgeScore struct {
	LegacyCount   int         `json:"legacy_count"`   // 0-8, generic domain keywords
	WeightedTotal int         `json:"weighted_total"` // Sum of matched phrase points
	Breakdown     []PhraseHit `json:"breakdown"`      // One entry per matched phrase
}

// PhraseHit records a single matched rubric phrase and its points.
type PhraseHit struct {
	Phrase string `json:"phrase"`
	Points int    `json:"points"`
}

// PhaseResult is the score and applied flag for one Da Vinci phase.
// Score comes from the strict scoring list; Applied from the looser flag list.
type PhaseResult struct {
	Score   int      `json:"score"`
	Applied bool     `json:"applied"`
	Matched []string `json:"matched,omitempty"`
}

// ChecklistResult is the stricter sub-item completeness score for a phase.
type ChecklistResult struct {
	Satisfied []string `json:"satisfied"`
	Missing   []string `json:"missing"`
	Score     int      `json:"score"` // Count of satisfied sub-items
	Max       int      `json:"max"`   // Total sub-items for the phase
}

// CategoryScore is the coverage result for one product-message category.
// Score is the full category weight if any phrase matched, else zero.
type CategoryScore struct {
	Weight  int      `json:"weight"`
	Score   int      `json:"score"`
	Matched []string `json:"matched,omitempty"`
}

// ProductCompliance aggregates message coverage across the fixed categories.
type ProductCompliance struct {
	Detail map[string]CategoryScore `json:"detail"`
	Total  int                      `json:"total"`
}

// InteractionQuality holds descriptive conversation signals.
type InteractionQuality struct {
	TokenCount        int     `json:"token_count"`
	QuestionRate      float64 `json:"question_rate"`      // question marks per 100 tokens
	ClosingPresent    bool    `json:"closing_present"`
	ObjectionHandling bool    `json:"objection_handling"`
	ListeningLevel    Ordinal `json:"listening_level"`    // Alta/Moderada/Baja
}

// RedFlags marks risky language categories detected in the transcript.
type RedFlags struct {
	Absolutes bool `json:"absolutes"` // Overclaiming ("el mejor", "completamente seguro")
	Ignorance bool `json:"ignorance"` // Admitted improvisation ("no se", "lo invento")
	Sensitive bool `json:"sensitive"` // Off-limits topics (pregnancy, pediatrics, pricing)
}

// KPISet is the aggregated numeric view of the session.
type KPISet struct {
	AvgPhaseScore    float64 `json:"avg_phase_score"`    // Mean of phase labels mapped 1-3
	AvgScore010      float64 `json:"avg_score_0_10"`     // (AvgPhaseScore-1)*5
	PhasesAppliedPct float64 `json:"phases_applied_pct"` // applied/5 * 100
	ChecklistIndex   float64 `json:"checklist_index"`    // 0-10 over all checklist sub-items
	LegacyCount      int     `json:"legacy_count"`       // 0-8, kept for older displays
}

// CompactBrief is the dense coaching summary for the training admin.
type CompactBrief struct {
	Score14       int      `json:"score14"`       // 0-14 composite
	Risk          RiskTier `json:"risk"`          // ALTO/MEDIO/BAJO
	Strengths     []string `json:"strengths"`     // 2-4 bullets
	Opportunities []string `json:"opportunities"` // 3-5 bullets
	Coaching3     []string `json:"coaching_3"`    // exactly 3 actionable bullets
	GuidePhrase   string   `json:"guide_phrase"`
	KPIsNext      []string `json:"kpis_next"`     // 2-4 bullets for the next visit
	CardText      string   `json:"rh_card_text"`  // Assembled text block for the admin panel
}

// VisualResult is the face-presence heuristic outcome.
type VisualResult struct {
	Verdict   string  `json:"verdict"`    // Buena presencia / Mejorar visibilidad / Sin rostro detectado / No evaluado
	FaceRatio float64 `json:"face_ratio"` // Frames with a face / frames sampled
	Evaluated bool    `json:"evaluated"`
}

// LLMTrace records whether the narrative came from the model or the fallback.
type LLMTrace struct {
	Used     bool   `json:"used"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Fallback bool   `json:"fallback"` // true when the deterministic path produced the text
}

// PhaseLabel is the qualitative rating for one Da Vinci phase.
type PhaseLabel string

const (
	LabelExcellent        PhaseLabel = "Excelente"
	LabelGood             PhaseLabel = "Bien"
	LabelNeedsImprovement PhaseLabel = "Necesita Mejora"
)

// Numeric maps a label to its 1-3 scale value. Unknown or empty labels
// default to 1 so composite scores stay computable when the LLM path fails.
func (l PhaseLabel) Numeric() int {
	switch l {
	case LabelExcellent:
		return 3
	case LabelGood:
		return 2
	default:
		return 1
	}
}

// RiskTier is the coarse session risk classification.
type RiskTier string

const (
	RiskHigh   RiskTier = "ALTO"
	RiskMedium RiskTier = "MEDIO"
	RiskLow    RiskTier = "BAJO"
)

// Level communicates overall call health to the caller. It is not the
// business risk tier (that is Compact.Risk).
type Level string

const (
	LevelFull     Level = "alto"  // LLM narrative path succeeded
	LevelFallback Level = "medio" // deterministic fallback used (no provider configured)
	LevelDegraded Level = "bajo"  // provider configured but failed; fallback used
	LevelError    Level = "error" // persistence failure (result still returned)
)

// Confidence estimates how trustworthy the input transcript is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "Alta"
	ConfidenceMedium Confidence = "Media"
	ConfidenceLow    Confidence = "Baja"
)

// Ordinal is a three-step intensity scale used for listening level.
type Ordinal string

const (
	OrdinalHigh     Ordinal = "Alta"
	OrdinalModerate Ordinal = "Moderada"
	OrdinalLow      Ordinal = "Baja"
)

// Phases lists the five Da Vinci phases in methodology order.
var Phases = []string{
	PhasePreparation,
	PhaseOpening,
	PhasePersuasion,
	PhaseClosing,
	PhasePostAnalysis,
}

const (
	PhasePreparation  = "preparacion"
	PhaseOpening      = "apertura"
	PhasePersuasion   = "persuasion"
	PhaseClosing      = "cierre"
	PhasePostAnalysis = "analisis_post"
)

// Outcome is what the engine hands back to its callers: ready-to-display
// trainee text, the full internal record, and a call-health level.
type Outcome struct {
	Public   string            `json:"public"`
	Internal *EvaluationResult `json:"internal"`
	Level    Level             `json:"level"`
}
