// Package engine orchestrates one evaluation: normalization, the
// independent scorers, the optional LLM narrative, composite KPIs and the
// final text assembly. Its public surface never fails: any input, with or
// without LLM, video or store, yields a structurally complete Outcome.
package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/stephaneavril/leo-medico/internal/llm"
	"github.com/stephaneavril/leo-medico/internal/logger"
	"github.com/stephaneavril/leo-medico/internal/model"
	"github.com/stephaneavril/leo-medico/internal/rubric"
	"github.com/stephaneavril/leo-medico/internal/score"
	"github.com/stephaneavril/leo-medico/internal/store"
	"github.com/stephaneavril/leo-medico/internal/textutil"
	"github.com/stephaneavril/leo-medico/internal/vision"
)

// storeFailureNotice is appended to the public text when persistence fails.
const storeFailureNotice = "⚠️ No se pudo registrar el análisis."

// Engine evaluates role-play transcripts. Collaborators are injected: the
// engine owns no global clients and keeps no state between calls.
type Engine struct {
	scorer     *score.Scorer
	canon      *textutil.Canonicalizer
	summarizer *llm.Summarizer // nil or disabled = deterministic path only
	analyzer   *vision.Analyzer
	store      store.Store // nil = persistence unavailable
	log        *logger.Logger
}

// New builds an engine from configuration. The rubric argument may be nil,
// in which case the embedded default tables are used.
func New(cfg *model.Config, r *rubric.Rubric) (*Engine, error) {
	if r == nil {
		var err error
		r, err = rubric.Load(cfg.Rubric.Path)
		if err != nil {
			return nil, err
		}
	}

	canon, err := textutil.NewCanonicalizer(r.Product.Canonical, r.Product.Variants)
	if err != nil {
		return nil, err
	}

	summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, err
	}

	maxFrames := cfg.Video.MaxFrames
	var detector vision.Detector // no backend compiled in; injectable via WithDetector
	analyzer := vision.NewAnalyzer(detector, maxFrames)
	if !cfg.Video.Enabled {
		analyzer = vision.NewAnalyzer(nil, maxFrames)
	}

	return &Engine{
		scorer:     score.NewScorer(r),
		canon:      canon,
		summarizer: summarizer,
		analyzer:   analyzer,
		log:        logger.New(),
	}, nil
}

// WithStore installs the persistence collaborator.
func (e *Engine) WithStore(s store.Store) *Engine {
	e.store = s
	return e
}

// WithSummarizer replaces the narrative summarizer.
func (e *Engine) WithSummarizer(s *llm.Summarizer) *Engine {
	e.summarizer = s
	return e
}

// LimitLLM installs a rate limiter on the narrative summarizer.
func (e *Engine) LimitLLM(l llm.Limiter) *Engine {
	if e.summarizer != nil {
		e.summarizer.SetLimiter(l)
	}
	return e
}

// WithDetector installs a face-detection backend.
func (e *Engine) WithDetector(d vision.Detector, maxFrames int) *Engine {
	e.analyzer = vision.NewAnalyzer(d, maxFrames)
	return e
}

// Evaluate scores one session. It returns a complete Outcome for every
// input, including empty transcripts; external failures (LLM, video) only
// steer it onto the deterministic path.
func (e *Engine) Evaluate(ctx context.Context, userTranscript, counterpartTranscript, videoPath string) (out model.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", r).Error("evaluation recovered")
			out = e.safeOutcome()
		}
	}()

	normalized := e.canon.Apply(textutil.Normalize(userTranscript))

	// Independent rule-based scorers; none perform I/O.
	knowledge := e.scorer.Knowledge(normalized)
	phases := e.scorer.Phases(normalized)
	checklist := e.scorer.Checklist(normalized)
	product := e.scorer.Product(normalized)
	interaction := e.scorer.Interaction(userTranscript, normalized)
	flags := e.scorer.RedFlags(normalized)
	disqualified := flags.Ignorance
	confidence := e.scorer.Confidence(userTranscript)

	visual := e.analyzer.Analyze(ctx, videoPath)

	// Preliminary labels and composite feed the LLM context so the model
	// describes detected signals instead of inventing findings.
	labels := e.scorer.FallbackLabels(phases, product, interaction)
	_, prelimScore, prelimRisk := e.scorer.Composite(labels, phases, checklist, knowledge.LegacyCount, flags, disqualified)

	level := model.LevelFallback
	trace := model.LLMTrace{Fallback: true}
	var coaching *llm.CoachingResponse

	if e.summarizer.IsEnabled() {
		req := llm.CoachingRequest{
			Transcript: userTranscript,
			Context: llm.SignalContext{
				Score14:           prelimScore,
				Risk:              prelimRisk,
				InputConfidence:   confidence,
				PhasesApplied:     appliedPhases(phases),
				ProductCategories: matchedCategories(product),
				RedFlags:          flags,
				DaVinci:           labels,
			},
		}
		resp, err := e.summarizer.Generate(ctx, req)
		switch {
		case err != nil:
			e.log.WithError(err).Warn("LLM coaching failed; using deterministic fallback")
			level = model.LevelDegraded
		case resp != nil:
			coaching = resp
			level = model.LevelFull
			trace = model.LLMTrace{
				Used:     true,
				Provider: e.summarizer.ProviderName(),
				Model:    e.summarizer.ModelName(),
			}
			mergeLabels(labels, resp.RH.DaVinci)
		}
	}

	// Final aggregation happens after the LLM settles, since its labels
	// feed the phase average.
	kpis, score14, risk := e.scorer.Composite(labels, phases, checklist, knowledge.LegacyCount, flags, disqualified)

	narrative := e.buildNarrative(coaching, product, interaction, flags, disqualified)

	result := &model.EvaluationResult{
		EvaluationID:    uuid.New().String(),
		CreatedAt:       time.Now().UTC(),
		InputConfidence: confidence,
		Knowledge:       knowledge,
		Phases:          phases,
		Checklist:       checklist,
		Product:         product,
		Interaction:     interaction,
		RedFlags:        flags,
		Disqualified:    disqualified,
		DaVinciStatus:   labels,
		Visual:          visual,
		LLM:             trace,
	}
	result.KPIs = kpis
	result.Compact = model.CompactBrief{
		Score14:       score14,
		Risk:          risk,
		Strengths:     narrative.strengths,
		Opportunities: narrative.opportunities,
		Coaching3:     narrative.coaching3,
		GuidePhrase:   narrative.guidePhrase,
		KPIsNext:      narrative.kpisNext,
	}
	result.Compact.CardText = renderCardText(result)

	return model.Outcome{
		Public:   renderPublicBlock(narrative.publicSummary),
		Internal: result,
		Level:    level,
	}
}

// EvaluateAndPersist evaluates and then writes the internal record keyed by
// session id. Store failures never cost the caller the computed result: the
// outcome comes back with Level=error and a notice appended to Public.
func (e *Engine) EvaluateAndPersist(ctx context.Context, sessionID int, userTranscript, counterpartTranscript, videoPath string) model.Outcome {
	out := e.Evaluate(ctx, userTranscript, counterpartTranscript, videoPath)

	err := e.persist(ctx, sessionID, out.Internal)
	if err != nil {
		e.log.WithSession(sessionID).WithField("error", err.Error()).Error("persist evaluation failed")
		out.Level = model.LevelError
		out.Public += "\n\n" + storeFailureNotice
	}
	return out
}

func (e *Engine) persist(ctx context.Context, sessionID int, result *model.EvaluationResult) error {
	if e.store == nil {
		return errNoStore
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return e.store.SaveEvaluation(ctx, sessionID, payload)
}

// safeOutcome is the worst-case result: generic but encouraging public
// text and a fully-populated internal record with zero scores.
func (e *Engine) safeOutcome() model.Outcome {
	normalized := ""
	knowledge := e.scorer.Knowledge(normalized)
	phases := e.scorer.Phases(normalized)
	checklist := e.scorer.Checklist(normalized)
	product := e.scorer.Product(normalized)
	interaction := e.scorer.Interaction("", normalized)
	flags := model.RedFlags{}
	labels := e.scorer.FallbackLabels(phases, product, interaction)
	kpis, score14, risk := e.scorer.Composite(labels, phases, checklist, knowledge.LegacyCount, flags, false)
	narrative := e.buildNarrative(nil, product, interaction, flags, false)

	result := &model.EvaluationResult{
		EvaluationID:    uuid.New().String(),
		CreatedAt:       time.Now().UTC(),
		InputConfidence: model.ConfidenceLow,
		Knowledge:       knowledge,
		Phases:          phases,
		Checklist:       checklist,
		Product:         product,
		Interaction:     interaction,
		RedFlags:        flags,
		DaVinciStatus:   labels,
		Visual:          model.VisualResult{Verdict: vision.VerdictNotEvaluated},
		LLM:             model.LLMTrace{Fallback: true},
		KPIs:            kpis,
	}
	result.Compact = model.CompactBrief{
		Score14:       score14,
		Risk:          risk,
		Strengths:     narrative.strengths,
		Opportunities: narrative.opportunities,
		Coaching3:     narrative.coaching3,
		GuidePhrase:   narrative.guidePhrase,
		KPIsNext:      narrative.kpisNext,
	}
	result.Compact.CardText = renderCardText(result)

	return model.Outcome{
		Public:   renderPublicBlock(narrative.publicSummary),
		Internal: result,
		Level:    model.LevelFallback,
	}
}

func appliedPhases(phases map[string]model.PhaseResult) []string {
	var out []string
	for _, name := range model.Phases {
		if phases[name].Applied {
			out = append(out, name)
		}
	}
	return out
}

func matchedCategories(product model.ProductCompliance) []string {
	var out []string
	for _, name := range categoryOrder {
		if product.Detail[name].Score > 0 {
			out = append(out, name)
		}
	}
	return out
}

// mergeLabels overlays recognized LLM labels onto the rule-derived ones.
// Unknown phase names or label strings are ignored, never defaulted down.
func mergeLabels(labels map[string]model.PhaseLabel, fromLLM map[string]string) {
	for _, name := range model.Phases {
		raw, ok := fromLLM[name]
		if !ok {
			continue
		}
		switch model.PhaseLabel(raw) {
		case model.LabelExcellent, model.LabelGood, model.LabelNeedsImprovement:
			labels[name] = model.PhaseLabel(raw)
		}
	}
}
