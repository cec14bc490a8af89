package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stephaneavril/leo-medico/internal/llm"
	"github.com/stephaneavril/leo-medico/internal/model"
)

// mockProvider implements llm.Provider for testing.
type mockProvider struct {
	response *llm.CoachingResponse
	err      error
	calls    int
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Coach(ctx context.Context, req llm.CoachingRequest) (*llm.CoachingResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

// mockStore implements store.Store for testing.
type mockStore struct {
	saved map[int][]byte
	err   error
}

func newMockStore() *mockStore {
	return &mockStore{saved: make(map[int][]byte)}
}

func (m *mockStore) SaveEvaluation(ctx context.Context, sessionID int, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	m.saved[sessionID] = payload
	return nil
}

func (m *mockStore) Close() error { return nil }

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(model.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New engine: %v", err)
	}
	return eng
}

// assertCompleteBrief checks the structural contract every outcome carries.
func assertCompleteBrief(t *testing.T, out model.Outcome) {
	t.Helper()
	if out.Public == "" {
		t.Error("Expected non-empty public text")
	}
	if out.Internal == nil {
		t.Fatal("Expected internal record")
	}
	r := out.Internal
	if r.EvaluationID == "" {
		t.Error("Expected an evaluation id")
	}
	if len(r.Phases) != len(model.Phases) {
		t.Errorf("Expected %d phases, got %d", len(model.Phases), len(r.Phases))
	}
	for _, name := range model.Phases {
		if _, ok := r.DaVinciStatus[name]; !ok {
			t.Errorf("Expected Da Vinci label for phase %q", name)
		}
	}
	c := r.Compact
	if len(c.Strengths) < 2 || len(c.Strengths) > 4 {
		t.Errorf("Expected 2-4 strengths, got %d", len(c.Strengths))
	}
	if len(c.Opportunities) < 3 || len(c.Opportunities) > 5 {
		t.Errorf("Expected 3-5 opportunities, got %d", len(c.Opportunities))
	}
	if len(c.Coaching3) != 3 {
		t.Errorf("Expected exactly 3 coaching items, got %d", len(c.Coaching3))
	}
	if c.GuidePhrase == "" {
		t.Error("Expected a guide phrase")
	}
	if len(c.KPIsNext) < 2 || len(c.KPIsNext) > 4 {
		t.Errorf("Expected 2-4 next-visit KPIs, got %d", len(c.KPIsNext))
	}
	if c.CardText == "" {
		t.Error("Expected assembled card text")
	}
	if c.Risk == "" {
		t.Error("Expected a risk tier")
	}
}

func TestEvaluate_EmptyInputIsComplete(t *testing.T) {
	eng := newTestEngine(t)
	out := eng.Evaluate(context.Background(), "", "", "")

	assertCompleteBrief(t, out)
	if out.Level != model.LevelFallback {
		t.Errorf("Expected level medio without a provider, got %v", out.Level)
	}
	r := out.Internal
	if r.InputConfidence != model.ConfidenceLow {
		t.Errorf("Expected Baja confidence for empty input, got %v", r.InputConfidence)
	}
	if r.Compact.Score14 != 0 {
		t.Errorf("Expected score 0 for empty input, got %d", r.Compact.Score14)
	}
	if r.Compact.Risk != model.RiskHigh {
		t.Errorf("Expected ALTO risk for empty input, got %v", r.Compact.Risk)
	}
	if r.Visual.Verdict != "No evaluado" {
		t.Errorf("Expected visual verdict No evaluado, got %q", r.Visual.Verdict)
	}
	if !r.LLM.Fallback {
		t.Error("Expected fallback narrative trace")
	}
}

func TestEvaluate_PosologyAndMechanism(t *testing.T) {
	eng := newTestEngine(t)
	transcript := "La posología de ESOXX ONE es un stick después de cada comida y uno " +
		"antes de dormir, y su mecanismo es una barrera bioadhesiva con ácido hialurónico."

	out := eng.Evaluate(context.Background(), transcript, "", "")
	assertCompleteBrief(t, out)
	r := out.Internal

	if r.Product.Detail["uso_posologia"].Score == 0 {
		t.Error("Expected posology category covered")
	}
	if r.Product.Detail["mecanismo"].Score == 0 {
		t.Error("Expected mechanism category covered")
	}
	if r.Interaction.ClosingPresent {
		t.Error("Did not expect a closing signal")
	}
	found := false
	for _, op := range r.Compact.Opportunities {
		if strings.Contains(op, "siguiente paso") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a closing opportunity, got %v", r.Compact.Opportunities)
	}
	if r.Disqualified {
		t.Error("Did not expect disqualifying language")
	}
}

func TestEvaluate_DisqualifyingLanguage(t *testing.T) {
	eng := newTestEngine(t)
	transcript := "No sé, la verdad no tengo idea de cómo funciona el producto."

	out := eng.Evaluate(context.Background(), transcript, "", "")
	assertCompleteBrief(t, out)
	r := out.Internal

	if !r.RedFlags.Ignorance {
		t.Error("Expected ignorance flag")
	}
	if !r.Disqualified {
		t.Error("Expected session disqualified")
	}
	if r.Compact.Risk != model.RiskHigh {
		t.Errorf("Expected ALTO risk on disqualifying language, got %v", r.Compact.Risk)
	}
}

func TestEvaluate_ProductVariantCanonicalized(t *testing.T) {
	eng := newTestEngine(t)
	// ASR often garbles the brand name; variants map back to the canonical token.
	out := eng.Evaluate(context.Background(), "le recomiendo esox one para el reflujo", "", "")

	if out.Internal.Product.Detail["mensajes_base"].Score == 0 {
		t.Error("Expected brand variant to count toward base messaging")
	}
}

func TestEvaluate_LLMSuccess(t *testing.T) {
	mock := &mockProvider{response: &llm.CoachingResponse{
		PublicSummary: "Resumen del entrenador virtual.",
		RH: llm.RHBlock{
			Strengths:     []string{"Saludo profesional", "Buen tono"},
			Opportunities: []string{"a", "b", "c"},
			Coaching3:     []string{"1", "2", "3"},
			GuidePhrase:   "Frase guía.",
			KPIsNext:      []string{"kpi1", "kpi2"},
			DaVinci:       map[string]string{model.PhaseClosing: "Excelente", "fase_inventada": "Bien"},
		},
	}}
	eng := newTestEngine(t).WithSummarizer(llm.NewSummarizerWithProvider(mock, llm.DefaultConfig()))

	out := eng.Evaluate(context.Background(), "buenos dias doctor", "", "")
	assertCompleteBrief(t, out)

	if out.Level != model.LevelFull {
		t.Errorf("Expected level alto, got %v", out.Level)
	}
	if !out.Internal.LLM.Used || out.Internal.LLM.Fallback {
		t.Errorf("Expected LLM trace, got %+v", out.Internal.LLM)
	}
	if !strings.Contains(out.Public, "Resumen del entrenador virtual.") {
		t.Error("Expected the model summary in the public text")
	}
	if out.Internal.DaVinciStatus[model.PhaseClosing] != model.LabelExcellent {
		t.Errorf("Expected merged closing label, got %v", out.Internal.DaVinciStatus[model.PhaseClosing])
	}
}

func TestEvaluate_LLMFailureFallsBack(t *testing.T) {
	mock := &mockProvider{err: errors.New("timeout")}
	eng := newTestEngine(t).WithSummarizer(llm.NewSummarizerWithProvider(mock, llm.DefaultConfig()))

	out := eng.Evaluate(context.Background(), "buenos dias doctor", "", "")
	assertCompleteBrief(t, out)

	if out.Level != model.LevelDegraded {
		t.Errorf("Expected level bajo after provider failure, got %v", out.Level)
	}
	if out.Internal.LLM.Used || !out.Internal.LLM.Fallback {
		t.Errorf("Expected fallback trace, got %+v", out.Internal.LLM)
	}
}

func TestEvaluate_InvalidLLMLabelsIgnored(t *testing.T) {
	mock := &mockProvider{response: &llm.CoachingResponse{
		PublicSummary: "Resumen.",
		RH: llm.RHBlock{
			DaVinci: map[string]string{model.PhaseOpening: "Sobresaliente"},
		},
	}}
	eng := newTestEngine(t).WithSummarizer(llm.NewSummarizerWithProvider(mock, llm.DefaultConfig()))

	out := eng.Evaluate(context.Background(), "buenos dias doctor", "", "")
	got := out.Internal.DaVinciStatus[model.PhaseOpening]
	if got != model.LabelGood {
		t.Errorf("Expected unrecognized label ignored (rule-derived Bien kept), got %v", got)
	}
}

func TestEvaluateAndPersist_Saves(t *testing.T) {
	st := newMockStore()
	eng := newTestEngine(t).WithStore(st)

	out := eng.EvaluateAndPersist(context.Background(), 42, "buenos dias doctor", "", "")
	if out.Level != model.LevelFallback {
		t.Errorf("Expected level medio, got %v", out.Level)
	}
	if len(st.saved[42]) == 0 {
		t.Fatal("Expected persisted payload for session 42")
	}
	if !strings.Contains(string(st.saved[42]), `"score14"`) {
		t.Error("Expected serialized compact brief in payload")
	}
}

func TestEvaluateAndPersist_StoreFailureKeepsResult(t *testing.T) {
	eng := newTestEngine(t).WithStore(&mockStore{err: errors.New("disk full")})

	out := eng.EvaluateAndPersist(context.Background(), 7, "buenos dias doctor", "", "")
	assertCompleteBrief(t, out)

	if out.Level != model.LevelError {
		t.Errorf("Expected level error on store failure, got %v", out.Level)
	}
	if !strings.Contains(out.Public, storeFailureNotice) {
		t.Error("Expected store-failure notice in public text")
	}
	if out.Internal.Compact.Score14 < 0 {
		t.Error("Expected computed score preserved")
	}
}

func TestEvaluateAndPersist_NoStore(t *testing.T) {
	eng := newTestEngine(t)
	out := eng.EvaluateAndPersist(context.Background(), 1, "hola doctor buenos dias", "", "")
	if out.Level != model.LevelError {
		t.Errorf("Expected level error without a store, got %v", out.Level)
	}
}

func TestBuildNarrative_ClampsLLMExcess(t *testing.T) {
	eng := newTestEngine(t)
	coaching := &llm.CoachingResponse{
		PublicSummary: "Resumen.",
		RH: llm.RHBlock{
			Strengths:     []string{"a", "b", "c", "d", "e", "f"},
			Opportunities: []string{"1", "2"},
			Coaching3:     []string{"x"},
		},
	}
	n := eng.buildNarrative(coaching, model.ProductCompliance{Detail: map[string]model.CategoryScore{}}, model.InteractionQuality{}, model.RedFlags{}, false)

	if len(n.strengths) != 4 {
		t.Errorf("Expected strengths trimmed to 4, got %d", len(n.strengths))
	}
	if len(n.opportunities) < 3 {
		t.Errorf("Expected opportunities padded to 3, got %d", len(n.opportunities))
	}
	if len(n.coaching3) != 3 {
		t.Errorf("Expected coaching padded to exactly 3, got %d", len(n.coaching3))
	}
}
