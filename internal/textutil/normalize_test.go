package textutil

import "testing"

func TestNormalize_Basic(t *testing.T) {
	got := Normalize("  La Posología   de ESOXX ONE\n es clave ")
	want := "la posologia de esoxx one es clave"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestNormalize_Empty(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Ácido Hialurónico",
		"¿Qué le preocupa?",
		"  ya   normalizado  ",
		"",
		"ESOXX ONE: barrera bioadhesiva",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalize_StripsDiacritics(t *testing.T) {
	got := Normalize("después de cada comida, ácido hialurónico")
	want := "despues de cada comida, acido hialuronico"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestCanonicalizer_Variants(t *testing.T) {
	c, err := NewCanonicalizer("esoxx one", []string{
		`\besox+\s*one\b`, `\besoks?\b`, `\besoxxone\b`,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	cases := map[string]string{
		"recomiendo esox one al paciente":  "recomiendo esoxx one al paciente",
		"recomiendo esoks al paciente":     "recomiendo esoxx one al paciente",
		"recomiendo esoxxone al paciente":  "recomiendo esoxx one al paciente",
		"recomiendo esoxx one al paciente": "recomiendo esoxx one al paciente",
		"sin mencion del producto":         "sin mencion del producto",
	}
	for in, want := range cases {
		if got := c.Apply(in); got != want {
			t.Errorf("Apply(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestCanonicalizer_BadPattern(t *testing.T) {
	if _, err := NewCanonicalizer("esoxx one", []string{`[unclosed`}); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}
