// Package vision implements the optional face-presence heuristic. Face
// detection is modeled as a capability: when no detector is installed the
// analyzer returns the neutral "No evaluado" verdict instead of failing.
// The verdict feeds the internal record only, never the trainee-facing text.
package vision

import (
	"context"
	"os"

	"github.com/stephaneavril/leo-medico/internal/model"
)

// Verdict strings for the internal record.
const (
	VerdictGood         = "Buena presencia"
	VerdictImprove      = "Mejorar visibilidad"
	VerdictNoFace       = "Sin rostro detectado"
	VerdictNotEvaluated = "No evaluado"
)

// goodPresenceRatio is the detected/sampled cutoff for the top verdict.
const goodPresenceRatio = 0.7

// Detector is the face-detection capability. Implementations sample up to
// maxFrames frames from the video and report how many contained a frontal
// face.
type Detector interface {
	// Name identifies the detector backend.
	Name() string

	// SampleFaces returns (frames with a face, frames sampled).
	SampleFaces(ctx context.Context, path string, maxFrames int) (detected, sampled int, err error)
}

// Analyzer classifies on-camera presence for a session recording.
type Analyzer struct {
	detector  Detector // nil = capability unavailable
	maxFrames int
}

// NewAnalyzer creates an analyzer. A nil detector is valid and yields
// "No evaluado" for every input.
func NewAnalyzer(detector Detector, maxFrames int) *Analyzer {
	if maxFrames <= 0 {
		maxFrames = 60
	}
	return &Analyzer{detector: detector, maxFrames: maxFrames}
}

// Available reports whether a detector backend is installed.
func (a *Analyzer) Available() bool {
	return a != nil && a.detector != nil
}

// Analyze classifies the recording at path. Missing files, missing
// detectors and detector errors all degrade to "No evaluado"; this signal
// is best-effort and never blocks an evaluation.
func (a *Analyzer) Analyze(ctx context.Context, path string) model.VisualResult {
	notEvaluated := model.VisualResult{Verdict: VerdictNotEvaluated}

	if !a.Available() || path == "" {
		return notEvaluated
	}
	if _, err := os.Stat(path); err != nil {
		return notEvaluated
	}

	detected, sampled, err := a.detector.SampleFaces(ctx, path, a.maxFrames)
	if err != nil || sampled == 0 {
		return notEvaluated
	}

	ratio := float64(detected) / float64(sampled)
	res := model.VisualResult{FaceRatio: ratio, Evaluated: true}
	switch {
	case ratio >= goodPresenceRatio:
		res.Verdict = VerdictGood
	case detected > 0:
		res.Verdict = VerdictImprove
	default:
		res.Verdict = VerdictNoFace
	}
	return res
}
