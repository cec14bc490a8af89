package vision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fakeDetector implements Detector with canned frame counts.
type fakeDetector struct {
	detected int
	sampled  int
	err      error
}

func (f *fakeDetector) Name() string { return "fake" }

func (f *fakeDetector) SampleFaces(ctx context.Context, path string, maxFrames int) (int, int, error) {
	return f.detected, f.sampled, f.err
}

func tempVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.mp4")
	if err := os.WriteFile(path, []byte("not really a video"), 0644); err != nil {
		t.Fatalf("write temp video: %v", err)
	}
	return path
}

func TestAnalyze_NoDetector(t *testing.T) {
	a := NewAnalyzer(nil, 60)
	if a.Available() {
		t.Error("Expected analyzer unavailable without a detector")
	}
	res := a.Analyze(context.Background(), tempVideo(t))
	if res.Verdict != VerdictNotEvaluated {
		t.Errorf("Expected %q, got %q", VerdictNotEvaluated, res.Verdict)
	}
	if res.Evaluated {
		t.Error("Expected not evaluated")
	}
}

func TestAnalyze_EmptyPath(t *testing.T) {
	a := NewAnalyzer(&fakeDetector{detected: 10, sampled: 10}, 60)
	res := a.Analyze(context.Background(), "")
	if res.Verdict != VerdictNotEvaluated {
		t.Errorf("Expected %q for empty path, got %q", VerdictNotEvaluated, res.Verdict)
	}
}

func TestAnalyze_MissingFile(t *testing.T) {
	a := NewAnalyzer(&fakeDetector{detected: 10, sampled: 10}, 60)
	res := a.Analyze(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"))
	if res.Verdict != VerdictNotEvaluated {
		t.Errorf("Expected %q for missing file, got %q", VerdictNotEvaluated, res.Verdict)
	}
}

func TestAnalyze_DetectorError(t *testing.T) {
	a := NewAnalyzer(&fakeDetector{err: errors.New("codec")}, 60)
	res := a.Analyze(context.Background(), tempVideo(t))
	if res.Verdict != VerdictNotEvaluated {
		t.Errorf("Expected degraded verdict on detector error, got %q", res.Verdict)
	}
}

func TestAnalyze_Verdicts(t *testing.T) {
	cases := []struct {
		name     string
		detected int
		sampled  int
		want     string
	}{
		{"good presence", 50, 60, VerdictGood},
		{"exactly at cutoff", 42, 60, VerdictGood},
		{"partial visibility", 20, 60, VerdictImprove},
		{"no face", 0, 60, VerdictNoFace},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAnalyzer(&fakeDetector{detected: tc.detected, sampled: tc.sampled}, 60)
			res := a.Analyze(context.Background(), tempVideo(t))
			if res.Verdict != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, res.Verdict)
			}
			if !res.Evaluated {
				t.Error("Expected evaluated result")
			}
			want := float64(tc.detected) / float64(tc.sampled)
			if res.FaceRatio != want {
				t.Errorf("Expected face ratio %v, got %v", want, res.FaceRatio)
			}
		})
	}
}
