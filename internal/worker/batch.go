package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stephaneavril/leo-medico/internal/model"
)

// Evaluator is the engine surface the batch layer depends on.
type Evaluator interface {
	Evaluate(ctx context.Context, userTranscript, counterpartTranscript, videoPath string) model.Outcome
}

// EvalJob evaluates one transcript file.
type EvalJob struct {
	Path      string
	Evaluator Evaluator
}

// Execute reads the transcript and runs the evaluation. Read failures are
// the only error source; the engine itself always returns a result.
func (j *EvalJob) Execute(ctx context.Context) Result {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return &EvalResult{Path: j.Path, Error: fmt.Errorf("read transcript: %w", err)}
	}
	out := j.Evaluator.Evaluate(ctx, string(data), "", "")
	return &EvalResult{Path: j.Path, Outcome: out}
}

// EvalResult is the result of one batch evaluation.
type EvalResult struct {
	Path    string
	Outcome model.Outcome
	Error   error
}

// GetError returns the error from the result.
func (r *EvalResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates many transcripts concurrently. Scorers are pure
// computation, so parallelism here is a latency optimization with no
// correctness impact.
type BatchProcessor struct {
	evaluator   Evaluator
	concurrency int
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(evaluator Evaluator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		evaluator:   evaluator,
		concurrency: concurrency,
	}
}

// ProcessPaths evaluates the given transcript files concurrently. Results
// come back sorted by path so batch reports are stable.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*EvalResult {
	if len(paths) == 0 {
		return []*EvalResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&EvalJob{Path: path, Evaluator: b.evaluator})
	}

	results := pool.Wait()

	evalResults := make([]*EvalResult, len(results))
	for i, result := range results {
		evalResults[i] = result.(*EvalResult)
	}
	sort.Slice(evalResults, func(i, j int) bool {
		return evalResults[i].Path < evalResults[j].Path
	})
	return evalResults
}

// ProcessDir evaluates every .txt file in a directory.
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string) ([]*EvalResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .txt transcripts in %s", dir)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ProcessListFile reads transcript paths from a file (one per line, #
// comments allowed) and evaluates them.
func (b *BatchProcessor) ProcessListFile(ctx context.Context, listPath string) ([]*EvalResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads paths from a file, one per line.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}
