package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stephaneavril/leo-medico/internal/engine"
	"github.com/stephaneavril/leo-medico/internal/export"
	"github.com/stephaneavril/leo-medico/internal/model"
	"github.com/stephaneavril/leo-medico/internal/rubric"
	"github.com/stephaneavril/leo-medico/internal/worker"
)

var (
	batchRubric   string
	batchList     string
	batchJSONDir  string
	batchXLSX     string
	batchWorkers  int
	batchTimeout  time.Duration
	batchLLM      bool
	batchLLMModel string
	batchRate     float64
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [transcript-dir]",
	Short: "Evaluate many transcripts concurrently",
	Long: `Batch evaluates every .txt transcript in a directory (or every path
listed in a file via --list) and writes per-session JSON plus an Excel
summary workbook for the training admins.

Example:
  leo-eval batch ./sessions --xlsx resumen.xlsx
  leo-eval batch --list transcripts.txt --json-dir out/ --workers 8
  leo-eval batch ./sessions --llm --rate 0.5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchRubric, "rubric", "", "rubric YAML path (default: embedded tables)")
	batchCmd.Flags().StringVar(&batchList, "list", "", "file of transcript paths, one per line")
	batchCmd.Flags().StringVar(&batchJSONDir, "json-dir", "", "directory for per-session JSON results (optional)")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "Excel summary workbook path (optional)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "concurrent evaluations")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "overall batch timeout")

	batchCmd.Flags().BoolVar(&batchLLM, "llm", false, "enable LLM narrative polish")
	batchCmd.Flags().StringVar(&batchLLMModel, "llm-model", "gpt-4o-mini", "LLM model name")
	batchCmd.Flags().Float64Var(&batchRate, "rate", 1, "max LLM calls per second across the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && batchList == "" {
		return fmt.Errorf("provide a transcript directory or --list")
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Rubric.Path = batchRubric
	cfg.Concurrency.Workers = batchWorkers
	if batchLLM {
		cfg.LLM.Provider = "openai"
		cfg.LLM.Model = batchLLMModel
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		cfg.LLM.RatePerSecond = batchRate
		// Identical retakes are common in trainings; cache their narratives
		cfg.LLM.CacheTTL = 30 * time.Minute
	}

	r, err := rubric.Load(cfg.Rubric.Path)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg, r)
	if err != nil {
		return err
	}
	eng.LimitLLM(worker.NewLimiter(cfg.LLM.RatePerSecond, cfg.LLM.Burst))

	processor := worker.NewBatchProcessor(eng, cfg.Concurrency.Workers)

	var results []*worker.EvalResult
	if batchList != "" {
		results, err = processor.ProcessListFile(ctx, batchList)
	} else {
		results, err = processor.ProcessDir(ctx, args[0])
	}
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	renderer := engine.NewRenderer()
	failed := 0
	for _, res := range results {
		if res.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Path, res.Error)
			continue
		}
		if batchJSONDir != "" {
			if err := os.MkdirAll(batchJSONDir, 0755); err != nil {
				return fmt.Errorf("create json dir: %w", err)
			}
			name := strings.TrimSuffix(filepath.Base(res.Path), ".txt") + ".json"
			if err := renderer.RenderJSON(res.Outcome.Internal, filepath.Join(batchJSONDir, name)); err != nil {
				return fmt.Errorf("render %s: %w", name, err)
			}
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ %s: score %d/14, riesgo %s\n",
				filepath.Base(res.Path), res.Outcome.Internal.Compact.Score14, res.Outcome.Internal.Compact.Risk)
		}
	}

	if batchXLSX != "" {
		if err := export.WriteWorkbook(results, batchXLSX); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote workbook: %s\n", batchXLSX)
		}
	}

	fmt.Printf("Evaluadas %d sesiones (%d con error)\n", len(results), failed)
	return nil
}
