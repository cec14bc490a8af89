package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stephaneavril/leo-medico/internal/engine"
	"github.com/stephaneavril/leo-medico/internal/model"
	"github.com/stephaneavril/leo-medico/internal/rubric"
	"github.com/stephaneavril/leo-medico/internal/store"
)

var (
	outJSON         string
	outMD           string
	rubricPath      string
	videoPath       string
	counterpartPath string
	sessionID       int
	dbPath          string
	evalTimeout     time.Duration
	llmEnabled      bool
	llmModel        string
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <transcript.txt>",
	Short: "Evaluate a single role-play transcript",
	Long: `Evaluate scores one session transcript:
- Da Vinci phase scores, applied flags and checklist completeness
- Product-message coverage and weighted knowledge points
- Interaction quality, red flags and disqualifying language
- Composite 0-14 score, risk tier and coaching brief

Example:
  leo-eval evaluate session.txt
  leo-eval evaluate session.txt --json result.json --md card.md
  leo-eval evaluate session.txt --llm --llm-model gpt-4o-mini
  leo-eval evaluate session.txt --session 42 --db sessions.db`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	evaluateCmd.Flags().StringVar(&outMD, "md", "", "output Markdown card path (optional)")
	evaluateCmd.Flags().StringVar(&rubricPath, "rubric", "", "rubric YAML path (default: embedded tables)")
	evaluateCmd.Flags().StringVar(&videoPath, "video", "", "session recording path (optional)")
	evaluateCmd.Flags().StringVar(&counterpartPath, "counterpart", "", "counterpart transcript path (optional)")
	evaluateCmd.Flags().IntVar(&sessionID, "session", 0, "session id: persist the result keyed by this id")
	evaluateCmd.Flags().StringVar(&dbPath, "db", "leo.db", "SQLite database path (used with --session)")
	evaluateCmd.Flags().DurationVar(&evalTimeout, "timeout", 2*time.Minute, "overall evaluation timeout")

	evaluateCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM narrative polish")
	evaluateCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	transcript, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	counterpart := ""
	if counterpartPath != "" {
		data, err := os.ReadFile(counterpartPath)
		if err != nil {
			return fmt.Errorf("read counterpart transcript: %w", err)
		}
		counterpart = string(data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	eng, cleanup, err := buildEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	var out model.Outcome
	if sessionID > 0 {
		out = eng.EvaluateAndPersist(ctx, sessionID, string(transcript), counterpart, videoPath)
	} else {
		out = eng.Evaluate(ctx, string(transcript), counterpart, videoPath)
	}

	renderer := engine.NewRenderer()
	if outJSON != "" {
		if err := renderer.RenderJSON(out.Internal, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(out, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.RenderSummary(out)
	fmt.Println()
	fmt.Println(out.Public)
	return nil
}

// buildEngine assembles an engine from flags and viper config. The cleanup
// closes the store when one was opened.
func buildEngine() (*engine.Engine, func(), error) {
	cfg := model.DefaultConfig()
	cfg.Rubric.Path = rubricPath
	cfg.Output.Verbose = verbose

	if llmEnabled {
		cfg.LLM.Provider = "openai"
		cfg.LLM.Model = llmModel
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	r, err := rubric.Load(cfg.Rubric.Path)
	if err != nil {
		return nil, nil, err
	}

	eng, err := engine.New(cfg, r)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	if sessionID > 0 {
		st, err := store.OpenSQLite(dbPath, cfg.Store.RetryMaxElapsed)
		if err != nil {
			return nil, nil, err
		}
		if err := st.EnsureSession(context.Background(), sessionID); err != nil {
			_ = st.Close()
			return nil, nil, err
		}
		eng.WithStore(st)
		cleanup = func() { _ = st.Close() }
	}
	return eng, cleanup, nil
}
