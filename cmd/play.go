package cmd

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/autodoc-cli/internal/analysis"
	"github.com/mj1618/autodoc-cli/internal/model"
	"github.com/mj1618/autodoc-cli/internal/orchestrator"
	"github.com/mj1618/autodoc-cli/internal/output"
	"github.com/mj1618/autodoc-cli/internal/platform"
	"github.com/mj1618/autodoc-cli/internal/replay"
)

var playCmd = &cobra.Command{
	Use:   "play <sequence>",
	Short: "Replay a recorded sequence",
	Long: `Replay a recorded sequence by name, id, or id prefix. A frame is captured
after every action; with --analyze the frames are run through the vision
model and written out as step-by-step documentation.

Examples:
  autodoc play login-flow
  autodoc play login-flow --speed 2
  autodoc play login-flow --analyze --name "Logging in"`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().Float64("speed", 0, "Speed multiplier for recorded delays (default from config)")
	playCmd.Flags().String("bbox", "", "Capture region as x,y,w,h (default: full screen)")
	playCmd.Flags().Int("pid", 0, "Capture the frontmost window of this PID")
	playCmd.Flags().Bool("analyze", false, "Analyze captured frames and write documentation")
	playCmd.Flags().String("name", "", "Document title (default: sequence name)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	seq, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	region, err := regionFromFlags(cmd)
	if err != nil {
		return err
	}

	speed, _ := cmd.Flags().GetFloat64("speed")
	if speed <= 0 {
		speed = settings.Speed
	}
	cfg := replay.DefaultConfig()
	cfg.SpeedMultiplier = speed

	engine := replay.New(provider.Inputter, provider.Frames, provider.Permissions, cfg)
	engine.OnCaptureError = func(step int, err error) {
		fmt.Fprintf(os.Stderr, "capture failed at step %d: %v\n", step, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	started := time.Now()
	session, err := engine.Play(ctx, seq, region)
	if err != nil {
		return err
	}
	elapsed := time.Since(started).Seconds()

	analyze, _ := cmd.Flags().GetBool("analyze")
	if !analyze {
		return output.Print(output.PlayResult{
			Sequence: seq.Name,
			Actions:  len(seq.Actions),
			Frames:   len(session.Captures),
			Elapsed:  elapsed,
		})
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = seq.Name
	}
	dir, results, err := analyzeCaptures(ctx, session.Captures, name)
	if err != nil {
		return err
	}
	succeeded, failed := analysis.Summarize(results)
	doc := output.DocumentResult{
		Name:      name,
		Directory: dir,
		Frames:    len(session.Captures),
		Analyzed:  succeeded,
	}
	for _, r := range results {
		if r.Status == model.StatusFailed {
			doc.Failed = append(doc.Failed, r.Index+1)
		}
	}
	if failed > 0 {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("%d of %d steps have no analysis text", failed, len(results)))
	}
	return output.Print(doc)
}

// analyzeCaptures runs replay captures through the vision pool and writes
// the run artifacts. Frames that fail analysis still get their step image;
// the document marks the gap.
func analyzeCaptures(ctx context.Context, captures []model.PlaybackCapture, name string) (string, []model.ImageProcessingResult, error) {
	if len(captures) == 0 {
		return "", nil, fmt.Errorf("no frames were captured; nothing to analyze")
	}
	vision, err := visionFromSettings()
	if err != nil {
		return "", nil, err
	}

	frames := make([]image.Image, len(captures))
	for i, c := range captures {
		frames[i] = orchestrator.ScaleFrame(c.Frame, settings.Scale)
	}

	pool := analysis.NewPool(vision, settings.MaxConcurrent)
	pool.OnProgress = func(done, total int) {
		fmt.Fprintf(os.Stderr, "\ranalyzing %d/%d", done, total)
	}
	prompt := settings.Prompt
	if prompt == "" {
		prompt = analysis.DefaultPrompt
	}
	results := pool.Analyze(ctx, frames, prompt)
	fmt.Fprintln(os.Stderr)
	if ctx.Err() != nil {
		return "", nil, ctx.Err()
	}

	if succeeded, _ := analysis.Summarize(results); succeeded == 0 {
		return "", nil, fmt.Errorf("%w: no step could be analyzed", model.ErrAnalysisFailed)
	}

	dir, err := orchestrator.WriteRun(settings.OutputRoot, name, frames, results)
	if err != nil {
		return "", nil, err
	}
	return dir, results, nil
}

// visionFromSettings builds the vision provider from configuration.
func visionFromSettings() (*analysis.VisionProvider, error) {
	if settings.Endpoint == "" {
		return nil, fmt.Errorf("no analysis endpoint configured; set endpoint in config.yaml or AUTODOC_ENDPOINT")
	}
	return analysis.NewVisionProvider(analysis.VisionConfig{
		Endpoint: settings.Endpoint,
		APIKey:   settings.APIKey,
		Model:    settings.Model,
	}), nil
}
