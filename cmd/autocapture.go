package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/autodoc-cli/internal/model"
	"github.com/mj1618/autodoc-cli/internal/orchestrator"
	"github.com/mj1618/autodoc-cli/internal/output"
	"github.com/mj1618/autodoc-cli/internal/platform"
)

var autocaptureCmd = &cobra.Command{
	Use:   "autocapture",
	Short: "Capture a series of screens and document them",
	Long: `Repeatedly capture the screen, performing one input action between
captures (a key press or a click), then analyze every frame with the vision
model and write step-by-step documentation.

Examples:
  autodoc autocapture --name slides --count 20 --key right
  autodoc autocapture --name wizard --count 5 --click 640,700 --interval 2s
  autodoc autocapture --name app-tour --count 10 --key right --pid 4242`,
	RunE: runAutocapture,
}

func init() {
	rootCmd.AddCommand(autocaptureCmd)
	autocaptureCmd.Flags().String("name", "", "Document title and output directory name")
	autocaptureCmd.Flags().Int("count", 0, "Number of captures to take")
	autocaptureCmd.Flags().String("key", "", "Key combo to press between captures (e.g. right, cmd+right)")
	autocaptureCmd.Flags().String("click", "", "Coordinates to click between captures, as x,y")
	autocaptureCmd.Flags().Duration("interval", time.Second, "Wait between captures")
	autocaptureCmd.Flags().String("bbox", "", "Capture region as x,y,w,h (default: full screen)")
	autocaptureCmd.Flags().Int("pid", 0, "Capture the frontmost window of this PID")
	autocaptureCmd.Flags().Int("retries", 1, "Retry rounds for failed analyses")
	autocaptureCmd.Flags().Bool("allow-gaps", false, "Save the document even when some steps failed analysis")
	autocaptureCmd.Flags().Bool("preview", false, "Take a throwaway preview capture before the run")
}

func runAutocapture(cmd *cobra.Command, args []string) error {
	job, err := jobFromFlags(cmd)
	if err != nil {
		return err
	}

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	if !provider.Permissions.Granted() {
		return model.ErrPermissionDenied
	}
	vision, err := visionFromSettings()
	if err != nil {
		return err
	}

	preview, _ := cmd.Flags().GetBool("preview")
	orc := orchestrator.New(provider.Frames, provider.Inputter, vision, orchestrator.Config{
		TakePreview:   preview,
		MaxConcurrent: settings.MaxConcurrent,
		Prompt:        settings.Prompt,
		Scale:         settings.Scale,
		OutputRoot:    settings.OutputRoot,
	})
	orc.OnState = reportPhase

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := orc.Run(ctx, job); err != nil {
		return err
	}

	// A partial run gets retried, then either force-saved or surfaced as
	// an error depending on --allow-gaps.
	retries, _ := cmd.Flags().GetInt("retries")
	for i := 0; i < retries && orc.State().Phase == orchestrator.PhasePartiallyCompleted; i++ {
		fmt.Fprintf(os.Stderr, "retrying %d failed analyses\n", orc.State().Failed)
		if err := orc.RetryFailed(ctx); err != nil {
			return err
		}
	}
	if orc.State().Phase == orchestrator.PhasePartiallyCompleted {
		allowGaps, _ := cmd.Flags().GetBool("allow-gaps")
		if !allowGaps {
			return fmt.Errorf("%d steps failed analysis; rerun with --allow-gaps to save anyway", orc.State().Failed)
		}
		if err := orc.SaveWithGaps(ctx); err != nil {
			return err
		}
	}

	final := orc.State()
	if final.Phase != orchestrator.PhaseCompleted {
		return fmt.Errorf("capture did not complete: %s", final.Message)
	}

	doc := output.DocumentResult{
		Name:      job.OutputName,
		Directory: final.Location,
		Frames:    job.CaptureCount,
		Analyzed:  final.Succeeded,
	}
	for _, r := range orc.Results() {
		if r.Status == model.StatusFailed {
			doc.Failed = append(doc.Failed, r.Index+1)
		}
	}
	if final.Failed > 0 {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("%d steps have no analysis text", final.Failed))
	}
	return output.Print(doc)
}

func jobFromFlags(cmd *cobra.Command) (model.CaptureJob, error) {
	name, _ := cmd.Flags().GetString("name")
	count, _ := cmd.Flags().GetInt("count")
	interval, _ := cmd.Flags().GetDuration("interval")
	keySpec, _ := cmd.Flags().GetString("key")
	clickSpec, _ := cmd.Flags().GetString("click")

	region, err := regionFromFlags(cmd)
	if err != nil {
		return model.CaptureJob{}, err
	}

	var next model.NextAction
	switch {
	case keySpec != "" && clickSpec != "":
		return model.CaptureJob{}, fmt.Errorf("--key and --click are mutually exclusive")
	case keySpec != "":
		code, mods, err := ParseKeySpec(keySpec)
		if err != nil {
			return model.CaptureJob{}, err
		}
		next = model.NextAction{Kind: model.NextKeyPress, KeyCode: code, Modifiers: mods}
	case clickSpec != "":
		x, y, err := ParseClickSpec(clickSpec)
		if err != nil {
			return model.CaptureJob{}, err
		}
		next = model.NextAction{Kind: model.NextClick, X: x, Y: y, Button: model.MouseLeft}
	default:
		return model.CaptureJob{}, fmt.Errorf("one of --key or --click is required")
	}

	job := model.CaptureJob{
		Target:       region,
		Next:         next,
		CaptureCount: count,
		Interval:     interval,
		OutputName:   name,
	}
	return job, job.Validate()
}

// reportPhase prints run progress to stderr as the orchestrator moves
// through its phases.
func reportPhase(s orchestrator.State) {
	switch s.Phase {
	case orchestrator.PhasePreparing:
		fmt.Fprintln(os.Stderr, "starting in 3 seconds, switch to the target window")
	case orchestrator.PhaseCapturing:
		if s.Total > 0 {
			fmt.Fprintf(os.Stderr, "\rcapturing %d/%d", s.Current, s.Total)
			if s.Current == s.Total {
				fmt.Fprintln(os.Stderr)
			}
		}
	case orchestrator.PhaseProcessing:
		if s.Total > 0 {
			fmt.Fprintf(os.Stderr, "\ranalyzing %d/%d", s.Current, s.Total)
			if s.Current == s.Total {
				fmt.Fprintln(os.Stderr)
			}
		}
	case orchestrator.PhaseSaving:
		fmt.Fprintln(os.Stderr, "saving")
	}
}
