package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mj1618/autodoc-cli/internal/output"
	"github.com/mj1618/autodoc-cli/internal/platform"
	"github.com/mj1618/autodoc-cli/internal/record"
)

var recordCmd = &cobra.Command{
	Use:   "record <name>",
	Short: "Record desktop input as a replayable sequence",
	Long: `Record global mouse and keyboard input and classify it into a sequence of
high-level actions (clicks, drags, typed text, key chords, scrolls, delays).
Recording runs until you press Enter or Ctrl+C, then the sequence is saved.

Examples:
  autodoc record login-flow
  autodoc record export-report`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	name := args[0]

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}

	rec := record.New(provider.Events, provider.Permissions)
	if err := rec.Start(name); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Recording. Press Enter or Ctrl+C to stop.")

	// Stop on Enter or on SIGINT/SIGTERM, whichever comes first.
	done := make(chan struct{})
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		close(done)
	}()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-done:
	case <-sig:
	}

	seq, err := rec.Stop()
	if err != nil {
		return err
	}
	if err := st.Save(seq); err != nil {
		return err
	}

	return output.Print(output.SequenceSummary{
		Name:     seq.Name,
		Actions:  seq.ActionCount(),
		Duration: seq.TotalDuration().Seconds(),
		Created:  seq.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}
