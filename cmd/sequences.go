package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/autodoc-cli/internal/model"
	"github.com/mj1618/autodoc-cli/internal/output"
)

var sequencesCmd = &cobra.Command{
	Use:   "sequences",
	Short: "Manage recorded sequences",
}

var sequencesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sequences",
	RunE:  runSequencesList,
}

var sequencesShowCmd = &cobra.Command{
	Use:   "show <sequence>",
	Short: "Show the actions of a sequence",
	Args:  cobra.ExactArgs(1),
	RunE:  runSequencesShow,
}

var sequencesDeleteCmd = &cobra.Command{
	Use:   "delete <sequence>",
	Short: "Delete a sequence",
	Args:  cobra.ExactArgs(1),
	RunE:  runSequencesDelete,
}

func init() {
	rootCmd.AddCommand(sequencesCmd)
	sequencesCmd.AddCommand(sequencesListCmd)
	sequencesCmd.AddCommand(sequencesShowCmd)
	sequencesCmd.AddCommand(sequencesDeleteCmd)
}

func runSequencesList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	all, err := st.List()
	if err != nil {
		return err
	}
	result := output.ListResult{Sequences: []output.SequenceSummary{}}
	for _, seq := range all {
		result.Sequences = append(result.Sequences, output.SequenceSummary{
			Name:     seq.Name,
			Actions:  seq.ActionCount(),
			Duration: seq.TotalDuration().Seconds(),
			Created:  seq.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return output.Print(result)
}

func runSequencesShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	seq, err := st.Resolve(args[0])
	if err != nil {
		return err
	}

	type step struct {
		Step   int    `yaml:"step"   json:"step"`
		Action string `yaml:"action" json:"action"`
	}
	steps := make([]step, 0, len(seq.Actions))
	for i, a := range seq.Actions {
		steps = append(steps, step{Step: i + 1, Action: model.Describe(a)})
	}
	return output.Print(struct {
		Name    string `yaml:"name"    json:"name"`
		ID      string `yaml:"id"      json:"id"`
		Actions []step `yaml:"actions" json:"actions"`
	}{Name: seq.Name, ID: seq.ID, Actions: steps})
}

func runSequencesDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	seq, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	if err := st.Delete(seq.ID); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", seq.Name)
	return nil
}
