package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DoctorResult represents the output of the doctor command.
type DoctorResult struct {
	Problems []string `json:"problems"`
	Fixed    bool     `json:"fixed"`
}

func newDoctorCmd(provider *AppProvider) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check for and fix broken epic/story references",
		Long: `Check the database for broken references between epics and stories.

Checks for:
- Epics listing a story that does not exist
- Stories listed twice, or under more than one epic
- Stories not listed under any epic
- IDs above last_item_id

With --fix, the first listing of a story wins, orphaned stories are
deleted and last_item_id is raised to the highest ID in use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			problems, err := app.Repo.Doctor(cmd.Context(), fix)
			if err != nil {
				return fmt.Errorf("doctor failed: %w", err)
			}
			if problems == nil {
				problems = []string{}
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(DoctorResult{Problems: problems, Fixed: fix})
			}

			if len(problems) == 0 {
				fmt.Fprintln(app.Out, "No problems found.")
				return nil
			}

			if fix {
				fmt.Fprintf(app.Out, "Fixed %d problems:\n", len(problems))
			} else {
				fmt.Fprintf(app.Out, "Found %d problems:\n", len(problems))
			}
			for _, problem := range problems {
				fmt.Fprintf(app.Out, "  - %s\n", app.WarnColor(problem))
			}
			if !fix {
				fmt.Fprintln(app.Out, "\nRun 'jl doctor --fix' to fix these issues.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Fix problems (default is check only)")

	return cmd
}
