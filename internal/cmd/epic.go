package cmd

import (
	"encoding/json"
	"fmt"

	"jira-lite/internal/issuestorage"

	"github.com/spf13/cobra"
)

// MutationResult is the JSON output of create, delete and status commands.
type MutationResult struct {
	ID     uint32 `json:"id"`
	Kind   string `json:"kind"`
	Action string `json:"action"`
	EpicID uint32 `json:"epic_id,omitempty"`
	Status string `json:"status,omitempty"`
}

func newEpicCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epic",
		Short: "Create, delete and update epics",
	}

	cmd.AddCommand(newEpicCreateCmd(provider))
	cmd.AddCommand(newEpicDeleteCmd(provider))
	cmd.AddCommand(newEpicStatusCmd(provider))

	return cmd
}

func newEpicCreateCmd(provider *AppProvider) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new epic",
		Long: `Create a new open epic and print its ID.

Examples:
  jl epic create "Checkout flow"
  jl epic create "Search" -d "Full-text search over products"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			id, err := app.Repo.CreateEpic(cmd.Context(), issuestorage.NewEpic(args[0], description))
			if err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(MutationResult{ID: id, Kind: "epic", Action: "created"})
			}
			fmt.Fprintln(app.Out, id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Epic description")

	return cmd
}

func newEpicDeleteCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <epic-id>",
		Short: "Delete an epic and all of its stories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := app.Repo.DeleteEpic(cmd.Context(), id); err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(MutationResult{ID: id, Kind: "epic", Action: "deleted"})
			}
			fmt.Fprintf(app.Out, "%s epic %d\n", app.SuccessColor("Deleted"), id)
			return nil
		},
	}

	return cmd
}

func newEpicStatusCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <epic-id> <status>",
		Short: "Set the status of an epic",
		Long: `Set the status of an epic. Any status may follow any other.

Statuses: open, in-progress, resolved, closed.

Examples:
  jl epic status 1 in-progress`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := issuestorage.ParseStatus(args[1])
			if err != nil {
				return err
			}

			if err := app.Repo.UpdateEpicStatus(cmd.Context(), id, status); err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(MutationResult{
					ID: id, Kind: "epic", Action: "updated", Status: status.Display(),
				})
			}
			fmt.Fprintf(app.Out, "Epic %d is now %s\n", id, app.StatusLabel(status))
			return nil
		},
	}

	return cmd
}
