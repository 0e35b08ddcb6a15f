package cmd

import (
	"encoding/json"
	"fmt"

	"jira-lite/internal/issuestorage"

	"github.com/spf13/cobra"
)

func newStoryCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Create, delete and update stories",
	}

	cmd.AddCommand(newStoryCreateCmd(provider))
	cmd.AddCommand(newStoryDeleteCmd(provider))
	cmd.AddCommand(newStoryStatusCmd(provider))

	return cmd
}

func newStoryCreateCmd(provider *AppProvider) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <epic-id> <name>",
		Short: "Create a story under an epic",
		Long: `Create a new open story, append it to the epic's story list and
print its ID. Fails without writing anything if the epic does not exist.

Examples:
  jl story create 1 "Pay with card"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			epicID, err := parseID(args[0])
			if err != nil {
				return err
			}

			id, err := app.Repo.CreateStory(cmd.Context(), issuestorage.NewStory(args[1], description), epicID)
			if err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(MutationResult{
					ID: id, Kind: "story", Action: "created", EpicID: epicID,
				})
			}
			fmt.Fprintln(app.Out, id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Story description")

	return cmd
}

func newStoryDeleteCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <epic-id> <story-id>",
		Short: "Delete a story from its epic",
		Long: `Delete a story. The story must be listed under the given epic.

Examples:
  jl story delete 1 4`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			epicID, err := parseID(args[0])
			if err != nil {
				return err
			}
			storyID, err := parseID(args[1])
			if err != nil {
				return err
			}

			if err := app.Repo.DeleteStory(cmd.Context(), epicID, storyID); err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(MutationResult{
					ID: storyID, Kind: "story", Action: "deleted", EpicID: epicID,
				})
			}
			fmt.Fprintf(app.Out, "%s story %d from epic %d\n", app.SuccessColor("Deleted"), storyID, epicID)
			return nil
		},
	}

	return cmd
}

func newStoryStatusCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <story-id> <status>",
		Short: "Set the status of a story",
		Long: `Set the status of a story. Any status may follow any other.

Statuses: open, in-progress, resolved, closed.`,
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

			if err := app.Repo.UpdateStoryStatus(cmd.Context(), id, status); err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(MutationResult{
					ID: id, Kind: "story", Action: "updated", Status: status.Display(),
				})
			}
			fmt.Fprintf(app.Out, "Story %d is now %s\n", id, app.StatusLabel(status))
			return nil
		},
	}

	return cmd
}
