package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"jira-lite/internal/issuestorage"

	"github.com/spf13/cobra"
)

// StoryJSON is a story with its ID, as printed by "jl show --json".
type StoryJSON struct {
	ID          uint32 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// EpicJSON is an epic with its stories expanded in list order.
type EpicJSON struct {
	ID          uint32      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Stories     []StoryJSON `json:"stories"`
}

func newShowCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [epic-id]",
		Short: "Show all epics, or one epic with its stories",
		Long: `Without an argument, list every epic in ID order with its status
and story count. With an epic ID, show that epic and its stories in the
order they were created.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			state, err := app.Repo.ReadState(cmd.Context())
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return showBoard(app, state)
			}

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			epic, ok := state.Epics[id]
			if !ok {
				return fmt.Errorf("epic %d: %w", id, issuestorage.ErrNotFound)
			}
			return showEpic(app, state, id, epic)
		},
	}

	return cmd
}

func toEpicJSON(state *issuestorage.State, id uint32, epic *issuestorage.Epic) EpicJSON {
	out := EpicJSON{
		ID:          id,
		Name:        epic.Name,
		Description: epic.Description,
		Status:      epic.Status.Display(),
		Stories:     make([]StoryJSON, 0, len(epic.Stories)),
	}
	for _, sid := range epic.Stories {
		story, ok := state.Stories[sid]
		if !ok {
			continue
		}
		out.Stories = append(out.Stories, StoryJSON{
			ID:          sid,
			Name:        story.Name,
			Description: story.Description,
			Status:      story.Status.Display(),
		})
	}
	return out
}

func showBoard(app *App, state *issuestorage.State) error {
	ids := issuestorage.SortedIDs(state.Epics)

	if app.JSON {
		out := make([]EpicJSON, 0, len(ids))
		for _, id := range ids {
			out = append(out, toEpicJSON(state, id, state.Epics[id]))
		}
		return json.NewEncoder(app.Out).Encode(out)
	}

	if len(ids) == 0 {
		fmt.Fprintln(app.Out, "No epics. Create one with 'jl epic create <name>'.")
		return nil
	}
	for _, id := range ids {
		epic := state.Epics[id]
		fmt.Fprintf(app.Out, "%4d  %s %s (%s)\n",
			id, app.statusCell(epic.Status), epic.Name, plural(len(epic.Stories), "story", "stories"))
	}
	return nil
}

func showEpic(app *App, state *issuestorage.State, id uint32, epic *issuestorage.Epic) error {
	if app.JSON {
		return json.NewEncoder(app.Out).Encode(toEpicJSON(state, id, epic))
	}

	title := fmt.Sprintf("%d: %s", id, epic.Name)
	fmt.Fprintln(app.Out, app.Heading(title))
	fmt.Fprintln(app.Out, strings.Repeat("-", len(title)))
	fmt.Fprintf(app.Out, "Status: %s\n", app.StatusLabel(epic.Status))
	if epic.Description != "" {
		fmt.Fprintf(app.Out, "\nDescription:\n%s\n", epic.Description)
	}

	if len(epic.Stories) == 0 {
		fmt.Fprintln(app.Out, "\nNo stories.")
		return nil
	}
	fmt.Fprintf(app.Out, "\nStories (%d):\n", len(epic.Stories))
	for _, sid := range epic.Stories {
		story, ok := state.Stories[sid]
		if !ok {
			fmt.Fprintf(app.Out, "  %4d  %s\n", sid, app.WarnColor("(missing, run 'jl doctor')"))
			continue
		}
		fmt.Fprintf(app.Out, "  %4d  %s %s\n", sid, app.statusCell(story.Status), story.Name)
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
