// Package cmd implements the jl command-line interface.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"jira-lite/internal/config"
	"jira-lite/internal/issuestorage"
	"jira-lite/internal/issueservice"

	"golang.org/x/term"
)

// App holds application state shared across commands.
type App struct {
	Repo        *issueservice.Repository
	ConfigStore config.Store
	ConfigDir   string // path to .jira directory
	DBPath      string
	Logger      *slog.Logger
	Out         io.Writer
	Err         io.Writer
	JSON        bool // output in JSON format
}

// isTerminal reports whether Out is an interactive terminal.
func (a *App) isTerminal() bool {
	f, ok := a.Out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// StatusLabel renders a status in its CLI form, colored on a terminal.
func (a *App) StatusLabel(s issuestorage.Status) string {
	if !a.isTerminal() {
		return s.Display()
	}
	return statusStyle(s).Render(s.Display())
}

// statusCell is StatusLabel padded to a fixed column width.
func (a *App) statusCell(s issuestorage.Status) string {
	cell := fmt.Sprintf("%-12s", s.Display())
	if !a.isTerminal() {
		return cell
	}
	return statusStyle(s).Render(cell)
}

// SuccessColor renders s in green on a terminal.
func (a *App) SuccessColor(s string) string {
	if !a.isTerminal() {
		return s
	}
	return successStyle.Render(s)
}

// WarnColor renders s in amber on a terminal.
func (a *App) WarnColor(s string) string {
	if !a.isTerminal() {
		return s
	}
	return warnStyle.Render(s)
}

// Heading renders s in bold on a terminal.
func (a *App) Heading(s string) string {
	if !a.isTerminal() {
		return s
	}
	return headingStyle.Render(s)
}
