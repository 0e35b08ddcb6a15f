package cmd

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"jira-lite/internal/config"
	"jira-lite/internal/configservice"
	"jira-lite/internal/issuestorage/filesystem"
	"jira-lite/internal/issueservice"

	"github.com/spf13/cobra"
)

// AppProvider lazily initializes the App on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Config captured from flags before Execute()
	Path       string
	JSONOutput bool
	Verbose    bool
	Out        io.Writer
	Err        io.Writer
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	return p.app, p.err
}

// NewTestProvider creates a provider pre-initialized with the given App.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{
		app: app,
		Out: app.Out,
		Err: app.Err,
	}
}

func (p *AppProvider) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p *AppProvider) errOut() io.Writer {
	if p.Err == nil {
		return os.Stderr
	}
	return p.Err
}

func (p *AppProvider) init() (*App, error) {
	paths, err := configservice.ResolvePaths(p.Path)
	if err != nil {
		return nil, err
	}
	store, err := configservice.Open(paths)
	if err != nil {
		return nil, err
	}

	logger := p.newLogger(store)
	if err := config.Validate(store); err != nil {
		logger.Warn("ignoring invalid config", "file", paths.ConfigFile, "err", err)
	}

	dbPath := config.DBPath(paths.ConfigDir, store)
	logger.Debug("resolved repository", "config", paths.ConfigFile, "db", dbPath)

	return &App{
		Repo:        issueservice.New(filesystem.New(dbPath), logger),
		ConfigStore: store,
		ConfigDir:   paths.ConfigDir,
		DBPath:      dbPath,
		Logger:      logger,
		Out:         p.out(),
		Err:         p.errOut(),
		JSON:        p.JSONOutput || config.JSONFromEnv(),
	}, nil
}

func (p *AppProvider) newLogger(store config.Store) *slog.Logger {
	level := config.LogLevel(store)
	if p.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(p.errOut(), &slog.HandlerOptions{Level: level}))
}

// Execute runs the CLI.
func Execute() error {
	provider := &AppProvider{
		Out: os.Stdout,
		Err: os.Stderr,
	}
	return explain(newRootCmd(provider).Execute())
}

// newRootCmd creates the root command with all subcommands.
func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jl",
		Short: "A tiny epic/story tracker backed by one JSON file",
		Long: `jira-lite tracks epics and the stories under them.

Everything lives in a single JSON database (by default .jira/db.json).
Epics and stories share one ID counter and IDs are never reused.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&provider.JSONOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&provider.Path, "path", "", "Path to repo or .jira directory (default: search from cwd)")
	rootCmd.PersistentFlags().BoolVarP(&provider.Verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(newInitCmd(provider))
	rootCmd.AddCommand(newEpicCmd(provider))
	rootCmd.AddCommand(newStoryCmd(provider))
	rootCmd.AddCommand(newShowCmd(provider))
	rootCmd.AddCommand(newDoctorCmd(provider))
	rootCmd.AddCommand(newConfigCmd(provider))

	return rootCmd
}
