package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/typesteps/typesteps/internal/app"
	"github.com/typesteps/typesteps/internal/config"
	"github.com/typesteps/typesteps/internal/logger"
	"github.com/typesteps/typesteps/internal/services"
	"github.com/typesteps/typesteps/internal/ui/tabs/dashboard"
	"github.com/typesteps/typesteps/internal/ui/tabs/insights"
	"github.com/typesteps/typesteps/internal/ui/tabs/settings"
	"github.com/typesteps/typesteps/internal/version"
)

var (
	databasePath string
	cfg          *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "typesteps",
	Short: "typesteps - keystroke activity tracker",
	Long: `typesteps counts keystrokes per day, hour, application and project, tracks
progress toward a daily goal and shows streaks, flow and long-range patterns
in a terminal dashboard.

Counts only. Key contents are never recorded.`,
	Version:           version.GetVersion(),
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "", "SQLite database path (overrides DATABASE_PATH)")
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if databasePath != "" {
		loaded.DatabasePath = databasePath
	}
	cfg = loaded

	// Subcommands log to stderr; the dashboard redirects to a file.
	logger.Configure(cmd.ErrOrStderr(), logger.ParseLevel(cfg.LogLevel))
	return nil
}

// openManager opens the store without background services.
func openManager() (*services.Manager, error) {
	mgr, err := services.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return mgr, nil
}

func runDashboard(_ *cobra.Command, _ []string) error {
	logFile, err := logger.OpenFile(cfg.LogPath)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger.Configure(logFile, logger.ParseLevel(cfg.LogLevel))
	logger.Info("starting dashboard", "version", version.GetVersion(), "database", cfg.DatabasePath)

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			logger.Error("error closing services", "error", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	state := model.GetState()
	model.SetTabs([]app.Tab{
		dashboard.New(state, svcManager),
		insights.New(state, svcManager),
		settings.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		if _, ok := <-sigChan; ok {
			p.Send(tea.Quit())
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
