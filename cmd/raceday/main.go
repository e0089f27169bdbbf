package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"raceday/cmd/raceday/ui"
	"raceday/internal/config"
	"raceday/internal/logging"
	"raceday/internal/race"
)

// Build metadata, set via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// rootCmd launches the race screen.
var rootCmd = &cobra.Command{
	Use:   "raceday",
	Short: "raceday - race two progress bars in your terminal",
	Long: `raceday animates a progress race between configured participants.

Each participant advances by its own increment after its own delay; the
race screen offers start/pause, reset, and a help overlay. Participants,
theme, and logging are read from a YAML config file (see "raceday config").`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRace()
	},
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("raceday %s (%s)\n", version, commit)
	},
}

// configCmd groups config file helpers.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the raceday config file",
}

// configInitCmd writes the default config file.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config already exists at %s", configPath)
		}
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", configPath)
		return nil
	},
}

// configShowCmd prints the effective configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		for i, p := range cfg.Race.Participants {
			name := p.Name
			if name == "" {
				name = fmt.Sprintf("Player %d", i+1)
			}
			fmt.Printf("%-12s max=%d increment=%d delay=%s initial=%d\n",
				name, p.MaxProgress, p.Increment, p.GetDelay(), p.InitialProgress)
		}
		fmt.Printf("theme=%s log_level=%s log_file=%s\n",
			cfg.UI.Theme, cfg.Logging.Level, cfg.Logging.File)
		return nil
	},
}

func runRace() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	participants, err := cfg.Participants()
	if err != nil {
		return err
	}

	controller, err := race.NewController(participants, logger.Named("race"))
	if err != nil {
		return err
	}
	defer controller.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Reload participant settings from disk whenever the config changes and
	// the race is idle. A running race keeps its current participants.
	watcher, err := config.NewWatcher(configPath, logger.Named("config"), func(next *config.Config) {
		if controller.Running() {
			logger.Info("config changed, race running, keeping current participants")
			return
		}
		replacements, err := next.Participants()
		if err != nil {
			logger.Warn("config changed but participants invalid", zap.Error(err))
			return
		}
		if err := controller.SetParticipants(replacements); err != nil {
			logger.Warn("config reload not applied", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("config watcher unavailable", zap.Error(err))
	} else {
		defer watcher.Stop()
	}

	styles := ui.NewStyles(ui.ThemeFor(cfg.UI.Theme))
	model := ui.NewRaceModel(ctx, controller, styles)

	logger.Info("starting race screen",
		zap.String("version", version),
		zap.Int("participants", len(participants)))

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("race screen failed: %w", err)
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "raceday.yaml", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(versionCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
