// Command ledgerd wraps internal/engine behind a small CLI: open a
// ledger configured from a YAML file, print a report, or replay its log.
// It has no command that submits events.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/n3phtys/rustixbl/internal/aggregate"
	"github.com/n3phtys/rustixbl/internal/config"
	"github.com/n3phtys/rustixbl/internal/engine"
	"github.com/n3phtys/rustixbl/internal/notify"
	"github.com/n3phtys/rustixbl/internal/persistence"
)

var (
	configPath string
	jsonOutput bool
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"})
)

var rootCmd = &cobra.Command{
	Use:           "ledgerd",
	Short:         "Run and inspect a rustixbl kiosk ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "ledgerd.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON instead of formatted text")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(reloadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openEngine loads config.Config, opens an Engine against it, and
// returns it ready for read queries. Callers must Close it.
func openEngine() (*engine.Engine, error) {
	loader, err := config.New(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	engCfg := engine.Config{
		Aggregate: aggregate.Config{
			UsersPerPage:     cfg.UsersPerPage,
			UsersInTopUsers:  cfg.UsersInTopUsers,
			TopDrinksPerUser: cfg.TopDrinksPerUser,
		},
		UsePersistence: cfg.UsePersistence,
		PersistenceDir: cfg.PersistenceFilePath,
		BoltOptions: persistence.Options{
			MapSize:    cfg.BoltMapSizeBytes,
			MaxRetries: cfg.BoltMaxRetries,
		},
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return engine.Open(engCfg, logger, nil, notify.New(nil))
}
