package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/plantbygpt/plantbygpt/internal/config"
	"github.com/plantbygpt/plantbygpt/internal/factory"
	"github.com/plantbygpt/plantbygpt/internal/logger"
	"github.com/plantbygpt/plantbygpt/internal/services"
)

var (
	dataDir string
	debug   bool
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "plantbyctl",
		Short:         "Manage a PlantByGPT journal: backups, text exports and photos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if debug {
				level = "debug"
			}
			log.Logger = logger.NewConsole("plantbyctl", level)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Journal data directory (defaults to PLANTBY_DATA_DIR or ~/.plantbygpt)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newStateCmd())
	rootCmd.AddCommand(newPhotosCmd())
	rootCmd.AddCommand(newRemoteCmd())
	return rootCmd
}

// openJournal opens the locally configured store. The returned func closes it.
func openJournal(ctx context.Context) (*services.Journal, func(), error) {
	cfg, err := config.Load(func(c *config.Config) {
		if dataDir != "" {
			c.DataDir = dataDir
		}
	})
	if err != nil {
		return nil, nil, err
	}
	st, closeStore, err := factory.NewStore(ctx, cfg, log.Logger)
	if err != nil {
		return nil, nil, err
	}
	done := func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("store close failed")
		}
	}
	return services.NewJournal(st, cfg, log.Logger), done, nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
