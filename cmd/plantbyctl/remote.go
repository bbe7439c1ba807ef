package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/plantbygpt/plantbygpt/internal/remote"
)

var (
	apiURL  string
	timeout time.Duration
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Drive a running plantby-service",
	}
	defaultURL := os.Getenv("PLANTBY_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	cmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "Base URL of the journal service")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Request timeout")

	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore a backup through the service",
	}
	backupCmd.AddCommand(newRemoteExportCmd())
	backupCmd.AddCommand(newRemoteImportCmd())
	cmd.AddCommand(backupCmd)
	return cmd
}

func newRemoteExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download a backup archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			name, err := remote.New(apiURL, timeout).ExportBackup(cmd.Context(), &buf)
			if err != nil {
				return err
			}
			if out == "" {
				out = name
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written: %s (%d bytes)\n", out, buf.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Archive path (defaults to the name the service suggests)")
	return cmd
}

func newRemoteImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Upload a backup archive, replacing the service's journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			report, err := remote.New(apiURL, timeout).ImportBackup(cmd.Context(), data)
			if err != nil {
				return err
			}
			logWarnings(report.Warnings)
			fmt.Fprintf(cmd.OutOrStdout(), "Backup restored: version %d, %d photos, %d warnings\n",
				report.BackupVersion, len(report.Restored), len(report.Warnings))
			return nil
		},
	}
}
