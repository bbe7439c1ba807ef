package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/plantbygpt/plantbygpt/internal/backup"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore a full backup archive (journal plus photos)",
	}
	cmd.AddCommand(newBackupExportCmd())
	cmd.AddCommand(newBackupImportCmd())
	return cmd
}

func newBackupExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, done, err := openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			var buf bytes.Buffer
			report, err := j.ExportBackup(cmd.Context(), &buf)
			if err != nil {
				return err
			}
			if out == "" {
				out = j.BackupFileName()
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			logWarnings(report.Warnings)
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written: %s (%d photos, %d skipped)\n", out, report.Archived, len(report.Skipped))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Archive path (defaults to <App>-backup-<stamp>.zip)")
	return cmd
}

func newBackupImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the journal with a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			j, done, err := openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			report, err := j.ImportBackup(cmd.Context(), data)
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

func logWarnings(ws []backup.Warning) {
	for _, w := range ws {
		log.Warn().Str("kind", string(w.Kind)).Str("key", w.Key).Msg(w.Message)
	}
}
