package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Export or import the journal as editable JSON (no photos)",
	}
	cmd.AddCommand(newStateExportCmd())
	cmd.AddCommand(newStateImportCmd())
	return cmd
}

func newStateExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export-json",
		Short: "Print the journal as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, done, err := openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			data, err := j.ExportJSON(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "State written: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output path (stdout when empty)")
	return cmd
}

func newStateImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-json FILE",
		Short: "Replace the journal with a JSON export; photos are kept",
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

			if err := j.ImportJSON(cmd.Context(), data); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "State imported")
			return nil
		},
	}
}
