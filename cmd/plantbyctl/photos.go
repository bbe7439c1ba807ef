package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newPhotosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Manage stored photos",
	}
	cmd.AddCommand(newPhotosAddCmd())
	cmd.AddCommand(newPhotosGetCmd())
	cmd.AddCommand(newPhotosRmCmd())
	cmd.AddCommand(newPhotosLsCmd())
	return cmd
}

func newPhotosAddCmd() *cobra.Command {
	var mimeType string

	cmd := &cobra.Command{
		Use:   "add FILE",
		Short: "Store a photo and print its key",
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

			h, err := j.SavePhoto(cmd.Context(), data, mimeType)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", h.Key, h.Type, h.Size)
			return nil
		},
	}
	cmd.Flags().StringVar(&mimeType, "type", "", "MIME type (sniffed from the bytes when empty)")
	return cmd
}

func newPhotosGetCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Write a stored photo to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, done, err := openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			b, _, err := j.Photo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, b.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Photo written: %s (%s, %d bytes)\n", out, b.Type, len(b.Data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output path (required)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newPhotosRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm KEY",
		Short: "Delete a photo and every reference to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, done, err := openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			if err := j.DeletePhoto(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Photo deleted: %s\n", args[0])
			return nil
		},
	}
}

func newPhotosLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stored photo keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, done, err := openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			keys, err := j.ListPhotos(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}
