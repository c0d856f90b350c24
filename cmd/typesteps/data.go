package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetConfirmed bool

var exportCmd = &cobra.Command{
	Use:   "export [PATH]",
	Short: "Write a JSON backup of all statistics",
	Long:  `Write a versioned JSON backup. Without PATH, or with "-", the backup goes to stdout.`,
	Example: `  typesteps export backup.json
  typesteps export | gzip > backup.json.gz`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var exportCSVCmd = &cobra.Command{
	Use:   "export-csv PATH",
	Short: "Write daily totals as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportCSV,
}

var importCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Restore statistics from a JSON backup",
	Long: `Restore a backup written by "typesteps export". The backup is validated
completely before anything is replaced; an invalid file leaves the store untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all statistics (settings are kept)",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "Confirm deleting all statistics")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(exportCSVCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if len(args) == 0 || args[0] == "-" {
		return mgr.ExportTo(cmd.OutOrStdout())
	}
	if err := mgr.Export(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Backup written to %s\n", args[0])
	return nil
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if err := mgr.ExportCSV(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Daily totals written to %s\n", args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if err := mgr.Import(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored statistics from %s\n", args[0])
	return nil
}

var errResetNotConfirmed = errors.New("refusing to reset without --yes")

func runReset(cmd *cobra.Command, _ []string) error {
	if !resetConfirmed {
		return errResetNotConfirmed
	}

	mgr, err := openManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if err := mgr.Reset(); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "All statistics cleared")
	return nil
}
