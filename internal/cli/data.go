package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mart_inventory/internal/inventory"
)

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [file]",
		Short: "Write the whole store to a JSON backup file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "mart-backup-" + time.Now().Format("2006-01-02") + inventory.BackupExtension
			if len(args) == 1 {
				path = args[0]
			}
			return withSession(rootOpts, cmd, false, func(s *session) error {
				if err := writeFile(path, s.store.ExportBackup); err != nil {
					return err
				}
				s.out.Printf("Backup written to %s\n", path)
				return nil
			})
		},
	}
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the whole store with a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			snap, err := inventory.ParseBackup(f)
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, true, func(s *session) error {
				if err := s.store.ImportSnapshot(snap); err != nil {
					return err
				}
				s.out.Printf("Restored %d products, %d transactions\n", len(snap.Products), len(snap.Transactions))
				return nil
			})
		},
	}
}

// NewExportCSVCommand creates the export-csv command.
func NewExportCSVCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [file]",
		Short: "Export the catalog as CSV (\"-\" for stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "inventory.csv"
			if len(args) == 1 {
				path = args[0]
			}
			return withSession(rootOpts, cmd, false, func(s *session) error {
				if path == "-" {
					return s.store.WriteProductsCSV(cmd.OutOrStdout())
				}
				if err := writeFile(path, s.store.WriteProductsCSV); err != nil {
					return err
				}
				s.out.Printf("Catalog exported to %s\n", path)
				return nil
			})
		},
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
