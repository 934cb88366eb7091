package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/frahmantamala/property-management/pkg/logger"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data to spreadsheets",
}

var exportPaymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Export an owner's payments to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportPayments(cmd.Context())
	},
}

var (
	exportOwnerID int64
	exportOut     string
)

func exportPayments(ctx context.Context) error {
	if exportOwnerID <= 0 {
		return fmt.Errorf("--owner is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	config, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	dbs, err := initDB(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbs.Close()

	pipeline := newNotificationPipeline(config.Notification, lg)
	defer pipeline.Close(ctx, lg)
	components := newPaymentComponents(config, dbs, pipeline.Notifier, lg)

	export, err := components.Service.Export(ctx, exportOwnerID)
	if err != nil {
		return fmt.Errorf("export payments: %w", err)
	}

	out := exportOut
	if out == "" {
		out = export.FileName
	}
	if err := os.WriteFile(out, export.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	abs, _ := filepath.Abs(out)
	lg.Info("payments exported", "owner_id", exportOwnerID, "file", abs, "bytes", len(export.Content))
	return nil
}

func init() {
	exportPaymentsCmd.Flags().Int64Var(&exportOwnerID, "owner", 0, "Owner user id")
	exportPaymentsCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (defaults to the generated file name)")

	exportCmd.AddCommand(exportPaymentsCmd)
	rootCmd.AddCommand(exportCmd)
}
