package main

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"
	"github.com/vasiliy-maslov/foodtruck-service/internal/events"
	"github.com/vasiliy-maslov/foodtruck-service/internal/export"
)

var (
	exportAccount string
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an account's order lines to Parquet (local path or s3://bucket/key)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		accountID, err := uuid.FromString(exportAccount)
		if err != nil {
			return fmt.Errorf("invalid --account %q: %w", exportAccount, err)
		}
		_, _, toS3, err := export.ParseDestination(exportOut)
		if err != nil {
			return err
		}

		pg, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer pg.Close()

		services, err := newServices(pg, events.NewNoop(), cfg)
		if err != nil {
			return err
		}

		var uploader export.Uploader
		if toS3 {
			client, err := export.NewS3Client(ctx, cfg.Export.S3Region)
			if err != nil {
				return err
			}
			uploader = client
		}

		n, err := export.NewExporter(services.Orders, uploader).ExportOrders(ctx, accountID, exportOut)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", n, exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportAccount, "account", "", "account id to export")
	exportCmd.Flags().StringVar(&exportOut, "out", "orders.parquet", "destination file path or s3://bucket/key")
	_ = exportCmd.MarkFlagRequired("account")
}
