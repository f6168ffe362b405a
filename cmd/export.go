package cmd

import (
	"bytes"
	"fmt"

	"github.com/chrisdamba/menuboard/internal/menu"
	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/output"
	"github.com/chrisdamba/menuboard/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the saved menu as CSV or Parquet",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		target, _ := cmd.Flags().GetString("file")
		if target == "" {
			target = "menu." + format
		}

		ctx := cmd.Context()
		store, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		catalog, err := menu.LoadFrom(ctx, store, cfg.DataFile)
		if err != nil {
			return err
		}
		items := make([]*models.MenuItem, 0, catalog.Len())
		for _, e := range catalog.AllItems() {
			items = append(items, e.Item)
		}

		switch format {
		case "csv":
			var buf bytes.Buffer
			if err := output.ExportCSV(&buf, items); err != nil {
				return err
			}
			err = storage.WriteFile(ctx, store, target, buf.Bytes())
		case "parquet":
			fw, ferr := output.NewParquetFile(ctx, store, target)
			if ferr != nil {
				return ferr
			}
			err = output.ExportParquet(fw, items)
		default:
			return fmt.Errorf("unsupported export format: %s", format)
		}
		if err != nil {
			return fmt.Errorf("failed to export menu to %s: %w", store.Location(target), err)
		}

		log.Info().Int("items", len(items)).Str("location", store.Location(target)).Msg("Menu exported")
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "csv", "Export format: csv or parquet")
	exportCmd.Flags().String("file", "", "Name of the exported file (default menu.<format>)")
	rootCmd.AddCommand(exportCmd)
}
