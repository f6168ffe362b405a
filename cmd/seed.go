package cmd

import (
	"fmt"
	"io"

	"github.com/chrisdamba/menuboard/internal/factories"
	"github.com/chrisdamba/menuboard/internal/menu"
	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a demo menu and save it to the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		perCategory, _ := cmd.Flags().GetInt("per-category")
		seed, _ := cmd.Flags().GetInt64("seed")
		name, _ := cmd.Flags().GetString("name")
		if perCategory < 1 {
			return fmt.Errorf("--per-category must be at least 1, got %d", perCategory)
		}

		ctx := cmd.Context()
		store, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return err
		}

		bar := newProgressBar(cmd.ErrOrStderr(), perCategory*len(models.Categories), "Generating dishes")
		factory := factories.NewMenuItemFactory(seed)
		factory.OnItem = func() { bar.Add(1) }

		catalog, err := factory.CreateCatalog(name, perCategory)
		if err != nil {
			return err
		}
		bar.Finish()
		if cfg.Currency != "" {
			catalog.Currency = cfg.Currency
		}

		if err := menu.SaveTo(ctx, store, cfg.DataFile, catalog); err != nil {
			return err
		}
		log.Info().
			Str("restaurant", catalog.RestaurantName).
			Int("items", catalog.Len()).
			Str("location", store.Location(cfg.DataFile)).
			Msg("Demo menu saved")
		return nil
	},
}

func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
}

func init() {
	seedCmd.Flags().Int("per-category", 5, "Dishes to generate per category")
	seedCmd.Flags().Int64("seed", 42, "Random seed for the generated menu")
	seedCmd.Flags().String("name", "", "Restaurant name (a random one when empty)")
	rootCmd.AddCommand(seedCmd)
}
