package cmd

import (
	"context"
	"fmt"

	"github.com/chrisdamba/menuboard/internal/menu"
	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/repositories"
	"github.com/chrisdamba/menuboard/internal/repositories/postgres"
	"github.com/chrisdamba/menuboard/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Copy the menu between the document store and Postgres",
}

var dbPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Write the saved menu into the menu_items table",
	RunE: func(cmd *cobra.Command, args []string) error {
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		keep, _ := cmd.Flags().GetBool("append")
		if batchSize < 1 {
			batchSize = 100
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
		return withRepository(ctx, func(repo repositories.MenuItemRepository) error {
			bar := newProgressBar(cmd.ErrOrStderr(), len(items), "Copying to Postgres")
			count, err := pushItems(ctx, repo, items, batchSize, keep, func(n int) { bar.Add(n) })
			if err != nil {
				return err
			}
			bar.Finish()
			log.Info().Int("pushed", len(items)).Int("rows", count).Msg("Menu pushed to Postgres")
			return nil
		})
	},
}

// pushItems copies items in batches inside one transaction and returns the row count
// after commit. A failed batch leaves the table as it was.
func pushItems(ctx context.Context, repo repositories.MenuItemRepository, items []*models.MenuItem, batchSize int, keep bool, progress func(int)) (int, error) {
	if err := repo.EnsureSchema(ctx); err != nil {
		return 0, fmt.Errorf("failed to create menu_items table: %w", err)
	}
	err := repo.WithTx(ctx, func(tx repositories.MenuItemRepository) error {
		if !keep {
			if err := tx.DeleteAll(ctx); err != nil {
				return err
			}
		}
		for start := 0; start < len(items); start += batchSize {
			end := start + batchSize
			if end > len(items) {
				end = len(items)
			}
			if err := tx.BulkCreate(ctx, items[start:end]); err != nil {
				return fmt.Errorf("failed to copy menu items: %w", err)
			}
			progress(end - start)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return repo.Count(ctx)
}

var dbPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Rebuild the saved menu from the menu_items table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return err
		}

		return withRepository(ctx, func(repo repositories.MenuItemRepository) error {
			items, err := repo.GetAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to read menu items: %w", err)
			}

			catalog := newCatalog()
			bar := newProgressBar(cmd.ErrOrStderr(), len(items), "Rebuilding menu")
			for _, item := range items {
				if err := catalog.Insert(item); err != nil {
					return err
				}
				bar.Add(1)
			}
			bar.Finish()

			if err := menu.SaveTo(ctx, store, cfg.DataFile, catalog); err != nil {
				return err
			}
			log.Info().Int("items", catalog.Len()).Str("location", store.Location(cfg.DataFile)).Msg("Menu pulled from Postgres")
			return nil
		})
	},
}

func withRepository(ctx context.Context, fn func(repositories.MenuItemRepository) error) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url is not configured")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer pool.Close()
	return fn(postgres.NewMenuItemRepository(pool))
}

func init() {
	dbPushCmd.Flags().Int("batch-size", 100, "Rows per COPY batch")
	dbPushCmd.Flags().Bool("append", false, "Keep existing rows instead of replacing them")
	dbCmd.AddCommand(dbPushCmd, dbPullCmd)
	rootCmd.AddCommand(dbCmd)
}
