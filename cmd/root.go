package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrisdamba/menuboard/internal/menu"
	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/output"
	"github.com/chrisdamba/menuboard/internal/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *models.Config
)

var rootCmd = &cobra.Command{
	Use:   "menuboard",
	Short: "Manages a restaurant menu from the terminal or the browser",
	Long: `menuboard keeps a restaurant's menu: dishes by category, prices, dietary information
and availability. Orders can be taken and rated, statistics viewed, and the menu saved
to a local file or an S3 compatible bucket. Run without a subcommand for the
interactive console.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = models.LoadConfig(viper.GetViper(), cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		setLogLevel(cfg.LogLevel)
		if used := viper.ConfigFileUsed(); used != "" {
			log.Debug().Str("file", used).Msg("Using config file")
		}
		return nil
	},
	RunE: runConsole,
}

func init() {
	cobra.OnInitialize(initEnv)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./menuboard.yaml)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("data-file", "menu_data.json", "Name of the menu document in the store")
	flags.String("restaurant-name", models.DefaultRestaurantName, "Restaurant name for new menus")
	flags.String("output", "none", "Event destination: console, json, csv, parquet, kafka, postgres or none")
	flags.String("storage", "file", "Document store backend: file or s3")

	for key, flag := range map[string]string{
		"log_level":          "log-level",
		"data_file":          "data-file",
		"restaurant_name":    "restaurant-name",
		"output.destination": "output",
		"storage.backend":    "storage",
	} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}
}

// initEnv loads .env before the config is read so its values reach AutomaticEnv.
func initEnv() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	log.Logger = log.With().Caller().Logger()

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Error loading .env file")
	}
}

func setLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("level", level).Msg("Unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// openBackends builds the document store and the configured event destination.
// The destination is nil when events are not exported.
func openBackends(ctx context.Context) (storage.Store, output.Destination, error) {
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}
	out, err := output.New(ctx, cfg, store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s output: %w", cfg.Output.Destination, err)
	}
	return store, out, nil
}

func newCatalog() *menu.Catalog {
	catalog := menu.NewCatalog(cfg.RestaurantName)
	if cfg.Currency != "" {
		catalog.Currency = cfg.Currency
	}
	return catalog
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
