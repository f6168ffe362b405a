package cmd

import (
	"github.com/chrisdamba/menuboard/internal/console"
	"github.com/chrisdamba/menuboard/internal/menu"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Run the interactive menu manager",
	RunE:  runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, out, err := openBackends(ctx)
	if err != nil {
		return err
	}

	var sink menu.EventSink
	if out != nil {
		sink = out
		defer func() {
			if err := out.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing event output")
			}
		}()
	}

	session := menu.NewSession(newCatalog(), sink)
	return console.New(session, store, cfg.DataFile, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
}
