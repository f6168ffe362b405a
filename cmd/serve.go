package cmd

import (
	"github.com/chrisdamba/menuboard/internal/dashboard"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard",
	Long: `serve starts the web dashboard: a JSON API over per-visitor menu sessions, a live
order feed on /ws, Prometheus metrics on /metrics and a greeting page on /hello.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, out, err := openBackends(cmd.Context())
		if err != nil {
			return err
		}
		return dashboard.NewServer(cfg, store, out).Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Address the dashboard listens on")
	cobra.CheckErr(viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr")))
	rootCmd.AddCommand(serveCmd)
}
