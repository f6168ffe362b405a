package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/chrisdamba/menuboard/internal/dashboard"
	"github.com/spf13/cobra"
)

var helloCmd = &cobra.Command{
	Use:   "hello",
	Short: "Print the dashboard greeting",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		title := lipgloss.NewRenderer(out).NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
		fmt.Fprintln(out, title.Render(dashboard.HelloTitle))
		fmt.Fprintln(out, dashboard.HelloMessage)
		fmt.Fprintf(out, "Run `menuboard serve` and open /hello to see it in the browser.\n")
	},
}

func init() {
	rootCmd.AddCommand(helloCmd)
}
