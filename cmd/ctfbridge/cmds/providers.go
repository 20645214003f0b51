package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctfbridge/ctfbridge/internal/backend"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the providers this build knows",
	Run: func(*cobra.Command, []string) {
		for _, id := range backend.Providers() {
			fmt.Println(id)
		}
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
