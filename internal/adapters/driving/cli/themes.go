package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available CSS themes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if renderer == nil {
			return errors.New("renderer not configured")
		}
		for _, name := range renderer.Themes() {
			cmd.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themesCmd)
}
