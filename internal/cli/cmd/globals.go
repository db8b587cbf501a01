package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/shmpaper/internal/cli/cmd/utils"
	"github.com/matjam/shmpaper/internal/wayland"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewGlobalsCmd lists what the compositor advertises without creating a
// window.
func NewGlobalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "globals",
		Short: "List the globals the compositor advertises",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := wayland.Connect(viper.GetString("display"))
			if err != nil {
				return err
			}
			defer client.Close()

			globals, err := client.Discover(cmd.Context())
			if err != nil {
				return err
			}
			log.Infof("%d globals", len(globals))
			utils.PrintJSONColored(globals)
			return nil
		},
	}
}
