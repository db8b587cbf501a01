package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/shmpaper/internal/cli/cmd/utils"
	"github.com/matjam/shmpaper/internal/ipc"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get shmpaper status",
		Long:  `Returns the window state, bound globals and outputs of the running shmpaper process.`,
		Run: func(cmd *cobra.Command, args []string) {
			response, err := ipc.SendStatus()
			if err != nil {
				log.Errorf("shmpaper does not appear to be running: %v", err)
				return
			}

			utils.PrintJSONColored(response)
		},
	}
}
