/*
Copyright © 2025 Nathan Ollerenshaw <chrome@stupendous.net>
*/
package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/matjam/shmpaper"
	"github.com/matjam/shmpaper/internal/cli/cmd"
	"github.com/matjam/shmpaper/internal/cli/cmd/utils"
	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shmpaper",
	Short: "A pure Go Wayland client that presents a shared memory buffer",
	Long: `shmpaper connects to a Wayland compositor, maps a layer-shell overlay
(or an xdg toplevel), paints a gradient into a shared memory buffer and
keeps it on screen until you press the stop key or run "shmpaper stop".`,
	Run: func(c *cobra.Command, args []string) {
		if v, err := c.Flags().GetBool("show-config"); err == nil && v {
			log.Infof("Using config file: %v", viper.ConfigFileUsed())
			log.Infof("All settings:")
			utils.PrintJSONColored(viper.AllSettings())
			return
		}

		babyBlue := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
		yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
		green := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
		if v, err := c.Flags().GetBool("version"); err == nil && v {
			log.Infof("%v version %v © 2025 %v",
				babyBlue.Render("shmpaper"),
				green.Render(strings.Trim(shmpaper.Version, "\n\r ")),
				yellow.Render("Nathan Ollerenshaw"))
			return
		}

		if v, err := c.Flags().GetBool("installconfig"); err == nil && v {
			utils.InstallDefaultConfig()
			return
		}

		if v, err := c.Flags().GetBool("background"); err == nil && v && !daemon.WasReborn() {
			background()
			return
		}

		cmd.StartSession()
	},
}

// background re-executes shmpaper detached from the terminal. The child sees
// daemon.WasReborn and runs the session directly.
func background() {
	ctx := &daemon.Context{
		WorkDir: "/",
		Umask:   0o27,
		Env:     append(os.Environ(), "BACKGROUND_PROCESS=1"),
		Args:    os.Args,
	}

	child, err := ctx.Reborn()
	if err != nil {
		log.Fatalf("Failed to start in the background: %v", err)
	}
	if child != nil {
		log.Infof("shmpaper started in the background (PID %d)", child.Pid)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	RegisterFlags(rootCmd)

	rootCmd.AddCommand(cmd.NewStatusCmd())
	rootCmd.AddCommand(cmd.NewStopCmd())
	rootCmd.AddCommand(cmd.NewGlobalsCmd())
	rootCmd.AddCommand(cmd.NewGenManCmd(rootCmd))
}
