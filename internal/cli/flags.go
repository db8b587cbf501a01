package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

func RegisterFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/shmpaper/shmpaper.toml)")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().BoolP("installconfig", "i", false, "Install a default config file")
	rootCmd.PersistentFlags().Bool("show-config", false, "Dump resolved config")
	rootCmd.PersistentFlags().BoolP("background", "b", false, "Run as a daemon")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Print version")
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Print usage")

	rootCmd.PersistentFlags().String("display", "", "Wayland display to connect to (default is $WAYLAND_DISPLAY)")
	viper.BindPFlag("display", rootCmd.PersistentFlags().Lookup("display"))
	rootCmd.PersistentFlags().String("shell", "", "Window shell, layer or xdg")
	viper.BindPFlag("shell", rootCmd.PersistentFlags().Lookup("shell"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}
