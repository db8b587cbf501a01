package cli

import (
	"errors"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("shmpaper")
		viper.SetConfigType("toml")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "shmpaper"))
		viper.AddConfigPath("/etc/xdg/shmpaper")
	}

	viper.SetDefault("display", "")
	viper.SetDefault("shell", "layer")
	viper.SetDefault("width", 320)
	viper.SetDefault("height", 240)
	viper.SetDefault("layer", "top")
	viper.SetDefault("namespace", "shmpaper")
	viper.SetDefault("anchor", "top,bottom,left,right")
	viper.SetDefault("exclusive_zone", 0)
	viper.SetDefault("margin", []int{0})
	viper.SetDefault("keyboard_interactivity", "on_demand")
	viper.SetDefault("title", "shmpaper")
	viper.SetDefault("app_id", "shmpaper")
	viper.SetDefault("stop_key", 1)
	viper.SetDefault("debug", false)

	viper.SetEnvPrefix("shmpaper")
	viper.AutomaticEnv() // SHMPAPER_WIDTH and friends

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			cobra.CheckErr(err)
		}
		log.Debug("No config file found, using defaults")
	}

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
}
