package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "chunkstore",
	Short: "Ephemeral disk chunk store tooling",
	Long:  "Tooling for exercising quota-bounded chunk store directories.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/chunkstore/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "store root directory (default: scratch dir under the system temp dir)")
	rootCmd.PersistentFlags().String("max-space", "", "store capacity, e.g. 1GiB")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("max_space", rootCmd.PersistentFlags().Lookup("max-space"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CHUNKSTORE")
	viper.AutomaticEnv()
	viper.SetDefault("max_space", "256MiB")

	viper.ReadInConfig()
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "chunkstore")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "chunkstore")
	}
	return ".chunkstore"
}
