package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:          "scssmigrate",
	Short:        "Stylesheet migration tool",
	Long:         "scssmigrate rewrites deprecated rgba() calls and reorders selector blocks so a stylesheet compiles without SASS deprecation warnings.",
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("plan", "p", "", "Migration plan file (YAML, JSON or TOML)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("plan", rootCmd.PersistentFlags().Lookup("plan"))
}

func initConfig() {
	viper.SetEnvPrefix("SCSSMIGRATE")
	viper.AutomaticEnv()
}
