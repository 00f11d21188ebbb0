package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logLevel string // log verbosity level

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "kanban-sim",
	Short: "Day-stepped kanban flow simulator",
	Long: "kanban-sim replays a board definition through a WIP-limited pipeline,\n" +
		"once for a trace or thousands of times for a completion-date distribution.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up persistent flags and the viper config layer.
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warning", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().String("config", "", "config file (default .kanban-sim.yaml)")
}

// initConfig loads defaults from a config file and the environment.
// Flags set explicitly on the command line win over config values.
func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".kanban-sim")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("KANBAN_SIM")
	viper.AutomaticEnv()

	viper.SetDefault("seed", int64(42))
	viper.SetDefault("trials", 100)
	viper.SetDefault("workers", 1)
	viper.SetDefault("max_days", 0)

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// intSetting resolves an int option: explicit flag first, then config/env.
func intSetting(cmd *cobra.Command, flag, key string, flagValue int) int {
	if cmd.Flags().Changed(flag) {
		return flagValue
	}
	return viper.GetInt(key)
}

// int64Setting resolves an int64 option: explicit flag first, then config/env.
func int64Setting(cmd *cobra.Command, flag, key string, flagValue int64) int64 {
	if cmd.Flags().Changed(flag) {
		return flagValue
	}
	return viper.GetInt64(key)
}
