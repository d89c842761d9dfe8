package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/markdavies/harvest-toggl-sync/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "harvest-toggl-sync",
	Short: "Sync time entries from Harvest into Toggl Track.",
	Long: `harvest-toggl-sync fetches time entries from Harvest, lets you review and
edit them in a table UI, and imports them into a Toggl workspace with
per-project mapping, duplicate detection, and rate-limited submission.

Credentials come from the environment:
  HARVEST_ACCESS_TOKEN, HARVEST_ACCOUNT_ID, TOGGL_API_TOKEN
`,
	Example: `
  # Check which credentials are configured
  harvest-toggl-sync status

  # Start the API server on the default port
  harvest-toggl-sync serve

  # Export a month of Harvest entries to Excel
  harvest-toggl-sync export --from 2024-01-01 --to 2024-01-31 -o entries.xlsx
`,
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
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.harvest-toggl-sync.yaml, then ./.harvest-toggl-sync.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".harvest-toggl-sync")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// A config file is optional; env vars alone are the common setup.
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "read config %s: %v\n", cfgFile, err)
	}
}
