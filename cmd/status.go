package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/markdavies/harvest-toggl-sync/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which upstream credentials are configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		status := cfg.Status()
		fmt.Printf("Harvest configured: %s\n", yesNo(status.HarvestConfigured))
		fmt.Printf("Toggl configured:   %s\n", yesNo(status.TogglConfigured))
		return nil
	},
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no (missing credentials)"
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
