package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"babycare-backend/config"
)

var flagConfig string

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var logger = log.New(os.Stdout, "babycare ", log.LstdFlags)

var rootCmd = &cobra.Command{
	Use:   "babycared",
	Short: "Family caregiving assistant backend",
	Long: `babycared tracks diapers, feedings, medication and appointments for a
household and pushes reminders to the caregivers' browsers.

Examples:
  babycared serve
  babycared migrate --config ./config/config.yaml
  babycared project 3`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load configuration from %s: %w", path, err)
		}
		logger.Printf("configuration loaded successfully from %s", path)
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to the YAML config")
}

// configPath picks the config file: --config, then $CONFIG_PATH, then the
// user's config directory, then ./config/config.yaml.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	userConfig := filepath.Join(xdg.ConfigHome, "babycare", "config.yaml")
	if _, err := os.Stat(userConfig); err == nil {
		return userConfig
	}
	return "./config/config.yaml" // Default path for local development
}
