package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paper2gal/paper2gal/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage paper2gal configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a commented default configuration to ./config.yaml.

The API key field references the DEEPSEEK_API_KEY environment variable
rather than storing the secret in the file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if cfgFile != "" {
			path = cfgFile
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, remove it first", path)
		}

		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
