// Package main provides the talent_pool CLI: the scoring API server and batch tooling.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/talent-pool/internal/config"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "talent_pool",
	Short:        "Candidate profile scoring service",
	Long:         "talent_pool computes 0-100 profile scores for job seekers, serves the recruiter talent pool API and runs score recompute batches.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON config file overriding environment settings")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadServiceConfig reads the environment and applies the --config file on top.
func loadServiceConfig() (*config.ServiceConfig, error) {
	cfg, err := config.NewServiceConfig()
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return cfg, nil
	}

	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := fileCfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyFile(fileCfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
