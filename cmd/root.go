package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/portfolio-api/internal/config"
	"github.com/Tiliavir/portfolio-api/internal/logx"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio API – blogs, GitHub stats and Spotify top tracks over HTTP",
	Long: `portfolio serves the data behind a personal portfolio site: blog posts read
from a directory of text files, GitHub contribution stats, the owner's Spotify
top tracks and the static project/experience catalog.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(blogsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(initCmd)
}

// loadConfig reads the config and sets up logging from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	logx.Init(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
