package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jengzang/lightcurve-viewer-go/internal/config"
)

var (
	// Version is the current version of the viewer
	Version = "0.1.0"

	configPath string
	serviceURL string
)

var rootCmd = &cobra.Command{
	Use:   "lightcurve-viewer",
	Short: "Interactive light-curve viewer backed by the source catalog",
	Long: `lightcurve-viewer serves interactive light-curve plots of catalog sources.

Each open plot is a websocket session: the browser streams hover, click and key
events, the server answers with marker restyles and the tooltip, and fetches the
cutout image of the selected measurement in the background.

Examples:
  lightcurve-viewer serve --config config.yaml
  lightcurve-viewer render 42 -o source-42.png --hide-flagged
  lightcurve-viewer stats 42`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", "", "Catalog API base URL (overrides config)")

	rootCmd.AddCommand(serveCmd, renderCmd, statsCmd)
}

// loadConfig reads the config file and applies the flags the user actually set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "service-url":
			cfg.ServiceURL = serviceURL
		case "port":
			cfg.Port = servePort
		}
	})
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
