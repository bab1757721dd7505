package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jengzang/lightcurve-viewer-go/internal/catalog"
	"github.com/jengzang/lightcurve-viewer-go/internal/service"
)

var (
	renderOutput      string
	renderHideFlagged bool
	renderWidth       int
	renderHeight      int
)

var renderCmd = &cobra.Command{
	Use:   "render <source-id>",
	Short: "Render the light curve of a source to a PNG file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id < 0 {
			return fmt.Errorf("invalid source id %q", args[0])
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		client := catalog.NewClient(catalog.Config{BaseURL: cfg.ServiceURL, Timeout: cfg.FetchTimeout})
		svc := service.NewLightcurveService(client, nil)

		out := renderOutput
		if out == "" {
			out = fmt.Sprintf("source-%d.png", id)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := svc.RenderPNG(cmd.Context(), id, renderHideFlagged, renderWidth, renderHeight, f); err != nil {
			f.Close()
			os.Remove(out)
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file (default source-<id>.png)")
	renderCmd.Flags().BoolVar(&renderHideFlagged, "hide-flagged", false, "Leave flagged measurements out of the plot")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "Image width in pixels (default from the plot layout)")
	renderCmd.Flags().IntVar(&renderHeight, "height", 0, "Image height in pixels (default from the plot layout)")
}
