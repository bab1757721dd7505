package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jengzang/lightcurve-viewer-go/internal/catalog"
	"github.com/jengzang/lightcurve-viewer-go/internal/service"
	"github.com/jengzang/lightcurve-viewer-go/internal/stats"
)

type bandReport struct {
	Band       string  `yaml:"band"`
	Points     int     `yaml:"points"`
	Flagged    int     `yaml:"flagged"`
	MedianFlux float64 `yaml:"median_flux"`
	MaxFlux    float64 `yaml:"max_flux"`

	Variability stats.Variability `yaml:"variability"`
}

type statsReport struct {
	SourceID   int64        `yaml:"source_id"`
	Badge      string       `yaml:"badge_band"`
	MedianFlux float64      `yaml:"median_flux"`
	MaxFlux    float64      `yaml:"max_flux"`
	Bands      []bandReport `yaml:"bands"`
}

var statsCmd = &cobra.Command{
	Use:   "stats <source-id>",
	Short: "Print the badge numbers and per-band statistics of a source",
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

		data, err := svc.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		badge, err := stats.Badge(data.Bands)
		if err != nil {
			return err
		}

		report := statsReport{
			SourceID:   id,
			Badge:      badge.BandName,
			MedianFlux: badge.MedianFlux,
			MaxFlux:    badge.MaxFlux,
		}
		for _, band := range data.Bands {
			r := bandReport{
				Band:       band.Label(),
				Points:     band.Len(),
				MedianFlux: stats.MedianFlux(band),

				Variability: stats.Variable(band),
			}
			r.MaxFlux, _ = stats.MaxFlux(band)
			for i := 0; i < band.Len(); i++ {
				if band.IsFlagged(i) {
					r.Flagged++
				}
			}
			report.Bands = append(report.Bands, r)
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(report)
	},
}
