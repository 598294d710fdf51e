package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/aqhi-canada/internal/aqhi"
	"github.com/vzahanych/aqhi-canada/internal/config"
)

func regionsCmd() *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List monitored regions, or the one closest to --lat/--lon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig().AQHI

			fetcher := aqhi.NewFetcher(aqhi.FetcherConfig{
				Endpoints: aqhi.EndpointsFromBase(cfg.BaseURL),
				Timeout:   time.Duration(cfg.Timeout) * time.Second,
				UserAgent: cfg.UserAgent,
				Logger:    log.Logger,
				Tracer:    tele.GetTracer(),
			})

			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
				region, err := fetcher.Resolve(cmd.Context(), aqhi.Coordinates{Latitude: lat, Longitude: lon})
				if err != nil {
					return err
				}
				return printJSON(cmd, region)
			}

			regions, err := fetcher.Regions(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, regions)
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")

	return cmd
}
