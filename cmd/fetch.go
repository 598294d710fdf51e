package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/aqhi-canada/internal/aqhi"
	"github.com/vzahanych/aqhi-canada/internal/config"
	"go.uber.org/zap"
)

type fetchOptions struct {
	province string
	regionID string
	lat      float64
	lon      float64
	language string
}

type fetchOutput struct {
	Province      string       `json:"province"`
	RegionID      string       `json:"region_id"`
	ClosestRegion *aqhi.Region `json:"closest_region,omitempty"`
	aqhi.Snapshot
}

func fetchCmd() *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print the current AQHI snapshot for one region",
		Long: `Fetch the observation and forecast for a region and print them as JSON.
The region is given with --province and --region, or resolved from --lat and --lon.
Without flags the region from the configuration is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.province, "province", "p", "", "administrative zone abbreviation, e.g. ont")
	cmd.Flags().StringVarP(&opts.regionID, "region", "r", "", "region code, e.g. FEVNT")
	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "latitude used to resolve the closest region")
	cmd.Flags().Float64Var(&opts.lon, "lon", 0, "longitude used to resolve the closest region")
	cmd.Flags().StringVarP(&opts.language, "lang", "l", "", "english or french (default from config)")

	return cmd
}

func runFetch(cmd *cobra.Command, opts *fetchOptions) error {
	cfg := config.GetConfig().AQHI

	language := cfg.Language
	if opts.language != "" {
		language = opts.language
	}

	clientOpts := aqhi.Options{
		Language:  aqhi.Language(language),
		Endpoints: aqhi.EndpointsFromBase(cfg.BaseURL),
		Timeout:   time.Duration(cfg.Timeout) * time.Second,
		UserAgent: cfg.UserAgent,
		Logger:    log.Logger,
		Tracer:    tele.GetTracer(),
	}

	flags := cmd.Flags()
	switch {
	case opts.province != "" && opts.regionID != "":
		clientOpts.Province, clientOpts.RegionID = opts.province, opts.regionID
	case flags.Changed("lat") || flags.Changed("lon"):
		clientOpts.Coordinates = &aqhi.Coordinates{Latitude: opts.lat, Longitude: opts.lon}
	case cfg.Province != "" && cfg.RegionID != "":
		clientOpts.Province, clientOpts.RegionID = cfg.Province, cfg.RegionID
	default:
		clientOpts.Coordinates = &aqhi.Coordinates{Latitude: cfg.Latitude, Longitude: cfg.Longitude}
	}

	client, err := aqhi.New(cmd.Context(), clientOpts)
	if err != nil {
		log.Error("Failed to fetch AQHI", zap.Error(err))
		return err
	}

	out := fetchOutput{
		Province:      client.Province(),
		RegionID:      client.RegionID(),
		ClosestRegion: client.ClosestRegion(),
		Snapshot:      client.Snapshot(),
	}

	return printJSON(cmd, out)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
