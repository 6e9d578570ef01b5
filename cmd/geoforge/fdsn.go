package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/fdsn"
)

func newFetchEventCmd() *cobra.Command {
	var (
		eventID   string
		lat, lon  float64
		timeStr   string
		mag       float64
		stations  []string
		networks  string
		channels  string
		minRadius float64
		maxRadius float64
		output    string
		baseURL   string
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "fetch-event",
		Short: "download event waveforms from FDSN web services",
		RunE: func(cmd *cobra.Command, args []string) error {
			if eventID == "" && timeStr == "" {
				return fmt.Errorf("either --event-id or --lat/--lon/--time is required")
			}

			opts := fdsn.FetchOptions{
				EventID:   eventID,
				Lat:       lat,
				Lon:       lon,
				Mag:       mag,
				Stations:  stations,
				Networks:  networks,
				Channels:  channels,
				MinRadius: minRadius,
				MaxRadius: maxRadius,
				OutputDir: output,
			}
			if timeStr != "" {
				t, err := time.Parse(time.RFC3339, timeStr)
				if err != nil {
					return fmt.Errorf("bad --time %q: %w", timeStr, err)
				}
				opts.Time = t
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			client := fdsn.New(baseURL)
			paths, err := client.FetchEvent(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Printf("fetched %d waveform files:\n", len(paths))
			for _, p := range paths {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&eventID, "event-id", "", "FDSN event identifier")
	f.Float64Var(&lat, "lat", 0, "event latitude (with --time)")
	f.Float64Var(&lon, "lon", 0, "event longitude (with --time)")
	f.StringVar(&timeStr, "time", "", "event origin time (RFC3339)")
	f.Float64Var(&mag, "mag", 0, "minimum magnitude for the event search")
	f.StringSliceVar(&stations, "stations", nil, "explicit NET.STA list, skips the station search")
	f.StringVar(&networks, "networks", "IU,II", "network codes")
	f.StringVar(&channels, "channels", "BHZ", "channel codes")
	f.Float64Var(&minRadius, "min-radius", 10, "minimum station distance (degrees)")
	f.Float64Var(&maxRadius, "max-radius", 90, "maximum station distance (degrees)")
	f.StringVar(&output, "output", "waveforms", "output directory")
	f.StringVar(&baseURL, "base-url", "https://service.iris.edu", "FDSN service base URL")
	f.DurationVar(&timeout, "timeout", 5*time.Minute, "overall request timeout")
	return cmd
}
