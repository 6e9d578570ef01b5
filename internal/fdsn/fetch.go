package fdsn

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FetchOptions drives a full event download: resolve the event, find
// stations and save one miniSEED file per station.
type FetchOptions struct {
	EventID  string
	Lat, Lon float64
	Time     time.Time
	Mag      float64

	Stations  []string // explicit NET.STA list, overrides the search
	Networks  string
	Channels  string
	MinRadius float64 // degrees
	MaxRadius float64

	BeforeP   time.Duration
	AfterP    time.Duration
	OutputDir string
}

// FetchEvent downloads waveforms around the approximate P arrival for
// every selected station. Per-station failures are logged and skipped;
// it returns the paths written.
func (c *Client) FetchEvent(ctx context.Context, opts FetchOptions) ([]string, error) {
	if opts.Networks == "" {
		opts.Networks = "IU,II"
	}
	if opts.Channels == "" {
		opts.Channels = "BHZ"
	}
	if opts.MaxRadius == 0 {
		opts.MinRadius, opts.MaxRadius = 30, 90
	}
	if opts.BeforeP == 0 {
		opts.BeforeP = 60 * time.Second
	}
	if opts.AfterP == 0 {
		opts.AfterP = 600 * time.Second
	}

	// Resolve the event.
	name := opts.EventID
	if opts.EventID != "" {
		events, err := c.Events(ctx, EventQuery{EventID: opts.EventID})
		if err != nil {
			return nil, err
		}
		if len(events) == 0 {
			return nil, ErrNoData
		}
		ev := events[0]
		opts.Lat, opts.Lon, opts.Time, opts.Mag = ev.Lat, ev.Lon, ev.Time, ev.Mag
		c.log.Info("event resolved", "id", ev.ID, "mag", ev.Mag,
			"lat", ev.Lat, "lon", ev.Lon, "region", ev.Region)
	} else {
		if opts.Time.IsZero() {
			return nil, errors.New("fdsn: event id or lat/lon/time required")
		}
		name = "event"
	}

	// Resolve stations.
	var stations []Station
	if len(opts.Stations) > 0 {
		for _, s := range opts.Stations {
			parts := strings.SplitN(s, ".", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("fdsn: bad station %q, want NET.STA", s)
			}
			found, err := c.Stations(ctx, StationQuery{
				Networks: parts[0], Time: opts.Time,
			})
			if err != nil {
				return nil, err
			}
			for _, st := range found {
				if st.Code == parts[1] {
					stations = append(stations, st)
					break
				}
			}
		}
	} else {
		var err error
		stations, err = c.Stations(ctx, StationQuery{
			Networks:  opts.Networks,
			Channel:   firstField(opts.Channels),
			Lat:       opts.Lat,
			Lon:       opts.Lon,
			MinRadius: opts.MinRadius,
			MaxRadius: opts.MaxRadius,
			Time:      opts.Time,
		})
		if err != nil {
			return nil, err
		}
		c.log.Info("station search", "found", len(stations),
			"radius", fmt.Sprintf("%g-%g deg", opts.MinRadius, opts.MaxRadius))
	}
	if len(stations) == 0 {
		return nil, ErrNoData
	}

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return nil, err
		}
	}

	var saved []string
	for _, st := range stations {
		dist := Degrees(opts.Lat, opts.Lon, st.Lat, st.Lon)
		pArrival := opts.Time.Add(PTravelTime(dist))
		t0 := pArrival.Add(-opts.BeforeP)
		t1 := pArrival.Add(opts.AfterP)

		path := filepath.Join(opts.OutputDir,
			fmt.Sprintf("%s_M%.1f_%s.%s.mseed", name, opts.Mag, st.Network, st.Code))

		f, err := os.Create(path)
		if err != nil {
			return saved, err
		}
		n, err := c.Waveforms(ctx, st.Network, st.Code, "*", opts.Channels, t0, t1, f)
		f.Close()
		if err != nil {
			os.Remove(path)
			if errors.Is(err, ErrNoData) {
				c.log.Warn("no data", "station", st.Network+"."+st.Code)
				continue
			}
			if ctx.Err() != nil {
				return saved, ctx.Err()
			}
			c.log.Warn("fetch failed", "station", st.Network+"."+st.Code, "error", err)
			continue
		}
		c.log.Info("saved", "station", st.Network+"."+st.Code,
			"dist_deg", fmt.Sprintf("%.1f", dist), "bytes", n, "file", path)
		saved = append(saved, path)
	}
	return saved, nil
}

func firstField(csv string) string {
	if i := strings.IndexByte(csv, ','); i >= 0 {
		return csv[:i]
	}
	return csv
}
