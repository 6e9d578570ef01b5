// Package fdsn is a minimal client for FDSN web services: event and
// station queries in text format and raw miniSEED waveform downloads.
package fdsn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/geoforge/internal/logger"
)

// DefaultBaseURL is the IRIS/EarthScope service root.
const DefaultBaseURL = "https://service.iris.edu"

// ErrNoData maps HTTP 204 from the services.
var ErrNoData = errors.New("fdsn: no data for query")

const timeLayout = "2006-01-02T15:04:05"

// Client talks to one FDSN service root.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	log        *slog.Logger
}

// New returns a client for the given service root, or the IRIS default
// when baseURL is empty.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		log:        logger.ForComponent("fdsn"),
	}
}

// Event is one row of an event service text response.
type Event struct {
	ID      string
	Time    time.Time
	Lat     float64
	Lon     float64
	Depth   float64 // km
	Mag     float64
	MagType string
	Region  string
}

// EventQuery selects events; EventID wins over the other fields.
type EventQuery struct {
	EventID string
	Start   time.Time
	End     time.Time
	MinMag  float64
}

// Station is one row of a station service text response.
type Station struct {
	Network string
	Code    string
	Lat     float64
	Lon     float64
	Elev    float64
	Site    string
}

// StationQuery selects stations around a point.
type StationQuery struct {
	Networks  string // comma-separated codes
	Channel   string
	Lat, Lon  float64
	MinRadius float64 // degrees
	MaxRadius float64
	Time      time.Time
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	u := c.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNoContent:
		resp.Body.Close()
		return nil, ErrNoData
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("fdsn: %s: http %d", u, resp.StatusCode)
	}
	return resp, nil
}

// Events queries the event service.
func (c *Client) Events(ctx context.Context, q EventQuery) ([]Event, error) {
	params := url.Values{"format": {"text"}}
	if q.EventID != "" {
		params.Set("eventid", q.EventID)
	} else {
		if !q.Start.IsZero() {
			params.Set("starttime", q.Start.UTC().Format(timeLayout))
		}
		if !q.End.IsZero() {
			params.Set("endtime", q.End.UTC().Format(timeLayout))
		}
		if q.MinMag > 0 {
			params.Set("minmagnitude", strconv.FormatFloat(q.MinMag, 'f', -1, 64))
		}
	}

	resp, err := c.get(ctx, "/fdsnws/event/1/query", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseEvents(string(body))
}

// parseEvents decodes the pipe-separated event format:
// EventID|Time|Latitude|Longitude|Depth/km|...|MagType|Magnitude|MagAuthor|EventLocationName
func parseEvents(body string) ([]Event, error) {
	var events []Event
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Split(line, "|")
		if len(f) < 13 {
			return nil, fmt.Errorf("fdsn: short event row: %q", line)
		}
		t, err := parseTime(f[1])
		if err != nil {
			return nil, err
		}
		ev := Event{
			ID:      f[0],
			Time:    t,
			Lat:     atof(f[2]),
			Lon:     atof(f[3]),
			Depth:   atof(f[4]),
			MagType: f[9],
			Mag:     atof(f[10]),
			Region:  f[12],
		}
		events = append(events, ev)
	}
	return events, nil
}

// Stations queries the station service at station level and filters by
// great-circle distance from the query point.
func (c *Client) Stations(ctx context.Context, q StationQuery) ([]Station, error) {
	params := url.Values{"format": {"text"}, "level": {"station"}}
	if q.Networks != "" {
		params.Set("network", q.Networks)
	}
	if q.Channel != "" {
		params.Set("channel", q.Channel)
	}
	if !q.Time.IsZero() {
		params.Set("starttime", q.Time.UTC().Format(timeLayout))
		params.Set("endtime", q.Time.Add(time.Second).UTC().Format(timeLayout))
	}

	resp, err := c.get(ctx, "/fdsnws/station/1/query", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	all, err := parseStations(string(body))
	if err != nil {
		return nil, err
	}
	if q.MaxRadius <= 0 {
		return all, nil
	}
	var out []Station
	for _, s := range all {
		d := Degrees(q.Lat, q.Lon, s.Lat, s.Lon)
		if d >= q.MinRadius && d <= q.MaxRadius {
			out = append(out, s)
		}
	}
	return out, nil
}

// parseStations decodes Network|Station|Latitude|Longitude|Elevation|SiteName|StartTime|EndTime.
func parseStations(body string) ([]Station, error) {
	var stations []Station
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Split(line, "|")
		if len(f) < 6 {
			return nil, fmt.Errorf("fdsn: short station row: %q", line)
		}
		stations = append(stations, Station{
			Network: f[0],
			Code:    f[1],
			Lat:     atof(f[2]),
			Lon:     atof(f[3]),
			Elev:    atof(f[4]),
			Site:    f[5],
		})
	}
	return stations, nil
}

// Waveforms streams a dataselect response (raw miniSEED) to w.
func (c *Client) Waveforms(ctx context.Context, net, sta, loc, cha string, t0, t1 time.Time, w io.Writer) (int64, error) {
	if loc == "" {
		loc = "*"
	}
	params := url.Values{
		"network":   {net},
		"station":   {sta},
		"location":  {loc},
		"channel":   {cha},
		"starttime": {t0.UTC().Format(timeLayout)},
		"endtime":   {t1.UTC().Format(timeLayout)},
	}
	resp, err := c.get(ctx, "/fdsnws/dataselect/1/query", params)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return io.Copy(w, resp.Body)
}

// Degrees returns the great-circle distance in degrees between two
// points given in degrees.
func Degrees(lat1, lon1, lat2, lon2 float64) float64 {
	const d2r = math.Pi / 180
	p1, p2 := lat1*d2r, lat2*d2r
	dp := (lat2 - lat1) * d2r
	dl := (lon2 - lon1) * d2r
	a := math.Sin(dp/2)*math.Sin(dp/2) +
		math.Cos(p1)*math.Cos(p2)*math.Sin(dl/2)*math.Sin(dl/2)
	return 2 * math.Asin(math.Sqrt(a)) / d2r
}

// PTravelTime is a coarse linear P travel-time estimate for a distance
// in degrees.
func PTravelTime(deg float64) time.Duration {
	const kmPerDeg = 111.19
	const pVelocity = 8.0 // km/s
	return time.Duration(deg * kmPerDeg / pVelocity * float64(time.Second))
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, timeLayout, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fdsn: bad time %q", s)
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}
