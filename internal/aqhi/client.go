package aqhi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Options configures New. Either Province and RegionID, or Coordinates, must be set.
type Options struct {
	Province    string
	RegionID    string
	Coordinates *Coordinates
	Language    Language

	Endpoints  Endpoints
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	Logger     *zap.Logger
	Tracer     trace.Tracer
}

// Client holds the latest snapshot for one region.
type Client struct {
	fetcher  *Fetcher
	logger   *zap.Logger
	language Language

	province      string
	regionID      string
	closestRegion *Region

	mutex     sync.RWMutex
	snapshot  *Snapshot
	updatedAt time.Time
}

// New builds a client and loads its first snapshot before returning.
// When Province or RegionID is missing, the region closest to Coordinates is used.
func New(ctx context.Context, opts Options) (*Client, error) {
	lang, err := ParseLanguage(string(opts.Language))
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		fetcher: NewFetcher(FetcherConfig{
			Endpoints:  opts.Endpoints,
			HTTPClient: opts.HTTPClient,
			Timeout:    opts.Timeout,
			UserAgent:  opts.UserAgent,
			Logger:     logger,
			Tracer:     opts.Tracer,
		}),
		logger:   logger,
		language: lang,
		snapshot: newSnapshot(),
	}

	switch {
	case opts.Province != "" && opts.RegionID != "":
		c.province = opts.Province
		c.regionID = opts.RegionID
	case opts.Coordinates != nil:
		region, err := c.fetcher.Resolve(ctx, *opts.Coordinates)
		if err != nil {
			return nil, err
		}
		c.closestRegion = &region
		c.province = region.Abbreviation
		c.regionID = region.ID
	default:
		return nil, ErrNoRegion
	}

	c.logger = logger.With(
		zap.String("province", c.province),
		zap.String("region_id", c.regionID))

	if err := c.Update(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// Update fetches both documents again. The snapshot is replaced only when both
// were fetched and parsed; on error the previous snapshot is kept untouched.
func (c *Client) Update(ctx context.Context) error {
	snap, err := c.fetcher.Snapshot(ctx, c.province, c.regionID, c.language)
	if err != nil {
		c.logger.Warn("AQHI update failed", zap.Error(err))
		return err
	}

	c.mutex.Lock()
	c.snapshot = snap
	c.updatedAt = time.Now().UTC()
	c.mutex.Unlock()

	c.logger.Debug("AQHI updated",
		zap.String("timestamp", snap.Metadata.Timestamp),
		zap.Int("daily_count", len(snap.DailyForecasts)),
		zap.Int("hourly_count", len(snap.HourlyForecasts)))

	return nil
}

// Snapshot returns a copy of the current data.
func (c *Client) Snapshot() Snapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.snapshot.Clone()
}

func (c *Client) Metadata() Metadata {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.snapshot.Metadata
}

func (c *Client) Conditions() map[string]Condition {
	return c.Snapshot().Conditions
}

func (c *Client) ForecastTime() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.snapshot.ForecastTime
}

func (c *Client) DailyForecasts() []DailyForecast {
	return c.Snapshot().DailyForecasts
}

func (c *Client) HourlyForecasts() []HourlyForecast {
	return c.Snapshot().HourlyForecasts
}

// UpdatedAt is the time of the last successful Update.
func (c *Client) UpdatedAt() time.Time {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.updatedAt
}

func (c *Client) Province() string { return c.province }

func (c *Client) RegionID() string { return c.regionID }

func (c *Client) Language() Language { return c.language }

// ClosestRegion is the resolved region when the client was built from coordinates, nil otherwise.
func (c *Client) ClosestRegion() *Region {
	if c.closestRegion == nil {
		return nil
	}
	r := *c.closestRegion
	return &r
}

// Fetcher exposes the underlying fetcher for one-off lookups.
func (c *Client) Fetcher() *Fetcher {
	return c.fetcher
}
