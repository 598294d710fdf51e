package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vzahanych/aqhi-canada/internal/aqhi"
	"github.com/vzahanych/aqhi-canada/internal/config"
	"github.com/vzahanych/aqhi-canada/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrNotReady is returned until the tracked region has loaded once.
var ErrNotReady = errors.New("tracked region not loaded yet")

const refreshTimeout = 30 * time.Second

// Status describes the tracked region and its last refresh.
type Status struct {
	Province      string       `json:"province"`
	RegionID      string       `json:"region_id"`
	Language      string       `json:"language"`
	ClosestRegion *aqhi.Region `json:"closest_region,omitempty"`
	UpdatedAt     time.Time    `json:"updated_at"`
	LastRefresh   time.Time    `json:"last_refresh"`
	LastError     string       `json:"last_error,omitempty"`
}

// MetricsRecorder interface for recording feed metrics
type MetricsRecorder interface {
	RecordFeedFetch(ctx context.Context, operation string, success bool)
}

// Tracker keeps one aqhi.Client refreshed and answers one-off lookups.
type Tracker struct {
	cfg      config.AQHIConfig
	language aqhi.Language
	fetcher  *aqhi.Fetcher

	mutex       sync.RWMutex
	client      *aqhi.Client
	lastRefresh time.Time
	lastError   error
	refreshes   int64
	failures    int64

	scheduler *gocron.Scheduler
	logger    *zap.Logger
	tele      *telemetry.Telemetry
	metrics   MetricsRecorder
}

func NewTracker(cfg *config.AQHIConfig, logger *zap.Logger, tele *telemetry.Telemetry) (*Tracker, error) {
	lang, err := aqhi.ParseLanguage(cfg.Language)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		cfg:      *cfg,
		language: lang,
		logger:   logger.With(zap.String("component", "tracker")),
		tele:     tele,
	}
	t.fetcher = aqhi.NewFetcher(aqhi.FetcherConfig{
		Endpoints: aqhi.EndpointsFromBase(cfg.BaseURL),
		Timeout:   time.Duration(cfg.Timeout) * time.Second,
		UserAgent: cfg.UserAgent,
		Logger:    logger,
		Tracer:    tele.GetTracer(),
	})

	return t, nil
}

// SetMetricsRecorder sets the metrics recorder for the tracker
func (t *Tracker) SetMetricsRecorder(metrics MetricsRecorder) {
	t.metrics = metrics
}

// Start loads the tracked region and schedules periodic refreshes. The schedule
// is set up even when the first load fails, so a later refresh can recover.
func (t *Tracker) Start(ctx context.Context) error {
	err := t.Refresh(ctx)

	if t.cfg.RefreshInterval > 0 {
		t.scheduler = gocron.NewScheduler(time.UTC)
		interval := time.Duration(t.cfg.RefreshInterval) * time.Second

		_, schedErr := t.scheduler.Every(interval).SingletonMode().WaitForSchedule().Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			t.Refresh(ctx)
		})
		if schedErr != nil {
			return schedErr
		}

		t.scheduler.StartAsync()
		t.logger.Info("Scheduled AQHI refresh", zap.Duration("interval", interval))
	}

	return err
}

// Stop cancels future refreshes.
func (t *Tracker) Stop() {
	if t.scheduler != nil {
		t.scheduler.Stop()
	}
}

// Refresh updates the tracked client, building it first if it has never loaded.
func (t *Tracker) Refresh(ctx context.Context) error {
	tracer := t.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "tracker.Refresh")
	defer span.End()

	t.mutex.RLock()
	client := t.client
	t.mutex.RUnlock()

	var err error
	if client == nil {
		client, err = aqhi.New(ctx, t.clientOptions())
	} else {
		err = client.Update(ctx)
	}

	t.recordFetch(ctx, "refresh", err == nil)

	t.mutex.Lock()
	t.lastRefresh = time.Now().UTC()
	t.lastError = err
	t.refreshes++
	if err != nil {
		t.failures++
	} else {
		t.client = client
	}
	t.mutex.Unlock()

	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		t.tele.RecordError(ctx, err, nil)
		t.logger.Error("Failed to refresh tracked region", zap.Error(err))
		return err
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.String("province", client.Province()),
		attribute.String("region_id", client.RegionID()),
	)
	t.logger.Info("Tracked region refreshed",
		zap.String("province", client.Province()),
		zap.String("region_id", client.RegionID()),
		zap.String("timestamp", client.Metadata().Timestamp))

	return nil
}

func (t *Tracker) clientOptions() aqhi.Options {
	opts := aqhi.Options{
		Language:  t.language,
		Endpoints: t.fetcher.Endpoints(),
		Timeout:   time.Duration(t.cfg.Timeout) * time.Second,
		UserAgent: t.cfg.UserAgent,
		Logger:    t.logger,
		Tracer:    t.tele.GetTracer(),
	}

	if t.cfg.Province != "" && t.cfg.RegionID != "" {
		opts.Province = t.cfg.Province
		opts.RegionID = t.cfg.RegionID
	} else {
		opts.Coordinates = &aqhi.Coordinates{
			Latitude:  t.cfg.Latitude,
			Longitude: t.cfg.Longitude,
		}
	}

	return opts
}

// Current returns the tracked snapshot and its status.
func (t *Tracker) Current() (aqhi.Snapshot, Status, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	status := Status{
		Province:    t.cfg.Province,
		RegionID:    t.cfg.RegionID,
		Language:    string(t.language),
		LastRefresh: t.lastRefresh,
	}
	if t.lastError != nil {
		status.LastError = t.lastError.Error()
	}

	if t.client == nil {
		return aqhi.Snapshot{}, status, ErrNotReady
	}

	status.Province = t.client.Province()
	status.RegionID = t.client.RegionID()
	status.ClosestRegion = t.client.ClosestRegion()
	status.UpdatedAt = t.client.UpdatedAt()

	return t.client.Snapshot(), status, nil
}

// Ready reports whether the tracked region has loaded at least once.
func (t *Tracker) Ready() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.client != nil
}

// Lookup fetches a fresh snapshot for any region. An empty language uses the
// tracker's language.
func (t *Tracker) Lookup(ctx context.Context, province, regionID, language string) (*aqhi.Snapshot, error) {
	lang := t.language
	if language != "" {
		var err error
		if lang, err = aqhi.ParseLanguage(language); err != nil {
			return nil, err
		}
	}

	snap, err := t.fetcher.Snapshot(ctx, province, regionID, lang)
	t.recordFetch(ctx, "snapshot", err == nil)
	return snap, err
}

func (t *Tracker) Regions(ctx context.Context) ([]aqhi.Region, error) {
	regions, err := t.fetcher.Regions(ctx)
	t.recordFetch(ctx, "regions", err == nil)
	return regions, err
}

func (t *Tracker) Nearest(ctx context.Context, lat, lon float64) (aqhi.Region, error) {
	region, err := t.fetcher.Resolve(ctx, aqhi.Coordinates{Latitude: lat, Longitude: lon})
	t.recordFetch(ctx, "resolve", err == nil)
	return region, err
}

func (t *Tracker) recordFetch(ctx context.Context, operation string, success bool) {
	if t.metrics != nil {
		t.metrics.RecordFeedFetch(ctx, operation, success)
	}
}

func (t *Tracker) GetStats() map[string]interface{} {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	stats := map[string]interface{}{
		"ready":            t.client != nil,
		"language":         string(t.language),
		"refresh_interval": (time.Duration(t.cfg.RefreshInterval) * time.Second).String(),
		"refreshes":        t.refreshes,
		"failures":         t.failures,
	}
	if t.client != nil {
		stats["region"] = t.client.Province() + "/" + t.client.RegionID()
	}
	return stats
}
