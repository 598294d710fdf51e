package aqhi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "http://dd.weather.gc.ca"
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "aqhi-canada-go/1.0"
)

// Endpoints holds the feed URLs. Observation and Forecast are format strings
// taking the zone abbreviation and the region id.
type Endpoints struct {
	RegionList  string
	Observation string
	Forecast    string
}

// EndpointsFromBase builds the feed URLs for a dd.weather.gc.ca compatible host
func EndpointsFromBase(base string) Endpoints {
	base = strings.TrimRight(base, "/")
	return Endpoints{
		RegionList:  base + "/air_quality/doc/AQHI_XML_File_List.xml",
		Observation: base + "/air_quality/aqhi/%s/observation/realtime/xml/AQ_OBS_%s_CURRENT.xml",
		Forecast:    base + "/air_quality/aqhi/%s/forecast/realtime/xml/AQ_FCST_%s_CURRENT.xml",
	}
}

// DefaultEndpoints are the public Environment Canada feeds.
var DefaultEndpoints = EndpointsFromBase(DefaultBaseURL)

func (e Endpoints) ObservationURL(abbreviation, id string) string {
	return fmt.Sprintf(e.Observation, abbreviation, id)
}

func (e Endpoints) ForecastURL(abbreviation, id string) string {
	return fmt.Sprintf(e.Forecast, abbreviation, id)
}

// FetcherConfig configures a Fetcher. Zero values fall back to the defaults.
type FetcherConfig struct {
	Endpoints  Endpoints
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	Logger     *zap.Logger
	Tracer     trace.Tracer
}

// Fetcher downloads and parses the AQHI documents. It keeps no state between calls.
type Fetcher struct {
	endpoints  Endpoints
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	f := &Fetcher{
		endpoints:  cfg.Endpoints,
		httpClient: cfg.HTTPClient,
		userAgent:  cfg.UserAgent,
		logger:     cfg.Logger,
		tracer:     cfg.Tracer,
	}

	if f.endpoints == (Endpoints{}) {
		f.endpoints = DefaultEndpoints
	}
	if f.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		f.httpClient = &http.Client{Timeout: timeout}
	}
	if f.userAgent == "" {
		f.userAgent = DefaultUserAgent
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	if f.tracer == nil {
		f.tracer = noop.NewTracerProvider().Tracer("noop")
	}

	return f
}

func (f *Fetcher) Endpoints() Endpoints {
	return f.endpoints
}

// Regions downloads and parses the region list.
func (f *Fetcher) Regions(ctx context.Context) ([]Region, error) {
	ctx, span := f.tracer.Start(ctx, "aqhi.Regions")
	defer span.End()

	raw, err := f.get(ctx, f.endpoints.RegionList)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	regions, err := ParseRegionList(raw)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("regions_count", len(regions)))
	f.logger.Debug("Region list loaded", zap.Int("regions_count", len(regions)))

	return regions, nil
}

// Resolve returns the region whose station is closest to c.
func (f *Fetcher) Resolve(ctx context.Context, c Coordinates) (Region, error) {
	ctx, span := f.tracer.Start(ctx, "aqhi.Resolve")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("lat", c.Latitude),
		attribute.Float64("lon", c.Longitude),
	)

	regions, err := f.Regions(ctx)
	if err != nil {
		recordSpanError(span, err)
		return Region{}, err
	}

	region, err := Nearest(regions, c)
	if err != nil {
		recordSpanError(span, err)
		return Region{}, err
	}

	span.SetAttributes(attribute.String("region", region.Key()))
	f.logger.Info("Resolved closest region",
		zap.Float64("lat", c.Latitude),
		zap.Float64("lon", c.Longitude),
		zap.String("region", region.Key()),
		zap.String("name", region.Name),
		zap.Float64("distance_km", Distance(c, region.Coordinates())))

	return region, nil
}

// Snapshot fetches the observation, then the forecast, for one region.
func (f *Fetcher) Snapshot(ctx context.Context, abbreviation, id string, lang Language) (*Snapshot, error) {
	ctx, span := f.tracer.Start(ctx, "aqhi.Snapshot")
	defer span.End()

	span.SetAttributes(
		attribute.String("abbreviation", abbreviation),
		attribute.String("region_id", id),
		attribute.String("language", string(lang)),
	)

	if !lang.Supported() {
		err := fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
		recordSpanError(span, err)
		return nil, err
	}

	snap := newSnapshot()

	raw, err := f.get(ctx, f.endpoints.ObservationURL(abbreviation, id))
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if err := ParseObservation(raw, lang, snap); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	raw, err = f.get(ctx, f.endpoints.ForecastURL(abbreviation, id))
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if err := ParseForecast(raw, lang, snap); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("daily_count", len(snap.DailyForecasts)),
		attribute.Int("hourly_count", len(snap.HourlyForecasts)),
	)

	return snap, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	ctx, span := f.tracer.Start(ctx, "aqhi.get")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Warn("Feed request failed", zap.String("url", url), zap.Error(err))
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Warn("Feed request returned unexpected status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	f.logger.Debug("Feed fetched",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("latency", time.Since(start)))

	return body, nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("success", false))
}
