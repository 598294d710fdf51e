package tracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/aqhi-canada/internal/aqhi"
	"github.com/vzahanych/aqhi-canada/internal/config"
	"github.com/vzahanych/aqhi-canada/pkg/telemetry"
	"go.uber.org/zap/zaptest"
)

const testRegionList = `<dataFile>
  <EC_administrativeZone abreviation="ont">
    <regionList>
      <region cgndb="FEVNT" latitude="43.6529" longitude="-79.3849"><nameEn>Toronto Downtown</nameEn></region>
      <region cgndb="FCKTB" latitude="45.4215" longitude="-75.6972"><nameEn>Ottawa</nameEn></region>
    </regionList>
  </EC_administrativeZone>
</dataFile>`

const testObservation = `<conditionAirQuality>
  <region>FEVNT</region>
  <dateStamp><UTCStamp>20241016150000</UTCStamp></dateStamp>
  <airQualityHealthIndex>2.8</airQualityHealthIndex>
</conditionAirQuality>`

const testForecast = `<?xml version="1.0" encoding="ISO-8859-1"?>
<forecastAirQuality>
  <dateStamp><UTCStamp>20241016140000</UTCStamp></dateStamp>
  <forecastGroup>
    <forecast>
      <period lang="EN" forecastName="Today">Today</period>
      <period lang="FR" forecastName="Aujourd'hui">Aujourd'hui</period>
      <airQualityHealthIndex>3</airQualityHealthIndex>
    </forecast>
  </forecastGroup>
  <hourlyForecastGroup>
    <hourlyForecast UTCTime="202410161500">3</hourlyForecast>
  </hourlyForecastGroup>
</forecastAirQuality>`

type recordedFetch struct {
	operation string
	success   bool
}

type fakeMetrics struct {
	mu      sync.Mutex
	fetches []recordedFetch
}

func (m *fakeMetrics) RecordFeedFetch(ctx context.Context, operation string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches = append(m.fetches, recordedFetch{operation, success})
}

func newFeed(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/air_quality/doc/AQHI_XML_File_List.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testRegionList))
	})
	mux.HandleFunc("/air_quality/aqhi/ont/observation/realtime/xml/AQ_OBS_FEVNT_CURRENT.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testObservation))
	})
	mux.HandleFunc("/air_quality/aqhi/ont/forecast/realtime/xml/AQ_FCST_FEVNT_CURRENT.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testForecast))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func createTestTracker(t *testing.T, baseURL string, mutate func(*config.AQHIConfig)) *Tracker {
	t.Helper()

	cfg := config.NewDefaultConfig().AQHI
	cfg.BaseURL = baseURL
	cfg.RefreshInterval = 0
	if mutate != nil {
		mutate(&cfg)
	}

	tr, err := NewTracker(&cfg, zaptest.NewLogger(t), &telemetry.Telemetry{})
	require.NoError(t, err)
	return tr
}

func TestNewTracker_InvalidLanguage(t *testing.T) {
	cfg := config.NewDefaultConfig().AQHI
	cfg.Language = "latin"

	_, err := NewTracker(&cfg, zaptest.NewLogger(t), nil)
	assert.ErrorIs(t, err, aqhi.ErrUnsupportedLanguage)
}

func TestTracker_NotReadyBeforeStart(t *testing.T) {
	tr := createTestTracker(t, "http://127.0.0.1:1", nil)

	_, status, err := tr.Current()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, "english", status.Language)
	assert.False(t, tr.Ready())
	assert.Equal(t, false, tr.GetStats()["ready"])
}

func TestTracker_StartByCoordinates(t *testing.T) {
	feed := newFeed(t)
	metrics := &fakeMetrics{}
	tr := createTestTracker(t, feed.URL, nil)
	tr.SetMetricsRecorder(metrics)

	require.NoError(t, tr.Start(context.Background()))
	defer tr.Stop()

	snap, status, err := tr.Current()
	require.NoError(t, err)
	assert.Equal(t, "ont", status.Province)
	assert.Equal(t, "FEVNT", status.RegionID)
	require.NotNil(t, status.ClosestRegion)
	assert.Equal(t, "Toronto Downtown", status.ClosestRegion.Name)
	assert.Empty(t, status.LastError)
	assert.Equal(t, "2.8", *snap.Conditions["aqhi"].Value)
	assert.True(t, tr.Ready())
	assert.Equal(t, "ont/FEVNT", tr.GetStats()["region"])

	require.NoError(t, tr.Refresh(context.Background()))
	assert.Equal(t, int64(2), tr.GetStats()["refreshes"])
	assert.Equal(t, []recordedFetch{{"refresh", true}, {"refresh", true}}, metrics.fetches)
}

func TestTracker_StartByRegion(t *testing.T) {
	feed := newFeed(t)
	tr := createTestTracker(t, feed.URL, func(cfg *config.AQHIConfig) {
		cfg.Province = "ont"
		cfg.RegionID = "FEVNT"
		cfg.Language = "french"
		cfg.RefreshInterval = 3600
	})

	require.NoError(t, tr.Start(context.Background()))
	defer tr.Stop()

	snap, status, err := tr.Current()
	require.NoError(t, err)
	assert.Nil(t, status.ClosestRegion)
	assert.Equal(t, "Aujourd'hui", *snap.DailyForecasts[0].Period)
}

func TestTracker_StartFailureIsRecorded(t *testing.T) {
	feed := newFeed(t)
	tr := createTestTracker(t, feed.URL, func(cfg *config.AQHIConfig) {
		cfg.Province = "qc"
		cfg.RegionID = "MISSING"
	})

	err := tr.Start(context.Background())
	require.Error(t, err)
	assert.True(t, aqhi.IsTransport(err))

	_, status, err := tr.Current()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.NotEmpty(t, status.LastError)
	assert.Equal(t, int64(1), tr.GetStats()["failures"])
}

func TestTracker_Lookups(t *testing.T) {
	feed := newFeed(t)
	metrics := &fakeMetrics{}
	tr := createTestTracker(t, feed.URL, nil)
	tr.SetMetricsRecorder(metrics)
	ctx := context.Background()

	regions, err := tr.Regions(ctx)
	require.NoError(t, err)
	assert.Len(t, regions, 2)

	region, err := tr.Nearest(ctx, 45.3, -75.8)
	require.NoError(t, err)
	assert.Equal(t, "FCKTB", region.ID)

	snap, err := tr.Lookup(ctx, "ont", "FEVNT", "")
	require.NoError(t, err)
	assert.Equal(t, "Air Quality Health Index", snap.Conditions["aqhi"].Label)

	snap, err = tr.Lookup(ctx, "ont", "FEVNT", "french")
	require.NoError(t, err)
	assert.Equal(t, "Cote air santé", snap.Conditions["aqhi"].Label)

	_, err = tr.Lookup(ctx, "ont", "FEVNT", "dutch")
	assert.ErrorIs(t, err, aqhi.ErrUnsupportedLanguage)

	assert.Equal(t, []recordedFetch{
		{"regions", true},
		{"resolve", true},
		{"snapshot", true},
		{"snapshot", true},
	}, metrics.fetches)
}
