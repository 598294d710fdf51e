package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/aqhi-canada/internal/aqhi"
	"github.com/vzahanych/aqhi-canada/internal/config"
	"github.com/vzahanych/aqhi-canada/pkg/logger"
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
  <region>FCKTB</region>
  <dateStamp><UTCStamp>20241016150000</UTCStamp></dateStamp>
  <airQualityHealthIndex>2.7</airQualityHealthIndex>
</conditionAirQuality>`

const testForecast = `<forecastAirQuality>
  <dateStamp><UTCStamp>20241016140000</UTCStamp></dateStamp>
  <forecastGroup>
    <forecast>
      <period lang="EN" forecastName="Today">Today</period>
      <airQualityHealthIndex>3</airQualityHealthIndex>
    </forecast>
  </forecastGroup>
</forecastAirQuality>`

// setupCommand points the package globals at a local feed and runs args
// without the root pre-run, which would read config from disk.
func setupCommand(t *testing.T) {
	t.Helper()

	bodies := map[string]string{
		"/air_quality/doc/AQHI_XML_File_List.xml":                                 testRegionList,
		"/air_quality/aqhi/ont/observation/realtime/xml/AQ_OBS_FCKTB_CURRENT.xml": testObservation,
		"/air_quality/aqhi/ont/forecast/realtime/xml/AQ_FCST_FCKTB_CURRENT.xml":   testForecast,
	}
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(feed.Close)

	cfg := config.NewDefaultConfig()
	cfg.AQHI.BaseURL = feed.URL
	config.SetConfig(cfg)

	log = &logger.Logger{Logger: zaptest.NewLogger(t)}
	tele = nil
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFetchByRegion(t *testing.T) {
	setupCommand(t)

	out, err := run(t, fetchCmd(), "--province", "ont", "--region", "FCKTB")
	require.NoError(t, err)

	var got fetchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ont", got.Province)
	assert.Equal(t, "FCKTB", got.RegionID)
	assert.Nil(t, got.ClosestRegion)
	require.NotNil(t, got.Conditions["aqhi"].Value)
	assert.Equal(t, "2.7", *got.Conditions["aqhi"].Value)
	require.Len(t, got.DailyForecasts, 1)
	assert.Equal(t, "20241016140000", got.ForecastTime)
}

func TestFetchByCoordinates(t *testing.T) {
	setupCommand(t)

	out, err := run(t, fetchCmd(), "--lat", "45.40", "--lon", "-75.70")
	require.NoError(t, err)

	var got fetchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.ClosestRegion)
	assert.Equal(t, "Ottawa", got.ClosestRegion.Name)
	assert.Equal(t, "FCKTB", got.RegionID)
}

func TestFetchUnknownRegion(t *testing.T) {
	setupCommand(t)

	_, err := run(t, fetchCmd(), "--province", "ont", "--region", "NOPE")
	require.Error(t, err)
	assert.True(t, aqhi.IsTransport(err))
}

func TestRegions(t *testing.T) {
	setupCommand(t)

	out, err := run(t, regionsCmd())
	require.NoError(t, err)

	var regions []aqhi.Region
	require.NoError(t, json.Unmarshal([]byte(out), &regions))
	assert.Len(t, regions, 2)

	out, err = run(t, regionsCmd(), "--lat", "43.7", "--lon", "-79.4")
	require.NoError(t, err)

	var nearest aqhi.Region
	require.NoError(t, json.Unmarshal([]byte(out), &nearest))
	assert.Equal(t, "FEVNT", nearest.ID)
}
