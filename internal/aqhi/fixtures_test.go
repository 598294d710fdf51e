package aqhi

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const regionListXML = "\xef\xbb\xbf" + `<?xml version="1.0" encoding="UTF-8"?>
<dataFile xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <EC_administrativeZone abreviation="ont" zoneName_en="Ontario" zoneName_fr="Ontario">
    <regionList>
      <region cgndb="FEVNT" latitude="43.6529" longitude="-79.3849">
        <nameEn>Toronto Downtown</nameEn>
        <nameFr>Toronto centre-ville</nameFr>
      </region>
      <region cgndb="FCKTB" latitude="45.4215" longitude="-75.6972">
        <nameEn>Ottawa</nameEn>
        <nameFr>Ottawa</nameFr>
      </region>
    </regionList>
  </EC_administrativeZone>
  <EC_administrativeZone abreviation="pyr" zoneName_en="Pacific">
    <regionList>
      <region cgndb="DBKTD" latitude="49.2827" longitude="-123.1207">
        <nameEn>Metro Vancouver - NW</nameEn>
        <nameFr>Grand Vancouver - NO</nameFr>
      </region>
    </regionList>
  </EC_administrativeZone>
</dataFile>`

const observationXML = "\xef\xbb\xbf" + `<?xml version="1.0" encoding="UTF-8"?>
<conditionAirQuality>
  <region nameEn="Toronto Downtown" nameFr="Toronto centre-ville">FEVNT</region>
  <dateStamp name="aqhi_observation">
    <year>2024</year>
    <UTCStamp>20241016150000</UTCStamp>
  </dateStamp>
  <airQualityHealthIndex>3.4</airQualityHealthIndex>
</conditionAirQuality>`

const observationMissingIndexXML = `<?xml version="1.0" encoding="UTF-8"?>
<conditionAirQuality>
  <region>FEVNT</region>
  <dateStamp><UTCStamp>20241016160000</UTCStamp></dateStamp>
</conditionAirQuality>`

const forecastXML = `<?xml version="1.0" encoding="ISO-8859-1"?>
<forecastAirQuality>
  <region nameEn="Toronto Downtown">FEVNT</region>
  <dateStamp><UTCStamp>20241016140000</UTCStamp></dateStamp>
  <forecastGroup>
    <forecast periodID="1">
      <period lang="EN" forecastName="Today">Today</period>
      <period lang="FR" forecastName="Aujourd'hui">Aujourd'hui</period>
      <airQualityHealthIndex>4</airQualityHealthIndex>
    </forecast>
    <forecast periodID="2">
      <period lang="EN" forecastName="Tonight">Tonight</period>
      <period lang="FR" forecastName="Ce soir et cette nuit">Ce soir et cette nuit</period>
      <airQualityHealthIndex>3</airQualityHealthIndex>
    </forecast>
    <forecast periodID="3">
      <period lang="EN" forecastName="Thursday evening">Thursday evening</period>
      <period lang="FR" forecastName="Soir` + "\xe9" + `e de jeudi">Soir` + "\xe9" + `e de jeudi</period>
    </forecast>
  </forecastGroup>
  <hourlyForecastGroup>
    <hourlyForecast UTCTime="202410161500">3</hourlyForecast>
    <hourlyForecast UTCTime="202410161600">4</hourlyForecast>
    <hourlyForecast UTCTime="202410161700">4</hourlyForecast>
  </hourlyForecastGroup>
</forecastAirQuality>`

const truncatedXML = `<?xml version="1.0" encoding="UTF-8"?>
<conditionAirQuality>
  <region>FEVNT</region>
  <dateStamp><UTCStamp>2024`

// feedServer serves AQHI documents by path; bodies can be swapped between requests.
type feedServer struct {
	*httptest.Server
	mu       sync.Mutex
	bodies   map[string]string
	requests map[string]int
}

func newFeedServer(t *testing.T) *feedServer {
	t.Helper()

	fs := &feedServer{
		bodies: map[string]string{
			regionListPath:  regionListXML,
			observationPath: observationXML,
			forecastPath:    forecastXML,
		},
		requests: make(map[string]int),
	}

	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		body, ok := fs.bodies[r.URL.Path]
		fs.requests[r.URL.Path]++
		fs.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(fs.Close)

	return fs
}

func (fs *feedServer) set(path, body string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.bodies[path] = body
}

func (fs *feedServer) count(path string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.requests[path]
}

func (fs *feedServer) endpoints() Endpoints {
	return EndpointsFromBase(fs.URL)
}

const (
	observationPath = "/air_quality/aqhi/ont/observation/realtime/xml/AQ_OBS_FEVNT_CURRENT.xml"
	forecastPath    = "/air_quality/aqhi/ont/forecast/realtime/xml/AQ_FCST_FEVNT_CURRENT.xml"
	regionListPath  = "/air_quality/doc/AQHI_XML_File_List.xml"
)
