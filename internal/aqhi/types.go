package aqhi

// Coordinates is a point in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Region is a monitored area taken from the region list.
// Attributes keeps every raw attribute and child element of the upstream record,
// with the administrative zone attributes merged on top.
type Region struct {
	Abbreviation string            `json:"abbreviation"`
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Latitude     float64           `json:"latitude"`
	Longitude    float64           `json:"longitude"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// Key returns the region identity as "abbreviation/id"
func (r Region) Key() string {
	return r.Abbreviation + "/" + r.ID
}

func (r Region) Coordinates() Coordinates {
	return Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}
}

// Condition is a labelled current measurement. Value is nil when not reported.
type Condition struct {
	Label string  `json:"label"`
	Value *string `json:"value,omitempty"`
}

type Metadata struct {
	Timestamp string `json:"timestamp"`
	Location  string `json:"location"`
}

// DailyForecast pairs a named forecast period with its index.
// Period is nil when no period in the requested language has been seen yet.
type DailyForecast struct {
	Period *string `json:"period,omitempty"`
	AQHI   *string `json:"aqhi,omitempty"`
}

type HourlyForecast struct {
	Period string `json:"period"`
	AQHI   string `json:"aqhi"`
}

// Snapshot is everything read from one observation and one forecast document.
type Snapshot struct {
	Metadata        Metadata             `json:"metadata"`
	Conditions      map[string]Condition `json:"conditions"`
	ForecastTime    string               `json:"forecast_time"`
	DailyForecasts  []DailyForecast      `json:"daily_forecasts"`
	HourlyForecasts []HourlyForecast     `json:"hourly_forecasts"`
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Conditions:      make(map[string]Condition),
		DailyForecasts:  []DailyForecast{},
		HourlyForecasts: []HourlyForecast{},
	}
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() Snapshot {
	out := Snapshot{
		Metadata:        s.Metadata,
		Conditions:      make(map[string]Condition, len(s.Conditions)),
		ForecastTime:    s.ForecastTime,
		DailyForecasts:  make([]DailyForecast, len(s.DailyForecasts)),
		HourlyForecasts: make([]HourlyForecast, len(s.HourlyForecasts)),
	}
	for k, c := range s.Conditions {
		out.Conditions[k] = Condition{Label: c.Label, Value: cloneString(c.Value)}
	}
	for i, d := range s.DailyForecasts {
		out.DailyForecasts[i] = DailyForecast{Period: cloneString(d.Period), AQHI: cloneString(d.AQHI)}
	}
	copy(out.HourlyForecasts, s.HourlyForecasts)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type conditionMeta struct {
	path   string
	labels map[Language]string
}

var conditionsMeta = map[string]conditionMeta{
	"aqhi": {
		path: "airQualityHealthIndex",
		labels: map[Language]string{
			English: "Air Quality Health Index",
			French:  "Cote air santé",
		},
	},
}

const (
	timestampPath = "dateStamp/UTCStamp"
	locationPath  = "region"
)
