package aqhi

import "fmt"

const forecastDocument = "forecast"

// ParseForecast reads the forecast time, daily and hourly forecasts into snap,
// appending to the existing sequences.
//
// The daily period label is a running value: the last period in the requested
// language wins within a forecast group, and it carries over to later groups
// that have no period in that language.
func ParseForecast(raw []byte, lang Language, snap *Snapshot) error {
	text, err := decodeLatin1(raw)
	if err != nil {
		return &ParseError{Document: forecastDocument, Err: err}
	}

	root, err := parseTree(text)
	if err != nil {
		return &ParseError{Document: forecastDocument, Err: err}
	}

	forecastTime, _ := root.findText(timestampPath)

	code := lang.Code()
	var daily []DailyForecast
	var period *string
	for _, f := range root.findAll("forecastGroup/forecast") {
		for _, p := range f.findAll("period") {
			if l, _ := p.attr("lang"); l != code {
				continue
			}
			name, ok := p.attr("forecastName")
			if !ok {
				return &ParseError{Document: forecastDocument, Err: fmt.Errorf("period without forecastName")}
			}
			period = &name
		}

		forecast := DailyForecast{Period: cloneString(period)}
		if value, ok := f.findText("airQualityHealthIndex"); ok {
			forecast.AQHI = &value
		}
		daily = append(daily, forecast)
	}

	var hourly []HourlyForecast
	for _, h := range root.findAll("hourlyForecastGroup/hourlyForecast") {
		utc, ok := h.attr("UTCTime")
		if !ok {
			return &ParseError{Document: forecastDocument, Err: fmt.Errorf("hourlyForecast without UTCTime")}
		}
		hourly = append(hourly, HourlyForecast{Period: utc, AQHI: h.text()})
	}

	snap.ForecastTime = forecastTime
	snap.DailyForecasts = append(snap.DailyForecasts, daily...)
	snap.HourlyForecasts = append(snap.HourlyForecasts, hourly...)
	return nil
}
