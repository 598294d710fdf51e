package handlers

import (
	"github.com/vzahanych/aqhi-canada/internal/aqhi"
	"github.com/vzahanych/aqhi-canada/internal/server/utils"
	"github.com/vzahanych/aqhi-canada/internal/tracker"
)

// NearestRequest is the /regions/nearest query
type NearestRequest struct {
	Lat *float64 `form:"lat" json:"lat" validate:"required,latitude" binding:"required"`
	Lon *float64 `form:"lon" json:"lon" validate:"required,longitude" binding:"required"`
}

// CurrentResponse is the tracked region snapshot with its refresh status
type CurrentResponse struct {
	Status   tracker.Status `json:"status"`
	Snapshot aqhi.Snapshot  `json:"snapshot"`
}

type RegionsResponse struct {
	Count   int           `json:"count"`
	Regions []aqhi.Region `json:"regions"`
}

type NearestResponse struct {
	Region     aqhi.Region `json:"region"`
	DistanceKM float64     `json:"distance_km"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string                  `json:"error"`
	Code    string                  `json:"code,omitempty"`
	Details string                  `json:"details,omitempty"`
	Fields  []utils.ValidationError `json:"fields,omitempty"`
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Uptime    string                 `json:"uptime"`
	Timestamp string                 `json:"timestamp,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
