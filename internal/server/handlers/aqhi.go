package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/aqhi-canada/internal/aqhi"
	"github.com/vzahanych/aqhi-canada/internal/server/utils"
	"github.com/vzahanych/aqhi-canada/internal/tracker"
	"go.uber.org/zap"
)

type AQHIHandler struct {
	tracker *tracker.Tracker
	logger  *zap.Logger
}

func NewAQHIHandler(tr *tracker.Tracker, logger *zap.Logger) *AQHIHandler {
	return &AQHIHandler{
		tracker: tr,
		logger:  logger,
	}
}

// GetCurrent serves the tracked region.
func (h *AQHIHandler) GetCurrent(c *gin.Context) {
	snap, status, err := h.tracker.Current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "AQHI data not loaded yet",
			Code:    "NOT_READY",
			Details: status.LastError,
		})
		return
	}

	c.JSON(http.StatusOK, CurrentResponse{Status: status, Snapshot: snap})
}

// GetRegion fetches a fresh snapshot for /aqhi/:province/:region.
func (h *AQHIHandler) GetRegion(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := h.requestLogger(c)

	province := c.Param("province")
	region := c.Param("region")

	reqLogger.Info("Processing AQHI request",
		zap.String("province", province),
		zap.String("region_id", region))

	snap, err := h.tracker.Lookup(ctx, province, region, c.Query("lang"))
	if err != nil {
		h.writeError(c, reqLogger, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *AQHIHandler) ListRegions(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)

	regions, err := h.tracker.Regions(ctx)
	if err != nil {
		h.writeError(c, h.requestLogger(c), err)
		return
	}

	c.JSON(http.StatusOK, RegionsResponse{Count: len(regions), Regions: regions})
}

func (h *AQHIHandler) GetNearest(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := h.requestLogger(c)

	var req NearestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		reqLogger.Warn("Invalid request parameters", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: err.Error(),
		})
		return
	}
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		reqLogger.Warn("Coordinates out of range", zap.Any("fields", fields))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "Invalid request parameters",
			Code:   "INVALID_PARAMS",
			Fields: fields,
		})
		return
	}

	region, err := h.tracker.Nearest(ctx, *req.Lat, *req.Lon)
	if err != nil {
		h.writeError(c, reqLogger, err)
		return
	}

	query := aqhi.Coordinates{Latitude: *req.Lat, Longitude: *req.Lon}
	c.JSON(http.StatusOK, NearestResponse{
		Region:     region,
		DistanceKM: aqhi.Distance(query, region.Coordinates()),
	})
}

func (h *AQHIHandler) requestLogger(c *gin.Context) *zap.Logger {
	return h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))
}

// writeError maps the aqhi error kinds to HTTP statuses.
func (h *AQHIHandler) writeError(c *gin.Context, logger *zap.Logger, err error) {
	var transportErr *aqhi.TransportError

	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, aqhi.ErrUnsupportedLanguage):
		status, code = http.StatusBadRequest, "UNSUPPORTED_LANGUAGE"
	case aqhi.IsNotFound(err):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.As(err, &transportErr) && transportErr.StatusCode == http.StatusNotFound:
		status, code = http.StatusNotFound, "REGION_NOT_FOUND"
	case aqhi.IsTransport(err):
		status, code = http.StatusBadGateway, "UPSTREAM_ERROR"
	case aqhi.IsParse(err):
		status, code = http.StatusBadGateway, "PARSE_ERROR"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("AQHI request failed", zap.Error(err), zap.String("code", code))
	} else {
		logger.Warn("AQHI request rejected", zap.Error(err), zap.String("code", code))
	}

	c.JSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Details: err.Error(),
	})
}
