package utils

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coordinates struct {
	Lat *float64 `form:"lat" validate:"required,latitude"`
	Lon *float64 `form:"lon" validate:"required,longitude"`
}

func ptr(f float64) *float64 { return &f }

func TestValidateStruct(t *testing.T) {
	assert.Nil(t, ValidateStruct(coordinates{Lat: ptr(43.65), Lon: ptr(-79.38)}))

	errs := ValidateStruct(coordinates{Lat: ptr(91), Lon: ptr(-181)})
	require.Len(t, errs, 2)
	assert.Equal(t, "lat", errs[0].Field)
	assert.Equal(t, "latitude", errs[0].Tag)
	assert.Equal(t, "lon", errs[1].Field)
	assert.Contains(t, errs[1].Message, "-180 and 180")

	errs = ValidateStruct(coordinates{Lat: ptr(10)})
	require.Len(t, errs, 1)
	assert.Equal(t, "lon is required", errs[0].Message)
}

func TestGinContextHelpers(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/aqhi", nil)

	assert.Empty(t, GetRequestIDFromGinContext(c))
	assert.Equal(t, c.Request.Context(), GetContextFromGinContext(c))

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "traced")
	c.Set(SpanContextKey, ctx)
	c.Set(RequestIDKey, "req-42")

	assert.Equal(t, "traced", GetContextFromGinContext(c).Value(key{}))
	assert.Equal(t, "req-42", GetRequestIDFromGinContext(c))
	assert.NotNil(t, GetSpanFromGinContext(c))
}
