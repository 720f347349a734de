package address

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type fakeGeocoder struct {
	results []maps.GeocodingResult
	err     error
}

func (f *fakeGeocoder) Geocode(_ context.Context, _ *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	return f.results, f.err
}

func result(formatted, locationType string, componentTypes ...string) maps.GeocodingResult {
	components := make([]maps.AddressComponent, 0, len(componentTypes))
	for _, t := range componentTypes {
		components = append(components, maps.AddressComponent{Types: []string{t}})
	}
	r := maps.GeocodingResult{
		AddressComponents: components,
		FormattedAddress:  formatted,
	}
	r.Geometry.LocationType = locationType
	return r
}

func TestValidateRooftopAddress(t *testing.T) {
	v := newWithGeocoder(&fakeGeocoder{results: []maps.GeocodingResult{
		result("123 Main St, Springfield, IL 62701, USA", "ROOFTOP",
			"street_number", "route", "locality"),
	}})

	out, err := v.Validate(context.Background(), "123 main street springfield")
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, "123 Main St, Springfield, IL 62701, USA", out.FormattedAddress)
	assert.Empty(t, out.Reason)
}

func TestValidateInterpolatedRangeWithoutStreetNumber(t *testing.T) {
	// RANGE_INTERPOLATED counts as precise even without a street number
	// component in the response.
	v := newWithGeocoder(&fakeGeocoder{results: []maps.GeocodingResult{
		result("Oak Ave, Springfield, IL, USA", "RANGE_INTERPOLATED", "route", "locality"),
	}})

	out, err := v.Validate(context.Background(), "oak avenue springfield")
	require.NoError(t, err)
	assert.True(t, out.Valid)
}

func TestValidateNoResults(t *testing.T) {
	v := newWithGeocoder(&fakeGeocoder{})

	out, err := v.Validate(context.Background(), "asdfgh")
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Contains(t, out.Reason, "Address not found")
}

func TestValidateMissingBasicComponents(t *testing.T) {
	// A bare locality geocodes but has no route: semantic rejection.
	v := newWithGeocoder(&fakeGeocoder{results: []maps.GeocodingResult{
		result("Springfield, IL, USA", "APPROXIMATE", "locality"),
	}})

	out, err := v.Validate(context.Background(), "springfield")
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Contains(t, out.Reason, "complete address")
}

func TestValidateImpreciseWithoutStreetNumber(t *testing.T) {
	v := newWithGeocoder(&fakeGeocoder{results: []maps.GeocodingResult{
		result("Main St, Springfield, IL, USA", "GEOMETRIC_CENTER", "route", "locality"),
	}})

	out, err := v.Validate(context.Background(), "main street springfield")
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Contains(t, out.Reason, "house number")
}

func TestValidateServiceError(t *testing.T) {
	// A transport failure is an error, distinct from semantic rejection;
	// callers fall back to the raw address.
	v := newWithGeocoder(&fakeGeocoder{err: errors.New("OVER_QUERY_LIMIT")})

	out, err := v.Validate(context.Background(), "123 main st")
	require.Error(t, err)
	assert.Nil(t, out)
}
