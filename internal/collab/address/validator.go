// Package address validates caller-supplied street addresses against the
// Google Maps Geocoding API.
package address

import (
	"context"

	"googlemaps.github.io/maps"

	errx "github.com/intakeflow/server/internal/core/error"
	logx "github.com/intakeflow/server/pkg/logger"
)

// Validation is the semantic outcome of a validation attempt. Valid=false is
// an ordinary branch (the flow re-asks the caller with Reason embedded in the
// retry prompt), not an error.
type Validation struct {
	Valid            bool
	FormattedAddress string
	Reason           string
}

// Validator checks a free-text address. A returned error means the service
// itself failed; callers must then proceed with the raw address rather than
// block the flow.
type Validator interface {
	Validate(ctx context.Context, address string) (*Validation, error)
}

// geocoder is the slice of maps.Client the validator uses.
type geocoder interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GoogleValidator judges an address valid when geocoding resolves it to a
// precise location with street, city and state components present.
type GoogleValidator struct {
	client geocoder
}

func NewGoogleValidator(apiKey string) (*GoogleValidator, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, errx.WrapGeocode(err)
	}
	return &GoogleValidator{client: c}, nil
}

// newWithGeocoder is used by tests to substitute the Maps client.
func newWithGeocoder(g geocoder) *GoogleValidator {
	return &GoogleValidator{client: g}
}

func (v *GoogleValidator) Validate(ctx context.Context, address string) (*Validation, error) {
	results, err := v.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		logx.Error().Err(err).Msg("Geocoding request failed")
		return nil, errx.WrapGeocode(err)
	}

	if len(results) == 0 {
		return &Validation{
			Valid:  false,
			Reason: "Address not found. Please provide a more specific address.",
		}, nil
	}

	// Best result first, per the Geocoding API ordering.
	r := results[0]

	hasStreetNumber := hasComponent(r.AddressComponents, "street_number")
	hasRoute := hasComponent(r.AddressComponents, "route")
	hasLocality := hasComponent(r.AddressComponents, "locality") ||
		hasComponent(r.AddressComponents, "administrative_area_level_1")

	locationType := r.Geometry.LocationType
	isPrecise := locationType == "ROOFTOP" || locationType == "RANGE_INTERPOLATED"

	if !hasRoute || !hasLocality {
		return &Validation{
			Valid:  false,
			Reason: "Please provide a complete address with street, city, and state.",
		}, nil
	}

	if !isPrecise && !hasStreetNumber {
		return &Validation{
			Valid:            false,
			FormattedAddress: r.FormattedAddress,
			Reason:           "The address seems incomplete. Please provide the full street address including house number.",
		}, nil
	}

	logx.Debug().
		Str("formatted_address", r.FormattedAddress).
		Str("location_type", locationType).
		Msg("Address validated")

	return &Validation{
		Valid:            true,
		FormattedAddress: r.FormattedAddress,
	}, nil
}

func hasComponent(components []maps.AddressComponent, typ string) bool {
	for _, c := range components {
		for _, t := range c.Types {
			if t == typ {
				return true
			}
		}
	}
	return false
}

var _ Validator = (*GoogleValidator)(nil)
