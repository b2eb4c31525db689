package clinicapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

const authServiceName = "auth-service"

// AuthServiceClient reads clinic profiles from the auth service
type AuthServiceClient struct {
	*client
}

var _ providers.ClinicDirectory = (*AuthServiceClient)(nil)

// NewAuthServiceClient creates a client for baseURL, e.g.
// http://localhost:8001/api/v1/auth
func NewAuthServiceClient(baseURL string, opts Options) *AuthServiceClient {
	return &AuthServiceClient{client: newClient(authServiceName, baseURL, opts)}
}

// ViewClinic implements GET /clinic/view-clinic/{id}. A 2xx answer that is
// not a success envelope is reported as an UpstreamError with that status.
func (c *AuthServiceClient) ViewClinic(ctx context.Context, facilityID string) (*entities.Facility, error) {
	endpoint, err := c.endpoint("/clinic/view-clinic/"+url.PathEscape(facilityID), nil)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "view clinic", http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}

	facility, message, ok := decodeClinic(raw, facilityID)
	if !ok {
		return nil, &apperrors.UpstreamError{
			Service:    c.service,
			Operation:  "view clinic",
			StatusCode: http.StatusOK,
			Message:    firstNonEmpty(message, "clinic response was not successful"),
		}
	}
	return facility, nil
}

// NearbyClinics implements GET /clinic/location-based-clinics
func (c *AuthServiceClient) NearbyClinics(ctx context.Context, point entities.Coordinates, radiusKm int) ([]*entities.Facility, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(point.Latitude, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(point.Longitude, 'f', -1, 64))
	query.Set("radius", strconv.Itoa(radiusKm))

	endpoint, err := c.endpoint("/clinic/location-based-clinics", query)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "nearby clinics", http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}

	facilities, message, ok := decodeClinicList(raw)
	if !ok {
		return nil, &apperrors.UpstreamError{
			Service:    c.service,
			Operation:  "nearby clinics",
			StatusCode: http.StatusOK,
			Message:    firstNonEmpty(message, "nearby clinics response was not successful"),
		}
	}
	return facilities, nil
}
