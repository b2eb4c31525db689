package clinicapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
)

const clinicServiceName = "clinic-service"

// ClinicServiceClient reads departments and doctor availability
type ClinicServiceClient struct {
	*client
}

var _ providers.AvailabilityProvider = (*ClinicServiceClient)(nil)

// NewClinicServiceClient creates a client for baseURL, e.g.
// http://localhost:8003/api/v1/clinic-service
func NewClinicServiceClient(baseURL string, opts Options) *ClinicServiceClient {
	return &ClinicServiceClient{client: newClient(clinicServiceName, baseURL, opts)}
}

// ListDepartments implements GET /department/details/{facilityId}
func (c *ClinicServiceClient) ListDepartments(ctx context.Context, facilityID string) ([]string, error) {
	endpoint, err := c.endpoint("/department/details/"+url.PathEscape(facilityID), nil)
	if err != nil {
		return nil, err
	}

	var resp departmentsResponse
	if err := c.doJSON(ctx, "list departments", http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.names(), nil
}

// ListDoctorAvailability implements GET /department-based/availability
func (c *ClinicServiceClient) ListDoctorAvailability(ctx context.Context, facilityID, department string) ([]providers.DoctorRecord, error) {
	query := url.Values{}
	query.Set("clinicId", facilityID)
	query.Set("department", department)

	endpoint, err := c.endpoint("/department-based/availability", query)
	if err != nil {
		return nil, err
	}

	var resp doctorsResponse
	if err := c.doJSON(ctx, "doctor availability", http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]providers.DoctorRecord, 0, len(resp.Doctors))
	for _, d := range resp.Doctors {
		records = append(records, d.toRecord())
	}
	return records, nil
}
