package entities

import "strings"

// FacilityType distinguishes hospitals from clinics
type FacilityType string

const (
	FacilityTypeHospital FacilityType = "hospital"
	FacilityTypeClinic   FacilityType = "clinic"
)

// ParseFacilityType maps free-form type labels; anything other than
// "hospital" is treated as a clinic.
func ParseFacilityType(raw string) FacilityType {
	if strings.EqualFold(strings.TrimSpace(raw), string(FacilityTypeHospital)) {
		return FacilityTypeHospital
	}
	return FacilityTypeClinic
}

// Sentinels shown when a facility field could not be resolved
const (
	AddressNotAvailable   = "Address not available"
	PhoneNotAvailable     = "Phone not available"
	HoursNotAvailable     = "Hours not available"
	LocationUnknown       = "Unknown Location"
	PlaceholderFacility   = "Dental Clinic"
	UnnamedFacility       = "Unnamed Clinic"
	DefaultOpenHours      = "Mon-Fri: 9:00 AM - 6:00 PM"
	DefaultFacilityRating = 4.5
)

// DefaultFacilityServices is used when a remote clinic lists no services
var DefaultFacilityServices = []string{"General Dentistry", "Consultation", "Dental Checkup"}

const (
	defaultHospitalImage = "https://images.unsplash.com/photo-1587351021759-3e566b6af7cc?w=800"
	defaultClinicImage   = "https://images.unsplash.com/photo-1629909613654-28e377c37b09?w=800"
)

// DefaultImage returns the stock image for a facility type
func DefaultImage(t FacilityType) string {
	if t == FacilityTypeHospital {
		return defaultHospitalImage
	}
	return defaultClinicImage
}

// Facility represents a dental hospital or clinic that accepts bookings
type Facility struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Type              FacilityType `json:"type"`
	Location          string       `json:"location"`
	Address           string       `json:"address"`
	City              string       `json:"city,omitempty"`
	State             string       `json:"state,omitempty"`
	Pincode           string       `json:"pincode,omitempty"`
	Phone             string       `json:"phone"`
	Email             string       `json:"email,omitempty"`
	Image             string       `json:"image,omitempty"`
	Services          []string     `json:"services"`
	OpenHours         string       `json:"openHours"`
	Rating            float64      `json:"rating"`
	ReviewCount       int          `json:"reviewCount"`
	AcceptingPatients bool         `json:"acceptingPatients"`
	DistanceKm        *float64     `json:"distanceKm,omitempty"`
	Placeholder       bool         `json:"placeholder,omitempty"`
}

// StructuredAddress is the object form of a remote clinic address
type StructuredAddress struct {
	FormattedAddress string
	Street           string
	City             string
	State            string
	Country          string
	Zip              string
}

// Format renders the address for display. A formatted address wins,
// otherwise the present components are joined in street, city, state,
// country, zip order.
func (a StructuredAddress) Format() string {
	if formatted := strings.TrimSpace(a.FormattedAddress); formatted != "" {
		return formatted
	}

	parts := make([]string, 0, 5)
	for _, part := range []string{a.Street, a.City, a.State, a.Country, a.Zip} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return AddressNotAvailable
	}
	return strings.Join(parts, ", ")
}

// NewPlaceholderFacility builds the degraded facility used when the remote
// lookup fails for a reason other than not-found.
func NewPlaceholderFacility(id string) *Facility {
	return &Facility{
		ID:                id,
		Name:              PlaceholderFacility,
		Type:              FacilityTypeClinic,
		Location:          LocationUnknown,
		Address:           AddressNotAvailable,
		Phone:             PhoneNotAvailable,
		Services:          []string{},
		OpenHours:         HoursNotAvailable,
		AcceptingPatients: true,
		Placeholder:       true,
	}
}

// OffersService reports whether the facility lists service (case-insensitive)
func (f *Facility) OffersService(service string) bool {
	for _, s := range f.Services {
		if strings.EqualFold(s, service) {
			return true
		}
	}
	return false
}

// MatchesSearch reports whether query is a case-insensitive substring of
// the facility name or one of its services. An empty query matches.
func (f *Facility) MatchesSearch(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(f.Name), q) {
		return true
	}
	for _, s := range f.Services {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// MatchesLocation compares location labels ignoring case and whitespace.
// An empty label matches everything.
func (f *Facility) MatchesLocation(location string) bool {
	want := compactLower(location)
	if want == "" {
		return true
	}
	return compactLower(f.Location) == want
}

func compactLower(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// Coordinates is a latitude/longitude pair
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Valid reports whether the pair lies within WGS84 bounds
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}
