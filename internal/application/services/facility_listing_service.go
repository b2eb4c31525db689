package services

import (
	"context"
	"sort"
	"strings"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/repositories"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

// MsgNearbyUnavailable warns that the static catalog is shown instead of nearby clinics
const MsgNearbyUnavailable = "Failed to fetch nearby clinics. Please try again later."

// FacilityTypeAll disables the type filter
const FacilityTypeAll = "all"

// MaxPageSize caps ListingQuery.Limit
const MaxPageSize = 100

// ListingQuery filters and pages the facility listing
type ListingQuery struct {
	Coordinates *entities.Coordinates
	ClientID    string
	RadiusKm    int
	Search      string
	Type        string
	Location    string
	Limit       int
	Offset      int
}

// FacilityPage is one page of the facility listing
type FacilityPage struct {
	Facilities []*entities.Facility `json:"facilities"`
	Total      int                  `json:"total"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
	HasMore    bool                 `json:"hasMore"`
	Nearby     bool                 `json:"nearby"`
	Locations  []string             `json:"locations"`
	Notices    []entities.Notice    `json:"notices,omitempty"`
}

// FacilityListingService lists facilities near the patient or from the
// static catalog
type FacilityListingService struct {
	catalog       repositories.FacilityCatalog
	directory     providers.ClinicDirectory
	search        repositories.FacilitySearchRepository
	locations     *LocationService
	defaultRadius int
	pageSize      int
}

// NewFacilityListingService creates a listing service. search and locations may be nil.
func NewFacilityListingService(
	catalog repositories.FacilityCatalog,
	directory providers.ClinicDirectory,
	search repositories.FacilitySearchRepository,
	locations *LocationService,
	defaultRadius int,
	pageSize int,
) *FacilityListingService {
	if pageSize <= 0 {
		pageSize = 6
	}
	if defaultRadius <= 0 {
		defaultRadius = 50
	}
	return &FacilityListingService{
		catalog:       catalog,
		directory:     directory,
		search:        search,
		locations:     locations,
		defaultRadius: defaultRadius,
		pageSize:      pageSize,
	}
}

// List returns one page of facilities
func (s *FacilityListingService) List(ctx context.Context, query ListingQuery) (*FacilityPage, error) {
	ctx, span := observability.StartSpan(ctx, "FacilityListingService.List")
	defer span.End()

	if query.Offset < 0 {
		return nil, apperrors.NewValidationError("offset cannot be negative")
	}
	if query.Coordinates != nil && !query.Coordinates.Valid() {
		return nil, apperrors.NewValidationError("invalid coordinates")
	}

	page := &FacilityPage{Limit: query.Limit, Offset: query.Offset}
	if page.Limit <= 0 {
		page.Limit = s.pageSize
	}
	page.Limit = min(page.Limit, MaxPageSize)

	point := query.Coordinates
	if point == nil && s.locations != nil {
		recalled, err := s.locations.Recall(ctx, query.ClientID)
		if err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to recall client location")
		}
		point = recalled
	}

	var facilities []*entities.Facility
	if point != nil {
		radius := query.RadiusKm
		if radius <= 0 {
			radius = s.defaultRadius
		}
		nearby, err := s.directory.NearbyClinics(ctx, *point, radius)
		switch {
		case err != nil:
			observability.RecordError(span, err)
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("nearby clinic lookup failed")
			page.Notices = append(page.Notices, entities.Notice{Level: entities.NoticeWarning, Message: MsgNearbyUnavailable})
		case len(nearby) > 0:
			facilities = nearby
			page.Nearby = true
		}
	}

	if page.Nearby {
		page.Locations = uniqueLocations(facilities)
		facilities = filterFacilities(facilities, query.Search, query.Type, query.Location)
		sortByDistance(facilities)
	} else {
		page.Locations = uniqueLocations(s.catalog.List())
		facilities = s.catalogMatches(ctx, query)
	}

	page.Total = len(facilities)
	start := min(page.Offset, page.Total)
	end := start + min(page.Limit, page.Total-start)
	page.Facilities = facilities[start:end]
	if page.Facilities == nil {
		page.Facilities = []*entities.Facility{}
	}
	page.HasMore = end < page.Total
	return page, nil
}

// catalogMatches filters the static catalog, using the search index for
// free text when one is configured
func (s *FacilityListingService) catalogMatches(ctx context.Context, query ListingQuery) []*entities.Facility {
	text := strings.TrimSpace(query.Search)
	if text != "" && s.search != nil {
		ids, err := s.search.Search(ctx, repositories.FacilitySearchQuery{
			Text:         text,
			FacilityType: typeFilter(query.Type),
		})
		if err == nil {
			matches := make([]*entities.Facility, 0, len(ids))
			for _, id := range ids {
				if facility, ok := s.catalog.Get(id); ok {
					matches = append(matches, facility)
				}
			}
			return filterFacilities(matches, "", query.Type, query.Location)
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("facility search index unavailable, filtering in memory")
	}
	return filterFacilities(s.catalog.List(), text, query.Type, query.Location)
}

func typeFilter(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, FacilityTypeAll) {
		return ""
	}
	return string(entities.ParseFacilityType(raw))
}

func filterFacilities(facilities []*entities.Facility, search, facilityType, location string) []*entities.Facility {
	wantType := typeFilter(facilityType)
	out := make([]*entities.Facility, 0, len(facilities))
	for _, f := range facilities {
		if wantType != "" && string(f.Type) != wantType {
			continue
		}
		if !f.MatchesSearch(search) || !f.MatchesLocation(location) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func uniqueLocations(facilities []*entities.Facility) []string {
	seen := make(map[string]struct{}, len(facilities))
	locations := []string{}
	for _, f := range facilities {
		label := strings.TrimSpace(f.Location)
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		locations = append(locations, label)
	}
	return locations
}

// sortByDistance orders nearest first; facilities without a distance go last
func sortByDistance(facilities []*entities.Facility) {
	sort.SliceStable(facilities, func(i, j int) bool {
		a, b := facilities[i].DistanceKm, facilities[j].DistanceKm
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}
