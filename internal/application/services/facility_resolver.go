package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/repositories"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

// MsgFacilityDetailsUnavailable warns that a placeholder facility is shown
const MsgFacilityDetailsUnavailable = "Could not load facility details"

// MsgFacilityNotFound is returned when the facility does not exist anywhere
const MsgFacilityNotFound = "Facility not found"

// FacilitySource tells where a resolved facility came from
type FacilitySource string

const (
	FacilitySourceCatalog     FacilitySource = "catalog"
	FacilitySourceCache       FacilitySource = "cache"
	FacilitySourceRemote      FacilitySource = "remote"
	FacilitySourcePlaceholder FacilitySource = "placeholder"
)

// FacilityResolution is a resolved facility and any notices raised on the way
type FacilityResolution struct {
	Facility *entities.Facility `json:"facility"`
	Source   FacilitySource     `json:"source"`
	Notices  []entities.Notice  `json:"notices,omitempty"`
}

// FacilityResolver looks facilities up in the static catalog first and
// falls back to the clinic directory
type FacilityResolver struct {
	catalog   repositories.FacilityCatalog
	directory providers.ClinicDirectory
	cache     providers.CacheProvider
	cacheTTL  int
	metrics   *observability.Metrics
}

// NewFacilityResolver creates a resolver. cache may be nil; a cacheTTL of
// zero disables caching of remote facilities.
func NewFacilityResolver(
	catalog repositories.FacilityCatalog,
	directory providers.ClinicDirectory,
	cache providers.CacheProvider,
	cacheTTL int,
	metrics *observability.Metrics,
) *FacilityResolver {
	return &FacilityResolver{
		catalog:   catalog,
		directory: directory,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
	}
}

func facilityCacheKey(id string) string {
	return "facility:" + id
}

// Resolve returns the facility for id. A 404 from the directory is the only
// remote failure reported as an error; anything else yields a placeholder
// facility and a warning notice.
func (r *FacilityResolver) Resolve(ctx context.Context, id string) (*FacilityResolution, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewValidationError("facility id is required")
	}

	if facility, ok := r.catalog.Get(id); ok {
		return &FacilityResolution{Facility: facility, Source: FacilitySourceCatalog}, nil
	}

	if facility := r.cached(ctx, id); facility != nil {
		return &FacilityResolution{Facility: facility, Source: FacilitySourceCache}, nil
	}

	ctx, span := observability.StartSpan(ctx, "FacilityResolver.Resolve")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.String("facility.id", id))

	facility, err := r.directory.ViewClinic(ctx, id)
	if err != nil {
		if upstreamErr, ok := apperrors.AsUpstreamError(err); ok && upstreamErr.IsNotFound() {
			return nil, apperrors.NewNotFoundError(MsgFacilityNotFound)
		}
		observability.RecordError(span, err)
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("facility_id", id).Msg("facility lookup failed, using placeholder")
		return placeholderResolution(id), nil
	}
	if facility == nil {
		return placeholderResolution(id), nil
	}

	r.store(ctx, facility)
	return &FacilityResolution{Facility: facility, Source: FacilitySourceRemote}, nil
}

// FeaturedDoctors returns roster doctors practising one of the facility's services
func (r *FacilityResolver) FeaturedDoctors(facility *entities.Facility) []entities.Doctor {
	if facility == nil {
		return []entities.Doctor{}
	}
	return r.catalog.DoctorsForServices(facility.Services)
}

func placeholderResolution(id string) *FacilityResolution {
	return &FacilityResolution{
		Facility: entities.NewPlaceholderFacility(id),
		Source:   FacilitySourcePlaceholder,
		Notices:  []entities.Notice{{Level: entities.NoticeWarning, Message: MsgFacilityDetailsUnavailable}},
	}
}

func (r *FacilityResolver) cached(ctx context.Context, id string) *entities.Facility {
	if r.cache == nil || r.cacheTTL <= 0 {
		return nil
	}

	data, err := r.cache.Get(ctx, facilityCacheKey(id))
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("facility_id", id).Msg("facility cache read failed")
		}
		observability.RecordCacheMiss(ctx, r.metrics, "facility")
		return nil
	}

	var facility entities.Facility
	if err := json.Unmarshal(data, &facility); err != nil {
		observability.RecordCacheMiss(ctx, r.metrics, "facility")
		return nil
	}
	observability.RecordCacheHit(ctx, r.metrics, "facility")
	return &facility
}

func (r *FacilityResolver) store(ctx context.Context, facility *entities.Facility) {
	if r.cache == nil || r.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(facility)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, facilityCacheKey(facility.ID), data, r.cacheTTL); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("facility_id", facility.ID).Msg("facility cache write failed")
	}
}
