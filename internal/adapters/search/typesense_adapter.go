package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/repositories"
	tsclient "github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements catalog search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements FacilitySearchRepository
var _ repositories.FacilitySearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index upserts every facility. Remote and placeholder facilities are
// never indexed.
func (a *TypesenseAdapter) Index(ctx context.Context, facilities []*entities.Facility) error {
	documents := a.client.Client().Collection(tsclient.FacilitiesCollection).Documents()
	for _, facility := range facilities {
		if facility == nil || facility.Placeholder {
			continue
		}
		if _, err := documents.Upsert(ctx, facilityDocument(facility)); err != nil {
			return fmt.Errorf("failed to index facility %s: %w", facility.ID, err)
		}
	}
	return nil
}

// Search returns ids of matching facilities in relevance order
func (a *TypesenseAdapter) Search(ctx context.Context, query repositories.FacilitySearchQuery) ([]string, error) {
	result, err := a.client.Client().Collection(tsclient.FacilitiesCollection).Documents().Search(ctx, searchParams(query))
	if err != nil {
		return nil, fmt.Errorf("failed to search facilities: %w", err)
	}
	if result.Hits == nil {
		return []string{}, nil
	}
	return hitIDs(*result.Hits), nil
}

func facilityDocument(facility *entities.Facility) map[string]interface{} {
	services := facility.Services
	if services == nil {
		services = []string{}
	}
	return map[string]interface{}{
		"id":                 facility.ID,
		"name":               facility.Name,
		"facility_type":      string(facility.Type),
		"location":           facility.Location,
		"services":           services,
		"rating":             facility.Rating,
		"review_count":       facility.ReviewCount,
		"accepting_patients": facility.AcceptingPatients,
	}
}

func searchParams(query repositories.FacilitySearchQuery) *api.SearchCollectionParams {
	q := strings.TrimSpace(query.Text)
	if q == "" {
		q = "*"
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("name,services"),
		SortBy:  pointer.String("_text_match:desc,rating:desc"),
	}
	if query.FacilityType != "" {
		params.FilterBy = pointer.String("facility_type:=" + string(entities.ParseFacilityType(query.FacilityType)))
	}
	if query.Limit > 0 {
		params.PerPage = pointer.Int(query.Limit)
	}
	return params
}

func hitIDs(hits []api.SearchResultHit) []string {
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
