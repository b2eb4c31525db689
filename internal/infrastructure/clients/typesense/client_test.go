package typesense

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFacilitySchema(t *testing.T) {
	schema := FacilitySchema()

	assert.Equal(t, FacilitiesCollection, schema.Name)
	assert.Equal(t, "rating", *schema.DefaultSortingField)

	fields := map[string]string{}
	for _, f := range schema.Fields {
		fields[f.Name] = f.Type
	}
	assert.Equal(t, "string[]", fields["services"])
	assert.Equal(t, "string", fields["facility_type"])
	assert.Equal(t, "float", fields["rating"])
}
