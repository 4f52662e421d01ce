package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailtown/platform/internal/models"
	"github.com/tailtown/platform/internal/security"
)

func TestDescriptorFor(t *testing.T) {
	desc, err := DescriptorFor(models.ObjectTypePet)
	require.NoError(t, err)
	assert.Equal(t, "pets", desc.Table)
	assert.Equal(t, "custom_fields", desc.CustomFieldColumn)

	_, err = DescriptorFor(models.ObjectType("spaceship"))
	assert.Error(t, err)
}

func TestDescriptorCoversEveryObjectType(t *testing.T) {
	objectTypes := []models.ObjectType{
		models.ObjectTypePet,
		models.ObjectTypeOwner,
		models.ObjectTypeBooking,
		models.ObjectTypeStaff,
		models.ObjectTypePayment,
	}
	for _, ot := range objectTypes {
		_, err := DescriptorFor(ot)
		assert.NoError(t, err, "object type %s", ot)
	}
}

// Custom properties read the JSONB document; every other tier reads a column
func TestAccessorForSelectsByTier(t *testing.T) {
	custom := models.PropertyDefinition{
		ObjectType:   models.ObjectTypePet,
		Name:         "custom_vaccine_expiry_date",
		PropertyType: models.PropertyTypeCustom,
	}
	accessor, err := AccessorFor(custom)
	require.NoError(t, err)
	assert.IsType(t, &documentAccessor{}, accessor)

	for _, tier := range []models.PropertyType{
		models.PropertyTypeSystem,
		models.PropertyTypeStandard,
		models.PropertyTypeProtected,
	} {
		prop := models.PropertyDefinition{
			ObjectType:   models.ObjectTypeOwner,
			Name:         "OwnerEmail",
			PropertyType: tier,
		}
		accessor, err := AccessorFor(prop)
		require.NoError(t, err)
		assert.IsType(t, &columnAccessor{}, accessor, "tier %s", tier)
	}
}

func TestAccessorForUnknownObjectType(t *testing.T) {
	_, err := AccessorFor(models.PropertyDefinition{ObjectType: "warehouse"})
	assert.Error(t, err)
}

// Column names derive from the property name; hostile names must not survive
// the identifier check.
func TestColumnAccessorRejectsHostileNames(t *testing.T) {
	prop := models.PropertyDefinition{
		ObjectType:   models.ObjectTypePet,
		Name:         "name; DROP TABLE pets",
		PropertyType: models.PropertyTypeStandard,
	}

	accessor, err := AccessorFor(prop)
	require.NoError(t, err)

	ca := accessor.(*columnAccessor)
	table, column, err := ca.identifiers(prop)
	require.NoError(t, err)

	// SnakeCase sanitized the name into a legal identifier and SafeIdentifier
	// returned it quoted; the raw input never reaches the SQL text.
	assert.Equal(t, `"pets"`, table)
	assert.Equal(t, `"name_drop_table_pets"`, column)
	assert.Regexp(t, `^"[a-z_][a-z0-9_]*"$`, column)

	// The raw name itself is never a legal identifier
	_, err = security.SafeIdentifier(prop.Name)
	assert.Error(t, err)
}

// A name that sanitizes down to a reserved word is refused outright
func TestColumnAccessorRefusesReservedColumn(t *testing.T) {
	prop := models.PropertyDefinition{
		ObjectType:   models.ObjectTypePet,
		Name:         "Select",
		PropertyType: models.PropertyTypeStandard,
	}

	accessor, err := AccessorFor(prop)
	require.NoError(t, err)

	ca := accessor.(*columnAccessor)
	_, _, err = ca.identifiers(prop)
	assert.Error(t, err)
}
