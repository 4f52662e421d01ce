package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailtown/platform/internal/models"
)

// TestValidateCustomDateProperty verifies the suggestion machinery on a
// display-style name proposed for a custom date property.
func TestValidateCustomDateProperty(t *testing.T) {
	result := Validate("Pet Birthday", models.PropertyTypeCustom, models.DataTypeDate)

	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	require.NotEmpty(t, result.Suggestions)
	assert.Equal(t, "custom_pet_birthday_date", result.Suggestions[0])
}

func TestValidateCustomNames(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		dataType models.DataType
		valid    bool
	}{
		{"valid date suffix", "custom_vaccine_expiry_date", models.DataTypeDate, true},
		{"valid boolean suffix", "custom_microchipped_bool", models.DataTypeBoolean, true},
		{"valid currency suffix", "custom_grooming_fee_curr", models.DataTypeCurrency, true},
		{"wrong suffix for type", "custom_weight_text", models.DataTypeNumber, false},
		{"missing prefix", "vaccine_expiry_date", models.DataTypeDate, false},
		{"upper case rejected", "custom_Vaccine_date", models.DataTypeDate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input, models.PropertyTypeCustom, tt.dataType)
			assert.Equal(t, tt.valid, result.Valid)
		})
	}
}

// TestValidateCustomNameWithoutDataType confirms the suffix rule degrades to
// a warning when no data type accompanies the name.
func TestValidateCustomNameWithoutDataType(t *testing.T) {
	result := Validate("custom_weight", models.PropertyTypeCustom, "")

	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Warnings)
}

// Without a data type the suggestion carries no suffix guess; the expected
// suffix is named in a warning instead.
func TestValidateCustomSuggestionWithoutDataType(t *testing.T) {
	result := Validate("FavoriteColor", models.PropertyTypeCustom, "")

	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Suggestions)
	assert.Equal(t, "custom_favorite_color", result.Suggestions[0])
	assert.NotEmpty(t, result.Warnings)

	withType := Validate("FavoriteColor", models.PropertyTypeCustom, models.DataTypeSingleSelect)
	require.NotEmpty(t, withType.Suggestions)
	assert.Equal(t, "custom_favorite_color_ss", withType.Suggestions[0])
}

func TestValidateSystemNames(t *testing.T) {
	valid := Validate("sys_created_at", models.PropertyTypeSystem, models.DataTypeDatetime)
	assert.True(t, valid.Valid)

	invalid := Validate("CreatedAt", models.PropertyTypeSystem, models.DataTypeDatetime)
	assert.False(t, invalid.Valid)
	require.NotEmpty(t, invalid.Suggestions)
	assert.Equal(t, "sys_created_at", invalid.Suggestions[0])
}

func TestValidateStandardNames(t *testing.T) {
	valid := Validate("OwnerEmail", models.PropertyTypeStandard, models.DataTypeText)
	assert.True(t, valid.Valid)
	assert.Empty(t, valid.Warnings)

	invalid := Validate("owner_email", models.PropertyTypeStandard, models.DataTypeText)
	assert.False(t, invalid.Valid)
	require.NotEmpty(t, invalid.Suggestions)
	assert.Equal(t, "OwnerEmail", invalid.Suggestions[0])
}

// TestValidateBooleanConvention verifies the Is/Has convention warns without
// failing validation.
func TestValidateBooleanConvention(t *testing.T) {
	warned := Validate("Vaccinated", models.PropertyTypeStandard, models.DataTypeBoolean)
	assert.True(t, warned.Valid)
	assert.NotEmpty(t, warned.Warnings)

	clean := Validate("IsVaccinated", models.PropertyTypeStandard, models.DataTypeBoolean)
	assert.True(t, clean.Valid)
	assert.Empty(t, clean.Warnings)
}

func TestValidateReservedKeyword(t *testing.T) {
	result := Validate("Admin", models.PropertyTypeStandard, models.DataTypeText)
	assert.False(t, result.Valid)
}

func TestValidateLengthBounds(t *testing.T) {
	short := Validate("a", models.PropertyTypeStandard, models.DataTypeText)
	assert.False(t, short.Valid)

	long := make([]byte, MaxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	tooLong := Validate("custom_"+string(long), models.PropertyTypeCustom, "")
	assert.False(t, tooLong.Valid)
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"PetBirthday", "pet_birthday"},
		{"Pet Birthday", "pet_birthday"},
		{"ownerEmail", "owner_email"},
		{"already_snake", "already_snake"},
		{"Mixed-Separators Here", "mixed_separators_here"},
		// Acronym runs stay one word
		{"VIPStatus", "vip_status"},
		{"OwnerID", "owner_id"},
		{"HTTPSEnabled", "https_enabled"},
		{"APIKey2FA", "api_key2_fa"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SnakeCase(tt.input), "input %q", tt.input)
	}
}
