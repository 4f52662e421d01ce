package governance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tailtown/platform/internal/models"
)

func TestIsSafeConversion(t *testing.T) {
	tests := []struct {
		from models.DataType
		to   models.DataType
		safe bool
	}{
		{models.DataTypeDate, models.DataTypeDatetime, true},
		{models.DataTypeDate, models.DataTypeText, true},
		{models.DataTypeNumber, models.DataTypeCurrency, true},
		{models.DataTypeSingleSelect, models.DataTypeMultiSelect, true},
		{models.DataTypeBoolean, models.DataTypeText, true},

		// narrowing directions are never safe
		{models.DataTypeText, models.DataTypeNumber, false},
		{models.DataTypeDatetime, models.DataTypeDate, false},
		{models.DataTypeCurrency, models.DataTypeNumber, false},
		{models.DataTypeMultiSelect, models.DataTypeSingleSelect, false},
		{models.DataTypeText, models.DataTypeBoolean, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.safe, IsSafeConversion(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestConversionToSameTypeNotListed(t *testing.T) {
	// identity is handled upstream as a no-op rejection, not a conversion
	assert.False(t, IsSafeConversion(models.DataTypeText, models.DataTypeText))
}
