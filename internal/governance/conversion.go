package governance

import "github.com/tailtown/platform/internal/models"

// safeConversions lists the widening type changes that never lose data.
// Anything not listed is a narrowing change and demands an export plus a
// confirmed clear first.
var safeConversions = map[models.DataType]map[models.DataType]bool{
	models.DataTypeDate: {
		models.DataTypeDatetime: true,
		models.DataTypeText:     true,
	},
	models.DataTypeDatetime: {
		models.DataTypeText: true,
	},
	models.DataTypeNumber: {
		models.DataTypeCurrency: true,
		models.DataTypeText:     true,
	},
	models.DataTypeCurrency: {
		models.DataTypeText: true,
	},
	models.DataTypeBoolean: {
		models.DataTypeText: true,
	},
	models.DataTypeSingleSelect: {
		models.DataTypeMultiSelect: true,
		models.DataTypeText:        true,
	},
	models.DataTypeMultiSelect: {
		models.DataTypeText: true,
	},
	models.DataTypeFormula: {
		models.DataTypeText: true,
	},
	models.DataTypeRollup: {
		models.DataTypeText: true,
	},
}

// IsSafeConversion reports whether values stored under from can be carried
// into to without loss.
func IsSafeConversion(from, to models.DataType) bool {
	return safeConversions[from][to]
}
