// Package naming implements the property naming grammar.
// Validation is a pure function over (name, tier, data type); each tier has
// its own pattern and the validator accumulates every error and warning so a
// caller sees the full picture in one round trip.
package naming

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/tailtown/platform/internal/models"
)

const (
	// MinNameLength and MaxNameLength bound every property name
	MinNameLength = 2
	MaxNameLength = 100

	// SystemPrefix is required on system-tier property names
	SystemPrefix = "sys_"
	// CustomPrefix is required on custom-tier property names
	CustomPrefix = "custom_"
)

// CustomSuffixes is the closed suffix table for custom-tier names, one suffix
// per data type.
var CustomSuffixes = map[models.DataType]string{
	models.DataTypeDate:         "_date",
	models.DataTypeDatetime:     "_dt",
	models.DataTypeText:         "_text",
	models.DataTypeNumber:       "_num",
	models.DataTypeCurrency:     "_curr",
	models.DataTypeBoolean:      "_bool",
	models.DataTypeSingleSelect: "_ss",
	models.DataTypeMultiSelect:  "_ms",
	models.DataTypeFormula:      "_formula",
	models.DataTypeRollup:       "_rollup",
}

var (
	snakePattern      = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	upperCamelPattern = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
)

// ValidationResult is the outcome of validating a proposed property name
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// Validate classifies a proposed property name against the tier-specific
// naming rules, producing a best-effort suggestion on pattern failure.
func Validate(name string, tier models.PropertyType, dataType models.DataType) ValidationResult {
	result := ValidationResult{
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		result.Errors = append(result.Errors, "property name cannot be empty")
		return result
	}
	if len(trimmed) < MinNameLength {
		result.Errors = append(result.Errors, fmt.Sprintf("property name must be at least %d characters", MinNameLength))
	}
	if len(trimmed) > MaxNameLength {
		result.Errors = append(result.Errors, fmt.Sprintf("property name must be at most %d characters", MaxNameLength))
	}
	if IsReserved(trimmed) {
		result.Errors = append(result.Errors, fmt.Sprintf("'%s' is a reserved keyword and cannot be used as a property name", trimmed))
	}

	switch tier {
	case models.PropertyTypeSystem:
		validateSystemName(trimmed, &result)
	case models.PropertyTypeStandard, models.PropertyTypeProtected:
		validateBuiltInName(trimmed, dataType, &result)
	case models.PropertyTypeCustom:
		validateCustomName(trimmed, dataType, &result)
	default:
		result.Errors = append(result.Errors, fmt.Sprintf("unknown property tier '%s'", tier))
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func validateSystemName(name string, result *ValidationResult) {
	if !strings.HasPrefix(name, SystemPrefix) || !snakePattern.MatchString(name) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("system property names must start with '%s' and use lowercase letters, digits and underscores", SystemPrefix))
		result.Suggestions = append(result.Suggestions, SystemPrefix+SnakeCase(trimKnownPrefix(name)))
	}
}

func validateBuiltInName(name string, dataType models.DataType, result *ValidationResult) {
	if !upperCamelPattern.MatchString(name) {
		result.Errors = append(result.Errors, "standard and protected property names must be UpperCamelCase")
		result.Suggestions = append(result.Suggestions, toUpperCamel(name))
	}

	// Soft conventions only; these never fail validation.
	switch dataType {
	case models.DataTypeBoolean:
		if !strings.HasPrefix(name, "Is") && !strings.HasPrefix(name, "Has") {
			result.Warnings = append(result.Warnings, "boolean property names usually start with 'Is' or 'Has'")
		}
	case models.DataTypeDate, models.DataTypeDatetime:
		if !strings.HasPrefix(name, "Date") {
			result.Warnings = append(result.Warnings, "date property names usually start with 'Date'")
		}
	}
}

func validateCustomName(name string, dataType models.DataType, result *ValidationResult) {
	suffix, suffixKnown := CustomSuffixes[dataType]

	ok := strings.HasPrefix(name, CustomPrefix) && snakePattern.MatchString(name)
	if ok && suffixKnown {
		ok = strings.HasSuffix(name, suffix)
	}
	if ok {
		if !suffixKnown {
			result.Warnings = append(result.Warnings,
				"custom property names end with a data-type suffix from the suffix table; supply a data type to check it")
		}
		return
	}

	if suffixKnown {
		result.Errors = append(result.Errors,
			fmt.Sprintf("custom property names must start with '%s', use lowercase snake_case, and end with '%s' for data type %s", CustomPrefix, suffix, dataType))
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("custom property names must start with '%s' and use lowercase snake_case", CustomPrefix))
		result.Warnings = append(result.Warnings,
			"custom property names end with a data-type suffix from the suffix table; supply a data type to check it")
	}

	// Best-effort suggestion: re-case the input; the suffix is appended only
	// when the data type is known.
	base := CustomPrefix + SnakeCase(trimKnownPrefix(name))
	if suffixKnown && !strings.HasSuffix(base, suffix) {
		base += suffix
	}
	result.Suggestions = append(result.Suggestions, base)
}

// trimKnownPrefix drops an existing tier prefix so a suggestion never doubles it
func trimKnownPrefix(name string) string {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, CustomPrefix) {
		return name[len(CustomPrefix):]
	}
	if strings.HasPrefix(lower, SystemPrefix) {
		return name[len(SystemPrefix):]
	}
	return name
}

// SnakeCase lowercases the input, inserting underscores at camel-case
// boundaries and collapsing runs of non-alphanumeric characters. A run of
// consecutive capitals counts as one word, so "VIPStatus" becomes
// "vip_status" rather than splitting every letter. The storage layer uses it
// to derive column names from property names.
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	prevUnderscore := true
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 && !prevUnderscore {
				// A word starts here when the previous rune was lowercase or
				// a digit, or when this capital ends an acronym run and the
				// next rune is lowercase.
				prev := runes[i-1]
				if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
					(unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			prevUnderscore = false
		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevUnderscore = false
		default:
			if !prevUnderscore {
				b.WriteByte('_')
			}
			prevUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// toUpperCamel splits on separators and capitalizes each word
func toUpperCamel(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, w := range words {
		runes := []rune(w)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}
	return b.String()
}
