// Package naming - reserved keyword list
package naming

import "strings"

// Reserved keywords a property name may never equal, regardless of tier:
// query-language keywords, scripting keywords, and platform terms.
var reservedKeywords = map[string]bool{
	// query-language keywords
	"select": true, "insert": true, "update": true, "delete": true,
	"drop": true, "create": true, "alter": true, "truncate": true,
	"table": true, "index": true, "view": true, "from": true, "where": true,
	"join": true, "union": true, "group": true, "order": true, "having": true,
	"limit": true, "offset": true, "distinct": true, "exists": true,
	"between": true, "like": true, "null": true, "primary": true, "foreign": true,
	"references": true, "constraint": true, "unique": true, "default": true,
	"cascade": true, "grant": true, "revoke": true,

	// scripting keywords
	"function": true, "return": true, "var": true, "let": true, "const": true,
	"class": true, "new": true, "this": true, "typeof": true, "instanceof": true,
	"import": true, "export": true, "async": true, "await": true, "yield": true,
	"if": true, "else": true, "for": true, "while": true, "switch": true,
	"case": true, "break": true, "continue": true, "throw": true, "try": true,
	"catch": true, "finally": true, "true": true, "false": true, "undefined": true,

	// platform terms
	"tenant": true, "admin": true, "system": true, "global": true,
	"internal": true, "platform": true, "owner": true, "superuser": true,
	"root": true, "config": true, "audit": true, "schema": true,
}

// IsReserved reports whether the name matches the reserved-keyword list.
// Matching is case-insensitive.
func IsReserved(name string) bool {
	return reservedKeywords[strings.ToLower(strings.TrimSpace(name))]
}
