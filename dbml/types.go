package dbml

import "strings"

// Canonical column types.
const (
	TypeInteger   = "integer"
	TypeString    = "string"
	TypeText      = "text"
	TypeDecimal   = "decimal"
	TypeBoolean   = "boolean"
	TypeTimestamp = "timestamp"
	TypeDatetime  = "datetime"
	TypeDate      = "date"
	TypeEnum      = "enum"
)

var typeMap = map[string]string{
	"int":       TypeInteger,
	"varchar":   TypeString,
	"text":      TypeText,
	"decimal":   TypeDecimal,
	"bool":      TypeBoolean,
	"boolean":   TypeBoolean,
	"timestamp": TypeTimestamp,
	"datetime":  TypeDatetime,
	"date":      TypeDate,
	"enum":      TypeEnum,
}

// NormalizeType maps a raw column type to its canonical name. Size specifiers
// are ignored and the lookup is case-insensitive. Unknown types are returned
// unchanged.
func NormalizeType(raw string) string {
	if t, ok := typeMap[typeKey(raw)]; ok {
		return t
	}
	return raw
}

// KnownType reports whether raw has a canonical mapping.
func KnownType(raw string) bool {
	_, ok := typeMap[typeKey(raw)]
	return ok
}

func typeKey(raw string) string {
	if i := strings.IndexByte(raw, '('); i >= 0 {
		raw = raw[:i]
	}
	return strings.ToLower(strings.TrimSpace(raw))
}
