package naming

import (
	"strings"
	"unicode"
)

// acronyms are rendered upper case in Go identifiers.
var acronyms = map[string]struct{}{
	"ACL": {}, "API": {}, "ASCII": {}, "CPU": {}, "CSS": {}, "DNS": {}, "EOF": {},
	"GUID": {}, "HTML": {}, "HTTP": {}, "HTTPS": {}, "ID": {}, "IP": {}, "JSON": {},
	"JWT": {}, "QPS": {}, "RAM": {}, "RPC": {}, "SKU": {}, "SLA": {}, "SMTP": {},
	"SQL": {}, "SSH": {}, "TCP": {}, "TLS": {}, "TTL": {}, "UDP": {}, "UI": {},
	"UID": {}, "URI": {}, "URL": {}, "UTF8": {}, "UUID": {}, "VM": {}, "XML": {},
	"XSS": {},
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
}

// Pascal converts snake_case to PascalCase, keeping known acronyms upper case:
// user_id becomes UserID.
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(title(w))
	}
	return b.String()
}

// Camel is Pascal with the first word lower case: user_id becomes userID.
func Camel(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(ws[0]))
	for _, w := range ws[1:] {
		b.WriteString(title(w))
	}
	return b.String()
}

func title(w string) string {
	if _, ok := acronyms[strings.ToUpper(w)]; ok {
		return strings.ToUpper(w)
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
