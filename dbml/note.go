package dbml

import "strings"

// ParseNote reads the pipe separated directives of a column note:
//
//	input:required | input:optional
//	auto:db | auto:server[:<source>]    (from=<field> yields <field>)
//
// Any other directive is kept as a validation token. A note without input or
// auto directives leaves the column in input mode, not required.
func ParseNote(note string) Metadata {
	md := Metadata{Mode: ModeInput}
	for _, part := range strings.Split(note, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		switch lower {
		case "input:required":
			md.Mode, md.Required = ModeInput, true
			continue
		case "input:optional":
			md.Mode, md.Required = ModeInput, false
			continue
		}
		if strings.HasPrefix(lower, "auto:") {
			kind, source, _ := strings.Cut(part[len("auto:"):], ":")
			kind = strings.ToLower(strings.TrimSpace(kind))
			if kind == AutoDB || kind == AutoServer {
				md.Mode, md.AutoType = ModeAuto, kind
				source = strings.TrimSpace(source)
				md.AutoSource = strings.TrimSpace(strings.TrimPrefix(source, "from="))
				continue
			}
		}
		md.Validations = append(md.Validations, part)
	}
	return md
}
