// Package naming derives identifiers from table and column names.
package naming

import (
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"
)

// Inflector turns plural table names into singular model and relation names
// and back.
type Inflector interface {
	Singularize(word string) string
	Pluralize(word string) string
}

// Simple is the suffix heuristic: "ies" becomes "y", otherwise one trailing
// "s" is dropped. It is not an English inflector ("statuses" yields
// "statuse").
type Simple struct{}

// Singularize implements Inflector.
func (Simple) Singularize(word string) string {
	switch {
	case strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}

// Pluralize implements Inflector.
func (Simple) Pluralize(word string) string {
	switch {
	case word == "":
		return word
	case strings.HasSuffix(word, "y"):
		return word[:len(word)-1] + "ies"
	}
	return word + "s"
}

// Rules singularizes with the English rule set of go-openapi/inflect.
type Rules struct {
	rs *inflect.Ruleset
}

// NewRules returns a Rules inflector. Extra acronyms are kept upper case.
func NewRules(acronyms ...string) *Rules {
	rs := inflect.NewDefaultRuleset()
	for _, a := range acronyms {
		rs.AddAcronym(a)
	}
	return &Rules{rs: rs}
}

// Singularize implements Inflector.
func (r *Rules) Singularize(word string) string {
	return r.rs.Singularize(word)
}

// Pluralize implements Inflector.
func (r *Rules) Pluralize(word string) string {
	return r.rs.Pluralize(word)
}

// Inflector names accepted by ByName.
const (
	SimpleName = "simple"
	RulesName  = "rules"
)

// ByName returns the inflector registered under name. The empty name selects
// Simple.
func ByName(name string) (Inflector, error) {
	switch strings.ToLower(name) {
	case "", SimpleName:
		return Simple{}, nil
	case RulesName:
		return NewRules(), nil
	}
	return nil, fmt.Errorf("naming: unknown inflector %q (want %s or %s)", name, SimpleName, RulesName)
}
