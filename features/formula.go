package features

import "strings"

// Formula is an R-style model description, `response ~ t1 + t2 + …`.
type Formula struct {
	Response string
	Terms    []string
}

// NewFormula builds a formula from a response and an ordered term list.
func NewFormula(response string, terms []string) Formula {
	return Formula{Response: response, Terms: append([]string(nil), terms...)}
}

func (f Formula) String() string {
	return f.Response + " ~ " + strings.Join(f.Terms, " + ")
}
