// Package units implements the dimensional conversion engine.
//
// A Registry is built once from compiled definitions (see package ir). It
// parses unit expressions ("kg CO2 / yr", "MtCO2", "tOC/day") into Units,
// each reduced to a scale factor over base units and a Dimension in which
// every gas species is a base dimension of its own.
//
// Conversions between units of equal dimension need no context. Conversions
// between species (CH4 to C, N2O to CO2-equivalent) are only possible inside
// a Scope that has a matching Context active:
//
//	err := reg.WithContext("AR4GWP100", func(s *units.Scope) error {
//		eq, err := s.Convert(reg.MustQ("Mt CH4 / yr"), "Mt CO2 / yr")
//		...
//	})
//
// Scopes are immutable values. Entering a context returns a new scope and
// leaves the parent untouched, which gives stack discipline and makes scopes
// safe to share between goroutines. A scope can also be carried in a
// context.Context (ContextWithScope, Registry.From).
//
// When several active contexts define a rule for the same pair of
// dimensions, the most recently entered context wins.
package units
