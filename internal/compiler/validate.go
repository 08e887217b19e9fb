package compiler

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mikapfl/openscm-units/internal/ir"
	"github.com/mikapfl/openscm-units/internal/units"
)

// Validation error codes (E200-E299)
const (
	// Unit errors (E201-E209)
	ErrUnitForm          = "E201" // exactly one of dimension or definition
	ErrDuplicateName     = "E202" // name defined twice
	ErrInvalidName       = "E203" // name is not a valid unit token
	ErrDefinitionCycle   = "E204" // unit definitions refer to each other
	ErrUnknownReference  = "E205" // expression refers to an undefined unit
	ErrInvalidExpression = "E206" // expression does not lex

	// Alias errors (E210-E219)
	ErrAliasUnknownTarget = "E210" // alias points at no canonical unit
	ErrAliasShadowsUnit   = "E211" // alias has the name of a canonical unit

	// Context errors (E220-E229)
	ErrEmptyContext  = "E220" // context has no rules
	ErrInvalidFactor = "E221" // factor is not a positive number expression

	// Metric and mixture errors (E230-E239)
	ErrMetricReference  = "E230" // reference missing or also listed as a value
	ErrUnknownSpecies   = "E231" // metric or mixture lists an undefined species
	ErrMixtureFractions = "E232" // fractions do not sum to one
)

// MixtureTolerance is the allowed deviation of a mixture's fractions from 1.
const MixtureTolerance = 1e-6

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// namePattern matches names the expression lexer reads as one token.
var namePattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

// factorPattern matches numeric factor expressions: numbers, operators and
// parentheses only.
var factorPattern = regexp.MustCompile(`^[0-9eE.+\-*/^() ]+$`)

// Validate checks compiled definitions against the table invariants.
// Returns all errors found (does not fail-fast).
func Validate(defs *ir.Definitions) []ValidationError {
	var errs []ValidationError

	canonical := make(map[string]ir.UnitSpec, len(defs.Units))
	for i, u := range defs.Units {
		field := fmt.Sprintf("units[%d]", i)

		// E202: duplicate canonical name
		if _, dup := canonical[u.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate unit name: %q", u.Name),
				Code:    ErrDuplicateName,
			})
		}
		canonical[u.Name] = u

		// E203: name must be a single token
		if !namePattern.MatchString(u.Name) {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("invalid unit name %q", u.Name),
				Code:    ErrInvalidName,
			})
		}

		// E201: exactly one of dimension or definition
		if (strings.TrimSpace(u.Dimension) == "") == (strings.TrimSpace(u.Definition) == "") {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unit %q needs exactly one of dimension or definition", u.Name),
				Code:    ErrUnitForm,
			})
		}
	}

	aliases := make(map[string]string, len(defs.Aliases))
	for i, a := range defs.Aliases {
		field := fmt.Sprintf("aliases[%d]", i)

		if _, dup := aliases[a.Alias]; dup {
			errs = append(errs, ValidationError{
				Field:   field + ".alias",
				Message: fmt.Sprintf("duplicate alias: %q", a.Alias),
				Code:    ErrDuplicateName,
			})
		}
		aliases[a.Alias] = a.Canonical

		if !namePattern.MatchString(a.Alias) {
			errs = append(errs, ValidationError{
				Field:   field + ".alias",
				Message: fmt.Sprintf("invalid alias %q", a.Alias),
				Code:    ErrInvalidName,
			})
		}

		// E210: aliases point at canonical names only, so they cannot chain
		if _, ok := canonical[a.Canonical]; !ok {
			errs = append(errs, ValidationError{
				Field:   field + ".canonical",
				Message: fmt.Sprintf("alias %q points at undefined unit %q", a.Alias, a.Canonical),
				Code:    ErrAliasUnknownTarget,
			})
		}

		// E211: an alias never hides a canonical unit
		if _, ok := canonical[a.Alias]; ok {
			errs = append(errs, ValidationError{
				Field:   field + ".alias",
				Message: fmt.Sprintf("alias %q shadows a canonical unit", a.Alias),
				Code:    ErrAliasShadowsUnit,
			})
		}
	}

	n := newNameTable(canonical, aliases)

	for i, u := range defs.Units {
		if u.Definition == "" {
			continue
		}
		errs = append(errs, n.checkExpression(fmt.Sprintf("units[%d].definition", i), u.Definition)...)
	}

	// E204: definition cycles
	for _, cycle := range FindDefinitionCycles(defs) {
		errs = append(errs, ValidationError{
			Field:   "units",
			Message: fmt.Sprintf("definition cycle: %s", strings.Join(cycle, " -> ")),
			Code:    ErrDefinitionCycle,
		})
	}

	contexts := make(map[string]bool, len(defs.Contexts))
	for i, ctx := range defs.Contexts {
		field := fmt.Sprintf("contexts[%d]", i)

		if contexts[ctx.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate context name: %q", ctx.Name),
				Code:    ErrDuplicateName,
			})
		}
		contexts[ctx.Name] = true

		// E220: a context without rules can never change a conversion
		if len(ctx.Rules) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".rules",
				Message: fmt.Sprintf("context %q has no rules", ctx.Name),
				Code:    ErrEmptyContext,
			})
		}

		for j, rule := range ctx.Rules {
			rf := fmt.Sprintf("%s.rules[%d]", field, j)
			errs = append(errs, n.checkExpression(rf+".from", rule.From)...)
			errs = append(errs, n.checkExpression(rf+".to", rule.To)...)

			// E221: factor must be numeric; positivity is checked when the
			// expression can be read as a plain number
			if !factorPattern.MatchString(rule.Factor) {
				errs = append(errs, ValidationError{
					Field:   rf + ".factor",
					Message: fmt.Sprintf("factor %q is not a numeric expression", rule.Factor),
					Code:    ErrInvalidFactor,
				})
			} else if f, err := strconv.ParseFloat(strings.TrimSpace(rule.Factor), 64); err == nil && !(f > 0) {
				errs = append(errs, ValidationError{
					Field:   rf + ".factor",
					Message: fmt.Sprintf("factor %q must be positive", rule.Factor),
					Code:    ErrInvalidFactor,
				})
			}
		}
	}

	for i, m := range defs.Metrics {
		field := fmt.Sprintf("metrics[%d]", i)

		// E230: reference must exist and not be listed against itself
		if !n.defined(m.Reference) {
			errs = append(errs, ValidationError{
				Field:   field + ".reference",
				Message: fmt.Sprintf("metric %q uses undefined reference %q", m.Name, m.Reference),
				Code:    ErrMetricReference,
			})
		}
		if _, ok := m.Values[m.Reference]; ok {
			errs = append(errs, ValidationError{
				Field:   field + ".values." + m.Reference,
				Message: fmt.Sprintf("metric %q lists its reference %q as a value", m.Name, m.Reference),
				Code:    ErrMetricReference,
			})
		}

		// E231: every species must exist
		for _, species := range sortedKeys(m.Values) {
			if !n.defined(species) {
				errs = append(errs, ValidationError{
					Field:   field + ".values." + species,
					Message: fmt.Sprintf("metric %q lists undefined species %q", m.Name, species),
					Code:    ErrUnknownSpecies,
				})
			}
		}
	}

	for i, mix := range defs.Mixtures {
		field := fmt.Sprintf("mixtures[%d]", i)

		sum := 0.0
		for _, species := range sortedKeys(mix.Constituents) {
			if !n.defined(species) {
				errs = append(errs, ValidationError{
					Field:   field + ".constituents." + species,
					Message: fmt.Sprintf("mixture %q lists undefined species %q", mix.Name, species),
					Code:    ErrUnknownSpecies,
				})
			}
			f, err := strconv.ParseFloat(mix.Constituents[species], 64)
			if err != nil {
				errs = append(errs, ValidationError{
					Field:   field + ".constituents." + species,
					Message: fmt.Sprintf("fraction %q is not a number", mix.Constituents[species]),
					Code:    ErrMixtureFractions,
				})
				continue
			}
			sum += f
		}

		// E232: fractions are mass fractions of the whole blend
		if math.Abs(sum-1) > MixtureTolerance {
			errs = append(errs, ValidationError{
				Field:   field + ".constituents",
				Message: fmt.Sprintf("fractions of mixture %q sum to %g, want 1", mix.Name, sum),
				Code:    ErrMixtureFractions,
			})
		}
	}

	return errs
}

// nameTable answers whether a token resolves, following the registry's
// lookup order: exact name or alias, SI prefix plus name, plural "s".
type nameTable struct {
	canonical map[string]ir.UnitSpec
	aliases   map[string]string
}

func newNameTable(canonical map[string]ir.UnitSpec, aliases map[string]string) *nameTable {
	return &nameTable{canonical: canonical, aliases: aliases}
}

func (n *nameTable) defined(name string) bool {
	if _, ok := n.canonical[name]; ok {
		return true
	}
	_, ok := n.aliases[name]
	return ok
}

func (n *nameTable) resolvable(name string) bool {
	if n.resolvableSingular(name) {
		return true
	}
	if stem, ok := strings.CutSuffix(name, "s"); ok && stem != "" {
		return n.resolvableSingular(stem)
	}
	return false
}

func (n *nameTable) resolvableSingular(name string) bool {
	if n.defined(name) {
		return true
	}
	for _, p := range units.Prefixes() {
		for _, form := range []string{p.Symbol, p.Name} {
			if rest, ok := strings.CutPrefix(name, form); ok && rest != "" && n.defined(rest) {
				return true
			}
		}
	}
	return false
}

// checkExpression reports names in expr that no lookup can resolve.
func (n *nameTable) checkExpression(field, expr string) []ValidationError {
	names, err := units.Names(expr)
	if err != nil {
		return []ValidationError{{
			Field:   field,
			Message: err.Error(),
			Code:    ErrInvalidExpression,
		}}
	}

	var errs []ValidationError
	for _, name := range names {
		if !n.resolvable(name) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q refers to undefined unit %q", expr, name),
				Code:    ErrUnknownReference,
			})
		}
	}
	return errs
}
