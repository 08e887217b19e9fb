package compiler

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/mikapfl/openscm-units/internal/ir"
)

// MixtureContextSuffix is appended to the upper-cased mixture name to name
// the context generated for each mixture ("HFC410A_conversions").
const MixtureContextSuffix = "_conversions"

// Joint unit prefixes generated for every species: g<species> and t<species>.
var jointMassUnits = []string{"g", "t"}

// CompileDefinitions parses a definitions document into IR.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value is the whole document, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`units: g: dimension: "mass"`)
//	defs, err := CompileDefinitions(v)
//
// Besides the declared tables the compiler generates joint mass units,
// dimension-name and upper-case aliases for species, one context per metric
// and one context per mixture. The result is sorted; it is not validated
// (see Validate).
func CompileDefinitions(v cue.Value) (*ir.Definitions, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	c := &collector{
		defs:    &ir.Definitions{Version: ir.DefinitionsVersion},
		taken:   make(map[string]bool),
		species: make(map[string]ir.UnitSpec),
	}

	if err := c.parseUnits(v.LookupPath(cue.ParsePath("units")), false); err != nil {
		return nil, err
	}
	if err := c.parseUnits(v.LookupPath(cue.ParsePath("species")), true); err != nil {
		return nil, err
	}
	if err := c.parseMixtures(v.LookupPath(cue.ParsePath("mixtures"))); err != nil {
		return nil, err
	}
	if err := c.parseContexts(v.LookupPath(cue.ParsePath("contexts"))); err != nil {
		return nil, err
	}
	if err := c.parseMetrics(v.LookupPath(cue.ParsePath("metrics"))); err != nil {
		return nil, err
	}

	c.generateJointUnits()
	c.generateAliases()

	c.defs.Sort()
	return c.defs, nil
}

// collector accumulates IR while walking the document.
type collector struct {
	defs *ir.Definitions

	// taken holds every canonical name and alias seen so far.
	taken map[string]bool

	// species in declaration order, for alias and joint unit generation.
	order   []string
	species map[string]ir.UnitSpec
}

func (c *collector) claim(name, field string, pos token.Pos) error {
	if c.taken[name] {
		return &CompileError{
			Field:   field,
			Message: fmt.Sprintf("name %q is already defined", name),
			Pos:     pos,
		}
	}
	c.taken[name] = true
	return nil
}

// parseUnits reads the units or species table.
func (c *collector) parseUnits(v cue.Value, species bool) error {
	if !v.Exists() {
		return nil
	}
	section := "units"
	if species {
		section = "species"
	}

	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		val := iter.Value()
		field := section + "." + name

		spec := ir.UnitSpec{Name: name, Species: species}
		if spec.Dimension, err = optionalString(val, "dimension"); err != nil {
			return err
		}
		if spec.Definition, err = optionalString(val, "definition"); err != nil {
			return err
		}
		if (spec.Dimension == "") == (spec.Definition == "") {
			return &CompileError{
				Field:   field,
				Message: "exactly one of dimension or definition is required",
				Pos:     val.Pos(),
			}
		}

		if err := c.claim(name, field, val.Pos()); err != nil {
			return err
		}
		c.defs.Units = append(c.defs.Units, spec)
		if species {
			c.order = append(c.order, name)
			c.species[name] = spec
		}

		aliases, err := stringList(val.LookupPath(cue.ParsePath("aliases")))
		if err != nil {
			return err
		}
		for _, alias := range aliases {
			if err := c.claim(alias, field+".aliases", val.Pos()); err != nil {
				return err
			}
			c.defs.Aliases = append(c.defs.Aliases, ir.AliasSpec{Alias: alias, Canonical: name})
		}
	}
	return nil
}

// parseMixtures reads the mixtures table. Every mixture becomes a species of
// its own dimension plus a context relating it to its constituents.
func (c *collector) parseMixtures(v cue.Value) error {
	if !v.Exists() {
		return nil
	}

	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		val := iter.Value()
		field := "mixtures." + name

		constituents, order, err := numberMap(val.LookupPath(cue.ParsePath("constituents")))
		if err != nil {
			return err
		}
		if len(constituents) == 0 {
			return &CompileError{
				Field:   field + ".constituents",
				Message: "a mixture needs at least one constituent",
				Pos:     val.Pos(),
			}
		}

		if err := c.claim(name, field, val.Pos()); err != nil {
			return err
		}
		spec := ir.UnitSpec{Name: name, Dimension: name, Species: true}
		c.defs.Units = append(c.defs.Units, spec)
		c.order = append(c.order, name)
		c.species[name] = spec

		mixture := ir.MixtureSpec{
			Name:         name,
			Context:      strings.ToUpper(name) + MixtureContextSuffix,
			Constituents: constituents,
		}
		c.defs.Mixtures = append(c.defs.Mixtures, mixture)

		ctx := ir.ContextSpec{
			Name:        mixture.Context,
			Description: fmt.Sprintf("Relates the %s blend to its constituents by mass fraction.", name),
			Source:      ir.SourceMixture,
		}
		for _, constituent := range order {
			ctx.Rules = append(ctx.Rules, ir.RuleSpec{
				From:   constituent,
				To:     name,
				Factor: constituents[constituent],
			})
		}
		c.defs.Contexts = append(c.defs.Contexts, ctx)
	}
	return nil
}

// parseContexts reads explicitly declared contexts.
func (c *collector) parseContexts(v cue.Value) error {
	if !v.Exists() {
		return nil
	}

	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		val := iter.Value()

		ctx := ir.ContextSpec{Name: name, Source: ir.SourceContext}
		if ctx.Description, err = optionalString(val, "description"); err != nil {
			return err
		}

		rules, err := val.LookupPath(cue.ParsePath("rules")).List()
		if err != nil {
			return formatCUEError(err)
		}
		for rules.Next() {
			rv := rules.Value()
			var rule ir.RuleSpec
			if rule.From, err = requiredString(rv, "from"); err != nil {
				return err
			}
			if rule.To, err = requiredString(rv, "to"); err != nil {
				return err
			}
			if rule.Factor, err = requiredString(rv, "factor"); err != nil {
				return err
			}
			ctx.Rules = append(ctx.Rules, rule)
		}

		c.defs.Contexts = append(c.defs.Contexts, ctx)
	}
	return nil
}

// parseMetrics reads metric tables and generates one context per metric.
func (c *collector) parseMetrics(v cue.Value) error {
	if !v.Exists() {
		return nil
	}

	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		val := iter.Value()

		metric := ir.MetricSpec{Name: name}
		if metric.Description, err = optionalString(val, "description"); err != nil {
			return err
		}
		if metric.Reference, err = requiredString(val, "reference"); err != nil {
			return err
		}
		values, order, err := numberMap(val.LookupPath(cue.ParsePath("values")))
		if err != nil {
			return err
		}
		metric.Values = values
		c.defs.Metrics = append(c.defs.Metrics, metric)

		ctx := ir.ContextSpec{
			Name:        name,
			Description: metric.Description,
			Source:      ir.SourceMetric,
		}
		for _, species := range order {
			ctx.Rules = append(ctx.Rules, ir.RuleSpec{
				From:   species,
				To:     metric.Reference,
				Factor: values[species],
			})
		}
		c.defs.Contexts = append(c.defs.Contexts, ctx)
	}
	return nil
}

// generateJointUnits adds g<species> and t<species> for every species,
// skipping names the document already uses. Nothing is generated for a mass
// unit the document does not define.
func (c *collector) generateJointUnits() {
	for _, mass := range jointMassUnits {
		if !c.isUnit(mass) {
			continue
		}
		for _, name := range c.order {
			joint := mass + name
			if c.taken[joint] {
				continue
			}
			c.taken[joint] = true
			c.defs.Units = append(c.defs.Units, ir.UnitSpec{
				Name:       joint,
				Definition: mass + " * " + name,
				Species:    true,
			})
		}
	}
}

// generateAliases adds the dimension-name alias and the upper-case alias of
// every species, and the upper-case alias of its joint units. A generated
// alias never replaces a name the document or an earlier generated alias
// already uses.
func (c *collector) generateAliases() {
	add := func(alias, canonical string) {
		if alias == canonical || c.taken[alias] {
			return
		}
		c.taken[alias] = true
		c.defs.Aliases = append(c.defs.Aliases, ir.AliasSpec{
			Alias:     alias,
			Canonical: canonical,
			Generated: true,
		})
	}

	for _, name := range c.order {
		spec := c.species[name]
		if spec.Dimension != "" {
			add(spec.Dimension, name)
		}
	}

	for _, name := range c.order {
		upper := strings.ToUpper(name)
		if upper == name {
			continue
		}
		add(upper, name)
		for _, mass := range jointMassUnits {
			// only when the joint unit itself was generated
			if joint := mass + name; c.isUnit(joint) {
				add(mass+upper, joint)
			}
		}
	}
}

func (c *collector) isUnit(name string) bool {
	for _, u := range c.defs.Units {
		if u.Name == name {
			return true
		}
	}
	return false
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return strings.TrimSpace(s), nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return strings.TrimSpace(s), nil
}

func stringList(v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// numberMap reads a struct of numbers into decimal strings, returning the
// labels in declaration order as well.
func numberMap(v cue.Value) (map[string]string, []string, error) {
	out := make(map[string]string)
	if !v.Exists() {
		return out, nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, nil, formatCUEError(err)
	}
	var order []string
	for iter.Next() {
		f, err := iter.Value().Float64()
		if err != nil {
			return nil, nil, formatCUEError(err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, nil, &CompileError{
				Field:   iter.Label(),
				Message: "value must be finite",
				Pos:     iter.Value().Pos(),
			}
		}
		out[iter.Label()] = strconv.FormatFloat(f, 'g', -1, 64)
		order = append(order, iter.Label())
	}
	return out, order, nil
}

// sortedKeys returns the keys of m in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
