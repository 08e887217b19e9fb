package ir

import "sort"

// Context sources record where a ContextSpec came from in the document.
const (
	SourceContext = "context" // declared under contexts:
	SourceMetric  = "metric"  // generated from a metric table
	SourceMixture = "mixture" // generated from a mixture composition
)

// UnitSpec defines one canonical unit.
//
// Exactly one of Dimension and Definition is set. A unit with a Dimension is
// the base unit of a new dimension ("C" is the base unit of [carbon]); a unit
// with a Definition is a scaled expression over other units ("12/44 * C").
type UnitSpec struct {
	Name       string `json:"name"`
	Dimension  string `json:"dimension,omitempty"`
	Definition string `json:"definition,omitempty"`

	// Species marks gas species, as opposed to physical units (g, s, ppm).
	Species bool `json:"species,omitempty"`
}

// IsBase reports whether the unit is the base unit of its own dimension.
func (u UnitSpec) IsBase() bool {
	return u.Dimension != ""
}

// AliasSpec maps an alternate spelling to a canonical unit name.
type AliasSpec struct {
	Alias     string `json:"alias"`
	Canonical string `json:"canonical"`

	// Generated is true for aliases derived by the compiler (upper-case
	// spellings, dimension names) rather than listed in the document.
	Generated bool `json:"generated,omitempty"`
}

// RuleSpec is a single conversion rule inside a context: one From equals
// Factor To. The reverse direction is implied.
type RuleSpec struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Factor string `json:"factor"`
}

// ContextSpec is a named set of conversion rules.
type ContextSpec struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Source      string     `json:"source"`
	Rules       []RuleSpec `json:"rules"`
}

// MetricSpec is a metric table such as a GWP100 set. Values map species to
// the number of Reference units one unit of the species is worth.
type MetricSpec struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Reference   string            `json:"reference"`
	Values      map[string]string `json:"values"`
}

// MixtureSpec is a blend of species given as mass fractions.
type MixtureSpec struct {
	Name         string            `json:"name"`
	Context      string            `json:"context"`
	Constituents map[string]string `json:"constituents"`
}

// Definitions is the compiled form of a definitions document.
type Definitions struct {
	Version  string        `json:"version"`
	Units    []UnitSpec    `json:"units"`
	Aliases  []AliasSpec   `json:"aliases"`
	Contexts []ContextSpec `json:"contexts"`
	Metrics  []MetricSpec  `json:"metrics,omitempty"`
	Mixtures []MixtureSpec `json:"mixtures,omitempty"`
}

// Sort puts every slice into its deterministic order: units, aliases,
// contexts, metrics and mixtures by name. Rule order inside a context is
// declaration order and is left alone.
func (d *Definitions) Sort() {
	sort.Slice(d.Units, func(i, j int) bool { return d.Units[i].Name < d.Units[j].Name })
	sort.Slice(d.Aliases, func(i, j int) bool { return d.Aliases[i].Alias < d.Aliases[j].Alias })
	sort.Slice(d.Contexts, func(i, j int) bool { return d.Contexts[i].Name < d.Contexts[j].Name })
	sort.Slice(d.Metrics, func(i, j int) bool { return d.Metrics[i].Name < d.Metrics[j].Name })
	sort.Slice(d.Mixtures, func(i, j int) bool { return d.Mixtures[i].Name < d.Mixtures[j].Name })
}

// Unit returns the unit spec with the given canonical name.
func (d *Definitions) Unit(name string) (UnitSpec, bool) {
	for _, u := range d.Units {
		if u.Name == name {
			return u, true
		}
	}
	return UnitSpec{}, false
}

// Context returns the context spec with the given name.
func (d *Definitions) Context(name string) (ContextSpec, bool) {
	for _, c := range d.Contexts {
		if c.Name == name {
			return c, true
		}
	}
	return ContextSpec{}, false
}

// Metric returns the metric table with the given name.
func (d *Definitions) Metric(name string) (MetricSpec, bool) {
	for _, m := range d.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return MetricSpec{}, false
}

// ContextNames returns all context names in sorted order.
func (d *Definitions) ContextNames() []string {
	names := make([]string, len(d.Contexts))
	for i, c := range d.Contexts {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names
}

// AliasesOf returns the aliases pointing at canonical, sorted.
func (d *Definitions) AliasesOf(canonical string) []string {
	var out []string
	for _, a := range d.Aliases {
		if a.Canonical == canonical {
			out = append(out, a.Alias)
		}
	}
	sort.Strings(out)
	return out
}
