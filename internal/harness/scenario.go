package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRTol is the relative tolerance used when an expect clause or an
// assertion does not give one.
const DefaultRTol = 1e-9

// Scenario is a conformance scenario: a sequence of steps against one
// scope stack plus assertions over the resulting trace.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Definitions is an optional directory of CUE definitions. Relative
	// paths are resolved against the scenario file. When empty the
	// embedded tables are used.
	Definitions string `yaml:"definitions,omitempty"`

	Steps []Step `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one of enter, exit or convert. Exactly one must be set.
type Step struct {
	Enter   string      `yaml:"enter,omitempty"`
	Exit    bool        `yaml:"exit,omitempty"`
	Convert *Conversion `yaml:"convert,omitempty"`

	// Expect checks the outcome of enter or convert.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Conversion converts Value (default 1) From one unit expression To another.
type Conversion struct {
	Value *float64 `yaml:"value,omitempty"`
	From  string   `yaml:"from"`
	To    string   `yaml:"to"`
}

// Magnitude returns the value to convert.
func (c *Conversion) Magnitude() float64 {
	if c.Value == nil {
		return 1
	}
	return *c.Value
}

// Expect specifies either the expected magnitude or the expected error code.
type Expect struct {
	Magnitude *float64 `yaml:"magnitude,omitempty"`
	RTol      *float64 `yaml:"rtol,omitempty"`
	Error     string   `yaml:"error,omitempty"`
}

// Tolerance returns RTol or DefaultRTol.
func (e *Expect) Tolerance() float64 {
	if e.RTol == nil {
		return DefaultRTol
	}
	return *e.RTol
}

// Assertion validates the run after all steps.
type Assertion struct {
	Type string `yaml:"type"`

	// Event and Count are used by trace_count.
	Event string `yaml:"event,omitempty"`
	Count *int   `yaml:"count,omitempty"`

	// Contexts is the expected entry order for trace_order and the active
	// contexts for reciprocal.
	Contexts []string `yaml:"contexts,omitempty"`

	// From and To are used by reciprocal.
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`

	// Metric, Mixture, Constituents and Reference are used by
	// mixture_identity. Reference defaults to CO2.
	Metric       string             `yaml:"metric,omitempty"`
	Mixture      string             `yaml:"mixture,omitempty"`
	Constituents map[string]float64 `yaml:"constituents,omitempty"`
	Reference    string             `yaml:"reference,omitempty"`

	RTol *float64 `yaml:"rtol,omitempty"`
}

// Tolerance returns RTol or DefaultRTol.
func (a *Assertion) Tolerance() float64 {
	if a.RTol == nil {
		return DefaultRTol
	}
	return *a.RTol
}

// Assertion type constants.
const (
	AssertTraceCount      = "trace_count"
	AssertTraceOrder      = "trace_order"
	AssertReciprocal      = "reciprocal"
	AssertMixtureIdentity = "mixture_identity"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so that typos ("asertions:") fail loudly. A relative
// Definitions path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Definitions != "" && !filepath.IsAbs(scenario.Definitions) {
		scenario.Definitions = filepath.Join(filepath.Dir(path), scenario.Definitions)
	}
	if scenario.Definitions != "" {
		if _, err := os.Stat(scenario.Definitions); err != nil {
			return nil, fmt.Errorf("invalid scenario: definitions directory not found: %s", scenario.Definitions)
		}
	}
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, sorted by path.
// filter, when not empty, is a glob matched against the file name without
// its extension.
func LoadScenarios(dir, filter string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(e.Name(), ext))
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s *Step) error {
	set := 0
	if s.Enter != "" {
		set++
	}
	if s.Exit {
		set++
	}
	if s.Convert != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of enter, exit or convert is required", index)
	}

	if s.Convert != nil && (s.Convert.From == "" || s.Convert.To == "") {
		return fmt.Errorf("steps[%d].convert: from and to are required", index)
	}

	if s.Expect != nil {
		if s.Exit {
			return fmt.Errorf("steps[%d]: exit takes no expect clause", index)
		}
		if (s.Expect.Magnitude == nil) == (s.Expect.Error == "") {
			return fmt.Errorf("steps[%d].expect: exactly one of magnitude or error is required", index)
		}
		if s.Expect.Magnitude != nil && s.Convert == nil {
			return fmt.Errorf("steps[%d].expect: magnitude only applies to convert", index)
		}
		if s.Expect.RTol != nil && *s.Expect.RTol < 0 {
			return fmt.Errorf("steps[%d].expect: rtol must be non-negative", index)
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.RTol != nil && *a.RTol < 0 {
		return fmt.Errorf("assertions[%d]: rtol must be non-negative", index)
	}

	switch a.Type {
	case AssertTraceCount:
		switch a.Event {
		case EventEnter, EventExit, EventConvert:
		default:
			return fmt.Errorf("assertions[%d]: event must be one of enter, exit, convert for trace_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for trace_count", index)
		}
	case AssertTraceOrder:
		if len(a.Contexts) == 0 {
			return fmt.Errorf("assertions[%d]: contexts list is required for trace_order", index)
		}
	case AssertReciprocal:
		if a.From == "" || a.To == "" {
			return fmt.Errorf("assertions[%d]: from and to are required for reciprocal", index)
		}
	case AssertMixtureIdentity:
		if a.Metric == "" || a.Mixture == "" {
			return fmt.Errorf("assertions[%d]: metric and mixture are required for mixture_identity", index)
		}
		if len(a.Constituents) == 0 {
			return fmt.Errorf("assertions[%d]: constituents are required for mixture_identity", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
