package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mikapfl/openscm-units/internal/testutil"
	"github.com/mikapfl/openscm-units/internal/units"
)

// AssertionContext carries what assertions need beyond the trace.
type AssertionContext struct {
	Registry *units.Registry
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", event.Seq, describe(event))
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertReciprocal:
			err = assertReciprocal(actx.Registry, a)
		case AssertMixtureIdentity:
			err = assertMixtureIdentity(actx.Registry, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertTraceCount checks the number of events of one type.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, e := range trace {
		if e.Type == a.Event {
			count++
		}
	}
	if count != *a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d %s event(s)", *a.Count, a.Event),
			Actual:   fmt.Sprintf("%d %s event(s)", count, a.Event),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceOrder checks that the listed contexts were entered, in order.
// Other entries may come in between.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, e := range trace {
		if next == len(a.Contexts) {
			break
		}
		if e.Type == EventEnter && e.Error == "" && e.Context == a.Contexts[next] {
			next++
		}
	}
	if next < len(a.Contexts) {
		return &AssertionError{
			Type:     AssertTraceOrder,
			Expected: fmt.Sprintf("contexts entered in order: %v", a.Contexts),
			Actual:   fmt.Sprintf("missing %s after %v", a.Contexts[next], a.Contexts[:next]),
			Trace:    trace,
		}
	}
	return nil
}

// assertReciprocal checks factor(from, to) * factor(to, from) == 1.
func assertReciprocal(reg *units.Registry, a Assertion) error {
	scope, err := reg.Enter(a.Contexts...)
	if err != nil {
		return err
	}

	fwd, err := scope.Factor(a.From, a.To)
	if err != nil {
		return err
	}
	back, err := scope.Factor(a.To, a.From)
	if err != nil {
		return err
	}

	if !testutil.Close(1/fwd, back, a.Tolerance()) {
		return &AssertionError{
			Type:     AssertReciprocal,
			Expected: fmt.Sprintf("%s->%s = 1/(%s->%s) = %v", a.To, a.From, a.From, a.To, 1/fwd),
			Actual:   fmt.Sprintf("%v", back),
		}
	}
	return nil
}

// assertMixtureIdentity checks that a mixture is worth the fraction-weighted
// sum of its constituents under a metric.
func assertMixtureIdentity(reg *units.Registry, a Assertion) error {
	ref := a.Reference
	if ref == "" {
		ref = "CO2"
	}

	scope, err := reg.Enter(a.Metric)
	if err != nil {
		return err
	}

	species := make([]string, 0, len(a.Constituents))
	for s := range a.Constituents {
		species = append(species, s)
	}
	sort.Strings(species)

	sum := 0.0
	for _, s := range species {
		f, err := scope.Factor(s, ref)
		if err != nil {
			return err
		}
		sum += a.Constituents[s] * f
	}

	mixture, err := scope.Factor(a.Mixture, ref)
	if err != nil {
		return err
	}

	if !testutil.Close(mixture, sum, a.Tolerance()) {
		return &AssertionError{
			Type:     AssertMixtureIdentity,
			Expected: fmt.Sprintf("%s = %v %s under %s", a.Mixture, mixture, ref, a.Metric),
			Actual:   fmt.Sprintf("constituents sum to %v %s", sum, ref),
		}
	}
	return nil
}
