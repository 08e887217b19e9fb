package harness

import (
	"errors"
	"fmt"
	"strconv"

	"cuelang.org/go/cue/cuecontext"

	openscmunits "github.com/mikapfl/openscm-units"
	"github.com/mikapfl/openscm-units/internal/definitions"
	"github.com/mikapfl/openscm-units/internal/testutil"
	"github.com/mikapfl/openscm-units/internal/units"
)

// Harness executes the steps of one scenario.
type Harness struct {
	reg   *units.Registry
	scope *units.Scope
	seq   *testutil.StepCounter
}

// Run executes a scenario on a fresh registry and returns the result.
//
// A failed expect clause or assertion marks the result as failed; the error
// return is reserved for scenarios that cannot run at all (for example an
// invalid definitions directory).
func Run(scenario *Scenario) (*Result, error) {
	reg, err := newRegistry(scenario.Definitions)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		reg:   reg,
		scope: reg.Root(),
		seq:   testutil.NewStepCounter(),
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.execute(i, step, result)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, &AssertionContext{Registry: reg}) {
		result.AddError(msg)
	}
	return result, nil
}

func newRegistry(dir string) (*units.Registry, error) {
	tokens := openscmunits.WithTokenGenerator(testutil.NewSequentialTokens("scope"))
	if dir == "" {
		reg, err := openscmunits.New(tokens)
		if err != nil {
			return nil, fmt.Errorf("failed to build registry: %w", err)
		}
		return reg, nil
	}

	v, _, err := definitions.LoadDir(cuecontext.New(), dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}
	reg, err := openscmunits.NewFromValue(v, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	return reg, nil
}

func (h *Harness) execute(index int, step Step, result *Result) {
	switch {
	case step.Enter != "":
		h.enter(index, step, result)
	case step.Exit:
		h.exit()
		event := TraceEvent{
			Seq:   h.seq.Next(),
			Type:  EventExit,
			Depth: h.scope.Depth(),
		}
		result.AddEvent(event)
	case step.Convert != nil:
		h.convert(index, step, result)
	}
}

func (h *Harness) enter(index int, step Step, result *Result) {
	event := TraceEvent{
		Seq:     h.seq.Next(),
		Type:    EventEnter,
		Context: step.Enter,
	}

	child, err := h.scope.Enter(step.Enter)
	if err != nil {
		event.Error = errorCode(err)
		event.Depth = h.scope.Depth()
	} else {
		h.scope = child
		event.Scope = child.Token()
		event.Depth = child.Depth()
	}
	result.AddEvent(event)

	checkExpect(index, step.Expect, event, err, 0, result)
}

func (h *Harness) exit() {
	h.scope = h.scope.Exit()
}

func (h *Harness) convert(index int, step Step, result *Result) {
	c := step.Convert
	event := TraceEvent{
		Seq:   h.seq.Next(),
		Type:  EventConvert,
		Depth: h.scope.Depth(),
		From:  c.From,
		To:    c.To,
		Value: formatMagnitude(c.Magnitude()),
	}
	if h.scope.Active() {
		event.Scope = h.scope.Token()
	}

	var magnitude float64
	q, err := h.reg.Quantity(c.Magnitude(), c.From)
	if err == nil {
		var out units.Quantity
		out, err = h.scope.Convert(q, c.To)
		magnitude = out.Magnitude
	}
	if err != nil {
		event.Error = errorCode(err)
	} else {
		event.Magnitude = formatMagnitude(magnitude)
	}
	result.AddEvent(event)

	checkExpect(index, step.Expect, event, err, magnitude, result)
}

// checkExpect compares a step outcome against its expect clause. Without a
// clause the step is expected to succeed.
func checkExpect(index int, expect *Expect, event TraceEvent, err error, magnitude float64, result *Result) {
	label := fmt.Sprintf("steps[%d] (%s)", index, describe(event))

	if expect == nil {
		if err != nil {
			result.AddError(fmt.Sprintf("%s: unexpected error: %v", label, err))
		}
		return
	}

	if expect.Error != "" {
		if err == nil {
			result.AddError(fmt.Sprintf("%s: expected error %s, got success", label, expect.Error))
			return
		}
		if got := errorCode(err); got != expect.Error {
			result.AddError(fmt.Sprintf("%s: expected error %s, got %s", label, expect.Error, got))
		}
		return
	}

	if err != nil {
		result.AddError(fmt.Sprintf("%s: unexpected error: %v", label, err))
		return
	}
	if expect.Magnitude != nil && !testutil.Close(*expect.Magnitude, magnitude, expect.Tolerance()) {
		result.AddError(fmt.Sprintf("%s: expected magnitude %v (rtol %g), got %v",
			label, *expect.Magnitude, expect.Tolerance(), magnitude))
	}
}

func describe(e TraceEvent) string {
	switch e.Type {
	case EventEnter:
		return "enter " + e.Context
	case EventConvert:
		return fmt.Sprintf("convert %s %s to %s", e.Value, e.From, e.To)
	default:
		return e.Type
	}
}

// errorCode returns the registry error code of err, or "ERROR" for errors
// that did not come from the registry.
func errorCode(err error) string {
	var e *units.Error
	if errors.As(err, &e) {
		return string(e.Code)
	}
	return "ERROR"
}

func formatMagnitude(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
