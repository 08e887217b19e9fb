package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/mikapfl/openscm-units/internal/ir"
)

// TraceSnapshot is the golden-file form of a scenario trace.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts the snapshot into the value types
// ir.MarshalCanonical accepts. Empty optional fields are left out.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	events := make([]any, len(s.Trace))
	for i, e := range s.Trace {
		m := map[string]any{
			"seq":   e.Seq,
			"type":  e.Type,
			"depth": e.Depth,
		}
		optional := map[string]string{
			"context":   e.Context,
			"scope":     e.Scope,
			"from":      e.From,
			"to":        e.To,
			"value":     e.Value,
			"magnitude": e.Magnitude,
			"error":     e.Error,
		}
		for k, v := range optional {
			if v != "" {
				m[k] = v
			}
		}
		events[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         events,
	}
}

// MarshalTrace renders a trace as canonical JSON.
func MarshalTrace(name string, trace []TraceEvent) ([]byte, error) {
	snapshot := TraceSnapshot{ScenarioName: name, Trace: trace}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden runs a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result.Trace)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
