// Package harness runs conformance scenarios against a unit registry.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: nox_conversions
//	description: "NOx bridges to N only inside NOx_conversions"
//	definitions: ./defs        # optional CUE directory; embedded tables if empty
//	steps:
//	  - convert: {from: NOx, to: N}
//	    expect: {error: DIMENSIONALITY}
//	  - enter: NOx_conversions
//	  - convert: {value: 46, from: NOx, to: N}
//	    expect: {magnitude: 14}
//	  - exit: true
//	assertions:
//	  - type: reciprocal
//	    from: NOx
//	    to: N
//	    contexts: [NOx_conversions]
//
// Steps run in order against one scope stack: enter pushes a context, exit
// pops one, convert converts value (default 1) from one unit expression to
// another in the current scope. An expect clause checks either the
// resulting magnitude (within rtol, default 1e-9) or the error code.
//
// # Assertion Types
//
//   - trace_count: the trace holds exactly count events of the given type
//   - trace_order: contexts were entered in the given order
//   - reciprocal: from->to and to->from multiply to 1 under contexts
//   - mixture_identity: under a metric, the mixture's reference-equivalent
//     equals the fraction-weighted sum over its constituents
//
// # Deterministic Traces
//
// Each run builds a fresh registry whose scope tokens come from
// testutil.SequentialTokens, and magnitudes are recorded with six
// significant digits, so a trace is byte-identical across runs and can be
// compared against a golden file (see RunWithGolden).
package harness
