package openscmunits

import "github.com/mikapfl/openscm-units/internal/units"

// Type aliases exposing the engine types to callers.
type (
	// Registry is an alias of units.Registry, the read-only unit table.
	Registry = units.Registry
	// Quantity is an alias of units.Quantity, a magnitude with its unit.
	Quantity = units.Quantity
	// Unit is an alias of units.Unit.
	Unit = units.Unit
	// Scope is an alias of units.Scope, one node of a context stack.
	Scope = units.Scope
	// Context is an alias of units.Context, a compiled set of conversion rules.
	Context = units.Context
	// Dimension is an alias of units.Dimension.
	Dimension = units.Dimension
	// Error is an alias of units.Error returned by every registry operation.
	Error = units.Error
	// ErrorCode is an alias of units.ErrorCode.
	ErrorCode = units.ErrorCode
	// Recorder is an alias of units.Recorder.
	Recorder = units.Recorder
	// TokenGenerator is an alias of units.TokenGenerator.
	TokenGenerator = units.TokenGenerator
)

// Error codes.
const (
	ErrCodeUnknownUnit       = units.ErrCodeUnknownUnit       // Name not in the registry
	ErrCodeDimensionality    = units.ErrCodeDimensionality    // No conversion path
	ErrCodeUnknownContext    = units.ErrCodeUnknownContext    // Context not defined
	ErrCodeInvalidExpression = units.ErrCodeInvalidExpression // Malformed expression
)

// Sentinel errors for use with errors.Is.
var (
	ErrUnknownUnit       = units.ErrUnknownUnit
	ErrDimensionality    = units.ErrDimensionality
	ErrUnknownContext    = units.ErrUnknownContext
	ErrInvalidExpression = units.ErrInvalidExpression
)

// IsUnknownUnit reports whether err is an UNKNOWN_UNIT error.
func IsUnknownUnit(err error) bool { return units.IsUnknownUnit(err) }

// IsDimensionality reports whether err is a DIMENSIONALITY error.
func IsDimensionality(err error) bool { return units.IsDimensionality(err) }

// IsUnknownContext reports whether err is an UNKNOWN_CONTEXT error.
func IsUnknownContext(err error) bool { return units.IsUnknownContext(err) }
