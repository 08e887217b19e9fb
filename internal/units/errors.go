package units

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes registry errors.
type ErrorCode string

const (
	// ErrCodeUnknownUnit indicates a token matches no canonical name or alias.
	ErrCodeUnknownUnit ErrorCode = "UNKNOWN_UNIT"

	// ErrCodeDimensionality indicates there is no conversion path between two
	// units under the current scope.
	ErrCodeDimensionality ErrorCode = "DIMENSIONALITY"

	// ErrCodeUnknownContext indicates a context name is not defined.
	ErrCodeUnknownContext ErrorCode = "UNKNOWN_CONTEXT"

	// ErrCodeInvalidExpression indicates a unit expression could not be parsed.
	ErrCodeInvalidExpression ErrorCode = "INVALID_EXPRESSION"
)

// Sentinel errors for use with errors.Is.
var (
	ErrUnknownUnit       = &Error{Code: ErrCodeUnknownUnit}
	ErrDimensionality    = &Error{Code: ErrCodeDimensionality}
	ErrUnknownContext    = &Error{Code: ErrCodeUnknownContext}
	ErrInvalidExpression = &Error{Code: ErrCodeInvalidExpression}
)

// Error is returned by every registry operation.
//
// Only the fields relevant to the code are set:
//   - UNKNOWN_UNIT: Unit, plus Context when a metric has no value for Unit
//   - DIMENSIONALITY: From, To and the active Contexts
//   - UNKNOWN_CONTEXT: Context
//   - INVALID_EXPRESSION: Unit (the expression)
type Error struct {
	Code    ErrorCode
	Message string

	Unit     string
	From     string
	To       string
	Context  string
	Contexts []string

	// FromDimension and ToDimension describe From and To for DIMENSIONALITY.
	FromDimension string
	ToDimension   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeUnknownUnit:
		if e.Context != "" {
			return fmt.Sprintf("%s: %q has no value under metric %q", e.Code, e.Unit, e.Context)
		}
		return fmt.Sprintf("%s: %q is not defined in the unit registry", e.Code, e.Unit)
	case ErrCodeDimensionality:
		if len(e.Contexts) > 0 {
			return fmt.Sprintf("%s: cannot convert from %q (%s) to %q (%s) with contexts %v",
				e.Code, e.From, e.FromDimension, e.To, e.ToDimension, e.Contexts)
		}
		return fmt.Sprintf("%s: cannot convert from %q (%s) to %q (%s)",
			e.Code, e.From, e.FromDimension, e.To, e.ToDimension)
	case ErrCodeUnknownContext:
		return fmt.Sprintf("%s: context %q is not defined", e.Code, e.Context)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Is matches on the error code so errors.Is(err, ErrUnknownUnit) works for
// any *Error carrying that code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// IsUnknownUnit returns true if the error is an unknown unit error.
// Uses errors.As to handle wrapped errors.
func IsUnknownUnit(err error) bool {
	return hasCode(err, ErrCodeUnknownUnit)
}

// IsDimensionality returns true if the error reports an impossible conversion.
func IsDimensionality(err error) bool {
	return hasCode(err, ErrCodeDimensionality)
}

// IsUnknownContext returns true if the error is an unknown context error.
func IsUnknownContext(err error) bool {
	return hasCode(err, ErrCodeUnknownContext)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func unknownUnit(name string) *Error {
	return &Error{Code: ErrCodeUnknownUnit, Unit: name}
}

func notInMetric(species, metric string) *Error {
	return &Error{Code: ErrCodeUnknownUnit, Unit: species, Context: metric}
}

func unknownContext(name string) *Error {
	return &Error{Code: ErrCodeUnknownContext, Context: name}
}

func dimensionality(from, to Unit, contexts []string) *Error {
	return &Error{
		Code:          ErrCodeDimensionality,
		From:          from.String(),
		To:            to.String(),
		Contexts:      contexts,
		FromDimension: from.dims.String(),
		ToDimension:   to.dims.String(),
	}
}

func invalidExpression(expr, msg string) *Error {
	return &Error{
		Code:    ErrCodeInvalidExpression,
		Message: fmt.Sprintf("%q: %s", expr, msg),
		Unit:    expr,
	}
}

// wrapExpressionError keeps registry errors raised by the resolver intact and
// turns anything else into an INVALID_EXPRESSION error.
func wrapExpressionError(expr string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return invalidExpression(expr, err.Error())
}
