package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	openscmunits "github.com/mikapfl/openscm-units"
	"github.com/mikapfl/openscm-units/internal/compiler"
	"github.com/mikapfl/openscm-units/internal/definitions"
	"github.com/mikapfl/openscm-units/internal/ir"
	"github.com/mikapfl/openscm-units/internal/units"
)

// Error code constants shared by all commands. Registry errors use the
// registry's own codes (UNKNOWN_UNIT, DIMENSIONALITY, ...); definitions
// problems use the compiler's E2xx codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load or build failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeCompile     = "E006" // Definitions do not compile
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeReadFailed  = "E008" // Input file read error
)

// LoadResult holds a loaded definitions document.
type LoadResult struct {
	Value       cue.Value
	Definitions *ir.Definitions
	FileCount   int // 0 for the embedded tables
	Source      string
}

// LoadError is a definitions loading failure with an optional position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDefinitions loads and compiles the document in dir, or the embedded
// tables when dir is empty. It does not run validation.
func LoadDefinitions(dir string) (*LoadResult, error) {
	result, err := loadValue(dir)
	if err != nil {
		return nil, err
	}

	defs, err := compiler.CompileDefinitions(result.Value)
	if err != nil {
		return nil, convertCompileError(err)
	}
	result.Definitions = defs
	return result, nil
}

func loadValue(dir string) (*LoadResult, error) {
	ctx := cuecontext.New()

	if dir == "" {
		v, err := definitions.Value(ctx)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
		}
		return &LoadResult{Value: v, Source: "embedded"}, nil
	}

	if _, err := os.Stat(dir); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("definitions directory not found: %s", dir)}
	}
	v, n, err := definitions.LoadDir(ctx, dir)
	if n == 0 && err != nil {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: err.Error()}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	}
	return &LoadResult{Value: v, FileCount: n, Source: dir}, nil
}

// loadRegistry builds the registry selected by --defs.
func loadRegistry(opts *RootOptions, regOpts ...units.Option) (*units.Registry, error) {
	res, err := loadValue(opts.Defs)
	if err != nil {
		return nil, err
	}
	reg, err := openscmunits.NewFromValue(res.Value, regOpts...)
	if err != nil {
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) {
			return nil, convertCompileError(compileErr)
		}
		return nil, err
	}
	slog.Debug("registry loaded",
		"source", res.Source,
		"units", len(reg.Definitions().Units),
		"contexts", len(reg.ContextNames()),
		"fingerprint", reg.Fingerprint())
	return reg, nil
}

// convertCompileError converts a compiler error to a LoadError carrying
// its CUE position.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompile,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeCompile, Message: err.Error()}
}

// registryErrorCode maps an error to the code shown to the user.
func registryErrorCode(err error) string {
	var ue *units.Error
	if errors.As(err, &ue) {
		return string(ue.Code)
	}
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	if de, ok := openscmunits.AsDefinitionsError(err); ok && len(de.Errors) > 0 {
		return de.Errors[0].Code
	}
	return ErrCodeGeneric
}

// failWith reports err through the formatter and returns the matching
// ExitError: registry errors fail the command (1), load errors are command
// errors (2).
func failWith(f *OutputFormatter, err error) error {
	code := registryErrorCode(err)
	message := err.Error()
	var le *LoadError
	if errors.As(err, &le) {
		message = le.Message
	}
	_ = f.Error(code, message, nil)

	exit := ExitFailure
	if le != nil {
		exit = ExitCommandError
	}
	if _, ok := openscmunits.AsDefinitionsError(err); ok {
		exit = ExitCommandError
	}
	return WrapExitError(exit, code, err)
}
