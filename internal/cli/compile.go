package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mikapfl/openscm-units/internal/compiler"
	"github.com/mikapfl/openscm-units/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	Units       int    `json:"units"`
	Aliases     int    `json:"aliases"`
	Contexts    int    `json:"contexts"`
	Metrics     int    `json:"metrics"`
	Mixtures    int    `json:"mixtures"`
	Fingerprint string `json:"fingerprint"`
	Output      string `json:"output,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [defs-dir]",
		Short: "Compile definitions to canonical IR",
		Long: `Compile a CUE definitions document to canonical IR.

Without a directory the embedded tables are compiled. Generated units
(the "t CO2" joint spellings), generated aliases and the metric and
mixture contexts are all part of the output, and the fingerprint is the
hash of its canonical JSON form.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.Defs
			if len(args) == 1 {
				dir = args[0]
			}
			return runCompile(opts, dir, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, defsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, err := LoadDefinitions(defsDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCompileError(formatter, ErrCodeGeneric, err.Error())
	}
	formatter.VerboseLog("Compiling %s (%d file(s))", loadResult.Source, loadResult.FileCount)

	defs := loadResult.Definitions
	if errs := compiler.Validate(defs); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	fingerprint, err := ir.Fingerprint(defs)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("fingerprint: %v", err))
	}

	stats := CompilationStats{
		Units:       len(defs.Units),
		Aliases:     len(defs.Aliases),
		Contexts:    len(defs.Contexts),
		Metrics:     len(defs.Metrics),
		Mixtures:    len(defs.Mixtures),
		Fingerprint: fingerprint,
		Output:      opts.Output,
	}

	if opts.Output != "" {
		if err := writeIRToFile(defs, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	if formatter.JSON() {
		return formatter.Success(stats)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d unit(s), %d alias(es), %d context(s), %d metric(s), %d mixture(s)\n",
		stats.Units, stats.Aliases, stats.Contexts, stats.Metrics, stats.Mixtures)
	fmt.Fprintf(formatter.Writer, "Fingerprint: %s\n", stats.Fingerprint)
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "Wrote canonical IR to %s\n", opts.Output)
	}
	return nil
}

// outputCompileError reports a document that could not be compiled.
// Compilation errors exit with 2.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// writeIRToFile writes the definitions in canonical JSON form.
func writeIRToFile(defs *ir.Definitions, filename string) error {
	data, err := ir.MarshalCanonical(defs.CanonicalMap())
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
