package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Contexts []string
}

// ConvertResult is the JSON payload of convert.
type ConvertResult struct {
	Value     float64  `json:"value"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Magnitude float64  `json:"magnitude"`
	Contexts  []string `json:"contexts,omitempty"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <value> <from> <to>",
		Short: "Convert a quantity between units",
		Long: `Convert a quantity from one unit expression to another.

Conversions between species need a context; pass --context once per
context, outermost first. Later contexts win where rules overlap.

Example:
  openscm-units convert 1 "Mt CH4 / yr" "Mt CO2 / yr" --context AR4GWP100
  openscm-units convert 46 NOx N --context NOx_conversions`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Contexts, "context", "c", nil, "context to activate (repeatable)")

	return cmd
}

func runConvert(opts *ConvertOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("invalid value %q", args[0]), nil)
		return WrapExitError(ExitCommandError, "invalid value", err)
	}
	from, to := args[1], args[2]

	reg, err := loadRegistry(opts.RootOptions)
	if err != nil {
		return failWith(formatter, err)
	}

	scope, err := reg.Enter(opts.Contexts...)
	if err != nil {
		return failWith(formatter, err)
	}
	q, err := reg.Quantity(value, from)
	if err != nil {
		return failWith(formatter, err)
	}
	out, err := scope.Convert(q, to)
	if err != nil {
		return failWith(formatter, err)
	}

	if formatter.JSON() {
		return formatter.Success(ConvertResult{
			Value:     value,
			From:      from,
			To:        to,
			Magnitude: out.Magnitude,
			Contexts:  opts.Contexts,
		})
	}
	fmt.Fprintf(formatter.Writer, "%s = %s\n", q, out)
	return nil
}
