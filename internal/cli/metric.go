package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mikapfl/openscm-units/internal/units"
)

// MetricValue is one species' value under a metric.
type MetricValue struct {
	Metric    string  `json:"metric"`
	Species   string  `json:"species"`
	Value     float64 `json:"value"`
	Reference string  `json:"reference"`
}

// NewMetricCommand creates the metric command.
func NewMetricCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metric <metric> [species]",
		Short: "Show metric values",
		Long: `Show how many reference units one unit of a species is worth under a
metric, or the whole table when no species is given.

Example:
  openscm-units metric AR5GWP100 SO2F2
  openscm-units metric SARGWP100`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetric(rootOpts, args, cmd)
		},
	}
}

func runMetric(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	reg, err := loadRegistry(opts)
	if err != nil {
		return failWith(formatter, err)
	}

	name := args[0]
	spec, ok := reg.Definitions().Metric(name)
	if !ok {
		return failWith(formatter, &units.Error{Code: units.ErrCodeUnknownContext, Context: name})
	}

	species := make([]string, 0, len(spec.Values))
	if len(args) == 2 {
		species = append(species, args[1])
	} else {
		for s := range spec.Values {
			species = append(species, s)
		}
		sort.Strings(species)
	}

	values := make([]MetricValue, 0, len(species))
	for _, s := range species {
		v, err := reg.Metric(name, s)
		if err != nil {
			return failWith(formatter, err)
		}
		values = append(values, MetricValue{Metric: name, Species: s, Value: v, Reference: spec.Reference})
	}

	if formatter.JSON() {
		if len(args) == 2 {
			return formatter.Success(values[0])
		}
		return formatter.Success(values)
	}
	if len(args) == 2 {
		v := values[0]
		fmt.Fprintf(formatter.Writer, "%s %s = %s %s\n", v.Metric, v.Species, formatValue(v.Value), v.Reference)
		return nil
	}
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v.Species, formatValue(v.Value)}
	}
	return formatter.Table([]string{"SPECIES", spec.Reference}, rows)
}

func formatValue(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
