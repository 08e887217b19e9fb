package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mikapfl/openscm-units/internal/metrics"
	"github.com/mikapfl/openscm-units/internal/units"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	To          string
	Contexts    []string
	Workers     int
	MetricsFile string
}

// BatchRow is one converted input row.
type BatchRow struct {
	Line      int     `json:"line"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Magnitude float64 `json:"magnitude"`
	To        string  `json:"to"`
	Error     string  `json:"error,omitempty"`
}

// BatchResult holds the converted rows in input order.
type BatchResult struct {
	Rows   []BatchRow `json:"rows"`
	Failed int        `json:"failed"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <csv-file>",
		Short: "Convert a CSV of quantities",
		Long: `Convert every "value,unit" row of a CSV file to one target unit.

Rows are converted concurrently in one shared scope and written back in
input order. A header row starting with "value" is skipped. Use "-" to
read from stdin.

With --metrics-file the conversion counters are written in the
Prometheus text format, for a node_exporter textfile collector.

Example:
  openscm-units batch emissions.csv --to "Mt CO2 / yr" --context AR5GWP100`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "", "target unit expression")
	cmd.Flags().StringArrayVarP(&opts.Contexts, "context", "c", nil, "context to activate (repeatable)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "concurrent conversions")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus counters to this file")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runBatch(opts *BatchOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Workers < 1 {
		_ = formatter.Error(ErrCodeGeneric, "--workers must be at least 1", nil)
		return NewExitError(ExitCommandError, "invalid --workers")
	}

	rows, err := readBatchInput(path, cmd.InOrStdin())
	if err != nil {
		return failWith(formatter, err)
	}

	promReg := prometheus.NewRegistry()
	reg, err := loadRegistry(opts.RootOptions, units.WithRecorder(metrics.New(promReg)))
	if err != nil {
		return failWith(formatter, err)
	}
	target, err := reg.Unit(opts.To)
	if err != nil {
		return failWith(formatter, err)
	}
	scope, err := reg.Enter(opts.Contexts...)
	if err != nil {
		return failWith(formatter, err)
	}

	result := convertRows(units.ContextWithScope(cmd.Context(), scope), reg, rows, target, opts.Workers)
	slog.Debug("batch converted", "rows", len(result.Rows), "failed", result.Failed)

	if opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, promReg); err != nil {
			return failWith(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error()})
		}
	}

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if err := writeBatchCSV(formatter.Writer, result); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d row(s) failed", result.Failed))
	}
	return nil
}

// convertRows converts rows with at most workers goroutines. The scope is
// taken from ctx. Row failures are recorded on the row, not returned.
func convertRows(ctx context.Context, reg *units.Registry, rows []BatchRow, target units.Unit, workers int) BatchResult {
	out := make([]BatchRow, len(rows))
	copy(out, rows)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range out {
		g.Go(func() error {
			row := &out[i]
			row.To = target.String()
			if row.Error != "" {
				return nil
			}
			q, err := reg.Quantity(row.Value, row.Unit)
			if err == nil {
				q, err = reg.From(gctx).ConvertUnit(q, target)
			}
			if err != nil {
				row.Error = err.Error()
				return nil
			}
			row.Magnitude = q.Magnitude
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{Rows: out}
	for _, r := range out {
		if r.Error != "" {
			result.Failed++
		}
	}
	return result
}

// readBatchInput parses "value,unit" records. Malformed values are kept as
// failed rows so the output lines up with the input.
func readBatchInput(path string, stdin io.Reader) ([]BatchRow, error) {
	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("cannot open input: %v", err)}
		}
		defer f.Close()
		in = f
	}

	r := csv.NewReader(in)
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading CSV: %v", err)}
	}

	rows := make([]BatchRow, 0, len(records))
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "value") {
			continue
		}
		row := BatchRow{Line: i + 1, Unit: strings.TrimSpace(rec[1])}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			row.Error = fmt.Sprintf("invalid value %q", rec[0])
		}
		row.Value = v
		rows = append(rows, row)
	}
	return rows, nil
}

func writeBatchCSV(w io.Writer, result BatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"value", "unit", "magnitude", "to", "error"}); err != nil {
		return err
	}
	for _, r := range result.Rows {
		magnitude := ""
		if r.Error == "" {
			magnitude = formatValue(r.Magnitude)
		}
		if err := cw.Write([]string{formatValue(r.Value), r.Unit, magnitude, r.To, r.Error}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
