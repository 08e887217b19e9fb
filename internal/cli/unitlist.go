package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// UnitsOptions holds flags for the units command.
type UnitsOptions struct {
	*RootOptions
	SpeciesOnly bool
}

// UnitInfo describes one canonical unit in command output.
type UnitInfo struct {
	Name       string   `json:"name"`
	Species    bool     `json:"species"`
	Dimension  string   `json:"dimension,omitempty"`
	Definition string   `json:"definition,omitempty"`
	Aliases    []string `json:"aliases,omitempty"`
}

// NewUnitsCommand creates the units command.
func NewUnitsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UnitsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "units",
		Short:         "List canonical units and their aliases",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnits(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SpeciesOnly, "species", false, "list gas species only")

	return cmd
}

func runUnits(opts *UnitsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	reg, err := loadRegistry(opts.RootOptions)
	if err != nil {
		return failWith(formatter, err)
	}

	defs := reg.Definitions()
	names := reg.UnitNames(opts.SpeciesOnly)
	infos := make([]UnitInfo, 0, len(names))
	for _, name := range names {
		spec, _ := defs.Unit(name)
		infos = append(infos, UnitInfo{
			Name:       name,
			Species:    spec.Species,
			Dimension:  spec.Dimension,
			Definition: spec.Definition,
			Aliases:    defs.AliasesOf(name),
		})
	}

	if formatter.JSON() {
		return formatter.Success(infos)
	}
	rows := make([][]string, len(infos))
	for i, u := range infos {
		def := u.Definition
		if u.Dimension != "" {
			def = "[" + u.Dimension + "]"
		}
		rows[i] = []string{u.Name, def, strings.Join(u.Aliases, ", ")}
	}
	return formatter.Table([]string{"NAME", "DEFINITION", "ALIASES"}, rows)
}
