package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// ContextInfo describes one context in command output.
type ContextInfo struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
	Rules       int    `json:"rules"`
}

// NewContextsCommand creates the contexts command.
func NewContextsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "contexts",
		Short: "List conversion contexts",
		Long: `List every conversion context with where it comes from.

Source is "context" for hand-written contexts, "metric" for GWP tables
and "mixture" for contexts generated from a mixture composition.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContexts(rootOpts, cmd)
		},
	}
}

func runContexts(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	reg, err := loadRegistry(opts)
	if err != nil {
		return failWith(formatter, err)
	}

	names := reg.ContextNames()
	infos := make([]ContextInfo, 0, len(names))
	for _, name := range names {
		c, _ := reg.Context(name)
		infos = append(infos, ContextInfo{
			Name:        c.Name,
			Source:      c.Source,
			Description: c.Description,
			Rules:       len(c.Rules),
		})
	}

	if formatter.JSON() {
		return formatter.Success(infos)
	}
	rows := make([][]string, len(infos))
	for i, c := range infos {
		rows[i] = []string{c.Name, c.Source, strconv.Itoa(c.Rules)}
	}
	return formatter.Table([]string{"NAME", "SOURCE", "RULES"}, rows)
}
