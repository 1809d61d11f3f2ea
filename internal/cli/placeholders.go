package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/Contracta/internal/engine"
)

// NewPlaceholdersCmd создаёт команду, печатающую каталог токенов шаблона.
// Каталог строится локально и не требует API.
func NewPlaceholdersCmd(outputFn func() *Output) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "placeholders",
		Short: "List template tokens: keys, lists and functions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var catalog []engine.Placeholder
			for _, p := range engine.Catalog(nil) {
				if kind == "" || p.Kind == kind {
					catalog = append(catalog, p)
				}
			}

			rows := make([][]string, len(catalog))
			for i, p := range catalog {
				rows[i] = []string{p.Kind, p.Token, p.Description}
			}

			outputFn().Print([]string{"KIND", "TOKEN", "DESCRIPTION"}, rows, catalog)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind: scalar, list_anchor, list_row, func")

	return cmd
}
