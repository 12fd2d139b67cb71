package cli

import (
	"github.com/spf13/cobra"

	"github.com/goldspanlabs/optopsy-mcp/internal/strategies"
)

func newStrategiesCmd(app *App) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "List the prebuilt strategy catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			all := strategies.All()
			if category != "" {
				filtered := all[:0]
				for _, s := range all {
					if s.Category == category {
						filtered = append(filtered, s)
					}
				}
				all = filtered
			}

			if output.IsJSON() {
				type entry struct {
					Name        string `json:"name"`
					Category    string `json:"category"`
					Description string `json:"description"`
					Legs        int    `json:"legs"`
					MultiExpiry bool   `json:"multi_expiration"`
				}
				out := make([]entry, len(all))
				for i, s := range all {
					out[i] = entry{s.Name, s.Category, s.Description, len(s.Legs), s.IsMultiExpiration()}
				}
				return output.JSON(out)
			}

			current := ""
			for _, s := range all {
				if s.Category != current {
					current = s.Category
					output.Println()
					output.Bold("%s", current)
				}
				output.Printf("  %-26s %d leg(s)  %s\n", s.Name, len(s.Legs), s.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	return cmd
}
