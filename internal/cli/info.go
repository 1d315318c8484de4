package cli

import (
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func (a *app) boundsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "bounds",
		Short: "Print the borders of the map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.openMap(cmd)
			if err != nil {
				return err
			}
			b, ok := m.Bounds()
			if !ok {
				cmd.Println("Map is empty.")
				return nil
			}
			if asJSON {
				return outputJSON(cmd, b)
			}
			cmd.Printf("left=%g right=%g bottom=%g top=%g\n", b.Left, b.Right, b.Bottom, b.Top)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print tile and index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.openMap(cmd)
			if err != nil {
				return err
			}
			s := m.Stats()
			if asJSON {
				return outputJSON(cmd, s)
			}

			cmd.Printf("Tiles:  %d\n", s.Tiles)
			cmd.Printf("Height: %d\n", s.Height)
			cmd.Printf("Leaves: %d\n", s.Leaves)
			cmd.Println("Types:")
			for _, typ := range slices.Sorted(maps.Keys(s.Types)) {
				name := typ
				if name == "" {
					name = "(none)"
				}
				cmd.Printf("  %s: %d\n", name, s.Types[typ])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
