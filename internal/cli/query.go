package cli

import (
	"fmt"

	"github.com/hupe1980/kdmap"
	"github.com/hupe1980/kdmap/codec"
	"github.com/hupe1980/kdmap/mapfile"
	"github.com/spf13/cobra"
)

type pointFlags struct {
	x, y float64
	json bool
}

func (p *pointFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&p.x, "x", 0, "query x coordinate")
	cmd.Flags().Float64Var(&p.y, "y", 0, "query y coordinate")
	cmd.Flags().BoolVar(&p.json, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
}

func (a *app) nearestCmd() *cobra.Command {
	var (
		p   pointFlags
		typ string
	)
	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "Print the tile closest to a point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.openMap(cmd)
			if err != nil {
				return err
			}

			var tile mapfile.Tile
			if typ != "" {
				tile, err = m.NearestOfType(cmd.Context(), p.x, p.y, typ)
			} else {
				tile, err = m.Nearest(cmd.Context(), p.x, p.y)
			}
			if err != nil {
				return fmt.Errorf("nearest failed: %w", err)
			}

			if p.json {
				return outputJSON(cmd, tile)
			}
			printTile(cmd, tile)
			return nil
		},
	}
	p.bind(cmd)
	cmd.Flags().StringVarP(&typ, "type", "t", "", "only consider tiles of this type")
	return cmd
}

func (a *app) knnCmd() *cobra.Command {
	var (
		p     pointFlags
		k     int
		types []string
	)
	cmd := &cobra.Command{
		Use:   "knn",
		Short: "Print the k tiles closest to a point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.openMap(cmd)
			if err != nil {
				return err
			}
			results, err := m.KNearest(cmd.Context(), p.x, p.y, k, types...)
			if err != nil {
				return fmt.Errorf("knn failed: %w", err)
			}
			return outputResults(cmd, results, p.json)
		},
	}
	p.bind(cmd)
	cmd.Flags().IntVarP(&k, "k", "k", 5, "number of tiles")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "only consider tiles of these types")
	return cmd
}

func (a *app) withinCmd() *cobra.Command {
	var (
		p      pointFlags
		radius float64
		types  []string
	)
	cmd := &cobra.Command{
		Use:   "within",
		Short: "Print every tile within a radius of a point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.openMap(cmd)
			if err != nil {
				return err
			}
			results, err := m.Within(cmd.Context(), p.x, p.y, radius, types...)
			if err != nil {
				return fmt.Errorf("within failed: %w", err)
			}
			return outputResults(cmd, results, p.json)
		},
	}
	p.bind(cmd)
	cmd.Flags().Float64VarP(&radius, "radius", "r", 1, "search radius")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "only consider tiles of these types")
	return cmd
}

func printTile(cmd *cobra.Command, t mapfile.Tile) {
	cmd.Printf("%s type=%s x=%g y=%g width=%g height=%g\n", t.ID, t.Type, t.X, t.Y, t.Width, t.Height)
}

func outputResults(cmd *cobra.Command, results []kdmap.Result, asJSON bool) error {
	if asJSON {
		return outputJSON(cmd, results)
	}
	if len(results) == 0 {
		cmd.Println("No tiles found.")
		return nil
	}
	for i, r := range results {
		cmd.Printf("%d. %s type=%s x=%g y=%g distance=%.4g\n", i+1, r.Tile.ID, r.Tile.Type, r.Tile.X, r.Tile.Y, r.Distance)
	}
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := codec.GoJSON{}.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
