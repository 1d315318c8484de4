package cli

import (
	"fmt"

	"github.com/hupe1980/kdmap"
	"github.com/spf13/cobra"
)

func (a *app) snapshotCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write the built index as a snapshot",
		Long: `Builds the index for --map and stores it next to it in the same store.
The output name must end in ` + kdmap.SnapshotExt + `, optionally followed by .zst or .lz4.
Snapshots can be passed to --map like any other map file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.openMap(cmd)
			if err != nil {
				return err
			}
			store, err := a.cfg.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.WriteSnapshot(cmd.Context(), store, out); err != nil {
				return fmt.Errorf("snapshot failed: %w", err)
			}
			cmd.Printf("Wrote %s (%d tiles)\n", out, m.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "snapshot name, e.g. level.kdt.zst")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
