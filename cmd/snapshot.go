package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	_ "github.com/kilianp07/minesched/app/plugins"
	"github.com/kilianp07/minesched/core/snapshot"
)

var snapOpts struct {
	kind   string
	limit  int
	format string
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect stored snapshots",
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	RunE:  runSnapshotList,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a snapshot grid",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotShow,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

func init() {
	snapshotListCmd.Flags().StringVar(&snapOpts.kind, "kind", "", "filter by kind (generation or manual)")
	snapshotListCmd.Flags().IntVar(&snapOpts.limit, "limit", 20, "maximum number of rows")
	snapshotShowCmd.Flags().StringVarP(&snapOpts.format, "format", "f", "csv", "output format: json, csv, html or summary")
	snapshotCmd.AddCommand(snapshotListCmd, snapshotShowCmd, snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func openStore() (snapshot.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := snapshot.NewStore(cfg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}
	return st, nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	items, err := st.List(context.Background(), snapshot.Query{Kind: snapshot.Kind(snapOpts.kind), Limit: snapOpts.limit})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tCREATED\tNAME\tSITES\tTASKS\tDELAYS")
	for _, s := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%d\t%d\n",
			s.ID, s.Kind, s.CreatedAt.Format("2006-01-02 15:04"), s.Name,
			s.Counters.ActiveSites, s.Counters.TotalSites, s.Counters.TotalTasks, s.Counters.TotalDelays)
	}
	return tw.Flush()
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	s, err := st.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", args[0], err)
	}
	if s.Grid == nil {
		return fmt.Errorf("snapshot %s has no grid", s.ID)
	}
	return writeGrid(cmd.OutOrStdout(), s.Grid, snapOpts.format, s.Name)
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	if err := st.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("snapshot %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}
