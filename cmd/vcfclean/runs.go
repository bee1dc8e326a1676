package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vcfclean/internal/store"
)

func newRunsCmd() *cobra.Command {
	var statsDB string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded cluster-filter runs",
		Long:  "Lists run summaries recorded with 'cluster --stats-db', most recent first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("stats-db") && viper.IsSet("stats-db") {
				statsDB = viper.GetString("stats-db")
			}
			if statsDB == "" {
				statsDB = defaultStatsDB()
			}
			return runRuns(statsDB)
		},
	}

	cmd.Flags().StringVar(&statsDB, "stats-db", "", "DuckDB file with recorded run summaries")

	return cmd
}

func defaultStatsDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "runs.duckdb"
	}
	return filepath.Join(home, ".vcfclean", "runs.duckdb")
}

func runRuns(statsDB string) error {
	if _, err := os.Stat(statsDB); err != nil {
		return fmt.Errorf("no stats database at %s (record runs with 'cluster --stats-db')", statsDB)
	}

	s, err := store.Open(statsDB)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN AT\tINPUT\tTARGET\tP\tTHRESH(T)\tTHRESH(BG)\tKEPT\tREMOVED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%d\t%d\t%d\t%d\n",
			r.RunAt.Format("2006-01-02 15:04"),
			r.Input, r.TargetChrom, r.PValue,
			r.ThresholdTarget, r.ThresholdOther,
			r.Kept, r.Removed)
	}
	return w.Flush()
}
