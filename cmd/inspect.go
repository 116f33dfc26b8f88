package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/resvsim/schedule-sim/sim/restart"
)

var (
	inspectRun  string // run ID to inspect
	inspectStep int    // report step to show; 0 lists the steps
)

// inspectCmd reads back runs stored in a restart archive
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List archived runs and show the restart arrays of a report step",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		ar, err := restart.OpenArchive(archivePath)
		if err != nil {
			logrus.Fatalf("opening archive: %v", err)
		}
		defer func() { _ = ar.Close() }()
		if err := inspectArchive(cmd.OutOrStdout(), ar, inspectRun, inspectStep); err != nil {
			logrus.Fatalf("inspect: %v", err)
		}
	},
}

// inspectArchive prints the runs of ar, the steps of runID (latest run when
// empty) and, for step > 0, the arrays and summary vector of that step.
func inspectArchive(w io.Writer, ar *restart.Archive, runID string, step int) error {
	runs, err := ar.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "archive holds no runs")
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(w, "run %s  %s  %s  %d steps\n", r.ID, r.Created.Format("2006-01-02 15:04:05"), r.UnitSystem, r.Steps)
	}
	if runID == "" {
		runID = runs[len(runs)-1].ID
	}
	steps, err := ar.Steps(runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "run %s: archived steps %v\n", runID, steps)
	if step == 0 {
		return nil
	}

	arrays, vec, err := ar.Load(runID, step)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "step %d: %d arrays\n", step, len(arrays))
	for _, a := range arrays {
		fmt.Fprintf(w, "  %-8s %s %6d\n", a.Keyword, a.Type, a.Len())
	}
	keys := make([]string, 0, len(vec))
	for k := range vec {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	fmt.Fprintf(w, "step %d: %d summary values\n", step, len(keys))
	for _, k := range keys {
		fmt.Fprintf(w, "  %-16s %g\n", k, vec[k])
	}
	return nil
}
