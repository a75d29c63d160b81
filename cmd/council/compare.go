package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tkaria/council/internal/council"
	"github.com/tkaria/council/internal/orchestrator"
)

var compareCmd = &cobra.Command{
	Use:   "compare <i> <j>",
	Short: "Compare two saved iterations by zero-based index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("first index %q is not an integer", args[0])
		}
		j, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("second index %q is not an integer", args[1])
		}

		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		// Saved iterations back the comparison so it works across runs.
		saved, err := rt.store.LoadAll()
		if err != nil {
			return err
		}
		analytics := orchestrator.NewAnalytics(saved)
		report, err := analytics.CompareIterations(i, j)
		if err != nil {
			return err
		}

		printSide(cmd, report.First)
		printSide(cmd, report.Second)
		cmd.Printf("Winner changed:  %v\n", report.WinnerChanged)
		cmd.Printf("Engagement diff: %+.2f\n", report.EngagementDiff)
		return nil
	},
}

func printSide(cmd *cobra.Command, side orchestrator.IterationSummary) {
	cmd.Printf("Iteration %d: winner %s, engagement %.1f\n", side.Index, side.Winner, side.Engagement)
	ids := make([]council.AgentID, 0, len(side.Weights))
	for id := range side.Weights {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		cmd.Printf("  %-22s %.2f\n", id, side.Weights[id])
	}
}
