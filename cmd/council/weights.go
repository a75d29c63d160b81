package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tkaria/council/internal/council"
	"github.com/tkaria/council/internal/orchestrator"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show current agent voting weights and their history",
	Long: `Weights prints each agent's current voting weight plus the post-update
weight of every saved iteration, oldest first. Current values come from
the most recent saved iteration; weights learned in past runs do not
carry into a new process by themselves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		saved, err := rt.store.LoadAll()
		if err != nil {
			return err
		}

		roster := rt.orch.Roster()
		current := currentWeights(roster, saved)
		cmd.Println("Agent weights:")
		for _, agent := range roster.Members {
			var series []string
			for _, iter := range saved {
				if update, ok := iter.WeightUpdates[agent.ID()]; ok {
					series = append(series, formatWeight(update.NewWeight))
				}
			}
			line := formatWeight(current[agent.ID()])
			if len(series) > 0 {
				line += "  history: " + strings.Join(series, " -> ")
			}
			cmd.Printf("  %-22s %s\n", agent.ID(), line)
		}

		if len(saved) == 0 {
			cmd.Println("No saved iterations yet. Run `council run` first.")
			return nil
		}

		// Winners across the saved history, most recent last.
		cmd.Println("Winners:")
		counts := map[string]int{}
		for _, iter := range saved {
			counts[string(iter.Decision.Winner)]++
		}
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cmd.Printf("  %-22s %d\n", name, counts[name])
		}
		return nil
	},
}

// currentWeights reconstructs each member's learned weight from the
// last saved iteration that updated it. A freshly built roster always
// reports its configured starting weights, so the saved history is the
// only record that survives across processes.
func currentWeights(roster *council.Roster, saved []*orchestrator.Iteration) map[council.AgentID]float64 {
	weights := roster.Weights()
	for id := range weights {
		for i := len(saved) - 1; i >= 0; i-- {
			if update, ok := saved[i].WeightUpdates[id]; ok {
				weights[id] = update.NewWeight
				break
			}
		}
	}
	return weights
}

func formatWeight(w float64) string {
	return fmt.Sprintf("%.2f", w)
}
