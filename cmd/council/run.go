package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tkaria/council/internal/council"
	"github.com/tkaria/council/internal/orchestrator"
)

var runFlags struct {
	apiTrends bool
	image     bool
	brand     string
	industry  string
	audience  string
	product   string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one campaign iteration",
	Long: `Run fetches trends, lets every agent propose and critique, has the
arbitrator decide, generates the post, simulates engagement, and updates
agent weights. The completed iteration is saved under .council/state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		campaign := council.CampaignContext{
			BrandName:      runFlags.brand,
			Industry:       runFlags.industry,
			TargetAudience: runFlags.audience,
			ProductInfo:    runFlags.product,
		}
		iter, err := rt.orch.RunCampaignIteration(cmd.Context(), campaign, orchestrator.RunOptions{
			UseAPITrends:  runFlags.apiTrends,
			GenerateImage: runFlags.image,
		})
		if err != nil {
			return err
		}

		printIteration(cmd, iter)
		return nil
	},
}

func printIteration(cmd *cobra.Command, iter *orchestrator.Iteration) {
	cmd.Printf("Iteration %s\n", iter.ID)
	cmd.Printf("  Winner:     %s (confidence %s/10)\n", iter.Decision.Winner, iter.Decision.Confidence)
	cmd.Printf("  Decision:   %s\n", firstLine(iter.Decision.Decision))
	if iter.Content != nil {
		cmd.Printf("  Platform:   %s (%d chars, post at %s)\n", iter.Content.Platform, iter.Content.CharCount, iter.Content.PostingTime)
		cmd.Printf("  Caption:    %s\n", firstLine(iter.Content.Caption))
		if len(iter.Content.Hashtags) > 0 {
			cmd.Printf("  Hashtags:   %s\n", strings.Join(iter.Content.Hashtags, " "))
		}
		if iter.Content.ImagePath != "" {
			cmd.Printf("  Image:      %s\n", iter.Content.ImagePath)
		}
	}
	cmd.Printf("  Engagement: %.1f/10 (%d likes, %d shares, %d comments)\n",
		iter.Engagement.OverallScore, iter.Engagement.Likes, iter.Engagement.Shares, iter.Engagement.Comments)
	cmd.Println("  Weights:")
	ids := make([]council.AgentID, 0, len(iter.WeightUpdates))
	for id := range iter.WeightUpdates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		update := iter.WeightUpdates[id]
		marker := ""
		if update.WasWinner {
			marker = "  (winner)"
		}
		cmd.Printf("    %-22s %.2f -> %.2f%s\n", id, update.OldWeight, update.NewWeight, marker)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	// Truncate on a rune boundary; byte slicing can split a multi-byte
	// character.
	if runes := []rune(s); len(runes) > 100 {
		s = string(runes[:100]) + "..."
	}
	return s
}

func init() {
	runCmd.Flags().BoolVar(&runFlags.apiTrends, "api-trends", false, "Fetch live trends from configured sources instead of samples only")
	runCmd.Flags().BoolVar(&runFlags.image, "image", false, "Generate a post image (requires HUGGINGFACE_TOKEN)")
	runCmd.Flags().StringVar(&runFlags.brand, "brand", "", "Brand name for the campaign context")
	runCmd.Flags().StringVar(&runFlags.industry, "industry", "", "Industry for the campaign context")
	runCmd.Flags().StringVar(&runFlags.audience, "audience", "", "Target audience for the campaign context")
	runCmd.Flags().StringVar(&runFlags.product, "product", "", "Product description for the campaign context")
}
