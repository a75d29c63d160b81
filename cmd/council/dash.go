package main

import (
	"github.com/spf13/cobra"

	"github.com/tkaria/council/internal/council"
	"github.com/tkaria/council/internal/orchestrator"
	"github.com/tkaria/council/internal/tui"
)

var dashFlags struct {
	apiTrends bool
	brand     string
	industry  string
	audience  string
	product   string
}

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the interactive council dashboard",
	Long: `Dash opens a terminal dashboard showing agent weights and iteration
history. Press r to run an iteration, c to compare the latest two, and
l to tail the session log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		campaign := council.CampaignContext{
			BrandName:      dashFlags.brand,
			Industry:       dashFlags.industry,
			TargetAudience: dashFlags.audience,
			ProductInfo:    dashFlags.product,
		}
		return tui.Run(rt.orch, campaign, orchestrator.RunOptions{UseAPITrends: dashFlags.apiTrends},
			tui.WithJournal(rt.journal))
	},
}

func init() {
	dashCmd.Flags().BoolVar(&dashFlags.apiTrends, "api-trends", false, "Fetch live trends from configured sources instead of samples only")
	dashCmd.Flags().StringVar(&dashFlags.brand, "brand", "", "Brand name for the campaign context")
	dashCmd.Flags().StringVar(&dashFlags.industry, "industry", "", "Industry for the campaign context")
	dashCmd.Flags().StringVar(&dashFlags.audience, "audience", "", "Target audience for the campaign context")
	dashCmd.Flags().StringVar(&dashFlags.product, "product", "", "Product description for the campaign context")
}
