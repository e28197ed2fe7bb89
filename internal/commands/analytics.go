package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/stride/internal/config"
	"github.com/balkashynov/stride/internal/history"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show metric trends across archived cycles",
	Run: func(cmd *cobra.Command, args []string) {
		store := initStore()
		h, err := store.LoadHistory(cfg.UserID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if len(h.Snapshots) < 2 {
			fmt.Println("Not enough history yet — archive at least two plans to see trends")
			return
		}

		fmt.Printf("📈 Trends over the last %d cycle(s):\n\n", min(cfg.TrendWindow, len(h.Snapshots)))
		for _, t := range history.Trends(h, cfg.TrendWindow) {
			fmt.Printf("  %-25s %-10s %+6.1f%%  (%s confidence)\n",
				t.Metric, t.Direction, t.PercentChange, t.Confidence)
		}
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the last two plan cycles",
	Run: func(cmd *cobra.Command, args []string) {
		store := initStore()
		h, err := store.LoadHistory(cfg.UserID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if len(h.Snapshots) < 2 {
			fmt.Println("Not enough history yet — archive at least two plans to compare")
			return
		}

		insights := history.ComparePlans(h)
		if len(insights) == 0 {
			fmt.Println("No material differences between the last two cycles")
			return
		}
		for _, ins := range insights {
			icon := "📉"
			if ins.Improved {
				icon = "📈"
			}
			fmt.Printf("%s %s\n", icon, ins.Summary)
		}

		for _, attr := range history.Attributions(h) {
			fmt.Printf("💡 %s\n", attr.Summary)
		}
	},
}

var guidanceCmd = &cobra.Command{
	Use:   "guidance",
	Short: "Suggest adjustments for the next cycle",
	Run: func(cmd *cobra.Command, args []string) {
		store := initStore()
		h, err := store.LoadHistory(cfg.UserID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if len(h.Snapshots) == 0 {
			fmt.Println("No archived plans yet — guidance needs at least one completed cycle")
			return
		}

		now := time.Now()
		var result history.GuidanceResult
		var cache *history.GuidanceCache
		if dir, err := config.Dir(); err == nil {
			cache = history.NewGuidanceCache(dir)
		}

		if cache != nil {
			if cached := cache.Load(); cached != nil && cached.Valid(h, now) {
				result = *cached
			}
		}
		if result.GeneratedAt.IsZero() {
			result = history.Guidance(h, now)
			if cache != nil {
				_ = cache.Save(&result)
			}
		}

		if len(result.Adjustments) == 0 {
			fmt.Println("Nothing stands out — keep planning the way you are")
			return
		}
		fmt.Println("🧭 Next-cycle guidance:")
		for _, adj := range result.Adjustments {
			fmt.Printf("  • %s (%s confidence)\n", adj.Suggestion, adj.Confidence)
		}
	},
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
