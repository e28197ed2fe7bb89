package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/stride/internal/metrics"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show execution metrics for the current plan",
	Run: func(cmd *cobra.Command, args []string) {
		m, _, ok := initMutator()
		if !ok {
			return
		}

		result := metrics.Compute(m.Plan())
		if result.Accuracy.Pattern == metrics.PatternNotEnoughData {
			fmt.Println("Not enough completed tasks yet — finish a few tracked tasks first")
			return
		}

		fmt.Println("📊 Execution insights")
		fmt.Printf("\nEstimation (%s):\n", result.Accuracy.Pattern)
		fmt.Printf("  Average variance: %+.1f%%\n", result.Accuracy.AverageVariancePercent)
		fmt.Printf("  Underestimated %d, overestimated %d, accurate %d\n",
			result.Accuracy.Underestimated, result.Accuracy.Overestimated, result.Accuracy.Accurate)

		fmt.Println("\nPace:")
		fmt.Printf("  %.1f tasks/day, %s per task on average\n",
			result.Velocity.TasksPerDay, formatSeconds(int64(result.Velocity.AverageTimePerTask)))
		if result.Velocity.Slowest != nil {
			fmt.Printf("  Biggest overrun: %s (%+.0f%%)\n",
				result.Velocity.Slowest.Title, result.Velocity.Slowest.VariancePercent)
		}
		if result.Velocity.Fastest != nil {
			fmt.Printf("  Biggest underrun: %s (%+.0f%%)\n",
				result.Velocity.Fastest.Title, result.Velocity.Fastest.VariancePercent)
		}

		tagged := result.Effort.EasyCount + result.Effort.OkayCount + result.Effort.HardCount
		if tagged > 0 {
			fmt.Println("\nEffort:")
			fmt.Printf("  easy %d / okay %d / hard %d\n",
				result.Effort.EasyCount, result.Effort.OkayCount, result.Effort.HardCount)
			fmt.Printf("  %.0f%% of tagged time went to hard tasks\n", result.Effort.HardTasksTimeRatio)
		}
	},
}
