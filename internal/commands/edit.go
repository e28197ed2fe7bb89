package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var splitCmd = &cobra.Command{
	Use:   "split [week] [task]",
	Short: "Split a task into two",
	Long: `Split a task into two smaller tasks. The estimate is divided at the
given ratio (percent going to the first half); both halves inherit the
priority and start pending, in place of the original.

Examples:
  stride split 2 3             # 50/50 split of task 3 in week 2
  stride split 2 3 --ratio 30  # 30% / 70%`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		m, _, ok := initMutator()
		if !ok {
			return
		}

		wi, ti, err := parseLocation(m.Plan(), args[0], args[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		ratio, _ := cmd.Flags().GetInt("ratio")

		if !report(m.SplitTask(wi, ti, ratio)) {
			return
		}
		first := m.Plan().Task(wi, ti)
		second := m.Plan().Task(wi, ti+1)
		fmt.Printf("✂️  Split into %.1fh + %.1fh\n", first.EstimatedHours, second.EstimatedHours)
	},
}

var moveCmd = &cobra.Command{
	Use:   "move [week] [task]",
	Short: "Move or reorder a task",
	Long: `Move a task to another week or reorder it within its week.

Examples:
  stride move 1 3 --to-week 2             # Move to the end of week 2
  stride move 1 3 --to-week 1 --to-pos 1  # Reorder to the top of week 1`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		m, _, ok := initMutator()
		if !ok {
			return
		}

		wi, ti, err := parseLocation(m.Plan(), args[0], args[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		toWeek, _ := cmd.Flags().GetInt("to-week")
		if toWeek < 1 || toWeek > len(m.Plan().Weeks) {
			fmt.Printf("Error: invalid destination week %d\n", toWeek)
			return
		}
		toPos, _ := cmd.Flags().GetInt("to-pos")
		toIdx := toPos - 1
		if toPos == 0 {
			// Default: append at the end of the destination week.
			toIdx = len(m.Plan().Weeks[toWeek-1].Tasks)
			if toWeek-1 == wi {
				toIdx--
			}
		}

		task := m.Plan().Task(wi, ti)
		title := task.Title
		if !report(m.MoveTask(wi, ti, toWeek-1, toIdx)) {
			return
		}
		fmt.Printf("📦 Moved %q to week %d\n", title, toWeek)
	},
}

var closeDayCmd = &cobra.Command{
	Use:   "close-day [summary]",
	Short: "Record an end-of-day summary",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m, _, ok := initMutator()
		if !ok {
			return
		}
		summary := strings.Join(args, " ")
		if !report(m.CloseDay(summary)) {
			return
		}
		fmt.Printf("🌙 Day closed (%s)\n", summaryPreview(summary))
	},
}

func summaryPreview(s string) string {
	const max = 40
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

func init() {
	splitCmd.Flags().Int("ratio", 50, "Percent of the estimate going to the first task (10-90)")
	moveCmd.Flags().Int("to-week", 1, "Destination week")
	moveCmd.Flags().Int("to-pos", 0, "Destination position (1-based, default end)")
}
