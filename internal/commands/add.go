package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/stride/internal/models"
)

var addCmd = &cobra.Command{
	Use:   "add [week] [title]",
	Short: "Add a task to a week",
	Long: `Add a task to a week of the current plan.

Examples:
  stride add 1 "Draft the outline" --hours 2
  stride add 3 "Review feedback" --hours 1.5 --priority high`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		m, _, ok := initMutator()
		if !ok {
			return
		}

		week, err := strconv.Atoi(args[0])
		if err != nil || week < 1 || week > len(m.Plan().Weeks) {
			fmt.Printf("Error: invalid week number '%s'\n", args[0])
			return
		}
		title := strings.Join(args[1:], " ")

		hours, _ := cmd.Flags().GetFloat64("hours")
		prioFlag, _ := cmd.Flags().GetString("priority")
		priority, ok := models.ParsePriority(prioFlag)
		if !ok {
			fmt.Printf("Error: invalid priority '%s' (use low, medium or high)\n", prioFlag)
			return
		}

		if !report(m.AddTask(week-1, title, priority, hours)) {
			return
		}
		fmt.Printf("➕ Added to week %d: %s (%s, %.1fh)\n", week, title, priority, hours)
	},
}

func init() {
	addCmd.Flags().Float64("hours", 1, "Estimated hours for the task")
	addCmd.Flags().StringP("priority", "p", "medium", "Priority: low|medium|high")
}
