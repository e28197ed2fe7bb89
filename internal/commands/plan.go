package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/stride/internal/config"
	"github.com/balkashynov/stride/internal/execution"
	"github.com/balkashynov/stride/internal/history"
	"github.com/balkashynov/stride/internal/models"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage the current plan",
}

var planNewCmd = &cobra.Command{
	Use:   "new [weeks]",
	Short: "Create a new current plan",
	Long: `Create a new current plan with the given number of weeks.

Examples:
  stride plan new 4              # 4-week standard plan
  stride plan new 6 --strategic  # 6-week strategic plan`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		weeks, err := strconv.Atoi(args[0])
		if err != nil || weeks < 1 {
			fmt.Printf("Error: invalid week count '%s'\n", args[0])
			return
		}

		planType := models.PlanTypeStandard
		if strategic, _ := cmd.Flags().GetBool("strategic"); strategic {
			planType = models.PlanTypeStrategic
		}

		store := initStore()
		plan, err := store.CreatePlan(cfg.UserID, planType, weeks)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("📋 Created a %d-week %s plan\n", len(plan.Weeks), plan.PlanType)
		fmt.Println("Add tasks with 'stride add <week> <title> --hours H'")
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the plan board",
	Run: func(cmd *cobra.Command, args []string) {
		m, _, ok := initMutator()
		if !ok {
			return
		}
		printBoard(m.Plan())
	},
}

var planArchiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive the current plan cycle",
	Long: `Archive the current plan: a running timer is paused first, the cycle's
metrics are captured as a snapshot in history, and the plan stops being
current. Archiving cannot be undone.`,
	Run: func(cmd *cobra.Command, args []string) {
		m, _, ok := initMutator()
		if !ok {
			return
		}

		var snap *models.PlanCycleSnapshot
		res := m.Archive(func(p *models.Plan) *models.PlanCycleSnapshot {
			snap = history.BuildSnapshot(p, time.Now())
			return snap
		})
		if !report(res) {
			return
		}

		// The archived cycle changes history, so cached guidance is out
		// of date from this moment.
		if dir, err := config.Dir(); err == nil {
			_ = history.NewGuidanceCache(dir).Clear()
		}

		fmt.Printf("🗄️  Plan archived (%d/%d tasks completed, %.0f%% smooth)\n",
			snap.Metrics.TasksCompleted,
			m.Plan().TotalTasks(),
			snap.Metrics.CompletionSmoothness)
		fmt.Println("Start the next cycle with 'stride plan new <weeks>'")
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show archived plan cycles",
	Run: func(cmd *cobra.Command, args []string) {
		store := initStore()
		h, err := store.LoadHistory(cfg.UserID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if len(h.Snapshots) == 0 {
			fmt.Println("No archived plans yet")
			return
		}

		fmt.Printf("📚 %d plan(s) tracked, showing the last %d:\n\n", h.TotalPlansTracked, len(h.Snapshots))
		for _, s := range h.Snapshots {
			fmt.Printf("  %s  %-9s  %3.0f%% complete  %5.1f%% overrun  %d tasks  %s\n",
				s.Date.Format("2006-01-02"),
				s.PlanType,
				s.Metrics.CompletionRate,
				s.Metrics.AverageOverrunPercent,
				s.Metrics.TasksCompleted,
				patternLabels(s.Patterns))
		}
	},
}

func patternLabels(p models.SnapshotPatterns) string {
	out := ""
	if p.FrontLoaded {
		out += "front-loaded "
	}
	if p.ConsistentPace {
		out += "consistent "
	}
	if p.ReworkRequired {
		out += "rework "
	}
	if out == "" {
		return "-"
	}
	return out[:len(out)-1]
}

// printBoard renders the plan as a week-by-week task list.
func printBoard(p *models.Plan) {
	fmt.Printf("📋 %s plan, %d weeks, %.0f%% complete\n", p.PlanType, len(p.Weeks), p.Progress()*100)
	for wi := range p.Weeks {
		w := &p.Weeks[wi]
		lock := ""
		if execution.WeekLocked(p, wi) {
			lock = " 🔒"
		}
		focus := ""
		if w.Focus != "" {
			focus = " — " + w.Focus
		}
		fmt.Printf("\nWeek %d%s%s\n", w.Number, focus, lock)
		if len(w.Tasks) == 0 {
			fmt.Println("  (no tasks)")
			continue
		}
		for ti := range w.Tasks {
			t := &w.Tasks[ti]
			fmt.Printf("  %d. %s %s  [%s, %.1fh est, %s spent]\n",
				ti+1, stateIcon(t.ExecutionState), t.Title, t.Priority,
				t.EstimatedHours, formatSeconds(t.TimeSpentSeconds))
		}
	}
}

func stateIcon(s models.ExecutionState) string {
	switch s {
	case models.StateDoing:
		return "⏱️"
	case models.StateDone:
		return "✅"
	default:
		return "◻️"
	}
}

// formatSeconds formats an accumulated duration in a human-readable way
func formatSeconds(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	return fmt.Sprintf("%.0fs", d.Seconds())
}

// parseLocation converts 1-based week/task arguments to indices.
func parseLocation(p *models.Plan, weekArg, taskArg string) (int, int, error) {
	week, err := strconv.Atoi(weekArg)
	if err != nil || week < 1 {
		return 0, 0, fmt.Errorf("invalid week number '%s'", weekArg)
	}
	task, err := strconv.Atoi(taskArg)
	if err != nil || task < 1 {
		return 0, 0, fmt.Errorf("invalid task number '%s'", taskArg)
	}
	if p.Task(week-1, task-1) == nil {
		return 0, 0, fmt.Errorf("no task %s in week %s", taskArg, weekArg)
	}
	return week - 1, task - 1, nil
}

func init() {
	planNewCmd.Flags().Bool("strategic", false, "Create a strategic plan")
	planCmd.AddCommand(planNewCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planArchiveCmd)
}
