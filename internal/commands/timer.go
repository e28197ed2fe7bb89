package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/stride/internal/config"
	"github.com/balkashynov/stride/internal/execution"
	"github.com/balkashynov/stride/internal/models"
	"github.com/balkashynov/stride/internal/tui"
)

var startCmd = &cobra.Command{
	Use:   "start [week] [task]",
	Short: "Start the timer on a task",
	Long: `Start tracking time on a task. Opens the interactive timer by default,
use --no-ui for a plain start.

Examples:
  stride start 1 2         # Start task 2 of week 1 with the timer UI
  stride start 1 2 --no-ui # Start it without UI`,
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

		if !report(m.StartTask(wi, ti)) {
			return
		}
		task := m.Plan().Task(wi, ti)
		saveTimerCache(m.Plan())

		noUI, _ := cmd.Flags().GetBool("no-ui")
		if noUI {
			fmt.Printf("⏱️  Started: %s\n", task.Title)
			fmt.Printf("Started at: %s\n", task.ExecutionStartedAt.Format("15:04:05"))
			return
		}
		if err := tui.RunTimerTUI(m, wi, ti); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running task",
	Run: func(cmd *cobra.Command, args []string) {
		m, _, ok := initMutator()
		if !ok {
			return
		}

		wi, ti, running := m.Plan().ActiveTask()
		if !report(m.PauseActive()) {
			return
		}
		clearTimerCache()

		if running {
			task := m.Plan().Task(wi, ti)
			fmt.Printf("⏸️  Paused: %s\n", task.Title)
			fmt.Printf("Time spent so far: %s\n", formatSeconds(task.TimeSpentSeconds))
		}
	},
}

var doneCmd = &cobra.Command{
	Use:   "done",
	Short: "Complete the running task",
	Long: `Complete the currently running task, folding its live elapsed time into
the total. Only the running task can be completed, which keeps time
tracking honest.

Examples:
  stride done
  stride done --effort hard`,
	Run: func(cmd *cobra.Command, args []string) {
		m, _, ok := initMutator()
		if !ok {
			return
		}

		effortFlag, _ := cmd.Flags().GetString("effort")
		effort, valid := models.ParseEffort(effortFlag)
		if !valid {
			fmt.Printf("Error: invalid effort '%s' (use easy, okay or hard)\n", effortFlag)
			return
		}

		wi, ti, running := m.Plan().ActiveTask()
		if !report(m.CompleteActive(effort)) {
			return
		}
		clearTimerCache()

		if running {
			task := m.Plan().Task(wi, ti)
			fmt.Printf("✅ Completed: %s\n", task.Title)
			fmt.Printf("Total time: %s (estimated %.1fh)\n",
				formatSeconds(task.TimeSpentSeconds), task.EstimatedHours)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running timer",
	Run: func(cmd *cobra.Command, args []string) {
		m, _, ok := initMutator()
		if !ok {
			return
		}

		state := reconcileTimer(m.Plan())
		if state == nil {
			fmt.Println("No task is currently running")
			return
		}
		task := m.Plan().Task(state.WeekIdx, state.TaskIdx)
		fmt.Printf("⏱️  Currently running: %s (week %d)\n", task.Title, state.WeekIdx+1)
		fmt.Printf("Elapsed: %s\n", formatDuration(execution.DisplayElapsed(task, time.Now())))
	},
}

// reconcileTimer loads the durable cache and resolves it against the
// authoritative plan, persisting the reconciled view back.
func reconcileTimer(p *models.Plan) *execution.ActiveTimerState {
	dir, err := config.Dir()
	if err != nil {
		if _, _, ok := p.ActiveTask(); ok {
			return execution.Reconcile(p, nil)
		}
		return nil
	}
	cache := execution.NewTimerCache(dir)
	state := execution.Reconcile(p, cache.Load())
	if state == nil {
		_ = cache.Clear()
	} else {
		_ = cache.Save(state)
	}
	return state
}

func saveTimerCache(p *models.Plan) {
	dir, err := config.Dir()
	if err != nil {
		return
	}
	if state := execution.Reconcile(p, nil); state != nil {
		_ = execution.NewTimerCache(dir).Save(state)
	}
}

func clearTimerCache() {
	dir, err := config.Dir()
	if err != nil {
		return
	}
	_ = execution.NewTimerCache(dir).Clear()
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	return fmt.Sprintf("%.0fs", d.Seconds())
}

func init() {
	startCmd.Flags().Bool("no-ui", false, "Start the timer without the interactive UI")
	doneCmd.Flags().String("effort", "", "How hard the task felt: easy|okay|hard")
}
