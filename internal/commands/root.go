package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/stride/internal/config"
	"github.com/balkashynov/stride/internal/db"
	"github.com/balkashynov/stride/internal/mutation"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "stride",
	Short: "A CLI multi-week planner with time tracking",
	Long: `stride keeps one current multi-week plan per user: execute tasks with a
single live timer, split and move work as the plan evolves, and review
estimation accuracy and execution trends across archived plan cycles.`,
}

// initStore loads config, initializes the database and panics on error
func initStore() *db.Store {
	c, err := config.Load()
	if err != nil {
		panic(err)
	}
	cfg = c
	if err := db.Initialize(cfg.DatabasePath); err != nil {
		panic(err) // For now, panic on DB init failure
	}
	return db.NewStore(cfg.HistoryLimit)
}

// initMutator loads the current plan for editing. The not-found case is
// reported to the user, not panicked.
func initMutator() (*mutation.Mutator, *db.Store, bool) {
	store := initStore()
	m, err := mutation.NewMutator(store, cfg.UserID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, nil, false
	}
	return m, store, true
}

// report prints a mutation outcome in a uniform way and returns whether
// it succeeded.
func report(res mutation.Result) bool {
	if res.OK {
		return true
	}
	if res.Reason != "" {
		fmt.Printf("Not allowed: %s\n", res.Reason)
		return false
	}
	// Persistence failure: local state was rolled back, the action is
	// safe to re-run.
	fmt.Printf("⚠️  Not saved, try again (%v)\n", res.Err)
	return false
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stride %s (commit %s, built %s)\n", version, commit, date)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(closeDayCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(guidanceCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
