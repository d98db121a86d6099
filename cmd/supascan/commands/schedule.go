package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/supascan/internal/scheduler"
	"github.com/wonny/supascan/internal/scheduler/jobs"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the scan on a cron schedule",
	Long: `Starts the scheduler daemon and runs the full scan on the given
cron schedule (six-field expression, with seconds). The default fires
at 13:00 UTC on weekdays, before the US market open.

The daemon stops on Ctrl+C.

Example:
  go run ./cmd/supascan schedule
  go run ./cmd/supascan schedule --cron "0 0 13 * * 1-5"`,
	RunE: runSchedule,
}

var scheduleCron string

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "0 0 13 * * 1-5", "cron schedule for the daily scan")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Supascan Scheduler ===")

	deps, err := initDeps(false)
	if err != nil {
		return err
	}
	defer deps.Close()

	sched := scheduler.New(deps.logger)
	if err := sched.AddJob(jobs.NewDailyScanJob(deps.pipeline, scheduleCron, deps.logger)); err != nil {
		return fmt.Errorf("register scan job: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s (%s)\n", jobName, scheduleCron)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()

	return nil
}
