package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current indexing status and provider throttle state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.pipeline.Status()
	fmt.Println("Indexing:")
	fmt.Printf("  Active:  %v\n", p.Active)
	fmt.Printf("  Project: %s\n", p.ProjectName)
	fmt.Printf("  Status:  %s\n", p.Status)
	fmt.Printf("  Files:   %d/%d processed, %d failed, %d skipped\n", p.ProcessedFiles, p.TotalFiles, p.FailedFiles, p.SkippedFiles)
	if p.ErrorMessage != "" {
		fmt.Printf("  Error:   %s\n", p.ErrorMessage)
	}
	if len(p.FailedPaths) > 0 {
		fmt.Println("  Failed paths:")
		for _, fp := range p.FailedPaths {
			fmt.Printf("    - %s\n", fp)
		}
	}

	states := a.throttles.States()
	if len(states) == 0 {
		return nil
	}
	fmt.Println("\nThrottles:")
	for _, s := range states {
		fmt.Printf("  %-30s concurrency=%d active=%d queued=%d\n", s.Name, s.Concurrency, s.ActiveCount, s.QueueDepth)
	}
	return nil
}
