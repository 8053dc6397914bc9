package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var depsProjectFlag string

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Query the dependency graph built from indexed import/export records",
}

var depsUsagesCmd = &cobra.Command{
	Use:   "usages <symbol>",
	Short: "List files that reference a symbol (find_symbol_usages)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepsUsages,
}

var depsFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Show a file's direct dependencies and dependents (get_file_dependencies)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepsFile,
}

func init() {
	rootCmd.AddCommand(depsCmd)
	depsCmd.PersistentFlags().StringVar(&depsProjectFlag, "project", "", "project to load dependency records from (required)")
	depsCmd.AddCommand(depsUsagesCmd, depsFileCmd)
}

// loadDepGraph rebuilds an app's depgraph.Graph from store.Dependencies,
// since each CLI invocation is a fresh process and the graph the pipeline
// maintains in-memory during indexing doesn't outlive it.
func loadDepGraph(ctx context.Context, a *app) error {
	if depsProjectFlag == "" {
		return fmt.Errorf("cli: --project is required")
	}
	deps, err := a.store.Dependencies(ctx, depsProjectFlag)
	if err != nil {
		return fmt.Errorf("cli: load dependencies: %w", err)
	}
	for _, d := range deps {
		a.depgraph.Record(d)
	}
	return nil
}

func runDepsUsages(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := loadDepGraph(ctx, a); err != nil {
		return err
	}

	usages := a.depgraph.FindUsages(args[0])
	if len(usages) == 0 {
		fmt.Println("No usages found.")
		return nil
	}
	for _, f := range usages {
		fmt.Println(f)
	}
	return nil
}

func runDepsFile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := loadDepGraph(ctx, a); err != nil {
		return err
	}

	dependsOn, dependents := a.depgraph.FileDependencies(args[0])
	fmt.Println("Depends on:")
	for _, f := range dependsOn {
		fmt.Printf("  %s\n", f)
	}
	fmt.Println("Depended on by:")
	for _, f := range dependents {
		fmt.Printf("  %s\n", f)
	}
	return nil
}
