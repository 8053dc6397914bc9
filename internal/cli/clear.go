package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	clearProjectFlag string
	clearYesFlag     bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear indexed data",
	Long: `clear deletes indexed records. With --project it deletes only that
project's records; otherwise it clears the entire store.
`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().StringVar(&clearProjectFlag, "project", "", "only clear this project")
	clearCmd.Flags().BoolVarP(&clearYesFlag, "yes", "y", false, "skip the confirmation prompt")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYesFlag {
		target := "the entire index"
		if clearProjectFlag != "" {
			target = fmt.Sprintf("project %q", clearProjectFlag)
		}
		fmt.Printf("This will permanently delete %s. Re-run with --yes to confirm.\n", target)
		return nil
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if clearProjectFlag != "" {
		if err := a.store.DeleteByProject(ctx, clearProjectFlag); err != nil {
			return fmt.Errorf("cli: clear project %s: %w", clearProjectFlag, err)
		}
		fmt.Printf("Cleared project %q.\n", clearProjectFlag)
		return nil
	}

	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("cli: clear store: %w", err)
	}
	fmt.Println("Cleared the index.")
	return nil
}
