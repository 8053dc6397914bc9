package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed projects grouped by collection (list_knowledge_base)",
	RunE:  runList,
}

var moveProjectCmd = &cobra.Command{
	Use:   "move-project <project> <newCollection>",
	Short: "Move a project's records to a different collection (move_project)",
	Args:  cobra.ExactArgs(2),
	RunE:  runMoveProject,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(moveProjectCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	collections, err := a.store.Collections(ctx)
	if err != nil {
		return fmt.Errorf("cli: list collections: %w", err)
	}
	if len(collections) == 0 {
		fmt.Println("No projects indexed.")
		return nil
	}

	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		projects := collections[name]
		sort.Strings(projects)
		fmt.Printf("%s:\n", name)
		for _, p := range projects {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func runMoveProject(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	project, newCollection := args[0], args[1]
	if err := a.store.MoveProjectToCollection(ctx, project, newCollection); err != nil {
		return fmt.Errorf("cli: move project %s: %w", project, err)
	}
	fmt.Printf("Moved %q to collection %q.\n", project, newCollection)
	return nil
}
