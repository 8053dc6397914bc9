package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevenseconds/vibescout/internal/search"
)

var (
	searchCollectionFlag string
	searchProjectFlag    string
	searchMinScoreFlag   float64
	chatFlag             bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the indexed codebase",
	Long: `search embeds the query, runs a hybrid vector+keyword search against the
store, reranks the candidates, and prints the results in order.

With --chat, the top results are instead handed to the configured
summarizer provider, which answers the query in natural language.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchCollectionFlag, "collection", "", "restrict to a collection")
	searchCmd.Flags().StringVar(&searchProjectFlag, "project", "", "restrict to a project")
	searchCmd.Flags().Float64Var(&searchMinScoreFlag, "min-score", 0, "drop results below this rerank score (requires a reranker)")
	searchCmd.Flags().BoolVar(&chatFlag, "chat", false, "answer the query in natural language instead of listing results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := joinArgs(args)

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := search.Options{
		Collection:  searchCollectionFlag,
		ProjectName: searchProjectFlag,
		MinScore:    searchMinScoreFlag,
	}

	if chatFlag {
		answer, err := a.search.Chat(ctx, query, opts, nil)
		if err != nil {
			return fmt.Errorf("cli: chat: %w", err)
		}
		fmt.Println(answer)
		return nil
	}

	results, err := a.search.Query(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("cli: search: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. %s:%d-%d  %s\n", i+1, r.Record.FilePath, r.Record.StartLine, r.Record.EndLine, r.Record.Name)
		if r.Record.Summary != "" {
			fmt.Printf("   %s\n", r.Record.Summary)
		}
		fmt.Printf("   distance=%.4f rerank=%.4f fts=%v\n", r.Distance, r.RerankScore, r.FromFTS)
	}
	return nil
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
