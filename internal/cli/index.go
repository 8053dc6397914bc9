package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sevenseconds/vibescout/internal/pipeline"
	"github.com/sevenseconds/vibescout/internal/types"
)

var (
	quietFlag      bool
	watchFlag      bool
	forceFlag      bool
	summarizeFlag  bool
	projectFlag    string
	collectionFlag string
)

var indexCmd = &cobra.Command{
	Use:   "index [folder]",
	Short: "Index a folder for semantic search",
	Long: `index walks a folder, extracts searchable blocks from every known
file type, embeds them, and writes them into the vector store.

Examples:
  vibescout index .
  vibescout index ./service --quiet
  vibescout index ./service --watch
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "disable progress bars and non-error output")
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "keep watching the folder for changes after the initial index")
	indexCmd.Flags().BoolVar(&forceFlag, "force", false, "reprocess every file regardless of content hash")
	indexCmd.Flags().BoolVar(&summarizeFlag, "summarize", true, "generate LLM summaries for summarizable blocks")
	indexCmd.Flags().StringVar(&projectFlag, "project", "", "project name (default: folder basename)")
	indexCmd.Flags().StringVar(&collectionFlag, "collection", "default", "collection name")
}

func runIndex(cmd *cobra.Command, args []string) error {
	folderPath := "."
	if len(args) == 1 {
		folderPath = args[0]
	}
	absPath, err := filepath.Abs(folderPath)
	if err != nil {
		return fmt.Errorf("cli: resolve folder path: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted! Cancelling indexing...")
		cancel()
	}()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	renderer := NewCLIProgressRenderer(quietFlag)
	subID := uuid.NewString()
	done := make(chan struct{})
	go renderer.Run(a.bus, subID, done)
	defer func() {
		close(done)
		a.bus.Unsubscribe(subID)
	}()

	result, err := a.pipeline.IndexFolder(ctx, pipeline.Options{
		FolderPath:  absPath,
		ProjectName: projectFlag,
		Collection:  collectionFlag,
		Summarize:   summarizeFlag,
		Force:       forceFlag,
	})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return fmt.Errorf("indexing failed: %w", err)
	}
	renderer.PrintSummary(result)

	if !watchFlag {
		return nil
	}

	entry := types.WatchListEntry{
		FolderPath:  absPath,
		ProjectName: a.pipeline.Status().ProjectName,
		Collection:  collectionFlag,
	}
	if err := a.watcherMgr.Watch(ctx, entry, a.cfg.Indexing.WatchDirectories, false); err != nil {
		return fmt.Errorf("cli: start watcher: %w", err)
	}
	if !quietFlag {
		fmt.Printf("Watching %s for changes (Ctrl+C to stop)...\n", absPath)
	}
	<-ctx.Done()
	return nil
}
