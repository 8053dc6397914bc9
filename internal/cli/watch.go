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

	"github.com/sevenseconds/vibescout/internal/events"
	"github.com/sevenseconds/vibescout/internal/types"
)

var (
	watchCollectionFlag string
	watchProjectFlag    string
	watchForcePolling   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [folder]",
	Short: "Watch a previously indexed folder and reindex on change",
	Long: `watch attaches a filesystem watcher to folder (its already-indexed state
is assumed current) and enqueues a reindex task for every file that
changes, until interrupted.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchCollectionFlag, "collection", "default", "collection name")
	watchCmd.Flags().StringVar(&watchProjectFlag, "project", "", "project name (default: folder basename)")
	watchCmd.Flags().BoolVar(&watchForcePolling, "poll", false, "use polling instead of native filesystem events")
}

func runWatch(cmd *cobra.Command, args []string) error {
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
		fmt.Println("\nStopping watcher...")
		cancel()
	}()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	projectName := watchProjectFlag
	if projectName == "" {
		projectName = filepath.Base(absPath)
	}

	entry := types.WatchListEntry{
		FolderPath:  absPath,
		ProjectName: projectName,
		Collection:  watchCollectionFlag,
	}

	subID := uuid.NewString()
	done := make(chan struct{})
	logCh := a.bus.Subscribe(subID)
	defer a.bus.Unsubscribe(subID)
	go func() {
		for {
			select {
			case evt, ok := <-logCh:
				if !ok {
					return
				}
				if evt.Kind == events.KindTask {
					fmt.Printf("task %s: %s\n", evt.Task.Task.ID, evt.Task.Type)
				}
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	if err := a.watcherMgr.Watch(ctx, entry, a.cfg.Indexing.WatchDirectories, watchForcePolling); err != nil {
		return fmt.Errorf("cli: start watcher: %w", err)
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)...\n", absPath)
	<-ctx.Done()
	return nil
}
