package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/sevenseconds/vibescout/internal/events"
	"github.com/sevenseconds/vibescout/internal/pipeline"
)

// CLIProgressRenderer drives a progress bar off an events.Bus subscription
// instead of being a pipeline.Reporter itself, since the bus is already
// wired as the pipeline's one Reporter (see app.go) and spec.md §4.11
// names the CLI as exactly this kind of best-effort subscriber. Grounded on
// the teacher's CLIProgressReporter in internal/cli/progress.go, adapted
// from direct reporter callbacks to a channel-driven render loop.
type CLIProgressRenderer struct {
	quiet     bool
	bar       *progressbar.ProgressBar
	total     int
	startTime time.Time
}

// NewCLIProgressRenderer creates a renderer. When quiet is true, Run still
// drains the subscription (so it doesn't block the bus) but prints nothing
// beyond the final summary.
func NewCLIProgressRenderer(quiet bool) *CLIProgressRenderer {
	return &CLIProgressRenderer{quiet: quiet, startTime: time.Now()}
}

// Run subscribes to bus under id and renders progress/log events until the
// channel closes (via bus.Unsubscribe) or done is closed by the caller.
// Intended to run in its own goroutine alongside a blocking IndexFolder
// call; the caller must call bus.Unsubscribe(id) to stop it.
func (c *CLIProgressRenderer) Run(bus *events.Bus, id string, done <-chan struct{}) {
	ch := bus.Subscribe(id)
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return
			}
			switch evt.Kind {
			case events.KindProgress:
				c.renderProgress(evt.Progress.TotalFiles, evt.Progress.ProcessedFiles+evt.Progress.FailedFiles+evt.Progress.SkippedFiles, evt.Progress.ProjectName, evt.Progress.Active)
			case events.KindLog:
				if !c.quiet {
					fmt.Println(evt.Log.Message)
				}
			}
		case <-done:
			return
		}
	}
}

func (c *CLIProgressRenderer) renderProgress(total, done int, projectName string, active bool) {
	if c.quiet || total == 0 {
		return
	}
	if c.bar == nil || c.total != total {
		c.total = total
		c.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(fmt.Sprintf("Indexing %s", projectName)),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)
	}
	c.bar.Set(done)
	if !active {
		c.bar.Finish()
	}
}

// PrintSummary prints the final per-run tallies. Shown even in quiet mode,
// as a single line, matching the teacher's quiet/non-quiet summary split.
func (c *CLIProgressRenderer) PrintSummary(result pipeline.Result) {
	elapsed := time.Since(c.startTime)
	if c.quiet {
		fmt.Printf("Indexed %d files in %v\n", result.TotalIndexed, elapsed)
		return
	}
	fmt.Printf("\n✓ Indexing complete:\n")
	fmt.Printf("  Files: %d indexed, %d skipped, %d pruned\n", result.TotalIndexed, result.Skipped, result.Pruned)
	fmt.Printf("  Time: %v\n", elapsed)
}
