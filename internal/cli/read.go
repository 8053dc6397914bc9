package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <path> <startLine> <endLine>",
	Short: "Print a range of lines from a file (read_code_range)",
	Args:  cobra.ExactArgs(3),
	RunE:  runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	path := args[0]
	start, end, err := parseLineRange(args[1], args[2])
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cli: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if line < start {
			continue
		}
		if line > end {
			break
		}
		fmt.Printf("%6d\t%s\n", line, scanner.Text())
	}
	return scanner.Err()
}

func parseLineRange(startArg, endArg string) (int, int, error) {
	var start, end int
	if _, err := fmt.Sscanf(startArg, "%d", &start); err != nil {
		return 0, 0, fmt.Errorf("cli: invalid start line %q: %w", startArg, err)
	}
	if _, err := fmt.Sscanf(endArg, "%d", &end); err != nil {
		return 0, 0, fmt.Errorf("cli: invalid end line %q: %w", endArg, err)
	}
	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("cli: invalid line range %d-%d", start, end)
	}
	return start, end, nil
}
