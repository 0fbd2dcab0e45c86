package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// RunREPL reads commands until quit or EOF
func RunREPL(ctx context.Context, b *Browser, rl *readline.Instance) error {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		err = b.Execute(ctx, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			_, _ = fmt.Fprintf(rl.Stderr(), "Error: %v\n", err)
		}
	}
}

// newCompleter completes command names and column keys
func newCompleter(columns []string) *readline.PrefixCompleter {
	cols := make([]readline.PrefixCompleterInterface, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, readline.PcItem(c))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("search"),
		readline.PcItem("filter", append(cols, readline.PcItem("clear"))...),
		readline.PcItem("sort", append(cols, readline.PcItem("clear"))...),
		readline.PcItem("status",
			readline.PcItem("ALL"),
			readline.PcItem("OPEN"),
			readline.PcItem("CLOSED"),
		),
		readline.PcItem("down"),
		readline.PcItem("up"),
		readline.PcItem("more"),
		readline.PcItem("top"),
		readline.PcItem("refresh"),
		readline.PcItem("columns"),
		readline.PcItem("show"),
		readline.PcItem("create", cols...),
		readline.PcItem("update"),
		readline.PcItem("delete"),
		readline.PcItem("upload", readline.PcItemDynamic(listWorkbooks)),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// listWorkbooks completes .xlsx files in the working directory
func listWorkbooks(string) []string {
	matches, _ := filepath.Glob("*.xlsx")
	return matches
}
