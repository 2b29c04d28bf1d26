package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/fetchpipe/fetchpipe/pkg/compiler"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive compile loop",
		Long: `Start an interactive loop that compiles each query as it is entered.

A query ending with a backslash continues on the next line. History is
kept in the user cache directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd)
		},
	}
	return cmd
}

func runRepl(cmd *cobra.Command) error {
	opts, err := resolveOptions(&CompileOptions{})
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "fetchpipe> ",
		HistoryFile:     historyFilePath(),
		AutoComplete:    newReplCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "fetchpipe REPL")
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			rl.SetPrompt("fetchpipe> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") && buffer.Len() == 0 {
			if line == ".quit" || line == ".exit" {
				break
			}
			handleReplCommand(cmd, line)
			continue
		}

		// A trailing backslash continues the query on the next line.
		if strings.HasSuffix(line, "\\") {
			buffer.WriteString(strings.TrimSuffix(line, "\\"))
			buffer.WriteString(" ")
			rl.SetPrompt("      ...> ")
			continue
		}
		rl.SetPrompt("fetchpipe> ")

		buffer.WriteString(line)
		source := buffer.String()
		buffer.Reset()

		markup, err := compiler.Compile(source, opts)
		if err != nil {
			printError(cmd.ErrOrStderr(), err)
			continue
		}
		_, _ = fmt.Fprintln(out, markup)
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

func handleReplCommand(cmd *cobra.Command, line string) {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case ".help":
		printReplHelp(cmd.OutOrStdout())
	case ".clear":
		fmt.Print("\033[H\033[2J")
	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", line)
	}
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - End a line with \ to continue the query on the next line
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newReplCompleter completes stage keywords and dot-commands.
func newReplCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("join"),
		readline.PcItem("leftjoin"),
		readline.PcItem("group"),
		readline.PcItem("having"),
		readline.PcItem("order"),
		readline.PcItem("limit"),
		readline.PcItem("page"),
		readline.PcItem("distinct"),
		readline.PcItem("options"),
		readline.PcItem("count"),
		readline.PcItem("sum"),
		readline.PcItem("avg"),
		readline.PcItem("min"),
		readline.PcItem("max"),
		readline.PcItem(".help"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

// historyFilePath returns a per-user history location, or empty to
// disable persistent history.
func historyFilePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "fetchpipe")
	if err := os.MkdirAll(path, 0o755); err != nil {
		return ""
	}
	return filepath.Join(path, "history")
}
