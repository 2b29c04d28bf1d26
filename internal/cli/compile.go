package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/fetchpipe/fetchpipe/pkg/ast"
	"github.com/fetchpipe/fetchpipe/pkg/compiler"
	"github.com/fetchpipe/fetchpipe/pkg/parser"
)

// CompileOptions holds options for the compile command.
type CompileOptions struct {
	Input        string
	Output       string
	Format       string
	Watch        bool
	DefaultLimit int
	Version      string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	opts := &CompileOptions{}

	cmd := &cobra.Command{
		Use:   "compile [query]",
		Short: "Compile a pipe query to FetchXML",
		Long: `Compile a pipe query to FetchXML markup.

The query is read from the argument, from --input, or from piped stdin.
Compilation is a dry run: the generated markup is printed, never
executed. Errors carry the source position of the offending construct.`,
		Example: `  # Compile a query directly
  fetchpipe compile '.account | .name, .revenue | limit(10)'

  # Compile from a file
  fetchpipe compile --input query.fpq

  # Recompile whenever the file changes
  fetchpipe compile --input query.fpq --watch

  # Write the markup to a file
  fetchpipe compile --input query.fpq --output query.xml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read the query from a file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write markup to a file instead of stdout")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "xml", "Output format: xml or summary")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch --input and recompile on change")
	cmd.Flags().IntVar(&opts.DefaultLimit, "default-limit", 0, "Override the configured default row count")
	cmd.Flags().StringVar(&opts.Version, "fetch-version", "", "Override the configured target-format version")
	return cmd
}

func runCompile(cmd *cobra.Command, args []string, opts *CompileOptions) error {
	compileOpts, err := resolveOptions(opts)
	if err != nil {
		return err
	}

	if opts.Format != "xml" && opts.Format != "summary" {
		return fmt.Errorf("unknown format %q (expected xml or summary)", opts.Format)
	}

	if opts.Watch {
		if opts.Input == "" {
			return fmt.Errorf("--watch requires --input")
		}
		if opts.Format != "xml" {
			return fmt.Errorf("--watch supports only the xml format")
		}
		return watchCompile(cmd, opts, compileOpts)
	}

	source, err := readQuery(args, opts.Input)
	if err != nil {
		return err
	}
	markup, err := compiler.Compile(source, compileOpts)
	if err != nil {
		return err
	}
	if opts.Format == "summary" {
		return renderSummary(cmd, source, len(markup))
	}
	return writeMarkup(cmd, opts.Output, markup)
}

// renderSummary prints a one-table overview of the compiled query
// instead of the markup itself.
func renderSummary(cmd *cobra.Command, source string, markupSize int) error {
	q, err := parser.Parse(source)
	if err != nil {
		return err
	}

	joins := 0
	var countJoins func(js []*ast.Join)
	countJoins = func(js []*ast.Join) {
		for _, j := range js {
			joins++
			countJoins(j.Joins)
		}
	}
	countJoins(q.Joins)

	rows := fmt.Sprintf(`Entity:        %s
Attributes:    %d
Filters:       %d
Joins:         %d
Groupings:     %d
Aggregations:  %d
Orders:        %d
Markup bytes:  %d`,
		q.Entity.Name, len(q.Attributes), len(q.Filters), joins,
		len(q.Groups), len(q.Aggregations), len(q.Orders), markupSize)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rows)
	return err
}

// resolveOptions layers command flags over the loaded configuration.
func resolveOptions(opts *CompileOptions) (compiler.Options, error) {
	cfg, err := loadConfig()
	if err != nil {
		return compiler.Options{}, err
	}
	resolved := compiler.Options{
		DefaultLimit: cfg.DefaultLimit,
		Version:      cfg.Version,
	}
	if opts.DefaultLimit != 0 {
		resolved.DefaultLimit = opts.DefaultLimit
	}
	if opts.Version != "" {
		resolved.Version = opts.Version
	}
	return resolved, nil
}

// readQuery fans in the query text: argument, file, or piped stdin.
func readQuery(args []string, input string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case input != "":
		content, err := os.ReadFile(input)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), nil
	default:
		return "", fmt.Errorf("no query given (pass an argument, --input, or pipe stdin)")
	}
}

func writeMarkup(cmd *cobra.Command, output, markup string) error {
	if output != "" {
		return os.WriteFile(output, []byte(markup+"\n"), 0o644)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), markup)
	return err
}

// watchCompile recompiles the input file on every write, printing each
// result or error without stopping the loop.
func watchCompile(cmd *cobra.Command, opts *CompileOptions, compileOpts compiler.Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file on save.
	dir := filepath.Dir(opts.Input)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	compileOnce := func() {
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			printError(cmd.ErrOrStderr(), err)
			return
		}
		markup, err := compiler.Compile(string(content), compileOpts)
		if err != nil {
			printError(cmd.ErrOrStderr(), err)
			return
		}
		if err := writeMarkup(cmd, opts.Output, markup); err != nil {
			printError(cmd.ErrOrStderr(), err)
			return
		}
		if opts.Output != "" {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render("wrote "+opts.Output))
		}
	}

	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("watching "+opts.Input))
	compileOnce()

	target := filepath.Clean(opts.Input)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			compileOnce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(cmd.ErrOrStderr(), err)
		}
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
