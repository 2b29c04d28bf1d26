package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fetchpipe/fetchpipe/pkg/parser"
	"github.com/fetchpipe/fetchpipe/pkg/token"
)

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "tokens [query]",
		Short: "Print the token stream of a query",
		Long: `Print the token stream of a query as a table.

Useful for debugging lexer behavior, in particular how negated
operators (!=, !~, !in, !between) and date literals are read.`,
		Example: `  fetchpipe tokens '.account | .revenue > 1000'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readQuery(args, input)
			if err != nil {
				return err
			}
			tokens, err := parser.Tokenize(source)
			if err != nil {
				return err
			}
			renderTokens(cmd, tokens)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Read the query from a file")
	return cmd
}

func renderTokens(cmd *cobra.Command, tokens []token.Token) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"#", "Type", "Literal", "Line", "Column"})
	for i, tok := range tokens {
		literal := tok.Literal
		if tok.Type == token.EOF {
			literal = ""
		}
		t.AppendRow(table.Row{i + 1, tok.Type.String(), literal, tok.Pos.Line, tok.Pos.Column})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "%d tokens\n", len(tokens))
}
