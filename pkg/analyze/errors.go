package analyze

import (
	"fmt"

	"github.com/fetchpipe/fetchpipe/pkg/token"
)

// SemanticError reports a rule violation the grammar cannot express:
// incompatible stages, bad list arity, ambiguous references.
type SemanticError struct {
	Pos     token.Position
	Message string
}

func (e *SemanticError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("semantic error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return "semantic error: " + e.Message
}

// UnresolvedAliasError reports a reference to an alias that no entity
// clause or join declares.
type UnresolvedAliasError struct {
	Pos   token.Position
	Alias string
}

func (e *UnresolvedAliasError) Error() string {
	return fmt.Sprintf("unresolved alias %q at line %d, column %d", e.Alias, e.Pos.Line, e.Pos.Column)
}
