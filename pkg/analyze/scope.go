package analyze

import (
	"fmt"

	"github.com/fetchpipe/fetchpipe/pkg/ast"
)

// scope is the set of entity aliases a query actually declares: the
// root entity (by alias, or by name when unaliased) plus every join
// alias, collected recursively.
type scope struct {
	aliases map[string]string // alias -> entity name
	root    string            // root scope alias
	multi   bool              // true once any join is present
}

// buildScope collects declared aliases and rejects duplicates.
func buildScope(q *ast.Query) (*scope, error) {
	sc := &scope{
		aliases: map[string]string{},
		root:    q.Entity.ScopeAlias(),
	}
	sc.aliases[sc.root] = q.Entity.Name

	var add func(joins []*ast.Join) error
	add = func(joins []*ast.Join) error {
		for _, j := range joins {
			sc.multi = true
			alias := j.Entity.ScopeAlias()
			if _, dup := sc.aliases[alias]; dup {
				return &SemanticError{
					Pos:     j.Entity.Pos,
					Message: fmt.Sprintf("duplicate alias %q", alias),
				}
			}
			sc.aliases[alias] = j.Entity.Name
			if err := add(j.Joins); err != nil {
				return err
			}
		}
		return nil
	}
	if err := add(q.Joins); err != nil {
		return nil, err
	}
	return sc, nil
}

// resolve checks one field reference against the declared aliases.
// A bare reference is legal only while a single entity is in scope.
func (sc *scope) resolve(f ast.FieldRef) error {
	if f.Alias == "" {
		if sc.multi {
			return &SemanticError{
				Pos:     f.Pos,
				Message: fmt.Sprintf("ambiguous reference %s: aliases are required once joins are present", f),
			}
		}
		return nil
	}
	if _, ok := sc.aliases[f.Alias]; !ok {
		return &UnresolvedAliasError{Pos: f.Pos, Alias: f.Alias}
	}
	return nil
}
