// Package compiler is the pipe-query compiler entry point: it chains
// lexing, parsing, semantic validation and FetchXML generation into a
// single call.
//
// The pipeline is synchronous and side-effect-free over an immutable
// input string; concurrent callers may compile independent queries in
// parallel with no shared state.
package compiler

import (
	"github.com/fetchpipe/fetchpipe/pkg/analyze"
	"github.com/fetchpipe/fetchpipe/pkg/fetchxml"
	"github.com/fetchpipe/fetchpipe/pkg/parser"
)

// DefaultRowLimit is the row count injected when a query sets neither
// limit nor page and the caller supplies no other default.
const DefaultRowLimit = 100

// Options carries the compile policy, externally sourced from the
// caller's settings store.
type Options struct {
	// DefaultLimit is the automatic row count for queries without an
	// explicit limit or page directive. Zero means DefaultRowLimit;
	// a negative value disables the injection entirely.
	DefaultLimit int
	// Version is the target-format version attribute. Empty means
	// fetchxml.DefaultVersion.
	Version string
}

// Compile translates pipe query text into FetchXML markup. Any stage
// failure aborts the call: no partial markup is ever returned.
func Compile(source string, opts Options) (string, error) {
	query, err := parser.Parse(source)
	if err != nil {
		return "", err
	}
	if err := analyze.Validate(query); err != nil {
		return "", err
	}

	limit := opts.DefaultLimit
	switch {
	case limit == 0:
		limit = DefaultRowLimit
	case limit < 0:
		limit = 0
	}
	return fetchxml.Generate(query, fetchxml.Config{
		DefaultLimit: limit,
		Version:      opts.Version,
	})
}
