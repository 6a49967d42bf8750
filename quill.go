// Package quill compiles quill markup documents into LaTeX. Documents can
// embed Risor script blocks that generate markup at compile time through the
// engine package's builtins.
//
// This root package offers one-shot helpers; for batch or watch compilation
// use the compiler package directly so the engine session is reused.
package quill

import (
	"context"

	"github.com/quill-lang/quill/compiler"
)

// Version is the quill release version.
const Version = "0.3.0"

// CompileString compiles a single in-memory document with a fresh
// compilation session. name is the display name used in diagnostics.
func CompileString(ctx context.Context, name, source string, opts ...compiler.Option) (string, error) {
	c, err := compiler.New(opts...)
	if err != nil {
		return "", err
	}
	defer c.Close()
	return c.CompileString(ctx, name, source)
}

// CompileFile compiles one source file to its output path with a fresh
// compilation session, returning the output path.
func CompileFile(ctx context.Context, path string, opts ...compiler.Option) (string, error) {
	c, err := compiler.New(opts...)
	if err != nil {
		return "", err
	}
	defer c.Close()
	return c.CompileFile(ctx, path)
}
