// Package compiler drives whole-file compilation: it owns the script engine
// bridge for the duration of a session, runs the parse/codegen pipeline, and
// reports failures through annotated diagnostics.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/quill-lang/quill/diagnostic"
	"github.com/quill-lang/quill/document/codegen"
	"github.com/quill-lang/quill/document/parser"
	"github.com/quill-lang/quill/engine"
	"github.com/quill-lang/quill/internal/helpers"
)

// SourceExt and OutputExt are the quill source and generated-file
// extensions.
const (
	SourceExt = ".qll"
	OutputExt = ".tex"
)

// Compiler is one compilation session. It holds a single engine instance
// shared by every file compiled through it, so script state (and the output
// accumulator discipline) spans the session.
type Compiler struct {
	eng    *engine.Engine
	color  diagnostic.ColorMode
	outDir string
	header bool

	logHandler slog.Handler
	logger     *slog.Logger
}

// Option configures a Compiler during construction.
type Option func(*Compiler) error

// WithLogHandler sets the slog handler for the session.
func WithLogHandler(handler slog.Handler) Option {
	return func(c *Compiler) error {
		c.logHandler = handler
		return nil
	}
}

// WithColorMode controls colored diagnostic output.
func WithColorMode(mode diagnostic.ColorMode) Option {
	return func(c *Compiler) error {
		c.color = mode
		return nil
	}
}

// WithOutputDir redirects generated files into dir instead of writing them
// next to their sources.
func WithOutputDir(dir string) Option {
	return func(c *Compiler) error {
		c.outDir = dir
		return nil
	}
}

// WithHeader controls the generated-file comment header.
func WithHeader(on bool) Option {
	return func(c *Compiler) error {
		c.header = on
		return nil
	}
}

// New creates a compilation session and its engine instance.
func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{header: true}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("error applying compiler option: %w", err)
		}
	}
	c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "compiler", "")

	eng, err := engine.New(
		engine.WithLogHandler(c.logHandler),
		engine.WithColor(c.color.Enabled(os.Stderr)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create script engine: %w", err)
	}
	c.eng = eng
	return c, nil
}

// Close releases the session's engine. The Compiler is unusable afterwards.
func (c *Compiler) Close() error {
	return c.eng.Close()
}

// CompileString runs the full pipeline over source, with script blocks
// enabled. name is the display name used in diagnostics.
func (c *Compiler) CompileString(ctx context.Context, name, source string) (string, error) {
	p, err := parser.New(source,
		parser.WithFilename(name),
		parser.WithScriptBlocks(true),
	)
	if err != nil {
		return "", fmt.Errorf("failed to initialize parser: %w", err)
	}
	doc, err := p.Parse()
	if err != nil {
		return "", err
	}

	gen, err := codegen.New(doc,
		codegen.WithEngine(c.eng),
		codegen.WithHeader(c.header),
		codegen.WithLogHandler(c.logHandler),
	)
	if err != nil {
		return "", fmt.Errorf("failed to initialize generator: %w", err)
	}

	var sb strings.Builder
	if err := gen.Generate(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// CompileFile compiles path and writes the generated LaTeX beside it (or
// into the configured output directory). On failure an annotated diagnostic
// prints to stderr and the error is returned.
func (c *Compiler) CompileFile(ctx context.Context, path string) (string, error) {
	logger := c.logger.WithGroup("compileFile").With("file", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	source := string(data)

	text, err := c.CompileString(ctx, path, source)
	if err != nil {
		diag := diagnostic.NewContext()
		diag.SetSource(path, source)
		diag.Report(err)
		if printErr := diag.Print(c.color.Enabled(os.Stderr)); printErr != nil {
			logger.Warn("failed to print diagnostic", "error", printErr)
		}
		return "", err
	}

	outPath := c.outputPath(path)
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	logger.InfoContext(ctx, "compiled", "out", outPath)
	return outPath, nil
}

func (c *Compiler) outputPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, SourceExt) + OutputExt
	dir := filepath.Dir(path)
	if c.outDir != "" {
		dir = c.outDir
	}
	return filepath.Join(dir, base)
}
