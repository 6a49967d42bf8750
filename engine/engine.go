// Package engine embeds the Risor scripting runtime inside the quill
// compiler. It owns exactly one engine instance, exposes the host builtins
// scripts use to emit markup (sprint, sprintn, sprintln) and to recompile
// generated fragments (parse), and carries the output accumulator and error
// slot the host reads back after evaluation.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	risorLib "github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"github.com/quill-lang/quill/internal/helpers"
)

// GlobalName is the single global under which every builtin is registered.
// Scripts call them qualified: quill.sprint(...), quill.parse(...).
const GlobalName = "quill"

// FragmentName is the display name used in diagnostics for source text that
// the parse builtin compiled, since it has no file behind it.
const FragmentName = "<inline fragment>"

// Engine is one embedded scripting runtime plus the host-owned state the
// builtins operate on. It is not safe for concurrent use: evaluation and all
// accessors belong to one logical thread of control.
type Engine struct {
	module *object.Module

	// output is the accumulator the sprint builtins append to. It lives on
	// the host side; scripts reach it only through the builtins.
	output strings.Builder

	// errMsg/errSet form the error slot: the out-of-band failure channel for
	// builtin-reported errors. The slot clears at the start of every builtin
	// call, so a pending error always belongs to the most recent call.
	errMsg string
	errSet bool

	closed bool

	diagOut io.Writer
	color   bool

	logHandler slog.Handler
	logger     *slog.Logger
}

// Option configures an Engine during construction.
type Option func(*Engine) error

// WithLogHandler sets the slog handler for engine logging.
func WithLogHandler(handler slog.Handler) Option {
	return func(e *Engine) error {
		e.logHandler = handler
		return nil
	}
}

// WithDiagnosticOutput sets where parse-builtin failure diagnostics print.
// Defaults to stderr.
func WithDiagnosticOutput(w io.Writer) Option {
	return func(e *Engine) error {
		if w == nil {
			return fmt.Errorf("diagnostic output writer is nil")
		}
		e.diagOut = w
		return nil
	}
}

// WithColor controls colored diagnostics from the parse builtin.
func WithColor(on bool) Option {
	return func(e *Engine) error {
		e.color = on
		return nil
	}
}

// New creates an Engine with the builtin registry installed under the
// GlobalName namespace, an empty output accumulator, and a clear error slot.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		diagOut: os.Stderr,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("error applying engine option: %w", err)
		}
	}
	e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "engine", "")

	e.module = object.NewBuiltinsModule(GlobalName, map[string]object.Object{
		"sprint":   object.NewBuiltin("sprint", e.sprint),
		"sprintn":  object.NewBuiltin("sprintn", e.sprintn),
		"sprintln": object.NewBuiltin("sprintln", e.sprintln),
		"parse":    object.NewBuiltin("parse", e.parse),
	})
	return e, nil
}

func (e *Engine) String() string {
	return "engine.Engine"
}

// Close releases the engine. Using the engine after Close (or closing it
// twice) returns ErrEngineClosed.
func (e *Engine) Close() error {
	if e.closed {
		return ErrEngineClosed
	}
	e.closed = true
	e.module = nil
	e.output.Reset()
	e.clearError()
	return nil
}

// Evaluate executes sourceText as a script in the engine's global
// environment. A returned error means an engine-native failure (syntax
// error or uncaught runtime error); the caller must not assume any builtin
// ran to completion. A nil return does NOT mean every builtin succeeded:
// builtin-reported failures land in the error slot, which the caller is
// responsible for checking with LastError.
func (e *Engine) Evaluate(ctx context.Context, sourceText string) error {
	if e.closed {
		return ErrEngineClosed
	}
	logger := e.logger.WithGroup("evaluate")

	code, err := compileWithGlobals(ctx, sourceText, []string{GlobalName})
	if err != nil {
		logger.WarnContext(ctx, "script compilation failed", "error", err)
		return fmt.Errorf("%w: %w", ErrScriptFailed, err)
	}

	if _, err := risorLib.EvalCode(ctx, code, risorLib.WithGlobal(GlobalName, e.module)); err != nil {
		logger.WarnContext(ctx, "script run failed", "error", err)
		return fmt.Errorf("%w: %w", ErrScriptFailed, err)
	}

	logger.DebugContext(ctx, "script evaluated", "outputBytes", e.output.Len())
	return nil
}

// Output returns the current contents of the output accumulator without
// mutating it.
func (e *Engine) Output() string {
	return e.output.String()
}

// ResetOutput sets the output accumulator back to the empty string.
func (e *Engine) ResetOutput() {
	e.output.Reset()
}

// LastError returns the error slot's value. The second return is false when
// no builtin failure is pending.
func (e *Engine) LastError() (string, bool) {
	return e.errMsg, e.errSet
}

func (e *Engine) setError(msg string) {
	e.errMsg = msg
	e.errSet = true
}

func (e *Engine) clearError() {
	e.errMsg = ""
	e.errSet = false
}
