package engine

import (
	"context"
	"strings"

	"github.com/risor-io/risor/object"

	"github.com/quill-lang/quill/diagnostic"
	"github.com/quill-lang/quill/document/codegen"
	"github.com/quill-lang/quill/document/parser"
)

// sprint appends its arguments to the output accumulator with no trailing
// separator.
func (e *Engine) sprint(ctx context.Context, args ...object.Object) object.Object {
	return e.accumulate(args, "")
}

// sprintn appends its arguments followed by one line break.
func (e *Engine) sprintn(ctx context.Context, args ...object.Object) object.Object {
	return e.accumulate(args, "\n")
}

// sprintln appends its arguments followed by a blank line, i.e. a LaTeX
// paragraph break.
func (e *Engine) sprintln(ctx context.Context, args ...object.Object) object.Object {
	return e.accumulate(args, "\n\n")
}

// accumulate implements the shared sprint contract: zero arguments is a true
// no-op, a stringification failure writes the error slot and appends
// nothing, and otherwise the concatenated text plus the variant's suffix
// lands on the accumulator. The return value is always nil; failure is
// observable only through the error slot.
func (e *Engine) accumulate(args []object.Object, suffix string) object.Object {
	e.clearError()
	if len(args) == 0 {
		return object.Nil
	}
	text, err := stringifyArgs(args)
	if err != nil {
		e.setError(err.Error())
		return object.Nil
	}
	e.output.WriteString(text)
	e.output.WriteString(suffix)
	return object.Nil
}

// parse compiles its concatenated arguments as an independent document
// fragment and returns the generated LaTeX text to the calling script. The
// fragment may not contain script blocks of its own, which bounds recursion
// to a single script level. Every failure is non-fatal: the error slot is
// written, parse and generation failures additionally print an annotated
// diagnostic, and the builtin returns nil.
func (e *Engine) parse(ctx context.Context, args ...object.Object) object.Object {
	e.clearError()
	if len(args) == 0 {
		return object.Nil
	}
	logger := e.logger.WithGroup("parse")

	source, err := stringifyArgs(args)
	if err != nil {
		e.setError(err.Error())
		return object.Nil
	}

	diag := diagnostic.NewContext()
	diag.SetOutput(e.diagOut)
	diag.SetSource(FragmentName, source)

	p, err := parser.New(source,
		parser.WithFilename(FragmentName),
		parser.WithFragmentMode(true),
		parser.WithScriptBlocks(false),
	)
	if err != nil {
		e.setError("cannot initialize fragment parser: " + err.Error())
		return object.Nil
	}

	doc, err := p.Parse()
	if err != nil {
		diag.Report(err)
		if printErr := diag.Print(e.color); printErr != nil {
			logger.Warn("failed to print fragment diagnostic", "error", printErr)
		}
		e.setError("failed to parse inline fragment")
		return object.Nil
	}

	gen, err := codegen.New(doc, codegen.WithLogHandler(e.logHandler))
	if err != nil {
		e.setError("cannot initialize fragment generator: " + err.Error())
		return object.Nil
	}

	var buf strings.Builder
	if err := gen.Generate(ctx, &buf); err != nil {
		diag.Report(err)
		if printErr := diag.Print(e.color); printErr != nil {
			logger.Warn("failed to print fragment diagnostic", "error", printErr)
		}
		e.setError("failed to generate inline fragment")
		return object.Nil
	}

	// The generated text goes back to the caller, not to the accumulator;
	// the script decides whether to forward it into sprint.
	return object.NewString(buf.String())
}
