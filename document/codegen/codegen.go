// Package codegen renders a quill AST to LaTeX text.
package codegen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/quill-lang/quill/document/ast"
	"github.com/quill-lang/quill/internal/helpers"
)

// ScriptEngine is the surface the generator needs from the script engine
// bridge to expand script blocks. Defined here so the engine package can
// depend on codegen (for nested compilation) without a cycle.
type ScriptEngine interface {
	Evaluate(ctx context.Context, sourceText string) error
	Output() string
	ResetOutput()
	LastError() (string, bool)
}

// Generator renders one parsed document. It is single-use.
type Generator struct {
	doc    ast.Document
	engine ScriptEngine
	header bool

	logHandler slog.Handler
	logger     *slog.Logger
}

// Option configures a Generator during construction.
type Option func(*Generator) error

// WithEngine provides the script engine used to expand script blocks. A
// document containing script blocks fails to generate without one.
func WithEngine(eng ScriptEngine) Option {
	return func(g *Generator) error {
		g.engine = eng
		return nil
	}
}

// WithHeader controls emission of the generated-file comment header.
func WithHeader(on bool) Option {
	return func(g *Generator) error {
		g.header = on
		return nil
	}
}

// WithLogHandler sets the slog handler used for generation logging.
func WithLogHandler(handler slog.Handler) Option {
	return func(g *Generator) error {
		g.logHandler = handler
		return nil
	}
}

// New creates a Generator for the given document.
func New(doc ast.Document, opts ...Option) (*Generator, error) {
	g := &Generator{doc: doc}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, fmt.Errorf("error applying generator option: %w", err)
		}
	}
	g.logHandler, g.logger = helpers.SetupLogger(g.logHandler, "codegen", "")
	return g, nil
}

func (g *Generator) String() string {
	return "codegen.Generator"
}

// Generate renders the document to w. Script blocks are evaluated in
// document order; an engine-native script failure or an unchecked
// builtin-reported failure aborts generation.
func (g *Generator) Generate(ctx context.Context, w io.Writer) error {
	var sb strings.Builder
	if g.header {
		sb.WriteString("%\n%  This file was generated by quill\n%\n")
	}
	for _, stmt := range g.doc {
		text, err := g.render(ctx, stmt)
		if err != nil {
			return err
		}
		sb.WriteString(text)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (g *Generator) render(ctx context.Context, stmt ast.Statement) (string, error) {
	switch s := stmt.(type) {
	case ast.DocumentClass:
		return g.classLike(ctx, "\\documentclass", s.Name, s.Options)
	case ast.UsePackage:
		return g.classLike(ctx, "\\usepackage", s.Name, s.Options)
	case ast.MultiUsePackages:
		var sb strings.Builder
		for _, pkg := range s.Packages {
			text, err := g.classLike(ctx, "\\usepackage", pkg.Name, pkg.Options)
			if err != nil {
				return "", err
			}
			sb.WriteString(text)
		}
		return sb.String(), nil
	case ast.DocumentStart:
		return "\\begin{document}\n", nil
	case ast.DocumentEnd:
		return "\n\\end{document}\n", nil
	case ast.MainText:
		return s.Text, nil
	case ast.Integer:
		return strconv.FormatInt(s.Value, 10), nil
	case ast.Float:
		return strconv.FormatFloat(s.Value, 'g', -1, 64), nil
	case ast.RawLatex:
		return s.Text, nil
	case ast.BracedText:
		body, err := g.renderAll(ctx, s.Body)
		if err != nil {
			return "", err
		}
		return "{" + body + "}", nil
	case ast.MathText:
		return g.renderMath(ctx, s)
	case ast.PlainTextInMath:
		body, err := g.renderAll(ctx, s.Body)
		if err != nil {
			return "", err
		}
		return "\\text{" + body + "}", nil
	case ast.Environment:
		return g.renderEnvironment(ctx, s)
	case ast.LatexFunction:
		return g.renderLatexFunction(ctx, s)
	case ast.FunctionDef:
		return g.renderFunctionDef(ctx, s)
	case ast.EnvironmentDef:
		return g.renderEnvironmentDef(ctx, s)
	case ast.ScriptBlock:
		return g.renderScriptBlock(ctx, s)
	default:
		return "", fmt.Errorf("unknown statement type %T", stmt)
	}
}

func (g *Generator) renderAll(ctx context.Context, stmts []ast.Statement) (string, error) {
	var sb strings.Builder
	for _, stmt := range stmts {
		text, err := g.render(ctx, stmt)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// classLike renders \documentclass and \usepackage statements, which share
// the "[opt,opt]{name}" shape. Options render through the full statement
// switch, so LaTeX function calls and braced groups inside an option list
// come out intact.
func (g *Generator) classLike(ctx context.Context, command, name string, options [][]ast.Statement) (string, error) {
	if options == nil {
		return fmt.Sprintf("%s{%s}\n", command, name), nil
	}
	opts := make([]string, 0, len(options))
	for _, option := range options {
		body, err := g.renderAll(ctx, option)
		if err != nil {
			return "", err
		}
		opts = append(opts, body)
	}
	return fmt.Sprintf("%s[%s]{%s}\n", command, strings.Join(opts, ","), name), nil
}

func (g *Generator) renderMath(ctx context.Context, s ast.MathText) (string, error) {
	body, err := g.renderAll(ctx, s.Body)
	if err != nil {
		return "", err
	}
	if s.Kind == ast.DisplayMath {
		return "\\[" + body + "\\]", nil
	}
	return "$" + body + "$", nil
}

func (g *Generator) renderArgs(ctx context.Context, args []ast.Arg) (string, error) {
	var sb strings.Builder
	for _, arg := range args {
		body, err := g.renderAll(ctx, arg.Body)
		if err != nil {
			return "", err
		}
		switch arg.Kind {
		case ast.MainArg:
			sb.WriteString("{" + body + "}")
		case ast.OptionalArg:
			sb.WriteString("[" + body + "]")
		case ast.StarArg:
			sb.WriteString("*")
		}
	}
	return sb.String(), nil
}

func (g *Generator) renderEnvironment(ctx context.Context, s ast.Environment) (string, error) {
	args, err := g.renderArgs(ctx, s.Args)
	if err != nil {
		return "", err
	}
	body, err := g.renderAll(ctx, s.Body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("\\begin{%s}%s%s\\end{%s}\n", s.Name, args, body, s.Name), nil
}

func (g *Generator) renderLatexFunction(ctx context.Context, s ast.LatexFunction) (string, error) {
	args, err := g.renderArgs(ctx, s.Args)
	if err != nil {
		return "", err
	}
	return s.Name + args, nil
}

func (g *Generator) renderFunctionDef(ctx context.Context, s ast.FunctionDef) (string, error) {
	body, err := g.renderAll(ctx, s.Body)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if s.Kind.Has(ast.FuncLong) {
		sb.WriteString("\\long")
	}
	if s.Kind.Has(ast.FuncOuter) {
		sb.WriteString("\\outer")
	}
	switch {
	case s.Kind.Has(ast.FuncExpand | ast.FuncGlobal):
		sb.WriteString("\\xdef\\")
	case s.Kind.Has(ast.FuncGlobal):
		sb.WriteString("\\gdef\\")
	case s.Kind.Has(ast.FuncExpand):
		sb.WriteString("\\edef\\")
	default:
		sb.WriteString("\\def\\")
	}
	sb.WriteString(s.Name)
	sb.WriteString(s.ArgSpec)
	sb.WriteString("{")
	if s.Trim.Start {
		sb.WriteString("%\n")
	}
	sb.WriteString(trimBody(body, s.Trim.Start, s.Trim.End))
	sb.WriteString("%\n}\n")
	return sb.String(), nil
}

func (g *Generator) renderEnvironmentDef(ctx context.Context, s ast.EnvironmentDef) (string, error) {
	command := "\\newenvironment"
	if s.Redefine {
		command = "\\renewenvironment"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s{%s}", command, s.Name)
	if s.ArgCount > 0 {
		fmt.Fprintf(&sb, "[%d]", s.ArgCount)
		if s.OptDefault != nil {
			def, err := g.renderAll(ctx, s.OptDefault)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&sb, "[%s]", def)
		}
	}

	begin, err := g.renderAll(ctx, s.BeginPart)
	if err != nil {
		return "", err
	}
	end, err := g.renderAll(ctx, s.EndPart)
	if err != nil {
		return "", err
	}

	sb.WriteString("{")
	sb.WriteString(trimBody(begin, s.Trim.Start, s.Trim.Mid))
	sb.WriteString("}{")
	sb.WriteString(trimBody(end, s.Trim.Mid, s.Trim.End))
	sb.WriteString("}\n")
	return sb.String(), nil
}

func trimBody(body string, start, end bool) string {
	switch {
	case start && end:
		return strings.TrimSpace(body)
	case start:
		return strings.TrimLeft(body, " \t\n")
	case end:
		return strings.TrimRight(body, " \t\n")
	default:
		return body
	}
}

// renderScriptBlock evaluates a script block and splices whatever the script
// accumulated through the sprint builtins into the output stream.
func (g *Generator) renderScriptBlock(ctx context.Context, s ast.ScriptBlock) (string, error) {
	if g.engine == nil {
		return "", ErrNoEngine
	}
	logger := g.logger.WithGroup("script")

	g.engine.ResetOutput()
	if err := g.engine.Evaluate(ctx, s.Body); err != nil {
		logger.WarnContext(ctx, "script evaluation failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrScriptFailed, err)
	}
	if msg, ok := g.engine.LastError(); ok {
		logger.WarnContext(ctx, "script left an unchecked builtin error", "error", msg)
		return "", fmt.Errorf("%w: %s", ErrScriptReported, msg)
	}

	out := g.engine.Output()
	g.engine.ResetOutput()
	logger.DebugContext(ctx, "script block expanded", "bytes", len(out))
	return out, nil
}
