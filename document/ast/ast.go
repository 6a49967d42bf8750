// Package ast defines the statement tree produced by the quill parser.
package ast

// Document is a parsed quill source file: a flat list of top-level
// statements in source order.
type Document []Statement

// Statement is a single unit of generated LaTeX output.
type Statement interface {
	stmt()
}

// ArgKind distinguishes how a LaTeX function or environment argument is
// delimited in the output.
type ArgKind int

const (
	MainArg     ArgKind = iota // {...}
	OptionalArg                // [...]
	StarArg                    // a bare star
)

// Arg is one argument of a LaTeX function call or environment.
type Arg struct {
	Kind ArgKind
	Body []Statement
}

// Trim controls whitespace trimming around definition bodies.
type Trim struct {
	Start bool
	Mid   bool // only meaningful for environment definitions
	End   bool
}

// DocumentClass is the "docclass name (options)" statement.
type DocumentClass struct {
	Name    string
	Options [][]Statement // nil when no option list was given
}

// UsePackage is a single "import name (options)" statement.
type UsePackage struct {
	Name    string
	Options [][]Statement
}

// MultiUsePackages is the braced "import { ... }" form.
type MultiUsePackages struct {
	Packages []UsePackage
}

// DocumentStart marks "startdoc"; it renders \begin{document}.
type DocumentStart struct{}

// DocumentEnd renders \end{document}. It is appended automatically when the
// document used "startdoc" (but not "nodoc").
type DocumentEnd struct{}

// MainText is a verbatim run of document text.
type MainText struct {
	Text string
}

// Integer is a numeric literal, passed through.
type Integer struct {
	Value int64
}

// Float is a numeric literal, passed through.
type Float struct {
	Value float64
}

// RawLatex is a "%!" line or an escaped character, passed through verbatim.
type RawLatex struct {
	Text string
}

// BracedText renders its body wrapped in braces.
type BracedText struct {
	Body []Statement
}

// MathKind distinguishes inline ($...$) from display ($$...$$) math.
type MathKind int

const (
	InlineMath MathKind = iota
	DisplayMath
)

// MathText is a math region.
type MathText struct {
	Kind MathKind
	Body []Statement
}

// PlainTextInMath is an "mtxt ... etxt" region inside math; it renders as
// \text{...}.
type PlainTextInMath struct {
	Body []Statement
}

// Environment is "begenv name <args> ... endenv".
type Environment struct {
	Name string
	Args []Arg
	Body []Statement
}

// LatexFunction is a "\name" call with optional arguments.
type LatexFunction struct {
	Name string // includes the leading backslash
	Args []Arg
}

// FunctionKind is a bitmask of TeX definition modifiers selected by the
// defun keyword variant (ldefun, xdefun, loxdefun, ...).
type FunctionKind uint8

const (
	FuncLong   FunctionKind = 1 << iota // \long prefix
	FuncOuter                           // \outer prefix
	FuncExpand                          // \edef instead of \def
	FuncGlobal                          // \gdef instead of \def; with FuncExpand, \xdef
)

// Has reports whether every flag in mask is set.
func (k FunctionKind) Has(mask FunctionKind) bool {
	return k&mask == mask
}

// FunctionDef is "defun name(argspec) body endfun"; renders a \def (or the
// variant its Kind selects).
type FunctionDef struct {
	Kind    FunctionKind
	Name    string
	ArgSpec string
	Trim    Trim
	Body    []Statement
}

// EnvironmentDef is "defenv name[n, default] begin endswith end endenv";
// renders \newenvironment (or \renewenvironment).
type EnvironmentDef struct {
	Redefine   bool
	Name       string
	ArgCount   int
	OptDefault []Statement // nil when no default argument was given
	Trim       Trim
	BeginPart  []Statement
	EndPart    []Statement
}

// ScriptBlock carries the verbatim body of a "script ... endscript" block.
// The generator evaluates it and splices the engine's accumulated output.
type ScriptBlock struct {
	Body string
}

func (DocumentClass) stmt()    {}
func (UsePackage) stmt()       {}
func (MultiUsePackages) stmt() {}
func (DocumentStart) stmt()    {}
func (DocumentEnd) stmt()      {}
func (MainText) stmt()         {}
func (Integer) stmt()          {}
func (Float) stmt()            {}
func (RawLatex) stmt()         {}
func (BracedText) stmt()       {}
func (MathText) stmt()         {}
func (PlainTextInMath) stmt()  {}
func (Environment) stmt()      {}
func (LatexFunction) stmt()    {}
func (FunctionDef) stmt()      {}
func (EnvironmentDef) stmt()   {}
func (ScriptBlock) stmt()      {}
