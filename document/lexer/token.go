package lexer

import "fmt"

// Type identifies the lexical class of a token.
type Type int

const (
	EOF Type = iota
	Illegal

	// Literals
	Text
	Integer
	Float
	Space
	Newline
	RawLatex // "%!" to end of line, passed through verbatim

	// Keywords
	Docclass
	Import
	StartDoc
	NoDoc
	Begenv
	Endenv
	Mtxt
	Etxt
	Defun
	EndDefun
	Defenv
	Redefenv
	EndsWith
	Script    // a whole script block, body captured verbatim in Literal
	EndScript // a stray "endscript" with no opening "script"

	// Punctuation
	Lbrace
	Rbrace
	Lparen
	Rparen
	Lsqbrace
	Rsqbrace
	Comma
	Star
	Superscript
	Subscript
	ArgSplit
	LatexFunction // "\name"

	// Math delimiters; the lexer tracks open/close state so the parser
	// sees paired start/end tokens.
	InlineMathStart
	InlineMathEnd
	DisplayMathStart
	DisplayMathEnd
)

var typeNames = map[Type]string{
	EOF:              "end of file",
	Illegal:          "illegal character",
	Text:             "text",
	Integer:          "integer",
	Float:            "float",
	Space:            "space",
	Newline:          "newline",
	RawLatex:         "raw latex",
	Docclass:         "docclass",
	Import:           "import",
	StartDoc:         "startdoc",
	NoDoc:            "nodoc",
	Begenv:           "begenv",
	Endenv:           "endenv",
	Mtxt:             "mtxt",
	Etxt:             "etxt",
	Defun:            "defun",
	EndDefun:         "endfun",
	Defenv:           "defenv",
	Redefenv:         "redefenv",
	EndsWith:         "endswith",
	Script:           "script",
	EndScript:        "endscript",
	Lbrace:           "{",
	Rbrace:           "}",
	Lparen:           "(",
	Rparen:           ")",
	Lsqbrace:         "[",
	Rsqbrace:         "]",
	Comma:            ",",
	Star:             "*",
	Superscript:      "^",
	Subscript:        "_",
	ArgSplit:         "#",
	LatexFunction:    "latex function",
	InlineMathStart:  "$",
	InlineMathEnd:    "$",
	DisplayMathStart: "$$",
	DisplayMathEnd:   "$$",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// IsKeyword reports whether the token type is one of the reserved words.
func (t Type) IsKeyword() bool {
	return t >= Docclass && t <= EndScript
}

// Keyword returns the keyword token type for a word, if any.
func Keyword(word string) (Type, bool) {
	t, ok := keywords[word]
	return t, ok
}

var keywords = map[string]Type{
	"docclass":  Docclass,
	"import":    Import,
	"startdoc":  StartDoc,
	"nodoc":     NoDoc,
	"begenv":    Begenv,
	"endenv":    Endenv,
	"mtxt":      Mtxt,
	"etxt":      Etxt,
	"endfun":    EndDefun,
	"defenv":    Defenv,
	"redefenv":  Redefenv,
	"endswith":  EndsWith,
	"script":    Script,
	"endscript": EndScript,

	// Function definitions. The prefix letters select TeX modifiers
	// (l \long, o \outer, e \edef, g \gdef, x \xdef); the parser reads
	// them back out of the token literal.
	"defun":    Defun,
	"ldefun":   Defun,
	"odefun":   Defun,
	"lodefun":  Defun,
	"edefun":   Defun,
	"ledefun":  Defun,
	"oedefun":  Defun,
	"loedefun": Defun,
	"gdefun":   Defun,
	"lgdefun":  Defun,
	"ogdefun":  Defun,
	"logdefun": Defun,
	"xdefun":   Defun,
	"lxdefun":  Defun,
	"oxdefun":  Defun,
	"loxdefun": Defun,
}

// Pos is a 1-based position in the source text.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Span is a half-open region of source text, used for diagnostics.
type Span struct {
	Start Pos
	End   Pos
}

// Token is a single lexeme with its source location. Literal holds the exact
// source text for literal-bearing tokens so the parser can reassemble
// verbatim regions.
type Token struct {
	Type    Type
	Literal string
	Span    Span
}
