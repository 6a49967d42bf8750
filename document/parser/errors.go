package parser

import (
	"fmt"
	"strings"

	"github.com/quill-lang/quill/document/lexer"
)

// ErrKind classifies parse failures.
type ErrKind int

const (
	ErrEOF ErrKind = iota
	ErrBracketMismatch
	ErrNotClosed
	ErrNotOpened
	ErrNameMissing
	ErrBeforeDocument
	ErrIllegalUsage
	ErrTokenMismatch
	ErrIllegalCharacter
	ErrBadNumber
	ErrScriptNotAllowed
)

// Error is a structured parse failure carrying the source span where it was
// detected, for diagnostic rendering.
type Error struct {
	Kind     ErrKind
	Span     lexer.Span
	Expected []lexer.Type // TokenMismatch, BracketMismatch
	Got      lexer.Type   // TokenMismatch, IllegalUsage, BeforeDocument
	Open     lexer.Type   // NotClosed, NotOpened
	Close    lexer.Type   // NotClosed, NotOpened
	Detail   string       // IllegalCharacter, NameMissing
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrEOF:
		return "unexpected end of file"
	case ErrBracketMismatch:
		return fmt.Sprintf("expected %s before the end of input", typeList(e.Expected))
	case ErrNotClosed:
		return fmt.Sprintf("%s is not closed with %s", e.Open, e.Close)
	case ErrNotOpened:
		return fmt.Sprintf("%s found without a matching %s", e.Close, e.Open)
	case ErrNameMissing:
		return fmt.Sprintf("%s expects a name", e.Detail)
	case ErrBeforeDocument:
		return fmt.Sprintf("%s cannot appear before startdoc", e.Got)
	case ErrIllegalUsage:
		return fmt.Sprintf("%s cannot be used here", e.Got)
	case ErrTokenMismatch:
		return fmt.Sprintf("expected %s, got %s", typeList(e.Expected), e.Got)
	case ErrIllegalCharacter:
		if e.Detail != "" {
			return e.Detail
		}
		return "illegal character"
	case ErrBadNumber:
		return fmt.Sprintf("cannot parse %q as a number", e.Detail)
	case ErrScriptNotAllowed:
		return "script blocks are not allowed in this context"
	default:
		return "parse error"
	}
}

// Position reports the 1-based line, start column and end column of the
// error span, for diagnostic rendering. The end column is 0 when the span
// crosses lines, letting the renderer auto-detect the token end.
func (e *Error) Position() (line, col, endCol int) {
	line = e.Span.Start.Line
	col = e.Span.Start.Col
	if e.Span.End.Line == line && e.Span.End.Col > col {
		endCol = e.Span.End.Col - 1
	}
	return line, col, endCol
}

// Label returns the short text placed under the diagnostic underline.
func (e *Error) Label() string {
	switch e.Kind {
	case ErrNotClosed:
		return fmt.Sprintf("opened here, expected %s", e.Close)
	case ErrNotOpened:
		return "no matching opening keyword"
	case ErrScriptNotAllowed:
		return "nested script block"
	default:
		return "error occurred here"
	}
}

func typeList(types []lexer.Type) string {
	if len(types) == 0 {
		return "nothing"
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, " or ")
}
