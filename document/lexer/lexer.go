// Package lexer tokenizes quill markup source text.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// specials are the characters that terminate a text run and lex as their own
// tokens (or introduce one, for '\', '%' and '$').
const specials = " \t\n{}()[],*^_#$\\%"

// Lexer scans a source string into a stream of tokens. The zero value is not
// usable; construct with New.
type Lexer struct {
	src  string
	off  int
	pos  Pos
	done bool

	inlineMath  bool
	displayMath bool
}

// New creates a Lexer over the given source text.
func New(source string) *Lexer {
	return &Lexer{
		src: source,
		pos: Pos{Line: 1, Col: 1},
	}
}

// Next returns the next token in the stream. After the end of input it
// returns EOF tokens forever.
func (l *Lexer) Next() Token {
	for {
		if l.off >= len(l.src) {
			return Token{Type: EOF, Span: Span{Start: l.pos, End: l.pos}}
		}

		start := l.pos
		r, size := utf8.DecodeRuneInString(l.src[l.off:])

		switch {
		case r == ' ' || r == '\t':
			lit := l.takeWhile(func(r rune) bool { return r == ' ' || r == '\t' })
			return l.token(Space, lit, start)
		case r == '\n':
			l.bump(r, size)
			return l.token(Newline, "\n", start)
		case r == '%':
			if tok, ok := l.lexPercent(start); ok {
				return tok
			}
			continue // a comment; skip and rescan
		case r == '\\':
			return l.lexBackslash(start)
		case r == '$':
			return l.lexDollar(start)
		case strings.ContainsRune("{}()[],*^_#", r):
			l.bump(r, size)
			return l.token(punctType(r), string(r), start)
		case unicode.IsDigit(r):
			return l.lexNumber(start)
		default:
			return l.lexWord(start)
		}
	}
}

func punctType(r rune) Type {
	switch r {
	case '{':
		return Lbrace
	case '}':
		return Rbrace
	case '(':
		return Lparen
	case ')':
		return Rparen
	case '[':
		return Lsqbrace
	case ']':
		return Rsqbrace
	case ',':
		return Comma
	case '*':
		return Star
	case '^':
		return Superscript
	case '_':
		return Subscript
	case '#':
		return ArgSplit
	}
	return Illegal
}

// lexPercent handles "%" comments (dropped, ok=false) and "%!" raw LaTeX
// lines (emitted verbatim without the marker).
func (l *Lexer) lexPercent(start Pos) (Token, bool) {
	l.bump('%', 1)
	if l.off < len(l.src) && l.src[l.off] == '!' {
		l.bump('!', 1)
		lit := l.takeWhile(func(r rune) bool { return r != '\n' })
		return l.token(RawLatex, lit, start), true
	}
	l.takeWhile(func(r rune) bool { return r != '\n' })
	return Token{}, false
}

func (l *Lexer) lexBackslash(start Pos) Token {
	l.bump('\\', 1)
	if l.off >= len(l.src) {
		return l.token(Illegal, "\\", start)
	}
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	if unicode.IsLetter(r) {
		name := l.takeWhile(unicode.IsLetter)
		return l.token(LatexFunction, "\\"+name, start)
	}
	// An escaped single character passes through as raw LaTeX.
	l.bump(r, size)
	return l.token(RawLatex, "\\"+string(r), start)
}

func (l *Lexer) lexDollar(start Pos) Token {
	l.bump('$', 1)
	if l.off < len(l.src) && l.src[l.off] == '$' {
		l.bump('$', 1)
		if l.displayMath {
			l.displayMath = false
			return l.token(DisplayMathEnd, "$$", start)
		}
		l.displayMath = true
		return l.token(DisplayMathStart, "$$", start)
	}
	if l.inlineMath {
		l.inlineMath = false
		return l.token(InlineMathEnd, "$", start)
	}
	l.inlineMath = true
	return l.token(InlineMathStart, "$", start)
}

func (l *Lexer) lexNumber(start Pos) Token {
	lit := l.takeWhile(unicode.IsDigit)
	if l.off < len(l.src) {
		r, _ := utf8.DecodeRuneInString(l.src[l.off:])
		if r == '.' && l.digitFollows() {
			l.bump('.', 1)
			frac := l.takeWhile(unicode.IsDigit)
			return l.token(Float, lit+"."+frac, start)
		}
		// "12pt" and friends are text, not numbers.
		if !strings.ContainsRune(specials, r) {
			rest := l.takeWhile(func(r rune) bool { return !strings.ContainsRune(specials, r) })
			return l.token(Text, lit+rest, start)
		}
	}
	return l.token(Integer, lit, start)
}

func (l *Lexer) digitFollows() bool {
	if l.off+1 >= len(l.src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.off+1:])
	return unicode.IsDigit(r)
}

func (l *Lexer) lexWord(start Pos) Token {
	word := l.takeWhile(func(r rune) bool { return !strings.ContainsRune(specials, r) })
	if kw, ok := Keyword(word); ok {
		if kw == Script {
			return l.lexScriptBody(start)
		}
		return l.token(kw, word, start)
	}
	return l.token(Text, word, start)
}

// lexScriptBody captures everything between a "script" keyword and the next
// standalone "endscript" as a single verbatim token. Script bodies are
// foreign code and must not be tokenized as markup.
func (l *Lexer) lexScriptBody(start Pos) Token {
	idx := indexWord(l.src[l.off:], "endscript")
	if idx < 0 {
		l.takeWhile(func(rune) bool { return true })
		return l.token(Illegal, "unterminated script block", start)
	}
	body := l.src[l.off : l.off+idx]
	for _, r := range body {
		l.bump(r, utf8.RuneLen(r))
	}
	for _, r := range "endscript" {
		l.bump(r, 1)
	}
	return l.token(Script, body, start)
}

// indexWord finds the first occurrence of word in s bounded by non-word
// characters (or the ends of s). Returns -1 when absent.
func indexWord(s, word string) int {
	from := 0
	for {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return -1
		}
		i += from
		beforeOK := i == 0 || strings.ContainsRune(specials, rune(s[i-1]))
		after := i + len(word)
		afterOK := after >= len(s) || strings.ContainsRune(specials, rune(s[after]))
		if beforeOK && afterOK {
			return i
		}
		from = i + len(word)
	}
}

func (l *Lexer) takeWhile(pred func(rune) bool) string {
	from := l.off
	for l.off < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.off:])
		if !pred(r) {
			break
		}
		l.bump(r, size)
	}
	return l.src[from:l.off]
}

func (l *Lexer) bump(r rune, size int) {
	l.off += size
	if r == '\n' {
		l.pos.Line++
		l.pos.Col = 1
	} else {
		l.pos.Col++
	}
}

func (l *Lexer) token(t Type, lit string, start Pos) Token {
	return Token{Type: t, Literal: lit, Span: Span{Start: start, End: l.pos}}
}
