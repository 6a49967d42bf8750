package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect scans all tokens up to EOF.
func collect(t *testing.T, source string) []Token {
	t.Helper()
	lx := New(source)
	var toks []Token
	for {
		tok := lx.Next()
		if tok.Type == EOF {
			return toks
		}
		toks = append(toks, tok)
		require.Less(t, len(toks), 10000, "lexer did not terminate")
	}
}

func types(toks []Token) []Type {
	out := make([]Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestKeywords(t *testing.T) {
	toks := collect(t, "docclass article")
	require.Len(t, toks, 3)
	assert.Equal(t, Docclass, toks[0].Type)
	assert.Equal(t, Space, toks[1].Type)
	assert.Equal(t, Text, toks[2].Type)
	assert.Equal(t, "article", toks[2].Literal)
}

func TestFunctionDefKeywordVariants(t *testing.T) {
	for _, word := range []string{"defun", "ldefun", "gdefun", "xdefun", "loxdefun"} {
		toks := collect(t, word+" f")
		require.NotEmpty(t, toks, "keyword %q", word)
		assert.Equal(t, Defun, toks[0].Type, "keyword %q", word)
		assert.Equal(t, word, toks[0].Literal, "keyword %q", word)
	}
	// Unknown prefix combinations stay plain text.
	toks := collect(t, "zdefun")
	require.Len(t, toks, 1)
	assert.Equal(t, Text, toks[0].Type)
}

func TestKeywordInsideWordIsText(t *testing.T) {
	toks := collect(t, "importance")
	require.Len(t, toks, 1)
	assert.Equal(t, Text, toks[0].Type)
	assert.Equal(t, "importance", toks[0].Literal)
}

func TestInlineMathToggles(t *testing.T) {
	toks := collect(t, "$x$")
	assert.Equal(t, []Type{InlineMathStart, Text, InlineMathEnd}, types(toks))
}

func TestDisplayMathToggles(t *testing.T) {
	toks := collect(t, "$$x$$")
	assert.Equal(t, []Type{DisplayMathStart, Text, DisplayMathEnd}, types(toks))
}

func TestPunctuation(t *testing.T) {
	toks := collect(t, "{}()[],*^_#")
	assert.Equal(t, []Type{
		Lbrace, Rbrace, Lparen, Rparen, Lsqbrace, Rsqbrace,
		Comma, Star, Superscript, Subscript, ArgSplit,
	}, types(toks))
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		source string
		want   Type
		lit    string
	}{
		{"42", Integer, "42"},
		{"3.14", Float, "3.14"},
		{"12pt", Text, "12pt"},
	}
	for _, tt := range tests {
		toks := collect(t, tt.source)
		require.Len(t, toks, 1, "source %q", tt.source)
		assert.Equal(t, tt.want, toks[0].Type, "source %q", tt.source)
		assert.Equal(t, tt.lit, toks[0].Literal, "source %q", tt.source)
	}
}

func TestIntegerThenDot(t *testing.T) {
	// A trailing dot is sentence punctuation, so the run stays text.
	toks := collect(t, "42.")
	require.Len(t, toks, 1)
	assert.Equal(t, Text, toks[0].Type)
	assert.Equal(t, "42.", toks[0].Literal)
}

func TestLatexFunction(t *testing.T) {
	toks := collect(t, `\textbf{hi}`)
	require.Len(t, toks, 4)
	assert.Equal(t, LatexFunction, toks[0].Type)
	assert.Equal(t, `\textbf`, toks[0].Literal)
	assert.Equal(t, Lbrace, toks[1].Type)
}

func TestEscapedCharacterIsRawLatex(t *testing.T) {
	toks := collect(t, `\$`)
	require.Len(t, toks, 1)
	assert.Equal(t, RawLatex, toks[0].Type)
	assert.Equal(t, `\$`, toks[0].Literal)
}

func TestCommentDropped(t *testing.T) {
	toks := collect(t, "a % comment\nb")
	assert.Equal(t, []Type{Text, Space, Newline, Text}, types(toks))
}

func TestRawLatexLine(t *testing.T) {
	toks := collect(t, "%!\\makeatletter\n")
	require.Len(t, toks, 2)
	assert.Equal(t, RawLatex, toks[0].Type)
	assert.Equal(t, "\\makeatletter", toks[0].Literal)
	assert.Equal(t, Newline, toks[1].Type)
}

func TestScriptBlockCapturedVerbatim(t *testing.T) {
	source := "script\nquill.sprint(\"$\", 1)\nendscript\n"
	toks := collect(t, source)
	require.Len(t, toks, 2)
	assert.Equal(t, Script, toks[0].Type)
	assert.Equal(t, "\nquill.sprint(\"$\", 1)\n", toks[0].Literal)
	assert.Equal(t, Newline, toks[1].Type)
}

func TestUnterminatedScriptBlock(t *testing.T) {
	toks := collect(t, "script\nquill.sprint(1)\n")
	require.Len(t, toks, 1)
	assert.Equal(t, Illegal, toks[0].Type)
}

func TestStrayEndscript(t *testing.T) {
	toks := collect(t, "endscript")
	require.Len(t, toks, 1)
	assert.Equal(t, EndScript, toks[0].Type)
}

func TestPositions(t *testing.T) {
	lx := New("ab\ncd")
	tok := lx.Next()
	assert.Equal(t, Pos{Line: 1, Col: 1}, tok.Span.Start)
	tok = lx.Next() // newline
	require.Equal(t, Newline, tok.Type)
	tok = lx.Next()
	assert.Equal(t, Pos{Line: 2, Col: 1}, tok.Span.Start)
	assert.Equal(t, "cd", tok.Literal)
}

func TestEOFForever(t *testing.T) {
	lx := New("")
	for i := 0; i < 3; i++ {
		assert.Equal(t, EOF, lx.Next().Type)
	}
}

func TestSpaceRunsPreserved(t *testing.T) {
	toks := collect(t, "a  \tb")
	require.Len(t, toks, 3)
	assert.Equal(t, Space, toks[1].Type)
	assert.Equal(t, "  \t", toks[1].Literal)
}
