package diagnostic

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryReader(name, source string) func(string) ([]byte, error) {
	return func(file string) ([]byte, error) {
		if file == name {
			return []byte(source), nil
		}
		return nil, fmt.Errorf("unknown source %q", file)
	}
}

func TestRenderAnnotatedSpan(t *testing.T) {
	r := &Renderer{
		Color:        ColorNever,
		SourceReader: memoryReader("test.qll", "hello world\n"),
	}
	var buf bytes.Buffer
	err := r.Render(&buf, Diagnostic{
		Severity: SeverityError,
		Message:  "bad thing",
		Spans: []Span{{
			File: "test.qll", Line: 1, Col: 7, EndCol: 11, Label: "here",
		}},
	})
	require.NoError(t, err)

	want := "error: bad thing\n" +
		"  --> test.qll:1:7\n" +
		"   |\n" +
		" 1 |  hello world\n" +
		"   |        ^^^^^ here\n" +
		"   |\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderAutoDetectsTokenEnd(t *testing.T) {
	r := &Renderer{
		Color:        ColorNever,
		SourceReader: memoryReader("f", "begenv center\n"),
	}
	var buf bytes.Buffer
	err := r.Render(&buf, Diagnostic{
		Severity: SeverityError,
		Message:  "unclosed environment",
		Spans:    []Span{{File: "f", Line: 1, Col: 1}},
	})
	require.NoError(t, err)
	// "begenv" is six characters; EndCol 0 extends the underline to the
	// end of the token.
	assert.Contains(t, buf.String(), "^^^^^^")
	assert.NotContains(t, buf.String(), "^^^^^^^")
}

func TestRenderMissingSource(t *testing.T) {
	r := &Renderer{Color: ColorNever}
	var buf bytes.Buffer
	err := r.Render(&buf, Diagnostic{
		Severity: SeverityWarning,
		Message:  "orphan",
		Spans:    []Span{{File: "/no/such/file.qll", Line: 3, Col: 1}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "warning: orphan\n")
	assert.Contains(t, buf.String(), "--> /no/such/file.qll:3:1\n")
	assert.NotContains(t, buf.String(), "^")
}

func TestRenderNotes(t *testing.T) {
	r := &Renderer{Color: ColorNever}
	var buf bytes.Buffer
	err := r.Render(&buf, Diagnostic{
		Severity: SeverityNote,
		Message:  "heads up",
		Notes:    []string{"try the --out flag"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "= note: try the --out flag\n")
}

func TestRenderAllSeparatesDiagnostics(t *testing.T) {
	r := &Renderer{Color: ColorNever}
	var buf bytes.Buffer
	err := r.RenderAll(&buf, []Diagnostic{
		{Severity: SeverityError, Message: "first"},
		{Severity: SeverityError, Message: "second"},
	})
	require.NoError(t, err)
	assert.Equal(t, "error: first\n\nerror: second\n", buf.String())
}

func TestRenderColorAlways(t *testing.T) {
	r := &Renderer{Color: ColorAlways}
	var buf bytes.Buffer
	err := r.Render(&buf, Diagnostic{Severity: SeverityError, Message: "boom"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\033[1;31m")
	assert.Contains(t, buf.String(), "\033[0m")
}

func TestParseColorMode(t *testing.T) {
	assert.Equal(t, ColorAlways, ParseColorMode("always"))
	assert.Equal(t, ColorNever, ParseColorMode("never"))
	assert.Equal(t, ColorAuto, ParseColorMode("auto"))
	assert.Equal(t, ColorAuto, ParseColorMode("bogus"))
}

func TestColorModeEnabled(t *testing.T) {
	assert.True(t, ColorAlways.Enabled(nil))
	assert.False(t, ColorNever.Enabled(nil))
	// A nil file is never a terminal.
	t.Setenv("NO_COLOR", "")
	assert.False(t, ColorAuto.Enabled(nil))
}

func TestMessageWrapping(t *testing.T) {
	r := &Renderer{Color: ColorNever}
	var buf bytes.Buffer
	long := strings.Repeat("wordy ", 30)
	err := r.Render(&buf, Diagnostic{Severity: SeverityError, Message: long})
	require.NoError(t, err)
	for _, line := range strings.Split(buf.String(), "\n") {
		assert.LessOrEqual(t, len(line), messageWidth+len("error: "))
	}
}

// spanErr is a minimal SpannedError for Context tests.
type spanErr struct {
	msg, label        string
	line, col, endCol int
}

func (e *spanErr) Error() string                      { return e.msg }
func (e *spanErr) Position() (line, col, endCol int) { return e.line, e.col, e.endCol }
func (e *spanErr) Label() string                     { return e.label }

func TestContextReportsSpannedError(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext()
	ctx.SetOutput(&buf)
	ctx.SetSource("<fragment>", "oops here\n")
	ctx.Report(&spanErr{msg: "something broke", label: "this one", line: 1, col: 6})
	require.NoError(t, ctx.Print(false))

	out := buf.String()
	assert.Contains(t, out, "error: something broke\n")
	assert.Contains(t, out, "--> <fragment>:1:6\n")
	assert.Contains(t, out, "oops here")
	assert.Contains(t, out, "this one")
}

func TestContextReportsPlainError(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext()
	ctx.SetOutput(&buf)
	ctx.Report(errors.New("plain failure"))
	require.NoError(t, ctx.Print(false))
	assert.Equal(t, "error: plain failure\n", buf.String())
}

func TestContextNothingToPrint(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext()
	ctx.SetOutput(&buf)
	ctx.Report(nil)
	require.NoError(t, ctx.Print(false))
	assert.Empty(t, buf.String())
}
