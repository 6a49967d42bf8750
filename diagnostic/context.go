package diagnostic

import (
	"errors"
	"io"
	"os"
)

// SpannedError is implemented by compiler errors that know where in the
// source they occurred. The parser and generator error types implement it.
type SpannedError interface {
	error

	// Position returns the 1-based line, start column and end column of the
	// error. An endCol of 0 means "auto-detect from the source line".
	Position() (line, col, endCol int)

	// Label returns the short text placed under the underline.
	Label() string
}

// Context is the reporter handed around the compilation pipeline. It holds
// one in-memory source (set with SetSource) and at most one pending
// diagnostic (set with Report), and renders them together on Print.
//
// The zero value prints to stderr; use SetOutput to redirect.
type Context struct {
	name   string
	source []byte
	out    io.Writer
	diag   *Diagnostic
}

// NewContext creates an empty reporter writing to stderr.
func NewContext() *Context {
	return &Context{out: os.Stderr}
}

// SetOutput redirects where Print writes.
func (c *Context) SetOutput(w io.Writer) {
	c.out = w
}

// SetSource registers the source text the next diagnostic is rendered
// against. The name is a display name, not necessarily a real path.
func (c *Context) SetSource(name, sourceText string) {
	c.name = name
	c.source = []byte(sourceText)
}

// Report records err as the pending diagnostic. Errors implementing
// SpannedError get a source annotation; anything else becomes a bare
// message.
func (c *Context) Report(err error) {
	if err == nil {
		return
	}
	d := Diagnostic{
		Severity: SeverityError,
		Message:  err.Error(),
	}
	var se SpannedError
	if errors.As(err, &se) {
		line, col, endCol := se.Position()
		d.Spans = []Span{{
			File:   c.name,
			Line:   line,
			Col:    col,
			EndCol: endCol,
			Label:  se.Label(),
		}}
	}
	c.diag = &d
}

// Print renders the pending diagnostic, if any, against the registered
// source. colorEnabled forces colors on or off; terminal detection is not
// used here because the caller already decided.
func (c *Context) Print(colorEnabled bool) error {
	if c.diag == nil {
		return nil
	}
	mode := ColorNever
	if colorEnabled {
		mode = ColorAlways
	}
	r := &Renderer{
		Color: mode,
		SourceReader: func(name string) ([]byte, error) {
			if name == c.name {
				return c.source, nil
			}
			return os.ReadFile(name)
		},
	}
	out := c.out
	if out == nil {
		out = os.Stderr
	}
	return r.Render(out, *c.diag)
}
