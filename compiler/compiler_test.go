package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/diagnostic"
	"github.com/quill-lang/quill/document/codegen"
)

func newSession(t *testing.T, opts ...Option) *Compiler {
	t.Helper()
	opts = append([]Option{WithColorMode(diagnostic.ColorNever)}, opts...)
	c, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCompileString(t *testing.T) {
	c := newSession(t, WithHeader(false))
	out, err := c.CompileString(context.Background(), "main.qll",
		"docclass article\nstartdoc\nhello")
	require.NoError(t, err)
	assert.Equal(t,
		"\\documentclass{article}\n\\begin{document}\nhello\n\\end{document}\n",
		out)
}

func TestCompileStringHeader(t *testing.T) {
	c := newSession(t)
	out, err := c.CompileString(context.Background(), "main.qll", "nodoc\nx")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "%\n%  This file was generated by quill\n%\n"))
}

func TestCompileStringWithScript(t *testing.T) {
	c := newSession(t, WithHeader(false))
	source := "nodoc\nscript\nquill.sprintn(\"\\\\kant[\", 1, \"]\")\nendscript\n"
	out, err := c.CompileString(context.Background(), "main.qll", source)
	require.NoError(t, err)
	assert.Equal(t, "\\kant[1]\n\n", out)
}

func TestCompileStringScriptUsesParseBuiltin(t *testing.T) {
	c := newSession(t, WithHeader(false))
	source := "nodoc\nscript\nquill.sprint(quill.parse(\"$x^2$\"))\nendscript"
	out, err := c.CompileString(context.Background(), "main.qll", source)
	require.NoError(t, err)
	assert.Equal(t, "$x^2$", out)
}

func TestCompileStringScriptInsideMath(t *testing.T) {
	c := newSession(t, WithHeader(false))
	source := "nodoc\n$script\nquill.sprint(\"x^2\")\nendscript$"
	out, err := c.CompileString(context.Background(), "main.qll", source)
	require.NoError(t, err)
	assert.Equal(t, "$x^2$", out)
}

func TestCompileStringParseError(t *testing.T) {
	c := newSession(t)
	_, err := c.CompileString(context.Background(), "main.qll", "nodoc\n{unclosed")
	require.Error(t, err)
}

func TestCompileStringScriptError(t *testing.T) {
	c := newSession(t)
	source := "nodoc\nscript\nquill.sprint(\nendscript"
	_, err := c.CompileString(context.Background(), "main.qll", source)
	require.Error(t, err)
	assert.ErrorIs(t, err, codegen.ErrScriptFailed)
}

func TestCompileStringUncheckedScriptError(t *testing.T) {
	c := newSession(t)
	source := "nodoc\nscript\nquill.sprint(true)\nendscript"
	_, err := c.CompileString(context.Background(), "main.qll", source)
	require.Error(t, err)
	assert.ErrorIs(t, err, codegen.ErrScriptReported)
	assert.Contains(t, err.Error(), "bool")
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.qll")
	require.NoError(t, os.WriteFile(src, []byte("docclass article\nstartdoc\nhi"), 0o644))

	c := newSession(t, WithHeader(false))
	outPath, err := c.CompileFile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "doc.tex"), outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\\documentclass{article}")
	assert.Contains(t, string(data), "hi")
}

func TestCompileFileOutputDir(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	src := filepath.Join(srcDir, "doc.qll")
	require.NoError(t, os.WriteFile(src, []byte("nodoc\nx"), 0o644))

	c := newSession(t, WithOutputDir(outDir))
	outPath, err := c.CompileFile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "doc.tex"), outPath)
	_, err = os.Stat(outPath)
	assert.NoError(t, err)
}

func TestCompileFileMissing(t *testing.T) {
	c := newSession(t)
	_, err := c.CompileFile(context.Background(), filepath.Join(t.TempDir(), "nope.qll"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestScriptStateSpansSession(t *testing.T) {
	// One engine per session: a variable bound in an earlier compile is not
	// visible later (each evaluation is independent), but builtin discipline
	// holds: the accumulator starts clean for every script block.
	c := newSession(t, WithHeader(false))
	out1, err := c.CompileString(context.Background(), "a.qll",
		"nodoc\nscript\nquill.sprint(\"one\")\nendscript")
	require.NoError(t, err)
	assert.Equal(t, "one", out1)

	out2, err := c.CompileString(context.Background(), "b.qll",
		"nodoc\nscript\nquill.sprint(\"two\")\nendscript")
	require.NoError(t, err)
	assert.Equal(t, "two", out2)
}

func TestOutputPath(t *testing.T) {
	c := newSession(t)
	assert.Equal(t, filepath.Join("docs", "a.tex"), c.outputPath(filepath.Join("docs", "a.qll")))

	c2 := newSession(t, WithOutputDir("build"))
	assert.Equal(t, filepath.Join("build", "a.tex"), c2.outputPath(filepath.Join("docs", "a.qll")))
}
