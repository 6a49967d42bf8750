package quill

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/compiler"
)

func TestCompileString(t *testing.T) {
	out, err := CompileString(context.Background(), "readme.qll",
		"docclass article\nstartdoc\nhello", compiler.WithHeader(false))
	require.NoError(t, err)
	assert.Equal(t,
		"\\documentclass{article}\n\\begin{document}\nhello\n\\end{document}\n",
		out)
}

func TestCompileStringWithScript(t *testing.T) {
	out, err := CompileString(context.Background(), "readme.qll",
		"nodoc\nscript\nquill.sprint(\"generated\")\nendscript",
		compiler.WithHeader(false))
	require.NoError(t, err)
	assert.Equal(t, "generated", out)
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "note.qll")
	require.NoError(t, os.WriteFile(src, []byte("nodoc\nhi"), 0o644))

	outPath, err := CompileFile(context.Background(), src, compiler.WithHeader(false))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "note.tex"), outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}
