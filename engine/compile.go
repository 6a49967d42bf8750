package engine

import (
	"context"
	"errors"
	"fmt"

	risorLib "github.com/risor-io/risor"
	risorCompiler "github.com/risor-io/risor/compiler"
	risorErrors "github.com/risor-io/risor/errz"
	risorParser "github.com/risor-io/risor/parser"
)

// compile parses and compiles script content into bytecode.
func compile(ctx context.Context, scriptContent string, options ...risorCompiler.Option) (*risorCompiler.Code, error) {
	prog, err := risorParser.Parse(ctx, scriptContent)
	if err != nil {
		// Prefer the friendlier error output when there's a syntax error.
		errMsg := err.Error()
		var friendlyErr risorErrors.FriendlyError
		if errors.As(err, &friendlyErr) {
			errMsg = friendlyErr.FriendlyErrorMessage()
		}
		return nil, fmt.Errorf("%w: %s", ErrCompileFailed, errMsg)
	}

	bc, err := risorCompiler.Compile(prog, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCompileFailed, err)
	}
	return bc, nil
}

// compileWithGlobals parses and compiles the script content into bytecode,
// with custom global names that will be injected at eval time. The builtin
// registry's namespace must be declared here or scripts referencing it fail
// to compile.
func compileWithGlobals(ctx context.Context, scriptContent string, globals []string) (*risorCompiler.Code, error) {
	cfg := risorLib.NewConfig()
	globalNames := append(cfg.GlobalNames(), globals...)

	options := []risorCompiler.Option{
		risorCompiler.WithGlobalNames(globalNames),
	}
	return compile(ctx, scriptContent, options...)
}
