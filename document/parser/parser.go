// Package parser builds a quill AST from source text.
package parser

import (
	"strconv"
	"strings"

	"github.com/quill-lang/quill/document/ast"
	"github.com/quill-lang/quill/document/lexer"
)

// mathEnvNames are the environment names that put the parser into math mode
// for the duration of their body.
var mathEnvNames = map[string]bool{
	"equation": true,
	"align":    true,
	"array":    true,
	"eqnarray": true,
	"gather":   true,
}

// Parser is a single-use recursive-descent parser over one source text.
type Parser struct {
	lx       *lexer.Lexer
	peek     lexer.Token
	filename string

	fragment     bool // document treated as already started
	allowScripts bool

	sawStartDoc   bool
	preventEndDoc bool
	parsingDef    bool
	mathDepth     int
}

// Option configures a Parser during construction.
type Option func(*Parser) error

// WithFilename sets the display name used in diagnostics.
func WithFilename(name string) Option {
	return func(p *Parser) error {
		p.filename = name
		return nil
	}
}

// WithFragmentMode treats the source as a fragment of an already started
// document: preamble ordering is not enforced and no \end{document} is
// appended.
func WithFragmentMode(on bool) Option {
	return func(p *Parser) error {
		p.fragment = on
		return nil
	}
}

// WithScriptBlocks controls whether script blocks are permitted. When off, a
// script block is a parse error; this is what bounds script recursion to a
// single level during nested compilation.
func WithScriptBlocks(on bool) Option {
	return func(p *Parser) error {
		p.allowScripts = on
		return nil
	}
}

// New creates a parser over source. Script blocks are disallowed unless
// enabled through WithScriptBlocks.
func New(source string, opts ...Option) (*Parser, error) {
	p := &Parser{
		lx:       lexer.New(source),
		filename: "<input>",
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.peek = p.lx.Next()
	return p, nil
}

// Filename returns the display name used in diagnostics.
func (p *Parser) Filename() string { return p.filename }

// Parse consumes the whole source and returns the statement list. Failures
// are *Error values carrying a source span.
func (p *Parser) Parse() (ast.Document, error) {
	var doc ast.Document
	for !p.atEOF() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		doc = append(doc, stmt)
	}
	if p.sawStartDoc && !p.preventEndDoc {
		doc = append(doc, ast.DocumentEnd{})
	}
	return doc, nil
}

func (p *Parser) next() lexer.Token {
	tok := p.peek
	p.peek = p.lx.Next()
	return tok
}

func (p *Parser) atEOF() bool {
	return p.peek.Type == lexer.EOF
}

func (p *Parser) expect(t lexer.Type) (lexer.Token, error) {
	if p.peek.Type != t {
		return lexer.Token{}, &Error{
			Kind:     ErrTokenMismatch,
			Span:     p.peek.Span,
			Expected: []lexer.Type{t},
			Got:      p.peek.Type,
		}
	}
	return p.next(), nil
}

func (p *Parser) eatWhitespace(newlines bool) {
	for p.peek.Type == lexer.Space || (newlines && p.peek.Type == lexer.Newline) {
		p.next()
	}
}

// inPreamble reports whether preamble-only keywords are still dispatched as
// keywords. Once the document starts (or inside definitions and fragments)
// they read as plain text.
func (p *Parser) inPreamble() bool {
	return !p.sawStartDoc && !p.parsingDef && !p.fragment
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.peek.Type {
	case lexer.Docclass:
		if p.inPreamble() {
			return p.parseDocclass()
		}
	case lexer.Import:
		if p.inPreamble() {
			return p.parseUsePackage()
		}
	case lexer.StartDoc:
		if p.inPreamble() {
			p.sawStartDoc = true
			p.next()
			p.eatWhitespace(true)
			return ast.DocumentStart{}, nil
		}
	case lexer.NoDoc:
		if p.inPreamble() {
			p.sawStartDoc = true
			p.preventEndDoc = true
			tok := p.next()
			if p.peek.Type != lexer.Newline {
				return nil, &Error{
					Kind: ErrTokenMismatch, Span: tok.Span,
					Expected: []lexer.Type{lexer.Newline},
					Got:      p.peek.Type,
				}
			}
			p.next()
			return p.parseStatement()
		}
	case lexer.Begenv:
		return p.parseEnvironment()
	case lexer.Endenv:
		return nil, &Error{
			Kind: ErrNotOpened, Span: p.peek.Span,
			Open: lexer.Begenv, Close: lexer.Endenv,
		}
	case lexer.Mtxt:
		return p.parseTextInMath()
	case lexer.Etxt:
		return nil, &Error{
			Kind: ErrNotOpened, Span: p.peek.Span,
			Open: lexer.Mtxt, Close: lexer.Etxt,
		}
	case lexer.Defun:
		return p.parseFunctionDef()
	case lexer.EndDefun:
		return nil, &Error{
			Kind: ErrNotOpened, Span: p.peek.Span,
			Open: lexer.Defun, Close: lexer.EndDefun,
		}
	case lexer.Defenv, lexer.Redefenv:
		return p.parseEnvironmentDef()
	case lexer.EndsWith:
		return nil, &Error{
			Kind: ErrNotOpened, Span: p.peek.Span,
			Open: lexer.Defenv, Close: lexer.EndsWith,
		}
	case lexer.Script:
		if !p.allowScripts {
			return nil, &Error{Kind: ErrScriptNotAllowed, Span: p.peek.Span}
		}
		return ast.ScriptBlock{Body: p.next().Literal}, nil
	case lexer.EndScript:
		return nil, &Error{
			Kind: ErrNotOpened, Span: p.peek.Span,
			Open: lexer.Script, Close: lexer.EndScript,
		}
	case lexer.LatexFunction:
		return p.parseLatexFunction()
	case lexer.RawLatex:
		return ast.RawLatex{Text: p.next().Literal}, nil
	case lexer.Integer:
		tok := p.next()
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, &Error{Kind: ErrBadNumber, Span: tok.Span, Detail: tok.Literal}
		}
		return ast.Integer{Value: n}, nil
	case lexer.Float:
		tok := p.next()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, &Error{Kind: ErrBadNumber, Span: tok.Span, Detail: tok.Literal}
		}
		return ast.Float{Value: f}, nil
	case lexer.InlineMathStart, lexer.DisplayMathStart:
		if p.inPreamble() {
			return nil, &Error{Kind: ErrBeforeDocument, Span: p.peek.Span, Got: p.peek.Type}
		}
		return p.parseMath()
	case lexer.InlineMathEnd, lexer.DisplayMathEnd:
		return nil, &Error{Kind: ErrIllegalUsage, Span: p.peek.Span, Got: p.peek.Type}
	case lexer.Superscript, lexer.Subscript:
		if p.mathDepth == 0 && !p.parsingDef {
			return nil, &Error{Kind: ErrIllegalUsage, Span: p.peek.Span, Got: p.peek.Type}
		}
	case lexer.Lbrace:
		return p.parseBraced()
	case lexer.Illegal:
		tok := p.next()
		return nil, &Error{Kind: ErrIllegalCharacter, Span: tok.Span, Detail: tok.Literal}
	case lexer.EOF:
		return nil, &Error{Kind: ErrEOF, Span: p.peek.Span}
	}

	// Everything else is literal document text.
	return ast.MainText{Text: p.next().Literal}, nil
}

func (p *Parser) parseBraced() (ast.Statement, error) {
	open, err := p.expect(lexer.Lbrace)
	if err != nil {
		return nil, err
	}
	var body []ast.Statement
	for p.peek.Type != lexer.Rbrace {
		if p.atEOF() {
			return nil, &Error{
				Kind: ErrBracketMismatch, Span: open.Span,
				Expected: []lexer.Type{lexer.Rbrace},
			}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.next()
	return ast.BracedText{Body: body}, nil
}

func (p *Parser) parseMath() (ast.Statement, error) {
	open := p.next()
	kind := ast.InlineMath
	endTok := lexer.InlineMathEnd
	if open.Type == lexer.DisplayMathStart {
		kind = ast.DisplayMath
		endTok = lexer.DisplayMathEnd
	}

	p.mathDepth++
	defer func() { p.mathDepth-- }()

	var body []ast.Statement
	for p.peek.Type != endTok {
		if p.atEOF() {
			return nil, &Error{
				Kind: ErrBracketMismatch, Span: open.Span,
				Expected: []lexer.Type{endTok},
			}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.next()
	return ast.MathText{Kind: kind, Body: body}, nil
}

func (p *Parser) parseTextInMath() (ast.Statement, error) {
	open, err := p.expect(lexer.Mtxt)
	if err != nil {
		return nil, err
	}
	p.eatWhitespace(false)

	var body []ast.Statement
	for p.peek.Type != lexer.Etxt {
		if p.atEOF() {
			return nil, &Error{
				Kind: ErrNotClosed, Span: open.Span,
				Open: lexer.Mtxt, Close: lexer.Etxt,
			}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.next()
	return ast.PlainTextInMath{Body: body}, nil
}

func (p *Parser) parseDocclass() (ast.Statement, error) {
	if _, err := p.expect(lexer.Docclass); err != nil {
		return nil, err
	}
	p.eatWhitespace(false)

	name, err := p.takeName(lexer.Docclass)
	if err != nil {
		return nil, err
	}
	options, err := p.parseCommaOptions()
	if err != nil {
		return nil, err
	}
	if p.peek.Type == lexer.Newline {
		p.next()
	}
	return ast.DocumentClass{Name: name, Options: options}, nil
}

func (p *Parser) parseUsePackage() (ast.Statement, error) {
	if _, err := p.expect(lexer.Import); err != nil {
		return nil, err
	}
	p.eatWhitespace(false)

	if p.peek.Type == lexer.Lbrace {
		return p.parseMultiUsePackages()
	}

	name, err := p.takeName(lexer.Import)
	if err != nil {
		return nil, err
	}
	options, err := p.parseCommaOptions()
	if err != nil {
		return nil, err
	}
	if p.peek.Type == lexer.Newline {
		p.next()
	}
	return ast.UsePackage{Name: name, Options: options}, nil
}

func (p *Parser) parseMultiUsePackages() (ast.Statement, error) {
	open, err := p.expect(lexer.Lbrace)
	if err != nil {
		return nil, err
	}
	p.eatWhitespace(true)

	var pkgs []ast.UsePackage
	for p.peek.Type != lexer.Rbrace {
		if p.atEOF() {
			return nil, &Error{
				Kind: ErrBracketMismatch, Span: open.Span,
				Expected: []lexer.Type{lexer.Rbrace},
			}
		}
		name, err := p.takeName(lexer.Import)
		if err != nil {
			return nil, err
		}
		options, err := p.parseCommaOptions()
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, ast.UsePackage{Name: name, Options: options})
		p.eatWhitespace(true)
	}
	p.next()

	p.eatWhitespace(false)
	if p.peek.Type == lexer.Newline {
		p.next()
	}
	return ast.MultiUsePackages{Packages: pkgs}, nil
}

func (p *Parser) parseEnvironment() (ast.Statement, error) {
	open, err := p.expect(lexer.Begenv)
	if err != nil {
		return nil, err
	}
	p.eatWhitespace(false)

	if p.peek.Type != lexer.Text {
		return nil, &Error{
			Kind: ErrNameMissing, Span: open.Span,
			Detail: lexer.Begenv.String(),
		}
	}
	name := p.next().Literal

	mathEnv := mathEnvNames[name]
	if mathEnv {
		p.mathDepth++
		defer func() { p.mathDepth-- }()
	}

	for p.peek.Type == lexer.Star {
		p.next()
		name += "*"
	}
	p.eatWhitespace(false)

	args, err := p.parseFunctionArgs(lexer.Lparen, lexer.Rparen)
	if err != nil {
		return nil, err
	}

	var body []ast.Statement
	for p.peek.Type != lexer.Endenv {
		if p.atEOF() {
			return nil, &Error{
				Kind: ErrNotClosed, Span: open.Span,
				Open: lexer.Begenv, Close: lexer.Endenv,
			}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.next()

	if p.peek.Type == lexer.Newline {
		p.next()
	}
	return ast.Environment{Name: name, Args: args, Body: body}, nil
}

func (p *Parser) parseLatexFunction() (ast.Statement, error) {
	name := p.next().Literal

	spaceAfter := false
	if p.peek.Type == lexer.Space {
		spaceAfter = true
		p.eatWhitespace(false)
	}

	args, err := p.parseFunctionArgs(lexer.Lbrace, lexer.Rbrace)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 && spaceAfter {
		name += " "
	}
	return ast.LatexFunction{Name: name, Args: args}, nil
}

// parseFunctionArgs parses a (possibly empty) sequence of main, optional and
// star arguments. main delimiters are given by open/closed; optional
// arguments always use square brackets.
func (p *Parser) parseFunctionArgs(open, closed lexer.Type) ([]ast.Arg, error) {
	var args []ast.Arg
	for {
		switch p.peek.Type {
		case open:
			if err := p.parseArgGroup(&args, open, closed, ast.MainArg); err != nil {
				return nil, err
			}
		case lexer.Lsqbrace:
			if err := p.parseArgGroup(&args, lexer.Lsqbrace, lexer.Rsqbrace, ast.OptionalArg); err != nil {
				return nil, err
			}
		case lexer.Star:
			p.next()
			args = append(args, ast.Arg{Kind: ast.StarArg})
		default:
			return args, nil
		}
		if p.peek.Type == lexer.EOF || p.peek.Type == lexer.Newline {
			return args, nil
		}
	}
}

func (p *Parser) parseArgGroup(args *[]ast.Arg, open, closed lexer.Type, kind ast.ArgKind) error {
	openTok, err := p.expect(open)
	if err != nil {
		return err
	}

	// Braced groups are consumed whole by parseStatement, so depth counting
	// is only needed for delimiters that read as plain text.
	countNesting := open != lexer.Lbrace
	nested := 0
	for {
		var body []ast.Statement
		for (p.peek.Type != closed || nested > 0) && p.peek.Type != lexer.ArgSplit {
			if p.atEOF() {
				return &Error{
					Kind: ErrBracketMismatch, Span: openTok.Span,
					Expected: []lexer.Type{closed},
				}
			}
			if countNesting && p.peek.Type == open {
				nested++
			}
			if countNesting && p.peek.Type == closed && nested > 0 {
				nested--
			}
			stmt, err := p.parseStatement()
			if err != nil {
				return err
			}
			body = append(body, stmt)
		}
		*args = append(*args, ast.Arg{Kind: kind, Body: body})

		if p.peek.Type != lexer.ArgSplit {
			break
		}
		p.next()
		p.eatWhitespace(true)
	}
	if _, err := p.expect(closed); err != nil {
		return err
	}
	return nil
}

func (p *Parser) parseFunctionDef() (ast.Statement, error) {
	open, err := p.expect(lexer.Defun)
	if err != nil {
		return nil, err
	}
	kind := functionKind(open.Literal)
	trim := ast.Trim{Start: true, End: true}
	if p.peek.Type == lexer.Star {
		p.next()
		trim.Start = false
	}
	p.eatWhitespace(false)

	name, err := p.takeDefName(lexer.Defun, open.Span, lexer.Lparen)
	if err != nil {
		return nil, err
	}
	p.eatWhitespace(false)

	argSpec, err := p.parseDefArgSpec()
	if err != nil {
		return nil, err
	}

	body, err := p.parseDefineBody(lexer.Defun, lexer.EndDefun, open.Span)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.EndDefun); err != nil {
		return nil, err
	}
	if p.peek.Type == lexer.Star {
		p.next()
		trim.End = false
	}
	if p.peek.Type == lexer.Newline {
		p.next()
	}
	return ast.FunctionDef{Kind: kind, Name: name, ArgSpec: argSpec, Trim: trim, Body: body}, nil
}

// functionKind decodes the prefix letters of a definition keyword:
// "l" is \long, "o" is \outer, "e" expands (\edef), "g" is global (\gdef)
// and "x" is both ("loxdefun" emits \long\outer\xdef).
func functionKind(literal string) ast.FunctionKind {
	var kind ast.FunctionKind
	for _, r := range strings.TrimSuffix(literal, "defun") {
		switch r {
		case 'l':
			kind |= ast.FuncLong
		case 'o':
			kind |= ast.FuncOuter
		case 'e':
			kind |= ast.FuncExpand
		case 'g':
			kind |= ast.FuncGlobal
		case 'x':
			kind |= ast.FuncExpand | ast.FuncGlobal
		}
	}
	return kind
}

func (p *Parser) parseEnvironmentDef() (ast.Statement, error) {
	open := p.next() // defenv or redefenv
	redefine := open.Type == lexer.Redefenv

	trim := ast.Trim{Start: true, Mid: true, End: true}
	if p.peek.Type == lexer.Star {
		p.next()
		trim.Start = false
	}
	p.eatWhitespace(false)

	name, err := p.takeDefName(open.Type, open.Span, lexer.Lsqbrace)
	if err != nil {
		return nil, err
	}
	p.eatWhitespace(false)

	argCount := 0
	var optDefault []ast.Statement
	if p.peek.Type == lexer.Lsqbrace {
		p.next()
		numTok, err := p.expect(lexer.Integer)
		if err != nil {
			return nil, err
		}
		n, convErr := strconv.Atoi(numTok.Literal)
		if convErr != nil {
			return nil, &Error{Kind: ErrBadNumber, Span: numTok.Span, Detail: numTok.Literal}
		}
		argCount = n

		switch p.peek.Type {
		case lexer.Comma:
			p.next()
			p.eatWhitespace(false)
			for p.peek.Type != lexer.Rsqbrace {
				if p.atEOF() {
					return nil, &Error{Kind: ErrEOF, Span: open.Span}
				}
				stmt, err := p.parseStatement()
				if err != nil {
					return nil, err
				}
				optDefault = append(optDefault, stmt)
			}
			p.next()
		case lexer.Rsqbrace:
			p.next()
		default:
			return nil, &Error{
				Kind: ErrTokenMismatch, Span: p.peek.Span,
				Expected: []lexer.Type{lexer.Comma, lexer.Rsqbrace},
				Got:      p.peek.Type,
			}
		}
	}

	beginPart, err := p.parseDefineBody(open.Type, lexer.EndsWith, open.Span)
	if err != nil {
		return nil, err
	}
	mid, err := p.expect(lexer.EndsWith)
	if err != nil {
		return nil, err
	}
	if p.peek.Type == lexer.Star {
		p.next()
		trim.Mid = false
	}

	endPart, err := p.parseDefineBody(lexer.EndsWith, lexer.Endenv, mid.Span)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Endenv); err != nil {
		return nil, err
	}
	if p.peek.Type == lexer.Star {
		p.next()
		trim.End = false
	}
	if p.peek.Type == lexer.Newline {
		p.next()
	}
	return ast.EnvironmentDef{
		Redefine:   redefine,
		Name:       name,
		ArgCount:   argCount,
		OptDefault: optDefault,
		Trim:       trim,
		BeginPart:  beginPart,
		EndPart:    endPart,
	}, nil
}

// parseDefArgSpec collects the raw parameter text of a defun, verbatim,
// between balanced parentheses.
func (p *Parser) parseDefArgSpec() (string, error) {
	open, err := p.expect(lexer.Lparen)
	if err != nil {
		return "", err
	}
	var spec string
	depth := 0
	for {
		switch p.peek.Type {
		case lexer.EOF:
			return "", &Error{
				Kind: ErrBracketMismatch, Span: open.Span,
				Expected: []lexer.Type{lexer.Rparen},
			}
		case lexer.Lparen:
			depth++
		case lexer.Rparen:
			if depth == 0 {
				p.next()
				return spec, nil
			}
			depth--
		}
		spec += p.next().Literal
	}
}

// parseDefineBody parses statements until the given end keyword, with the
// definition flag set so body text is read literally.
func (p *Parser) parseDefineBody(open, end lexer.Type, openSpan lexer.Span) ([]ast.Statement, error) {
	var body []ast.Statement
	for p.peek.Type != end {
		if p.atEOF() {
			return nil, &Error{
				Kind: ErrNotClosed, Span: openSpan,
				Open: open, Close: end,
			}
		}
		p.parsingDef = true
		stmt, err := p.parseStatement()
		p.parsingDef = false
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return body, nil
}

// takeName reads a single word as the name of a docclass or package.
func (p *Parser) takeName(keyword lexer.Type) (string, error) {
	if p.peek.Type != lexer.Text {
		return "", &Error{
			Kind: ErrNameMissing, Span: p.peek.Span,
			Detail: keyword.String(),
		}
	}
	return p.next().Literal, nil
}

// takeDefName reads the name of a definition: consecutive text pieces up to
// whitespace or the argument opener.
func (p *Parser) takeDefName(keyword lexer.Type, at lexer.Span, argOpen lexer.Type) (string, error) {
	var name string
	for {
		switch p.peek.Type {
		case lexer.Text, lexer.ArgSplit, lexer.Integer:
			name += p.next().Literal
		case lexer.Space, lexer.Newline, argOpen:
			if name == "" {
				return "", &Error{Kind: ErrNameMissing, Span: at, Detail: keyword.String()}
			}
			return name, nil
		case lexer.EOF:
			return "", &Error{Kind: ErrEOF, Span: at}
		default:
			return "", &Error{Kind: ErrNameMissing, Span: at, Detail: keyword.String()}
		}
	}
}

// parseCommaOptions parses an optional parenthesized, comma-separated option
// list following docclass or import.
func (p *Parser) parseCommaOptions() ([][]ast.Statement, error) {
	p.eatWhitespace(false)
	if p.peek.Type != lexer.Lparen {
		return nil, nil
	}
	open := p.next()
	p.eatWhitespace(true)

	var options [][]ast.Statement
	for p.peek.Type != lexer.Rparen {
		if p.atEOF() {
			return nil, &Error{
				Kind: ErrBracketMismatch, Span: open.Span,
				Expected: []lexer.Type{lexer.Rparen},
			}
		}
		var item []ast.Statement
		for p.peek.Type != lexer.Comma && p.peek.Type != lexer.Rparen {
			p.eatWhitespace(true)
			if p.atEOF() {
				return nil, &Error{
					Kind: ErrBracketMismatch, Span: open.Span,
					Expected: []lexer.Type{lexer.Rparen},
				}
			}
			if p.peek.Type == lexer.Comma || p.peek.Type == lexer.Rparen {
				break
			}
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			item = append(item, stmt)
		}
		options = append(options, item)
		p.eatWhitespace(true)

		if p.peek.Type == lexer.Rparen {
			break
		}
		if _, err := p.expect(lexer.Comma); err != nil {
			return nil, err
		}
		p.eatWhitespace(true)
	}
	if _, err := p.expect(lexer.Rparen); err != nil {
		return nil, err
	}
	p.eatWhitespace(false)
	return options, nil
}
