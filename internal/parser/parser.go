// Package parser turns a lexer.Token stream into an ast.File, following the
// grammar in spec.md section 4.2.
package parser

import (
	"strconv"

	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/internal/ast"
	"github.com/dropbox/stone/internal/lexer"
)

// Parser consumes a flat token slice with a single lookahead cursor, LL(1)
// over the grammar in spec.md section 4.2.
type Parser struct {
	file   string
	tokens []lexer.Token
	pos    int
	errs   *diag.Collector
}

// Parse lexes and parses one source file into an ast.File. It returns
// whatever diagnostics accumulated; callers should check
// diag.Diagnostics.HasErrors before trusting the returned *ast.File.
func Parse(file string, src []byte, inputOrder int) (*ast.File, diag.Diagnostics) {
	toks, lexDiags := lexer.Lex(file, src, inputOrder)
	p := &Parser{file: file, tokens: toks, errs: diag.NewCollector(file, inputOrder)}
	f := p.parseFile()
	all := append(diag.Diagnostics{}, lexDiags...)
	all = append(all, p.errs.Diagnostics()...)
	return f, all
}

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) at(typ lexer.TokenType, text string) bool {
	tok := p.peek()
	return tok.Type == typ && (text == "" || tok.Text == text)
}

func (p *Parser) errorf(pos diag.Position, format string, args ...interface{}) {
	p.errs.Errorf(diag.ErrSyntax, pos, format, args...)
}

// synchronize skips tokens up to and including the next NEWLINE at the
// current nesting level, so one malformed definition does not cascade into
// spurious errors for the rest of the file.
func (p *Parser) synchronize() {
	depth := 0
	for {
		tok := p.peek()
		switch tok.Type {
		case lexer.TokenEOF:
			return
		case lexer.TokenIndent:
			depth++
			p.advance()
		case lexer.TokenDedent:
			if depth == 0 {
				return
			}
			depth--
			p.advance()
		case lexer.TokenNewline:
			p.advance()
			if depth == 0 {
				return
			}
		default:
			p.advance()
		}
	}
}

func (p *Parser) expect(typ lexer.TokenType, text string) (lexer.Token, bool) {
	tok := p.peek()
	if tok.Type != typ || (text != "" && tok.Text != text) {
		want := text
		if want == "" {
			want = typ.String()
		}
		p.errorf(tok.Pos, "expected %s, found %q", want, tok.Text)
		return tok, false
	}
	return p.advance(), true
}

func (p *Parser) expectIdent() (lexer.Token, bool) {
	return p.expect(lexer.TokenIdent, "")
}

func (p *Parser) skipNewlines() {
	for p.at(lexer.TokenNewline, "") {
		p.advance()
	}
}

// parseFile implements: File := NAMESPACE Import* Def*
func (p *Parser) parseFile() *ast.File {
	f := &ast.File{Path: p.file}
	p.skipNewlines()

	nsTok, ok := p.expect(lexer.TokenKeyword, "namespace")
	if !ok {
		p.synchronize()
	} else {
		f.NsPos = nsTok.Pos
		nameTok, ok := p.expectIdent()
		if ok {
			f.Namespace = nameTok.Text
		}
		p.expect(lexer.TokenNewline, "")
	}
	p.skipNewlines()

	for p.at(lexer.TokenKeyword, "import") {
		imp := p.parseImport()
		f.Imports = append(f.Imports, imp)
		p.skipNewlines()
	}

	for !p.at(lexer.TokenEOF, "") {
		def := p.parseDef()
		if def != nil {
			f.Defs = append(f.Defs, def)
		}
		p.skipNewlines()
	}
	return f
}

func (p *Parser) parseImport() ast.Import {
	tok := p.advance() // 'import'
	nameTok, ok := p.expectIdent()
	if !ok {
		p.synchronize()
		return ast.Import{Pos: tok.Pos}
	}
	p.expect(lexer.TokenNewline, "")
	return ast.Import{Name: nameTok.Text, Pos: tok.Pos}
}

func (p *Parser) parseDef() ast.Def {
	tok := p.peek()
	if tok.Type != lexer.TokenKeyword {
		p.errorf(tok.Pos, "expected one of alias, struct, union, route, found %q", tok.Text)
		p.synchronize()
		return nil
	}
	var def ast.Def
	switch tok.Text {
	case "alias":
		def = p.parseAlias()
	case "struct":
		def = p.parseStruct()
	case "union":
		def = p.parseUnion()
	case "route":
		def = p.parseRoute()
	default:
		p.errorf(tok.Pos, "expected one of alias, struct, union, route, found %q", tok.Text)
		p.synchronize()
		return nil
	}
	return def
}

// parseAlias implements: Alias := 'alias' IDENT '=' TypeRef NEWLINE
func (p *Parser) parseAlias() ast.Def {
	pos := p.advance().Pos // 'alias'
	nameTok, ok := p.expectIdent()
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(lexer.TokenPunct, "="); !ok {
		p.synchronize()
		return nil
	}
	target := p.parseTypeRef()
	p.expect(lexer.TokenNewline, "")
	return &ast.Alias{NameVal: nameTok.Text, Target: target, Pos: pos}
}

// parseTypeRef implements: TypeRef := IDENT ('.' IDENT)? Args? '?'?
func (p *Parser) parseTypeRef() ast.TypeRef {
	tok, _ := p.expectIdent()
	ref := ast.TypeRef{Name: tok.Text, Pos: tok.Pos}
	if p.at(lexer.TokenPunct, ".") {
		p.advance()
		nameTok, _ := p.expectIdent()
		ref.Namespace = ref.Name
		ref.Name = nameTok.Text
	}
	if p.at(lexer.TokenPunct, "(") {
		ref.Args = p.parseArgs()
	}
	if p.at(lexer.TokenPunct, "?") {
		p.advance()
		ref.Nullable = true
	}
	return ref
}

// parseArgs implements: Args := '(' (Arg (',' Arg)*)? ')'
func (p *Parser) parseArgs() []ast.Arg {
	p.advance() // '('
	var args []ast.Arg
	if p.at(lexer.TokenPunct, ")") {
		p.advance()
		return args
	}
	for {
		args = append(args, p.parseArg())
		if p.at(lexer.TokenPunct, ",") {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.TokenPunct, ")")
	return args
}

// parseArg implements Arg's value grammar, following original_source's
// richer `pos_arg : primitive | type_ref` rule rather than spec.md's
// simplified sketch (literal-only) — spec.md section 9's open-questions
// note says to resolve such ambiguities against the original implementation.
// A bare identifier value names a nested TypeRef (needed for List's
// positional element-type argument, e.g. `List(UInt64)`); any other token
// is a Literal. `name = value` is the keyword-argument form.
func (p *Parser) parseArg() ast.Arg {
	if p.peek().Type == lexer.TokenIdent && p.peekAt(1).Is(lexer.TokenPunct, "=") {
		nameTok := p.advance()
		p.advance() // '='
		arg := ast.Arg{Name: nameTok.Text, Pos: nameTok.Pos}
		if p.peek().Type == lexer.TokenIdent {
			t := p.parseTypeRef()
			arg.Type = &t
		} else {
			lit := p.parseLiteral()
			arg.Literal = &lit
		}
		return arg
	}
	if p.peek().Type == lexer.TokenIdent {
		t := p.parseTypeRef()
		return ast.Arg{Type: &t, Pos: t.Pos}
	}
	lit := p.parseLiteral()
	return ast.Arg{Literal: &lit, Pos: lit.Pos}
}

// parseLiteral implements: Literal := INT | FLOAT | STRING | 'true' | 'false' | 'null'
func (p *Parser) parseLiteral() ast.Literal {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenIntLiteral:
		p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			p.errorf(tok.Pos, "invalid integer literal %q", tok.Text)
		}
		return ast.Literal{Kind: ast.LiteralInt, Int: n, Pos: tok.Pos}
	case lexer.TokenFloatLiteral:
		p.advance()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			p.errorf(tok.Pos, "invalid float literal %q", tok.Text)
		}
		return ast.Literal{Kind: ast.LiteralFloat, Float: f, Pos: tok.Pos}
	case lexer.TokenStringLiteral:
		p.advance()
		return ast.Literal{Kind: ast.LiteralString, String: tok.Text, Pos: tok.Pos}
	case lexer.TokenKeyword:
		switch tok.Text {
		case "true":
			p.advance()
			return ast.Literal{Kind: ast.LiteralBool, Bool: true, Pos: tok.Pos}
		case "false":
			p.advance()
			return ast.Literal{Kind: ast.LiteralBool, Bool: false, Pos: tok.Pos}
		case "null":
			p.advance()
			return ast.Literal{Kind: ast.LiteralNull, Pos: tok.Pos}
		}
	}
	p.errorf(tok.Pos, "expected a literal value, found %q", tok.Text)
	p.advance()
	return ast.Literal{Kind: ast.LiteralNull, Pos: tok.Pos}
}

// parseDoc implements: Doc := STRING NEWLINE. A definition's Doc is the
// first line of its body, right after the body's INDENT; a field's or tag's
// Doc is the sole line of an INDENT/DEDENT block immediately after its
// header.
func (p *Parser) parseDoc() string {
	if p.pos > 0 && p.tokens[p.pos-1].Type == lexer.TokenIndent && p.at(lexer.TokenStringLiteral, "") {
		tok := p.advance()
		p.expect(lexer.TokenNewline, "")
		return tok.Text
	}
	if !p.at(lexer.TokenIndent, "") {
		return ""
	}
	// A Doc block is distinguished from a real body block by containing
	// exactly one string-literal line; peek ahead before committing.
	if !p.peekAt(1).Is(lexer.TokenStringLiteral, "") {
		return ""
	}
	if !(p.peekAt(2).Type == lexer.TokenNewline && p.peekAt(3).Type == lexer.TokenDedent) {
		return ""
	}
	p.advance() // INDENT
	tok := p.advance()
	p.expect(lexer.TokenNewline, "")
	p.expect(lexer.TokenDedent, "")
	return tok.Text
}
