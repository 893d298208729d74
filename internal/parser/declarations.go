package parser

import (
	"github.com/dropbox/stone/internal/ast"
	"github.com/dropbox/stone/internal/lexer"
)

// parseStruct implements:
//
//	Struct := 'struct' IDENT ('extends' IDENT)? ':'? NEWLINE
//	           INDENT Doc? SubtypesBlock? Field* Example* DEDENT
func (p *Parser) parseStruct() ast.Def {
	pos := p.advance().Pos // 'struct'
	nameTok, ok := p.expectIdent()
	if !ok {
		p.synchronize()
		return nil
	}
	s := &ast.Struct{NameVal: nameTok.Text, Pos: pos}

	if p.at(lexer.TokenKeyword, "extends") {
		p.advance()
		extTok, ok := p.expectIdent()
		if ok {
			s.Extends = extTok.Text
			s.ExtPos = extTok.Pos
		}
	}
	if p.at(lexer.TokenPunct, ":") {
		p.advance()
	}
	p.expect(lexer.TokenNewline, "")

	if !p.at(lexer.TokenIndent, "") {
		// Empty body, e.g. a placeholder struct with no fields.
		return s
	}
	p.advance() // INDENT
	s.Doc = p.parseDoc()

	if p.at(lexer.TokenKeyword, "union") {
		s.Subtypes = p.parseSubtypesBlock()
	}

	for p.at(lexer.TokenIdent, "") {
		s.Fields = append(s.Fields, p.parseField())
	}
	for p.at(lexer.TokenKeyword, "example") {
		s.Examples = append(s.Examples, p.parseExample())
	}

	p.expect(lexer.TokenDedent, "")
	return s
}

// parseSubtypesBlock implements:
//
//	SubtypesBlock := 'union' ('*')? NEWLINE INDENT (IDENT TypeRef NEWLINE)+ DEDENT
func (p *Parser) parseSubtypesBlock() *ast.Subtypes {
	pos := p.advance().Pos // 'union'
	sb := &ast.Subtypes{Pos: pos}
	if p.at(lexer.TokenPunct, "*") {
		p.advance()
		sb.CatchAll = true
	}
	p.expect(lexer.TokenNewline, "")
	if _, ok := p.expect(lexer.TokenIndent, ""); !ok {
		return sb
	}
	for p.at(lexer.TokenIdent, "") {
		tagTok, _ := p.expectIdent()
		typ := p.parseTypeRef()
		p.expect(lexer.TokenNewline, "")
		sb.Entries = append(sb.Entries, ast.SubtypeEntry{Tag: tagTok.Text, Type: typ, Pos: tagTok.Pos})
	}
	p.expect(lexer.TokenDedent, "")
	return sb
}

// parseField implements:
//
//	Field := IDENT TypeRef ('=' (Literal | IDENT))? 'deprecated'? NEWLINE
//	          (INDENT Doc DEDENT)?
//
// The bare-IDENT default form names a Void tag of a union-typed field
// (ast.Field.DefaultTag); see ast.Field's doc comment. The trailing
// 'deprecated' keyword is grounded on original_source's babel/parser.py
// `deprecation : DEPRECATED | empty` production.
func (p *Parser) parseField() ast.Field {
	nameTok, _ := p.expectIdent()
	typ := p.parseTypeRef()
	f := ast.Field{Name: nameTok.Text, Type: typ, Pos: nameTok.Pos}
	if p.at(lexer.TokenPunct, "=") {
		p.advance()
		if p.peek().Type == lexer.TokenIdent {
			tagTok := p.advance()
			f.DefaultTag = tagTok.Text
		} else {
			lit := p.parseLiteral()
			f.Default = &lit
		}
	}
	if p.at(lexer.TokenKeyword, "deprecated") {
		p.advance()
		f.Deprecated = true
	}
	p.expect(lexer.TokenNewline, "")
	f.Doc = p.parseDoc()
	return f
}

// parseUnion implements:
//
//	Union := 'union' IDENT ('extends' IDENT)? NEWLINE
//	          INDENT Doc? Tag* Example* DEDENT
func (p *Parser) parseUnion() ast.Def {
	pos := p.advance().Pos // 'union'
	nameTok, ok := p.expectIdent()
	if !ok {
		p.synchronize()
		return nil
	}
	u := &ast.Union{NameVal: nameTok.Text, Pos: pos}

	if p.at(lexer.TokenKeyword, "extends") {
		p.advance()
		extTok, ok := p.expectIdent()
		if ok {
			u.Extends = extTok.Text
			u.ExtPos = extTok.Pos
		}
	}
	p.expect(lexer.TokenNewline, "")

	if !p.at(lexer.TokenIndent, "") {
		return u
	}
	p.advance() // INDENT
	u.Doc = p.parseDoc()

	for p.at(lexer.TokenIdent, "") {
		u.Tags = append(u.Tags, p.parseTag())
	}
	for p.at(lexer.TokenKeyword, "example") {
		u.Examples = append(u.Examples, p.parseExample())
	}

	p.expect(lexer.TokenDedent, "")
	return u
}

// parseTag implements:
//
//	Tag := IDENT (TypeRef)? ('*')? NEWLINE (INDENT Doc DEDENT)?
//
// The parser only recognizes the '*' catch-all suffix when no TypeRef was
// given (the tag is Void); a '*' after a typed tag is a syntax error, per
// spec.md section 4.2's "recognized as the catch-all marker only on a Void
// tag" design decision.
func (p *Parser) parseTag() ast.Tag {
	nameTok, _ := p.expectIdent()
	t := ast.Tag{Name: nameTok.Text, Pos: nameTok.Pos}

	hasType := p.peek().Type == lexer.TokenIdent
	if hasType {
		typ := p.parseTypeRef()
		t.Type = &typ
	}
	if p.at(lexer.TokenPunct, "*") {
		star := p.advance()
		if hasType {
			p.errorf(star.Pos, "catch-all marker '*' is only allowed on a Void tag")
		} else {
			t.CatchAll = true
		}
	}
	p.expect(lexer.TokenNewline, "")
	t.Doc = p.parseDoc()
	return t
}

// parseRoute implements:
//
//	Route := 'route' IDENT '(' TypeRef ',' TypeRef ',' TypeRef ')'
//	          ('deprecated' ('by' IDENT)?)? NEWLINE
//	          (INDENT Doc? AttrsBlock? DEDENT)?
//
// The trailing deprecation clause is grounded on original_source's
// stone/lang/tower.py `route._token.deprecated` handling: a bare
// 'deprecated' marks the route, and an optional 'by' names its
// replacement (spec.md section 10's domain supplement).
func (p *Parser) parseRoute() ast.Def {
	pos := p.advance().Pos // 'route'
	nameTok, ok := p.expectIdent()
	if !ok {
		p.synchronize()
		return nil
	}
	r := &ast.Route{NameVal: nameTok.Text, Pos: pos}

	if _, ok := p.expect(lexer.TokenPunct, "("); !ok {
		p.synchronize()
		return r
	}
	r.Request = p.parseTypeRef()
	p.expect(lexer.TokenPunct, ",")
	r.Response = p.parseTypeRef()
	p.expect(lexer.TokenPunct, ",")
	r.Error = p.parseTypeRef()
	p.expect(lexer.TokenPunct, ")")
	if p.at(lexer.TokenKeyword, "deprecated") {
		depTok := p.advance()
		r.Deprecated = true
		r.DeprecatedPos = depTok.Pos
		if p.at(lexer.TokenKeyword, "by") {
			p.advance()
			byTok, _ := p.expectIdent()
			r.DeprecatedBy = byTok.Text
		}
	}
	p.expect(lexer.TokenNewline, "")

	if !p.at(lexer.TokenIndent, "") {
		return r
	}
	p.advance() // INDENT
	r.Doc = p.parseDoc()
	if p.at(lexer.TokenKeyword, "attrs") {
		r.Attrs = p.parseAttrsBlock()
	}
	p.expect(lexer.TokenDedent, "")
	return r
}

// parseAttrsBlock implements:
//
//	AttrsBlock := 'attrs' NEWLINE INDENT (IDENT '=' Literal NEWLINE)+ DEDENT
func (p *Parser) parseAttrsBlock() []ast.AttrEntry {
	p.advance() // 'attrs'
	p.expect(lexer.TokenNewline, "")
	var attrs []ast.AttrEntry
	if _, ok := p.expect(lexer.TokenIndent, ""); !ok {
		return attrs
	}
	for p.at(lexer.TokenIdent, "") {
		keyTok, _ := p.expectIdent()
		p.expect(lexer.TokenPunct, "=")
		lit := p.parseLiteral()
		p.expect(lexer.TokenNewline, "")
		attrs = append(attrs, ast.AttrEntry{Key: keyTok.Text, Value: lit, Pos: keyTok.Pos})
	}
	p.expect(lexer.TokenDedent, "")
	return attrs
}

// parseExample implements:
//
//	Example := 'example' IDENT STRING? NEWLINE
//	            INDENT (IDENT '=' ExampleValue NEWLINE)+ DEDENT
func (p *Parser) parseExample() ast.Example {
	pos := p.advance().Pos // 'example'
	labelTok, _ := p.expectIdent()
	ex := ast.Example{Label: labelTok.Text, Pos: pos}
	if p.at(lexer.TokenStringLiteral, "") {
		descTok := p.advance()
		ex.Description = descTok.Text
	}
	p.expect(lexer.TokenNewline, "")
	if _, ok := p.expect(lexer.TokenIndent, ""); !ok {
		return ex
	}
	for p.at(lexer.TokenIdent, "") {
		fieldTok, _ := p.expectIdent()
		p.expect(lexer.TokenPunct, "=")
		val := p.parseExampleValue()
		p.expect(lexer.TokenNewline, "")
		ex.Bindings = append(ex.Bindings, ast.ExampleBinding{Field: fieldTok.Text, Value: val, Pos: fieldTok.Pos})
	}
	p.expect(lexer.TokenDedent, "")
	return ex
}

// parseExampleValue implements: ExampleValue := Literal | IDENT
//
// A bare identifier is a forward reference to another example's label,
// resolved to a pointer during Phase R7 (spec.md section 4.3).
func (p *Parser) parseExampleValue() ast.ExampleValue {
	tok := p.peek()
	if tok.Type == lexer.TokenIdent {
		p.advance()
		return ast.ExampleValue{Kind: ast.ExampleValueRef, Ref: tok.Text, Pos: tok.Pos}
	}
	lit := p.parseLiteral()
	return ast.ExampleValue{Kind: ast.ExampleValueLiteral, Literal: lit, Pos: lit.Pos}
}
