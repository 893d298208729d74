package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/dropbox/stone/diag"
)

const punctChars = "(),.=?*:"

// lexer turns one file's contents into a Token stream. The file is assumed
// to already be fully read into memory (spec.md section 5's "scoped
// acquisition" happens upstream, in the CLI driver); the lexer never does
// its own I/O.
type lexer struct {
	file string
	src  string
	pos  int // byte offset into src
	line int
	col  int // 1-based column of the next rune to be read

	atLineStart bool
	indent      []int // indentation column stack, always starts [0]

	tokens []Token
	errs   *diag.Collector
}

// Lex tokenizes the contents of one file. It returns every Diagnostic
// recorded even when lexical errors occurred, following spec.md's "collect
// across all files" propagation policy — callers decide whether to keep
// going based on diag.Diagnostics.HasErrors.
func Lex(file string, src []byte, inputOrder int) ([]Token, diag.Diagnostics) {
	l := &lexer{
		file:        file,
		src:         string(src),
		line:        1,
		col:         1,
		atLineStart: true,
		indent:      []int{0},
		errs:        diag.NewCollector(file, inputOrder),
	}
	l.run()
	return l.tokens, l.errs.Diagnostics()
}

func (l *lexer) pos0() diag.Position {
	return diag.Position{File: l.file, Line: l.line, Column: l.col}
}

func (l *lexer) errorf(format string, args ...interface{}) {
	l.errs.Errorf(diag.ErrLexical, l.pos0(), format, args...)
}

func (l *lexer) eof() bool { return l.pos >= len(l.src) }

// peekByte returns the byte at the current position without consuming it,
// or 0 at EOF.
func (l *lexer) peekByte() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

// advance consumes and returns the next rune, updating line/col.
func (l *lexer) advance() rune {
	if l.eof() {
		return 0
	}
	r, width := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += width
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) emit(typ TokenType, pos diag.Position, text string) {
	l.tokens = append(l.tokens, Token{Type: typ, Pos: pos, Text: text})
}

func (l *lexer) run() {
	for {
		if l.atLineStart {
			if l.eof() {
				break
			}
			if l.consumeIndentation() {
				// blank or comment-only line, loop back to line start
				continue
			}
			l.atLineStart = false
		}

		if l.eof() {
			break
		}

		b := l.peekByte()
		switch {
		case b == ' ' || b == '\t':
			l.advance()
		case b == '#':
			l.skipLineComment()
		case b == '\n':
			l.advance()
			l.emit(TokenNewline, l.pos0(), "\n")
			l.atLineStart = true
		case b == '"':
			l.lexString()
		case isIdentStart(rune(b)):
			l.lexIdent()
		case isDigit(rune(b)):
			l.lexNumber()
		case strings.IndexByte(punctChars, b) >= 0:
			pos := l.pos0()
			l.advance()
			l.emit(TokenPunct, pos, string(b))
		default:
			r := l.advance()
			l.errorf("unrecognized character %q", r)
		}
	}

	// Final DEDENTs back to column 0 and a trailing EOF token.
	finalPos := l.pos0()
	for len(l.indent) > 1 {
		l.indent = l.indent[:len(l.indent)-1]
		l.emit(TokenDedent, finalPos, "")
	}
	l.emit(TokenEOF, finalPos, "")
}

// consumeIndentation measures the leading whitespace of a line and updates
// the indentation stack. It returns true if the line was blank or
// comment-only (and thus should be skipped with no further processing).
func (l *lexer) consumeIndentation() bool {
	startLine := l.line
	sawTab, sawSpace := false, false
	col := 0
	for {
		b := l.peekByte()
		if b == ' ' {
			sawSpace = true
			col++
			l.advance()
			continue
		}
		if b == '\t' {
			sawTab = true
			col++
			l.advance()
			continue
		}
		break
	}

	b := l.peekByte()
	if b == '\n' || l.eof() || b == '#' {
		if b == '#' {
			l.skipLineComment()
		}
		if l.peekByte() == '\n' {
			l.advance()
		}
		l.atLineStart = true
		return true
	}

	if sawTab && sawSpace {
		l.errorf("inconsistent use of tabs and spaces in indentation")
	}

	top := l.indent[len(l.indent)-1]
	switch {
	case col > top:
		l.indent = append(l.indent, col)
		l.emit(TokenIndent, diag.Position{File: l.file, Line: startLine, Column: 1}, "")
	case col < top:
		for len(l.indent) > 0 && l.indent[len(l.indent)-1] > col {
			l.indent = l.indent[:len(l.indent)-1]
			l.emit(TokenDedent, diag.Position{File: l.file, Line: startLine, Column: 1}, "")
		}
		if len(l.indent) == 0 || l.indent[len(l.indent)-1] != col {
			l.errorf("unindent does not match any outer indentation level")
			l.indent = append(l.indent, col)
		}
	}
	return false
}

func (l *lexer) skipLineComment() {
	for !l.eof() && l.peekByte() != '\n' {
		l.advance()
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (l *lexer) lexIdent() {
	pos := l.pos0()
	start := l.pos
	for !l.eof() && isIdentCont(rune(l.peekByte())) {
		l.advance()
	}
	text := l.src[start:l.pos]
	if keywords[text] {
		l.emit(TokenKeyword, pos, text)
	} else {
		l.emit(TokenIdent, pos, text)
	}
}

func (l *lexer) lexNumber() {
	pos := l.pos0()
	start := l.pos
	isFloat := false
	for !l.eof() && isDigit(rune(l.peekByte())) {
		l.advance()
	}
	if l.peekByte() == '.' && l.pos+1 < len(l.src) && isDigit(rune(l.src[l.pos+1])) {
		isFloat = true
		l.advance()
		for !l.eof() && isDigit(rune(l.peekByte())) {
			l.advance()
		}
	}
	if l.peekByte() == 'e' || l.peekByte() == 'E' {
		save := l.pos
		saveLine, saveCol := l.line, l.col
		l.advance()
		if l.peekByte() == '+' || l.peekByte() == '-' {
			l.advance()
		}
		if isDigit(rune(l.peekByte())) {
			isFloat = true
			for !l.eof() && isDigit(rune(l.peekByte())) {
				l.advance()
			}
		} else {
			l.pos, l.line, l.col = save, saveLine, saveCol
		}
	}
	text := l.src[start:l.pos]
	if isFloat {
		l.emit(TokenFloatLiteral, pos, text)
	} else {
		l.emit(TokenIntLiteral, pos, text)
	}
}

// lexString handles both `"single line"` and `"""triple quoted,
// possibly multi-line"""` literals. Indentation inside a string literal
// never touches the indentation stack, per spec.md section 4.1.
func (l *lexer) lexString() {
	pos := l.pos0()
	l.advance() // consume opening quote

	triple := false
	if l.peekByte() == '"' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '"' {
		l.advance()
		l.advance()
		triple = true
	}

	var sb strings.Builder
	for {
		if l.eof() {
			l.errorf("unterminated string literal")
			break
		}
		b := l.peekByte()
		if b == '\\' {
			l.advance()
			if l.eof() {
				l.errorf("unterminated string literal")
				break
			}
			sb.WriteRune(l.unescape(l.advance()))
			continue
		}
		if !triple && b == '\n' {
			l.errorf("unterminated string literal")
			break
		}
		if b == '"' {
			if !triple {
				l.advance()
				break
			}
			if l.pos+2 < len(l.src) && l.src[l.pos+1] == '"' && l.src[l.pos+2] == '"' {
				l.advance()
				l.advance()
				l.advance()
				break
			}
			if l.pos+2 == len(l.src) && l.src[l.pos+1] == '"' {
				// two quotes then EOF: still short of a closing triple.
				l.errorf("unterminated string literal")
				break
			}
		}
		sb.WriteRune(l.advance())
	}
	l.emit(TokenStringLiteral, pos, sb.String())
}

func (l *lexer) unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '"':
		return '"'
	case '\\':
		return '\\'
	default:
		return r
	}
}
