// Package lexer tokenizes the expression/SELECT grammar used by termparser
// and sqltree, scanning against the trimmed token kinds in package token.
package lexer

import (
	"strings"

	"github.com/vizql/sqlviz/token"
)

// Item is a single scanned token: its kind, literal text (unescaped/unquoted
// for strings and quoted identifiers), and the byte offset it started at.
type Item struct {
	Type  token.Token
	Value string
	Pos   token.Pos
}

// Lexer tokenizes a single expression or statement string. It is not
// reused across inputs via a pool: unlike the general-purpose grammar this
// was adapted from, a Lexer here is always short-lived (one expression or
// one statement, parsed once, discarded), so pooling buys nothing.
type Lexer struct {
	input  string
	pos    int
	item   Item
	peeked bool
}

// New creates a Lexer over input.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token, consuming it.
func (l *Lexer) Next() Item {
	if l.peeked {
		l.peeked = false
		return l.item
	}
	return l.scan()
}

// Offset returns the current byte position in input, i.e. the end of the
// most recently scanned token (before any following whitespace). This is
// accurate whether or not that token has been consumed via Next, because
// scan() always advances l.pos immediately, even when caching a peeked
// token.
func (l *Lexer) Offset() int {
	return l.pos
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() Item {
	if !l.peeked {
		l.item = l.scan()
		l.peeked = true
	}
	return l.item
}

func (l *Lexer) scan() Item {
	l.skipWhitespace()
	start := l.pos
	if l.pos >= len(l.input) {
		return Item{Type: token.EOF, Pos: token.Pos(start)}
	}

	ch := l.input[l.pos]
	switch ch {
	case '(':
		l.pos++
		return l.item0(token.LPAREN, start)
	case ')':
		l.pos++
		return l.item0(token.RPAREN, start)
	case ',':
		l.pos++
		return l.item0(token.COMMA, start)
	case '+':
		l.pos++
		return l.item0(token.PLUS, start)
	case '-':
		l.pos++
		return l.item0(token.MINUS, start)
	case '*':
		l.pos++
		return l.item0(token.TIMES, start)
	case '%':
		l.pos++
		return l.item0(token.MODULO, start)
	case '.':
		if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			return l.scanNumber(start)
		}
		l.pos++
		return l.item0(token.DOT, start)
	case '/':
		l.pos++
		return l.item0(token.DIVIDE, start)
	case '=':
		l.pos++
		return l.item0(token.EQ, start)
	case '!':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return l.item0(token.NEQ, start)
		}
		l.pos++
		return Item{Type: token.ILLEGAL, Value: "!", Pos: token.Pos(start)}
	case '<':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '>' {
			l.pos += 2
			return l.item0(token.NEQ, start)
		}
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return l.item0(token.LE, start)
		}
		l.pos++
		return l.item0(token.LT, start)
	case '>':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return l.item0(token.GE, start)
		}
		l.pos++
		return l.item0(token.GT, start)
	case '|':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '|' {
			l.pos += 2
			return l.item0(token.CONCAT, start)
		}
		l.pos++
		return Item{Type: token.ILLEGAL, Value: "|", Pos: token.Pos(start)}
	case '\'':
		return l.scanString(start)
	case '"':
		return l.scanQuoted(start, '"')
	case '`':
		return l.scanQuoted(start, '`')
	}

	if isIdentStart(ch) {
		return l.scanIdent(start)
	}
	if isDigit(ch) {
		return l.scanNumber(start)
	}

	l.pos++
	return Item{Type: token.ILLEGAL, Value: string(ch), Pos: token.Pos(start)}
}

func (l *Lexer) item0(typ token.Token, start int) Item {
	return Item{Type: typ, Value: l.input[start:l.pos], Pos: token.Pos(start)}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

// scanIdent scans a bare identifier or keyword. Keyword lookup lowercases
// first; the surface case of an identifier is preserved in Value.
func (l *Lexer) scanIdent(start int) Item {
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	text := l.input[start:l.pos]
	if tok, ok := token.Keywords[strings.ToLower(text)]; ok {
		return Item{Type: tok, Value: text, Pos: token.Pos(start)}
	}
	return Item{Type: token.IDENT, Value: text, Pos: token.Pos(start)}
}

// scanQuoted scans a `backtick` or "double" quoted identifier (single
// quotes are string literals, scanned by scanString),
// unescaping a doubled closing-quote character as a literal quote (the
// standard SQL quoted-identifier escape).
func (l *Lexer) scanQuoted(start int, quote byte) Item {
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == quote {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == quote {
				b.WriteByte(quote)
				l.pos += 2
				continue
			}
			l.pos++
			return Item{Type: token.QUOTED_NAME, Value: b.String(), Pos: token.Pos(start)}
		}
		b.WriteByte(ch)
		l.pos++
	}
	// unterminated: return what we have, caller falls back to Unparsed
	return Item{Type: token.QUOTED_NAME, Value: b.String(), Pos: token.Pos(start)}
}

// scanString scans a 'single quoted' string literal with '' escaping.
func (l *Lexer) scanString(start int) Item {
	l.pos++
	var b strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\'' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				b.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			return Item{Type: token.STRING, Value: b.String(), Pos: token.Pos(start)}
		}
		b.WriteByte(ch)
		l.pos++
	}
	return Item{Type: token.STRING, Value: b.String(), Pos: token.Pos(start)}
}

// scanNumber scans an INT or FLOAT, including decimal and exponent forms
// (123, 123.45, .5, 1e10, 1.5e-3).
func (l *Lexer) scanNumber(start int) Item {
	isFloat := false
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		isFloat = true
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			isFloat = true
			for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}
	typ := token.INT
	if isFloat {
		typ = token.FLOAT
	}
	return Item{Type: typ, Value: l.input[start:l.pos], Pos: token.Pos(start)}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '$'
}
