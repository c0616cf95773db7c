package sqltree

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vizql/sqlviz/lexer"
	"github.com/vizql/sqlviz/term"
	"github.com/vizql/sqlviz/termparser"
	"github.com/vizql/sqlviz/token"
)

// ErrInvalidStatement is returned when the input is not a single SELECT
// statement (parse-fatal, spec.md §7).
var ErrInvalidStatement = errors.New("invalid statement: only SELECT is supported")

// ErrMultipleStatements is returned when the input contains more than one
// semicolon-separated statement (parse-fatal, spec.md §7).
var ErrMultipleStatements = errors.New("multiple statements in input")

// ErrMalformedJoin is returned when a JOIN clause is missing its ON
// criterion (parse-fatal, spec.md §7).
var ErrMalformedJoin = errors.New("malformed join: missing ON")

var log = logrus.WithField("component", "sqltree")

// Parse parses sql as a single SELECT statement for dialect, splitting on
// section keywords (SELECT/FROM/JOIN/WHERE/GROUP BY/HAVING/ORDER
// BY/LIMIT) the way statement_parser.py does. Term-level parse failures
// never surface here — they fall back to term.Unparsed inside
// termparser.Parse; only statement-shape errors are returned.
func Parse(sql string, dialect term.Dialect) (*SqlTree, error) {
	if err := checkSingleStatement(sql); err != nil {
		return nil, err
	}

	normalized := normalizeForTokenizing(sql)
	toks := tokenizeAll(normalized)
	if len(toks) == 0 || toks[0].item.Type != token.SELECT {
		return nil, errors.Wrap(ErrInvalidStatement, "statement does not begin with SELECT")
	}

	bounds := topLevelBoundaries(toks)

	tree := &SqlTree{Dialect: dialect}

	selectText := sliceClause(normalized, toks, bounds, 0, 1)
	for _, part := range topLevelSplit(selectText, token.COMMA) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tree.AddSelectTerm(termparser.Parse(part))
	}

	fromIdx := indexOfKind(bounds, toks, token.FROM, 0)
	if fromIdx < 0 {
		return nil, errors.Wrap(ErrInvalidStatement, "missing FROM clause")
	}
	fromText := sliceClause(normalized, toks, bounds, fromIdx, fromIdx+1)
	tree.From = parseTableRef(fromText)

	joinStarts := indicesOfKind(bounds, toks, token.JOIN, fromIdx+1)
	for i, ji := range joinStarts {
		next := ji + 1
		if i+1 < len(joinStarts) {
			next = joinStarts[i+1]
		}
		joinText := sliceClause(normalized, toks, bounds, ji, next)
		jt, err := parseJoinClause(joinText)
		if err != nil {
			return nil, err
		}
		tree.Joins = append(tree.Joins, jt)
	}

	afterFrom := fromIdx + 1
	if len(joinStarts) > 0 {
		afterFrom = joinStarts[len(joinStarts)-1] + 1
	}

	if whereIdx := indexOfKind(bounds, toks, token.WHERE, afterFrom); whereIdx >= 0 {
		whereText := strings.TrimSpace(sliceClause(normalized, toks, bounds, whereIdx, whereIdx+1))
		if whereText != "" {
			tree.Where = termparser.Parse(whereText)
		}
	}

	if groupIdx := indexOfKind(bounds, toks, token.GROUP, afterFrom); groupIdx >= 0 {
		groupText := stripLeadingBy(sliceClause(normalized, toks, bounds, groupIdx, groupIdx+1))
		for _, part := range topLevelSplit(groupText, token.COMMA) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			tree.AddGroupByTerm(termparser.Parse(part))
		}
	}

	if havingIdx := indexOfKind(bounds, toks, token.HAVING, afterFrom); havingIdx >= 0 {
		havingText := strings.TrimSpace(sliceClause(normalized, toks, bounds, havingIdx, havingIdx+1))
		if havingText != "" {
			tree.Having = termparser.Parse(havingText)
		}
	}

	if orderIdx := indexOfKind(bounds, toks, token.ORDER, afterFrom); orderIdx >= 0 {
		orderText := stripLeadingBy(sliceClause(normalized, toks, bounds, orderIdx, orderIdx+1))
		cols := topLevelSplit(orderText, token.COMMA)
		if len(cols) > 1 {
			log.WithField("order_by", orderText).Debug("multiple order-by columns; keeping first only")
		}
		if len(cols) > 0 {
			tree.OrderBy = parseOrderClause(cols[0])
		}
	}

	if limitIdx := indexOfKind(bounds, toks, token.LIMIT, afterFrom); limitIdx >= 0 {
		limitText := strings.TrimSpace(sliceClause(normalized, toks, bounds, limitIdx, limitIdx+1))
		if n, err := strconv.Atoi(limitText); err == nil {
			tree.Limit = &n
		}
	}

	return tree, nil
}

// --- tokenization & boundary detection -------------------------------

type tok struct {
	item lexer.Item
	end  int
}

func tokenizeAll(s string) []tok {
	l := lexer.New(s)
	var out []tok
	for {
		it := l.Next()
		out = append(out, tok{item: it, end: l.Offset()})
		if it.Type == token.EOF {
			break
		}
	}
	return out
}

var sectionKinds = map[token.Token]bool{
	token.SELECT: true, token.FROM: true, token.JOIN: true, token.WHERE: true,
	token.GROUP: true, token.HAVING: true, token.ORDER: true, token.LIMIT: true,
}

// topLevelBoundaries returns, in order, the token indices of every
// section keyword found at paren depth 0.
func topLevelBoundaries(toks []tok) []int {
	var bounds []int
	depth := 0
	for i, t := range toks {
		switch t.item.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		}
		if depth == 0 && sectionKinds[t.item.Type] {
			bounds = append(bounds, i)
		}
	}
	return bounds
}

// indexOfKind and indicesOfKind search bounds (a slice of token indices,
// one per top-level section keyword occurrence) starting at bounds-array
// position fromBoundIdx, and return bounds-array positions (not token
// indices) whose keyword kind matches.
func indexOfKind(bounds []int, toks []tok, kind token.Token, fromBoundIdx int) int {
	idxs := indicesOfKind(bounds, toks, kind, fromBoundIdx)
	if len(idxs) == 0 {
		return -1
	}
	return idxs[0]
}

func indicesOfKind(bounds []int, toks []tok, kind token.Token, fromBoundIdx int) []int {
	var out []int
	for i := fromBoundIdx; i < len(bounds); i++ {
		if toks[bounds[i]].item.Type == kind {
			out = append(out, i)
		}
	}
	return out
}

// sliceClause returns the raw text strictly between the end of the
// keyword token at boundary index boundIdx and the start of the keyword
// at boundary index searchFrom, or end of string if searchFrom is past
// the last boundary. boundIdx/searchFrom index into the `bounds`
// slice of token indices, not directly into toks.
func sliceClause(s string, toks []tok, bounds []int, boundIdx, searchFrom int) string {
	tokIdx := bounds[boundIdx]
	start := toks[tokIdx].end
	end := len(s)
	if searchFrom < len(bounds) {
		nextTokIdx := bounds[searchFrom]
		end = int(toks[nextTokIdx].item.Pos)
	}
	if start > end {
		start = end
	}
	return strings.TrimSpace(s[start:end])
}

// topLevelSplit splits s on sep at paren depth 0, using the lexer to
// track depth and string/identifier literals so commas inside function
// calls or quoted text are not treated as separators.
func topLevelSplit(s string, sep token.Token) []string {
	toks := tokenizeAll(s)
	var parts []string
	depth := 0
	last := 0
	for _, t := range toks {
		switch t.item.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		case token.EOF:
			parts = append(parts, s[last:])
			return parts
		}
		if depth == 0 && t.item.Type == sep {
			parts = append(parts, s[last:t.item.Pos])
			last = t.end
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// --- FROM / JOIN clauses ----------------------------------------------

func parseTableRef(text string) TableRef {
	toks := tokenizeAll(text)
	if len(toks) == 0 || toks[0].item.Type == token.EOF {
		return TableRef{}
	}
	ref := TableRef{Name: toks[0].item.Value}
	rest := toks[1:]
	if len(rest) == 0 {
		return ref
	}
	if rest[0].item.Type == token.AS && len(rest) > 1 {
		ref.Alias = rest[1].item.Value
	} else if rest[0].item.Type == token.IDENT {
		ref.Alias = rest[0].item.Value
	}
	return ref
}

func parseJoinClause(text string) (JoinTerm, error) {
	onPieces := topLevelSplit(text, token.ON)
	if len(onPieces) < 2 {
		return JoinTerm{}, errors.Wrap(ErrMalformedJoin, text)
	}
	tableText := onPieces[0]
	onText := strings.Join(onPieces[1:], " ON ")
	return JoinTerm{
		Table: parseTableRef(tableText),
		On:    termparser.Parse(onText),
	}, nil
}

// stripLeadingBy removes a leading BY keyword token (GROUP BY / ORDER BY
// both yield a clause text starting with "by" after the section keyword
// itself is consumed).
func stripLeadingBy(text string) string {
	toks := tokenizeAll(text)
	if len(toks) > 0 && toks[0].item.Type == token.BY {
		return strings.TrimSpace(text[toks[0].end:])
	}
	return text
}

func parseOrderClause(text string) *OrderTerm {
	toks := tokenizeAll(text)
	dir := term.Asc
	body := text
	if n := len(toks); n >= 2 {
		last := toks[n-2] // toks[n-1] is EOF
		if last.item.Type == token.ASC || last.item.Type == token.DESC {
			if last.item.Type == token.DESC {
				dir = term.Desc
			}
			body = strings.TrimSpace(text[:last.item.Pos])
		}
	}
	return &OrderTerm{Term: termparser.Parse(body), Dir: dir}
}

// --- statement-level normalization & multi-statement detection --------

// checkSingleStatement rejects input containing more than one
// semicolon-separated statement (outside quoted literals), after
// trimming a single trailing semicolon.
func checkSingleStatement(sql string) error {
	trimmed := strings.TrimSpace(sql)
	trimmed = strings.TrimSuffix(trimmed, ";")
	inSingle, inDouble, inBacktick := false, false, false
	for i := 0; i < len(trimmed); i++ {
		ch := trimmed[i]
		switch {
		case ch == '\'' && !inDouble && !inBacktick:
			inSingle = !inSingle
		case ch == '"' && !inSingle && !inBacktick:
			inDouble = !inDouble
		case ch == '`' && !inSingle && !inDouble:
			inBacktick = !inBacktick
		case ch == ';' && !inSingle && !inDouble && !inBacktick:
			return ErrMultipleStatements
		}
	}
	return nil
}

// normalizeForTokenizing collapses whitespace runs to single spaces and
// rewrites double-quoted identifiers to backtick-quoted ones, leaving
// single-quoted string literals untouched. Grounded on
// sql/parser/util.py's sanitize_query.
func normalizeForTokenizing(sql string) string {
	var b strings.Builder
	inSingle := false
	lastWasSpace := false
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		if ch == '\'' {
			inSingle = !inSingle
			b.WriteByte(ch)
			lastWasSpace = false
			continue
		}
		if !inSingle && ch == '"' {
			b.WriteByte('`')
			lastWasSpace = false
			continue
		}
		if !inSingle && (ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r') {
			if !lastWasSpace {
				b.WriteByte(' ')
			}
			lastWasSpace = true
			continue
		}
		b.WriteByte(ch)
		lastWasSpace = false
	}
	return strings.TrimSpace(b.String())
}
