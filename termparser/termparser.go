// Package termparser implements the C2 expression lexer/parser: a
// precedence-climbing recursive-descent parser over package lexer/token
// that builds package term trees. Any parse failure is swallowed and
// turned into a term.Unparsed — the parser never returns an error to its
// caller, matching the original grammar's sly-based parse_term, which
// logs and falls back to UnparsedField on any exception. Grounded on the
// teacher's parser/expression.go (precedence climbing structure) and on
// _examples/original_source/deepdive/sql/parser/term_parser.py (grammar
// and special forms).
package termparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vizql/sqlviz/lexer"
	"github.com/vizql/sqlviz/term"
	"github.com/vizql/sqlviz/token"
)

// Parse parses a single SQL expression fragment into a term.Term. It
// never fails: any grammar error yields term.Unparsed{Raw: raw}.
func Parse(raw string) (result term.Term) {
	trimmed := strings.TrimSpace(raw)
	defer func() {
		if r := recover(); r != nil {
			result = term.Unparsed{Raw: trimmed}
		}
	}()
	if trimmed == "" {
		return term.Unparsed{Raw: trimmed}
	}
	p := &parser{lex: lexer.New(trimmed)}
	t := p.parseTop()
	if p.peek().Type != token.EOF {
		panic(parseError{"trailing input after expression"})
	}
	return t
}

type parseError struct{ msg string }

func (e parseError) Error() string { return e.msg }

type parser struct {
	lex *lexer.Lexer
}

func (p *parser) peek() lexer.Item { return p.lex.Peek() }
func (p *parser) next() lexer.Item { return p.lex.Next() }

func (p *parser) expect(tok token.Token) lexer.Item {
	it := p.next()
	if it.Type != tok {
		panic(parseError{fmt.Sprintf("expected %s, got %s", tok, it.Type)})
	}
	return it
}

// parseTop parses a full expression, then unwraps a trailing `AS alias`.
func (p *parser) parseTop() term.Term {
	t := p.parseOr()
	if p.peek().Type == token.AS {
		p.next()
		alias := p.parseAliasName()
		return t.WithAlias(alias)
	}
	// bare trailing identifier is also an implicit alias, e.g. `a total`
	if p.peek().Type == token.IDENT {
		alias := p.next().Value
		return t.WithAlias(alias)
	}
	return t
}

func (p *parser) parseAliasName() string {
	it := p.next()
	switch it.Type {
	case token.IDENT, token.QUOTED_NAME:
		return it.Value
	default:
		panic(parseError{"expected alias name"})
	}
}

func (p *parser) parseOr() term.Term {
	left := p.parseAnd()
	for p.peek().Type == token.OR {
		p.next()
		right := p.parseAnd()
		left = term.Boolean{Op: term.Or, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseAnd() term.Term {
	left := p.parseNot()
	for p.peek().Type == token.AND {
		p.next()
		right := p.parseNot()
		left = term.Boolean{Op: term.And, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseNot() term.Term {
	if p.peek().Type == token.NOT {
		p.next()
		inner := p.parseNot()
		return term.Not{Inner: inner}
	}
	return p.parsePredicate()
}

// parsePredicate handles comparisons, BETWEEN, IN, LIKE/ILIKE, IS [NOT]
// NULL — all of which share the same left operand and may be negated via
// a leading NOT on the right-hand construct (e.g. `x NOT IN (...)`).
func (p *parser) parsePredicate() term.Term {
	left := p.parseConcat()

	negated := false
	if p.peek().Type == token.NOT {
		// lookahead: NOT only belongs here if followed by IN/BETWEEN/LIKE/ILIKE
		save := *p.lex
		p.next()
		switch p.peek().Type {
		case token.IN, token.BETWEEN, token.LIKE, token.ILIKE:
			negated = true
		default:
			*p.lex = save
			return left
		}
	}

	switch p.peek().Type {
	case token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE:
		op := cmpOpFor(p.next().Type)
		right := p.parseConcat()
		return term.Comparison{Op: op, Left: left, Right: right}
	case token.LIKE:
		p.next()
		right := p.parseConcat()
		return term.Comparison{Op: pick(negated, term.CmpOp("NOT LIKE"), term.Like), Left: left, Right: right}
	case token.ILIKE:
		p.next()
		right := p.parseConcat()
		return term.Comparison{Op: pick(negated, term.CmpOp("NOT ILIKE"), term.ILike), Left: left, Right: right}
	case token.IN:
		p.next()
		values := p.parseInList()
		return term.In{Term: left, Values: values, Negated: negated}
	case token.BETWEEN:
		p.next()
		low := p.parseConcat()
		p.expect(token.AND)
		high := p.parseConcat()
		return term.Between{Term: left, Low: low, High: high, Negated: negated}
	case token.IS:
		p.next()
		isNeg := false
		if p.peek().Type == token.NOT {
			p.next()
			isNeg = true
		}
		p.expect(token.NULL)
		return term.IsNull{Term: left, Negated: isNeg}
	}
	return left
}

func pick(cond bool, a, b term.CmpOp) term.CmpOp {
	if cond {
		return a
	}
	return b
}

func cmpOpFor(tok token.Token) term.CmpOp {
	switch tok {
	case token.EQ:
		return term.Eq
	case token.NEQ:
		return term.Neq
	case token.LT:
		return term.Lt
	case token.LE:
		return term.Lte
	case token.GT:
		return term.Gt
	case token.GE:
		return term.Gte
	}
	panic(parseError{"not a comparison operator"})
}

func (p *parser) parseInList() []term.Term {
	p.expect(token.LPAREN)
	var values []term.Term
	if p.peek().Type != token.RPAREN {
		values = append(values, p.parseConcat())
		for p.peek().Type == token.COMMA {
			p.next()
			values = append(values, p.parseConcat())
		}
	}
	p.expect(token.RPAREN)
	return values
}

func (p *parser) parseConcat() term.Term {
	left := p.parseAdditive()
	for p.peek().Type == token.CONCAT {
		p.next()
		right := p.parseAdditive()
		left = term.Arithmetic{Op: term.Concat, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseAdditive() term.Term {
	left := p.parseMultiplicative()
	for {
		switch p.peek().Type {
		case token.PLUS:
			p.next()
			left = term.Arithmetic{Op: term.Add, Left: left, Right: p.parseMultiplicative()}
		case token.MINUS:
			p.next()
			left = term.Arithmetic{Op: term.Sub, Left: left, Right: p.parseMultiplicative()}
		default:
			return left
		}
	}
}

func (p *parser) parseMultiplicative() term.Term {
	left := p.parseUnary()
	for {
		switch p.peek().Type {
		case token.TIMES:
			p.next()
			left = term.Arithmetic{Op: term.Mul, Left: left, Right: p.parseUnary()}
		case token.DIVIDE:
			p.next()
			left = term.Arithmetic{Op: term.Div, Left: left, Right: p.parseUnary()}
		case token.MODULO:
			p.next()
			left = term.Arithmetic{Op: term.Mod, Left: left, Right: p.parseUnary()}
		default:
			return left
		}
	}
}

func (p *parser) parseUnary() term.Term {
	if p.peek().Type == token.MINUS {
		p.next()
		inner := p.parseUnary()
		return term.Arithmetic{Op: term.Sub, Left: term.NewIntLiteral(0), Right: inner}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() term.Term {
	it := p.peek()
	switch it.Type {
	case token.LPAREN:
		p.next()
		inner := p.parseOr()
		p.expect(token.RPAREN)
		return inner
	case token.INT:
		p.next()
		v, err := strconv.ParseInt(it.Value, 10, 64)
		if err != nil {
			panic(parseError{"bad integer literal"})
		}
		return term.NewIntLiteral(v)
	case token.FLOAT:
		p.next()
		v, err := strconv.ParseFloat(it.Value, 64)
		if err != nil {
			panic(parseError{"bad float literal"})
		}
		return term.NewFloatLiteral(v)
	case token.STRING:
		p.next()
		return term.NewStringLiteral(it.Value)
	case token.TRUE:
		p.next()
		return term.Literal{Kind: term.LiteralBool, Value: "true"}
	case token.FALSE:
		p.next()
		return term.Literal{Kind: term.LiteralBool, Value: "false"}
	case token.NULL:
		p.next()
		return term.Literal{Kind: term.LiteralNull}
	case token.TIMES:
		p.next()
		return term.Star{}
	case token.QUOTED_NAME:
		p.next()
		return term.Field{Path: it.Value}
	case token.CAST:
		return p.parseCast()
	case token.EXTRACT:
		return p.parseExtract()
	case token.CASE:
		return p.parseCase()
	case token.APPROXIMATE_PERCENTILE:
		return p.parseApproxPercentile()
	case token.IDENT,
		// time-unit keywords double as identifiers: bare DATE_TRUNC units,
		// Snowflake's YEAR(x), or a column named e.g. day.
		token.YEAR, token.QUARTER, token.MONTH, token.WEEK, token.DAY,
		token.HOUR, token.MINUTE, token.SECOND, token.MICROSECOND:
		return p.parseIdentOrCall()
	}
	panic(parseError{fmt.Sprintf("unexpected token %s", it.Type)})
}

// parseIdentOrCall parses a (possibly dotted) identifier, or a function
// call if followed by `(`, including the COUNT(*) / DISTINCT / OVER /
// IGNORE NULLS special forms.
func (p *parser) parseIdentOrCall() term.Term {
	first := p.next().Value
	parts := []string{first}
	for p.peek().Type == token.DOT {
		p.next()
		n := p.next()
		if n.Type != token.IDENT && n.Type != token.QUOTED_NAME {
			panic(parseError{"expected identifier after ."})
		}
		parts = append(parts, n.Value)
	}

	if p.peek().Type != token.LPAREN {
		return term.Field{Path: strings.Join(parts, ".")}
	}

	// function call; qualified names (schema.func()) collapse to the
	// last segment as the callable name, dotted prefix dropped.
	name := parts[len(parts)-1]
	p.next() // (

	distinct := false
	if p.peek().Type == token.DISTINCT {
		p.next()
		distinct = true
	}

	var args []term.Term
	if p.peek().Type == token.TIMES {
		p.next()
		args = []term.Term{term.Star{}}
	} else if p.peek().Type != token.RPAREN {
		args = append(args, p.parseOr())
		for p.peek().Type == token.COMMA {
			p.next()
			args = append(args, p.parseOr())
		}
	}
	p.expect(token.RPAREN)

	var result term.Term
	if agg, ok := aggregateName(name); ok {
		result = term.Aggregate{Name: agg, Args: args, Distinct: distinct}
	} else {
		result = term.Function{Name: name, Args: args, Distinct: distinct}
	}

	ignoreNulls := false
	if p.peek().Type == token.IGNORE {
		p.next()
		p.expect(token.NULLS)
		ignoreNulls = true
	}

	if p.peek().Type == token.OVER {
		p.next()
		p.expect(token.LPAREN)
		var partitions []term.Term
		if p.peek().Type == token.PARTITION {
			p.next()
			p.expect(token.BY)
			partitions = append(partitions, p.parseOr())
			for p.peek().Type == token.COMMA {
				p.next()
				partitions = append(partitions, p.parseOr())
			}
		}
		var orders []term.OrderTerm
		if p.peek().Type == token.ORDER {
			p.next()
			p.expect(token.BY)
			orders = append(orders, p.parseOrderTerm())
			for p.peek().Type == token.COMMA {
				p.next()
				orders = append(orders, p.parseOrderTerm())
			}
		}
		p.expect(token.RPAREN)

		fn, ok := result.(term.Aggregate)
		if !ok {
			fn = term.Aggregate{Name: term.AggName(name), Args: args, Distinct: distinct}
		}
		result = term.Analytic{Fn: fn, Partitions: partitions, Orders: orders, IgnoreNulls: ignoreNulls}
	} else if ignoreNulls {
		// IGNORE NULLS without an explicit OVER still marks an analytic
		// variant per term_parser.py.
		fn, ok := result.(term.Aggregate)
		if !ok {
			fn = term.Aggregate{Name: term.AggName(name), Args: args, Distinct: distinct}
		}
		result = term.Analytic{Fn: fn, IgnoreNulls: true}
	}

	return result
}

func (p *parser) parseOrderTerm() term.OrderTerm {
	t := p.parseOr()
	dir := term.Asc
	switch p.peek().Type {
	case token.ASC:
		p.next()
	case token.DESC:
		p.next()
		dir = term.Desc
	}
	return term.OrderTerm{Term: t, Dir: dir}
}

func aggregateName(name string) (term.AggName, bool) {
	switch strings.ToUpper(name) {
	case "COUNT":
		return term.Count, true
	case "SUM":
		return term.Sum, true
	case "AVG":
		return term.Avg, true
	case "MIN":
		return term.Min, true
	case "MAX":
		return term.Max, true
	}
	return "", false
}

func (p *parser) parseCast() term.Term {
	p.next() // CAST
	p.expect(token.LPAREN)
	expr := p.parseOr()
	p.expect(token.AS)
	sqlType := p.parseSQLType()
	p.expect(token.RPAREN)
	return term.Cast{Expr: expr, SQLType: sqlType}
}

func (p *parser) parseSQLType() string {
	it := p.next()
	base := strings.ToUpper(it.Value)
	if p.peek().Type == token.LPAREN {
		p.next()
		var dims []string
		dims = append(dims, p.next().Value)
		for p.peek().Type == token.COMMA {
			p.next()
			dims = append(dims, p.next().Value)
		}
		p.expect(token.RPAREN)
		base = base + "(" + strings.Join(dims, ", ") + ")"
	}
	return base
}

func (p *parser) parseExtract() term.Term {
	p.next() // EXTRACT
	p.expect(token.LPAREN)
	unit := p.next().Value
	p.expect(token.FROM)
	expr := p.parseOr()
	p.expect(token.RPAREN)
	return term.Extract{Unit: strings.ToUpper(unit), Expr: expr}
}

func (p *parser) parseCase() term.Term {
	p.next() // CASE
	var operand term.Term
	if p.peek().Type != token.WHEN {
		operand = p.parseOr()
	}
	var whens []term.When
	for p.peek().Type == token.WHEN {
		p.next()
		cond := p.parseOr()
		p.expect(token.THEN)
		result := p.parseOr()
		whens = append(whens, term.When{Cond: cond, Result: result})
	}
	var elseTerm term.Term
	if p.peek().Type == token.ELSE {
		p.next()
		elseTerm = p.parseOr()
	}
	p.expect(token.END)
	return term.Case{Operand: operand, Whens: whens, Else: elseTerm}
}

// parseApproxPercentile parses
// `APPROXIMATE_PERCENTILE(term USING PARAMETERS PERCENTILE = n)`, a
// special form from term_parser.py supplemented per SPEC_FULL.md §6.
// Returned as a term.ApproxPercentile, which renders back to the same form.
func (p *parser) parseApproxPercentile() term.Term {
	p.next() // APPROXIMATE_PERCENTILE
	p.expect(token.LPAREN)
	arg := p.parseOr()
	p.expect(token.USING)
	p.expect(token.PARAMETERS)
	p.expect(token.PERCENTILE)
	p.expect(token.EQ)
	pct := p.parseConcat()
	p.expect(token.RPAREN)
	return term.ApproxPercentile{Arg: arg, Percentile: pct}
}
