// Package generator implements the C6 Generator: lowering a parsed
// SqlTree into a VizSpec, classifying group-by terms into axes and
// binners and where-clauses into typed filters. Grounded on
// _examples/original_source/deepdive/viz/generator/base_generator.py,
// with per-dialect binner inference tables from sqlite_generator.py,
// bigquery_generator.py and snowflake_generator.py.
package generator

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vizql/sqlviz/canon"
	"github.com/vizql/sqlviz/schema"
	"github.com/vizql/sqlviz/sqltree"
	"github.com/vizql/sqlviz/term"
	"github.com/vizql/sqlviz/vizspec"
)

// ErrMultipleFunctionGroupbys is raised when more than one group-by term
// is function-typed (each could plausibly be an x-axis binner, and the
// generator cannot disambiguate).
var ErrMultipleFunctionGroupbys = errors.New("multiple function-typed group-bys")

var log = logrus.WithField("component", "generator")

// Generate lowers tree into a VizSpec for the given schema. Returns nil,
// nil if tree has no select terms to lower.
func Generate(tree *sqltree.SqlTree, db *schema.DatabaseSchema) (*vizspec.VizSpec, error) {
	if tree == nil || len(tree.SelectTerms) == 0 {
		return nil, nil
	}
	ctx := term.RenderCtx{Dialect: tree.Dialect}
	g := dialectBinner(tree.Dialect)

	groupBySet := make([]term.Term, len(tree.GroupByTerms))
	copy(groupBySet, tree.GroupByTerms)

	var yAxes []vizspec.YAxis
	var funcGroupBy term.Term
	var funcGroupByBinner *vizspec.Binner
	var funcGroupByName string
	var plainGroupBys []term.Term

	isGroupByTerm := func(t term.Term) bool {
		for _, g := range groupBySet {
			if term.Equal(ctx, g, t) {
				return true
			}
		}
		return false
	}

	for _, sel := range tree.SelectTerms {
		if isGroupByTerm(sel) {
			continue
		}
		if term.IsStar(sel) {
			yAxes = append(yAxes, vizspec.YAxis{Name: "*"})
			continue
		}
		if agg, ok := sel.(term.Aggregate); ok {
			yAxes = append(yAxes, aggregateToYAxis(ctx, agg))
			continue
		}
		if an, ok := sel.(term.Analytic); ok {
			yAxes = append(yAxes, aggregateToYAxis(ctx, an.Fn))
			continue
		}
		name, unparsed := termNameOrExpr(ctx, sel)
		yAxes = append(yAxes, vizspec.YAxis{Name: name, Alias: sel.Alias(), Unparsed: unparsed})
	}

	for _, gb := range groupBySet {
		name, binner, ok := g.classify(ctx, gb)
		if ok {
			if funcGroupBy != nil {
				return nil, ErrMultipleFunctionGroupbys
			}
			funcGroupBy = gb
			funcGroupByBinner = binner
			funcGroupByName = name
			continue
		}
		plainGroupBys = append(plainGroupBys, gb)
	}

	var xAxis *vizspec.XAxis
	var breakdowns []vizspec.Breakdown

	if funcGroupBy != nil {
		xAxis = &vizspec.XAxis{Name: funcGroupByName, Alias: funcGroupBy.Alias(), Binner: funcGroupByBinner}
		for _, pg := range plainGroupBys {
			name, unparsed := termNameOrExpr(ctx, pg)
			breakdowns = append(breakdowns, vizspec.Breakdown{Name: name, Alias: pg.Alias(), Unparsed: unparsed})
		}
	} else if len(plainGroupBys) > 0 {
		first := plainGroupBys[0]
		name, unparsed := termNameOrExpr(ctx, first)
		xAxis = &vizspec.XAxis{Name: name, Alias: first.Alias(), Unparsed: unparsed}
		for _, pg := range plainGroupBys[1:] {
			name, unparsed := termNameOrExpr(ctx, pg)
			breakdowns = append(breakdowns, vizspec.Breakdown{Name: name, Alias: pg.Alias(), Unparsed: unparsed})
		}
	}

	var sortBy *vizspec.SortBy
	if tree.OrderBy != nil {
		sortBy = resolveSortBy(ctx, tree.OrderBy, xAxis, yAxes, breakdowns)
	}

	var filters []vizspec.Filter
	if tree.Where != nil {
		for _, clause := range flattenAnd(tree.Where) {
			filters = append(filters, compileFilter(ctx, clause))
		}
	}

	filters = absorbDomain(filters, xAxis)

	var tables []string
	tables = append(tables, tree.From.Name)
	for _, j := range tree.Joins {
		tables = append(tables, j.Table.Name)
	}

	spec := &vizspec.VizSpec{
		XAxis:      xAxis,
		YAxes:      yAxes,
		Breakdowns: breakdowns,
		Filters:    filters,
		Tables:     tables,
		Limit:      tree.Limit,
		SortBy:     sortBy,
	}

	return spec, nil
}

func aggregateToYAxis(ctx term.RenderCtx, agg term.Aggregate) vizspec.YAxis {
	name := "*"
	if len(agg.Args) == 1 && !term.IsStar(agg.Args[0]) {
		name = termName(ctx, agg.Args[0])
	}
	return vizspec.YAxis{Name: name, Alias: agg.Alias(), Aggregation: vizspec.Aggregation(agg.Name)}
}

// termNameOrExpr resolves t to a VizSpec column name. A bare field
// resolves to its last dotted component; an already-unparsed term keeps
// its raw text. Anything else (an arithmetic expression, a bare
// function call used outside a recognized binner shape, and so on) has
// no column identity of its own, so it falls back to its normalized SQL
// text and is reported unparsed — mirroring base_generator.py's
// term_to_y_axis/term_to_breakdown, which does the same via
// sanitize_query(normalize_query(term.get_sql())).
func termNameOrExpr(ctx term.RenderCtx, t term.Term) (name string, unparsed bool) {
	switch v := t.(type) {
	case term.Field:
		parts := strings.Split(v.Path, ".")
		return parts[len(parts)-1], false
	case term.Unparsed:
		return v.Raw, true
	default:
		return canon.NormalizeQuery(t.String(ctx, false)), true
	}
}

func termName(ctx term.RenderCtx, t term.Term) string {
	name, _ := termNameOrExpr(ctx, t)
	return name
}

func resolveSortBy(ctx term.RenderCtx, ob *sqltree.OrderTerm, xAxis *vizspec.XAxis, yAxes []vizspec.YAxis, breakdowns []vizspec.Breakdown) *vizspec.SortBy {
	dir := vizspec.SortAsc
	if ob.Dir == term.Desc {
		dir = vizspec.SortDesc
	}

	key := termName(ctx, ob.Term)

	axisNames := map[string]string{}
	if xAxis != nil {
		axisNames[xAxis.Name] = xAxis.Name
		if xAxis.Alias != "" {
			axisNames[xAxis.Alias] = xAxis.Name
		}
	}
	for _, y := range yAxes {
		axisNames[y.Name] = y.Name
		if y.Alias != "" {
			axisNames[y.Alias] = y.Name
		}
	}
	for _, b := range breakdowns {
		axisNames[b.Name] = b.Name
		if b.Alias != "" {
			axisNames[b.Alias] = b.Name
		}
	}

	hasStar := xAxis != nil && xAxis.Name == "*"
	for _, y := range yAxes {
		if y.Name == "*" {
			hasStar = true
		}
	}

	if name, ok := axisNames[key]; ok {
		return &vizspec.SortBy{Name: name, Direction: dir}
	}
	if hasStar {
		return &vizspec.SortBy{Name: key, Direction: dir}
	}
	log.WithField("sort_key", key).Debug("sort_by does not resolve to any axis; recording unparsed")
	return &vizspec.SortBy{Name: ob.Term.String(ctx, false), Direction: dir, Unparsed: true}
}

// flattenAnd splits t along top-level AND into a slice of conjuncts.
func flattenAnd(t term.Term) []term.Term {
	if b, ok := t.(term.Boolean); ok && b.Op == term.And {
		return append(flattenAnd(b.Left), flattenAnd(b.Right)...)
	}
	return []term.Term{t}
}

// literalValue extracts the raw, unquoted value a Literal term carries
// (e.g. a string literal's bare text with no surrounding quotes) for use
// in Filter.Values/Domain, which store bare values rather than re-parsable
// SQL syntax. Non-literal terms (a nested expression on the value side of
// a comparison) fall back to their rendered SQL text.
func literalValue(ctx term.RenderCtx, t term.Term) string {
	if lit, ok := t.(term.Literal); ok {
		return lit.Value
	}
	return t.String(ctx, false)
}

// fieldAndValue picks out the Field side of a binary comparison,
// mirroring _basic_criterion_to_filter's isinstance(left/right, Field)
// checks: either operand may be the column, and the other the bound.
// flipped reports whether the Field was on the right, so callers can
// reinterpret the operator's direction accordingly. ok is false when
// neither side is a Field, signaling a complex-filter fallback.
func fieldAndValue(left, right term.Term) (field, value term.Term, flipped, ok bool) {
	if _, isField := left.(term.Field); isField {
		return left, right, false, true
	}
	if _, isField := right.(term.Field); isField {
		return right, left, true, true
	}
	return nil, nil, false, false
}

// flipComparisonOp reinterprets op for operands swapped left-to-right,
// e.g. `5 < price` (Lt with price on the right) means `price > 5`.
func flipComparisonOp(op term.CmpOp) term.CmpOp {
	switch op {
	case term.Lt:
		return term.Gt
	case term.Lte:
		return term.Gte
	case term.Gt:
		return term.Lt
	case term.Gte:
		return term.Lte
	}
	return op
}

func compileFilter(ctx term.RenderCtx, t term.Term) vizspec.Filter {
	negate := false
	for {
		if n, ok := t.(term.Not); ok {
			negate = !negate
			t = n.Inner
			continue
		}
		break
	}

	switch v := t.(type) {
	case term.IsNull:
		neg := negate != v.Negated
		return vizspec.Filter{Name: termName(ctx, v.Term), Type: vizspec.FilterComparison, Values: []string{"null"}, Negate: neg}
	case term.In:
		vals := make([]string, len(v.Values))
		for i, val := range v.Values {
			vals[i] = literalValue(ctx, val)
		}
		neg := negate != v.Negated
		return vizspec.Filter{Name: termName(ctx, v.Term), Type: vizspec.FilterComparison, Values: vals, Negate: neg}
	case term.Between:
		lo := literalValue(ctx, v.Low)
		hi := literalValue(ctx, v.High)
		neg := negate != v.Negated
		return vizspec.Filter{Name: termName(ctx, v.Term), Type: vizspec.FilterNumeric, Domain: &vizspec.Domain{Low: parseFloatPtr(lo), High: parseFloatPtr(hi)}, Negate: neg}
	case term.Comparison:
		field, value, flipped, ok := fieldAndValue(v.Left, v.Right)
		if !ok {
			break
		}
		op := v.Op
		if flipped {
			op = flipComparisonOp(op)
		}
		switch op {
		case term.Eq, term.Neq:
			vals := []string{literalValue(ctx, value)}
			neg := negate != (op == term.Neq)
			return vizspec.Filter{Name: termName(ctx, field), Type: vizspec.FilterComparison, Values: vals, Negate: neg}
		case term.Lt, term.Lte:
			hi := parseFloatPtr(literalValue(ctx, value))
			return vizspec.Filter{Name: termName(ctx, field), Type: vizspec.FilterNumeric, Domain: &vizspec.Domain{High: hi}, Negate: negate}
		case term.Gt, term.Gte:
			lo := parseFloatPtr(literalValue(ctx, value))
			return vizspec.Filter{Name: termName(ctx, field), Type: vizspec.FilterNumeric, Domain: &vizspec.Domain{Low: lo}, Negate: negate}
		case term.Like, term.ILike:
			return vizspec.Filter{Name: termName(ctx, field), Type: vizspec.FilterLike, Values: []string{literalValue(ctx, value)}, Negate: negate}
		}
	case term.Boolean:
		if v.Op == term.Or {
			expr := canon.NormalizeQuery(t.String(ctx, false))
			return vizspec.Filter{Type: vizspec.FilterComplex, Expression: expr, Negate: negate}
		}
	}

	expr := canon.NormalizeQuery(t.String(ctx, false))
	return vizspec.Filter{Type: vizspec.FilterComplex, Expression: expr, Negate: negate}
}

func parseFloatPtr(s string) *float64 {
	s = strings.TrimSpace(s)
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
		return nil
	}
	return &f
}

// absorbDomain moves the first non-negated numeric filter whose name matches the
// x-axis's name or alias into x_axis.domain, removing it from filters.
func absorbDomain(filters []vizspec.Filter, xAxis *vizspec.XAxis) []vizspec.Filter {
	if xAxis == nil {
		return filters
	}
	var out []vizspec.Filter
	absorbed := false
	for _, f := range filters {
		if !absorbed && f.Type == vizspec.FilterNumeric && !f.Negate && (f.Name == xAxis.Name || (xAxis.Alias != "" && f.Name == xAxis.Alias)) {
			xAxis.Domain = f.Domain
			absorbed = true
			continue
		}
		out = append(out, f)
	}
	return out
}
