// Package compiler implements the C7 Compiler: turning a VizSpec back
// into a SqlTree, the mirror image of generator. Grounded on
// _examples/original_source/deepdive/viz/compiler/base_compiler.py
// (column_to_term/column_to_alias maps, clause assembly order, greedy
// FK-based join resolution) plus the per-dialect x_axis_to_term/
// x_axis_to_where overrides in sqlite_compiler.py, bigquery_complier.py
// and snowflake_compiler.py.
package compiler

import (
	"github.com/sirupsen/logrus"

	"github.com/vizql/sqlviz/schema"
	"github.com/vizql/sqlviz/sqltree"
	"github.com/vizql/sqlviz/term"
	"github.com/vizql/sqlviz/termparser"
	"github.com/vizql/sqlviz/vizspec"
)

var log = logrus.WithField("component", "compiler")

// xAxisTermBuilder is the compiler behavior that varies per dialect: how
// a binned x-axis expands to a function-call Term, and (BigQuery only)
// how its domain is re-expressed in WHERE without the SELECT alias.
type xAxisTermBuilder interface {
	xAxisToTerm(x *vizspec.XAxis) term.Term
	xAxisToWhere(x *vizspec.XAxis, termOrAlias term.Term) term.Term
}

func dialectXAxisBuilder(d term.Dialect) xAxisTermBuilder {
	switch d {
	case term.GoogleSQL:
		return bigqueryXAxis{}
	case term.Snowflake:
		return snowflakeXAxis{}
	default:
		return sqliteXAxis{}
	}
}

// Compiler compiles VizSpecs into SqlTrees for a fixed database schema.
type Compiler struct {
	db         *schema.DatabaseSchema
	xAxisBuild xAxisTermBuilder
	dialect    term.Dialect
}

// New builds a Compiler bound to db, dispatching per-dialect behavior on
// db.Dialect (falling back to the SQLite compiler's behavior for MySQL,
// matching compiler_helper.py's documented default).
func New(db *schema.DatabaseSchema) *Compiler {
	return &Compiler{db: db, xAxisBuild: dialectXAxisBuilder(db.Dialect), dialect: db.Dialect}
}

// Compile turns spec into a SqlTree. Returns nil if spec is nil.
func (c *Compiler) Compile(spec *vizspec.VizSpec) *sqltree.SqlTree {
	if spec == nil {
		return nil
	}

	tree := &sqltree.SqlTree{Dialect: c.dialect}

	columnsToTerms := c.columnsToTerms(spec)
	columnsToAliases := columnsToAliases(spec)

	if spec.XAxis != nil {
		tree.AddSelectTerm(columnsToTerms[spec.XAxis.Name])

		termOrAlias := columnsToTerms[spec.XAxis.Name]
		if alias, ok := columnsToAliases[spec.XAxis.Name]; ok {
			termOrAlias = alias
		}
		tree.AddGroupByTerm(termOrAlias)

		if where := c.xAxisBuild.xAxisToWhere(spec.XAxis, termOrAlias); where != nil {
			tree.Where = where
		}
	}

	for _, b := range spec.Breakdowns {
		tree.AddSelectTerm(columnsToTerms[b.Name])
		if alias, ok := columnsToAliases[b.Name]; ok {
			tree.AddGroupByTerm(alias)
		} else {
			tree.AddGroupByTerm(columnsToTerms[b.Name])
		}
	}

	for _, y := range spec.YAxes {
		tree.AddSelectTerm(yAxisToTerm(y))
	}

	if len(spec.Tables) > 0 {
		tree.From = sqltree.TableRef{Name: spec.Tables[0]}
		if len(spec.Tables) > 1 {
			tree.Joins = c.tablesToJoins(spec.Tables)
		}
	}

	if len(spec.Filters) > 0 {
		where := filterToWhere(spec.Filters[0])
		for _, f := range spec.Filters[1:] {
			where = term.Boolean{Op: term.And, Left: where, Right: filterToWhere(f)}
		}
		if tree.Where != nil {
			tree.Where = term.Boolean{Op: term.And, Left: tree.Where, Right: where}
		} else {
			tree.Where = where
		}
	}

	if spec.Limit != nil {
		tree.Limit = spec.Limit
	}

	if spec.SortBy != nil {
		tree.OrderBy = c.sortByToOrderTerm(columnsToTerms, columnsToAliases, spec.SortBy)
	}

	return sanitizeTree(tree)
}

func sanitizeTree(tree *sqltree.SqlTree) *sqltree.SqlTree {
	if tree.HasStarSelect() {
		tree.SelectTerms = []term.Term{term.Star{}}
	}
	return tree
}

func columnToTerm(name string) term.Term {
	if name == "*" {
		return term.Star{}
	}
	return term.Field{Path: name}
}

func yAxisToTerm(y vizspec.YAxis) term.Term {
	var t term.Term
	if y.Unparsed {
		t = term.Unparsed{Raw: y.Name}
	} else {
		t = columnToTerm(y.Name)
	}

	switch y.Aggregation {
	case vizspec.AggCount:
		t = term.Aggregate{Name: term.Count, Args: []term.Term{columnToTerm(y.Name)}}
	case vizspec.AggSum:
		t = term.Aggregate{Name: term.Sum, Args: []term.Term{t}}
	case vizspec.AggAvg:
		t = term.Aggregate{Name: term.Avg, Args: []term.Term{t}}
	case vizspec.AggMin:
		t = term.Aggregate{Name: term.Min, Args: []term.Term{t}}
	case vizspec.AggMax:
		t = term.Aggregate{Name: term.Max, Args: []term.Term{t}}
	}

	if y.Alias != "" {
		t = t.WithAlias(y.Alias)
	}
	return t
}

func breakdownToTerm(b vizspec.Breakdown) term.Term {
	var t term.Term
	if b.Unparsed {
		t = term.Unparsed{Raw: b.Name}
	} else {
		t = columnToTerm(b.Name)
	}
	if b.Alias != "" {
		t = t.WithAlias(b.Alias)
	}
	return t
}

func domainToWhere(t term.Term, d *vizspec.Domain) term.Term {
	switch {
	case d.Low != nil && d.High != nil:
		return term.Between{Term: t, Low: floatLiteral(*d.Low), High: floatLiteral(*d.High)}
	case d.Low != nil:
		return term.Comparison{Op: term.Gte, Left: t, Right: floatLiteral(*d.Low)}
	case d.High != nil:
		return term.Comparison{Op: term.Lte, Left: t, Right: floatLiteral(*d.High)}
	}
	return nil
}

func floatLiteral(f float64) term.Term {
	return term.NewFloatLiteral(f)
}

func filterToWhere(f vizspec.Filter) term.Term {
	var where term.Term
	switch f.Type {
	case vizspec.FilterComparison:
		if len(f.Values) == 1 {
			if f.Values[0] == "null" {
				where = term.IsNull{Term: term.Field{Path: f.Name}}
			} else {
				where = term.Comparison{Op: term.Eq, Left: term.Field{Path: f.Name}, Right: term.NewStringLiteral(f.Values[0])}
			}
		} else {
			vals := make([]term.Term, len(f.Values))
			for i, v := range f.Values {
				vals[i] = term.NewStringLiteral(v)
			}
			where = term.In{Term: term.Field{Path: f.Name}, Values: vals}
		}
	case vizspec.FilterNumeric:
		switch {
		case f.Domain != nil && f.Domain.Low != nil && f.Domain.High != nil:
			where = term.Between{Term: term.Field{Path: f.Name}, Low: floatLiteral(*f.Domain.Low), High: floatLiteral(*f.Domain.High)}
		case f.Domain != nil && f.Domain.Low != nil:
			where = term.Comparison{Op: term.Gt, Left: term.Field{Path: f.Name}, Right: floatLiteral(*f.Domain.Low)}
		case f.Domain != nil && f.Domain.High != nil:
			where = term.Comparison{Op: term.Lt, Left: term.Field{Path: f.Name}, Right: floatLiteral(*f.Domain.High)}
		}
	case vizspec.FilterLike:
		where = term.Comparison{Op: term.Like, Left: term.Field{Path: f.Name}, Right: term.NewStringLiteral(f.Values[0])}
	case vizspec.FilterComplex:
		parsed := termparser.Parse(f.Expression)
		switch parsed.(type) {
		case term.Comparison, term.Boolean:
			where = parsed
		default:
			log.WithField("expression", f.Expression).Error("complex filter expression is not a basic criterion")
			where = parsed
		}
	}

	if where == nil {
		where = term.Unparsed{Raw: f.Expression}
	}

	if f.Negate {
		where = term.Not{Inner: where}
	}
	return where
}

func (c *Compiler) sortByToOrderTerm(columnsToTerms, columnsToAliases map[string]term.Term, sortBy *vizspec.SortBy) *sqltree.OrderTerm {
	dir := term.Asc
	if sortBy.Direction == vizspec.SortDesc {
		dir = term.Desc
	}

	if sortBy.Unparsed {
		return &sqltree.OrderTerm{Term: termparser.Parse(sortBy.Name), Dir: dir}
	}
	if alias, ok := columnsToAliases[sortBy.Name]; ok {
		return &sqltree.OrderTerm{Term: alias, Dir: dir}
	}
	if t, ok := columnsToTerms[sortBy.Name]; ok {
		return &sqltree.OrderTerm{Term: t, Dir: dir}
	}
	return &sqltree.OrderTerm{Term: term.Field{Path: sortBy.Name}, Dir: dir}
}

func (c *Compiler) columnsToTerms(spec *vizspec.VizSpec) map[string]term.Term {
	m := map[string]term.Term{}
	if spec.XAxis != nil {
		m[spec.XAxis.Name] = c.xAxisBuild.xAxisToTerm(spec.XAxis)
	}
	for _, b := range spec.Breakdowns {
		m[b.Name] = breakdownToTerm(b)
	}
	for _, y := range spec.YAxes {
		m[y.Name] = yAxisToTerm(y)
	}
	return m
}

func columnsToAliases(spec *vizspec.VizSpec) map[string]term.Term {
	m := map[string]term.Term{}
	if spec.XAxis != nil && spec.XAxis.Alias != "" {
		m[spec.XAxis.Name] = term.Field{Path: spec.XAxis.Alias}
	}
	for _, b := range spec.Breakdowns {
		if b.Alias != "" {
			m[b.Name] = term.Field{Path: b.Alias}
		}
	}
	for _, y := range spec.YAxes {
		if y.Alias != "" {
			m[y.Name] = term.Field{Path: y.Alias}
		}
	}
	return m
}

// tablesToJoins greedily resolves a join path over tables (tables[0] is
// the from-table) using the schema's foreign keys; a table with no FK
// match against any already-included table is silently omitted.
func (c *Compiler) tablesToJoins(tables []string) []sqltree.JoinTerm {
	added := []string{tables[0]}
	var joins []sqltree.JoinTerm

	for _, candidate := range tables[1:] {
		placed := false
		for _, inTable := range added {
			fk, ok := c.db.JoinClauseBetween(inTable, candidate)
			if !ok {
				continue
			}
			joins = append(joins, sqltree.JoinTerm{
				Table: sqltree.TableRef{Name: candidate},
				On:    term.Comparison{Op: term.Eq, Left: term.Field{Path: fk.Primary}, Right: term.Field{Path: fk.Reference}},
			})
			added = append(added, candidate)
			placed = true
			break
		}
		if !placed {
			log.WithField("table", candidate).Debug("no foreign key path found; omitting table from join")
		}
	}
	return joins
}
