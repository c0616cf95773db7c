// Package serialize implements the C4 SqlTree serializer: rendering a
// parsed SqlTree back to a SQL string for a given dialect. Grounded on
// the teacher's format package (one dispatch function per node kind) and
// on _examples/original_source/deepdive/sql/parser/sql_tree.py's
// build_str (clause assembly order, `*` collapse rule, always-AS alias
// syntax).
package serialize

import (
	"strconv"
	"strings"

	"github.com/vizql/sqlviz/sqltree"
	"github.com/vizql/sqlviz/term"
)

// String renders tree as a complete SELECT statement for tree.Dialect.
func String(tree *sqltree.SqlTree) string {
	ctx := term.RenderCtx{Dialect: tree.Dialect}
	var b strings.Builder

	b.WriteString("SELECT ")
	b.WriteString(renderSelect(ctx, tree))

	b.WriteString(" FROM ")
	b.WriteString(renderTableRef(ctx, tree.From))

	for _, j := range tree.Joins {
		b.WriteString(" JOIN ")
		b.WriteString(renderTableRef(ctx, j.Table))
		b.WriteString(" ON ")
		b.WriteString(j.On.String(ctx, false))
	}

	if tree.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(tree.Where.String(ctx, false))
	}

	if len(tree.GroupByTerms) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(joinTerms(ctx, tree.GroupByTerms))
	}

	if tree.Having != nil {
		b.WriteString(" HAVING ")
		b.WriteString(tree.Having.String(ctx, false))
	}

	if tree.OrderBy != nil {
		b.WriteString(" ORDER BY ")
		b.WriteString(tree.OrderBy.Term.String(ctx, false))
		b.WriteString(" ")
		b.WriteString(strings.ToUpper(string(tree.OrderBy.Dir)))
	}

	if tree.Limit != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(*tree.Limit))
	}

	return b.String()
}

// renderSelect applies the `*` collapse rule: if any select term is
// Star, the whole clause is the bare `*` regardless of other terms.
func renderSelect(ctx term.RenderCtx, tree *sqltree.SqlTree) string {
	if tree.HasStarSelect() {
		return "*"
	}
	return joinTermsAliased(ctx, tree.SelectTerms)
}

func joinTerms(ctx term.RenderCtx, terms []term.Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String(ctx, false)
	}
	return strings.Join(parts, ", ")
}

func joinTermsAliased(ctx term.RenderCtx, terms []term.Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String(ctx, true)
	}
	return strings.Join(parts, ", ")
}

func renderTableRef(ctx term.RenderCtx, ref sqltree.TableRef) string {
	name := ctx.QuoteIdent(ref.Name)
	if ref.Alias == "" {
		return name
	}
	return name + " AS " + ctx.QuoteAlias(ref.Alias)
}
