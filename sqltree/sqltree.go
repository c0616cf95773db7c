// Package sqltree implements the C3 data model: the structured
// intermediate representation of a parsed SELECT statement, and the
// statement parser that builds one by splitting on section keywords.
// Grounded on _examples/original_source/deepdive/sql/parser/sql_tree.py
// and statement_parser.py, and on the teacher's parser/select.go.
package sqltree

import (
	"github.com/vizql/sqlviz/term"
)

// TableRef names a table and an optional alias (e.g. "orders AS o").
type TableRef struct {
	Name  string
	Alias string
}

// JoinTerm is one `JOIN table ON criterion` clause.
type JoinTerm struct {
	Table TableRef
	On    term.Term
}

// OrderTerm is the (term, direction) pair the statement parser keeps for
// ORDER BY. Only the first sort column is retained — a documented
// limitation of the original statement parser (spec.md §4.3, Open
// Question (a)).
type OrderTerm struct {
	Term term.Term
	Dir  term.OrderDir
}

// SqlTree is the parsed structure of one SELECT statement.
type SqlTree struct {
	Dialect      term.Dialect
	From         TableRef
	Joins        []JoinTerm
	SelectTerms  []term.Term
	GroupByTerms []term.Term
	Where        term.Term // nil if absent
	Having       term.Term // nil if absent
	OrderBy      *OrderTerm
	Limit        *int
}

// AddSelectTerm appends t to SelectTerms.
func (s *SqlTree) AddSelectTerm(t term.Term) { s.SelectTerms = append(s.SelectTerms, t) }

// AddGroupByTerm appends t to GroupByTerms.
func (s *SqlTree) AddGroupByTerm(t term.Term) { s.GroupByTerms = append(s.GroupByTerms, t) }

// HasStarSelect reports whether any select term is Term.Star — the
// serializer's collapse-to-bare-`*` rule keys off this.
func (s *SqlTree) HasStarSelect() bool {
	for _, t := range s.SelectTerms {
		if term.IsStar(t) {
			return true
		}
	}
	return false
}
