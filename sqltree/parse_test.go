package sqltree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vizql/sqlviz/term"
)

func TestParseSimpleSelect(t *testing.T) {
	tree, err := Parse("select a from customers", term.Sqlite)
	require.NoError(t, err)
	require.Len(t, tree.SelectTerms, 1)
	require.Equal(t, "customers", tree.From.Name)
}

func TestParseSelectStar(t *testing.T) {
	tree, err := Parse("select * from orders where status = 'RETURNED' limit 500", term.Sqlite)
	require.NoError(t, err)
	require.True(t, tree.HasStarSelect())
	require.NotNil(t, tree.Where)
	require.NotNil(t, tree.Limit)
	require.Equal(t, 500, *tree.Limit)
}

func TestParseGroupByAndAggregate(t *testing.T) {
	sql := "SELECT strftime('%Y-%m-%d', started_at), COUNT(*) AS num_trips FROM trips GROUP BY strftime('%Y-%m-%d', started_at) LIMIT 500"
	tree, err := Parse(sql, term.Sqlite)
	require.NoError(t, err)
	require.Len(t, tree.SelectTerms, 2)
	require.Len(t, tree.GroupByTerms, 1)
	require.Equal(t, "trips", tree.From.Name)
}

func TestParseJoinAndOrderBy(t *testing.T) {
	sql := "select c_name, sum(o_totalprice) as total from customer join orders on customer.c_custkey=orders.o_custkey group by c_name order by total desc limit 10"
	tree, err := Parse(sql, term.Sqlite)
	require.NoError(t, err)
	require.Equal(t, "customer", tree.From.Name)
	require.Len(t, tree.Joins, 1)
	require.Equal(t, "orders", tree.Joins[0].Table.Name)
	require.NotNil(t, tree.OrderBy)
	require.Equal(t, term.Desc, tree.OrderBy.Dir)
}

func TestParseNotInFilter(t *testing.T) {
	tree, err := Parse("select * from customers where department not in ('IT','Sales')", term.Sqlite)
	require.NoError(t, err)
	in, ok := tree.Where.(term.In)
	require.True(t, ok)
	require.True(t, in.Negated)
}

func TestParseRejectsNonSelect(t *testing.T) {
	_, err := Parse("delete from customers", term.Sqlite)
	require.ErrorIs(t, err, ErrInvalidStatement)
}

func TestParseRejectsMultipleStatements(t *testing.T) {
	_, err := Parse("select a from t; select b from t", term.Sqlite)
	require.ErrorIs(t, err, ErrMultipleStatements)
}

func TestParseRejectsMissingJoinOn(t *testing.T) {
	_, err := Parse("select a from t join u", term.Sqlite)
	require.ErrorIs(t, err, ErrMalformedJoin)
}

func TestParseExtractInSelectDoesNotSplitOnFrom(t *testing.T) {
	tree, err := Parse("select extract(month from created_at) from events", term.Sqlite)
	require.NoError(t, err)
	require.Equal(t, "events", tree.From.Name)
	_, ok := tree.SelectTerms[0].(term.Extract)
	require.True(t, ok)
}

func TestParseFromWithAlias(t *testing.T) {
	tree, err := Parse("select a from customers as c", term.Sqlite)
	require.NoError(t, err)
	require.Equal(t, "customers", tree.From.Name)
	require.Equal(t, "c", tree.From.Alias)
}
