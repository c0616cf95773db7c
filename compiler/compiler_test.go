package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vizql/sqlviz/schema"
	"github.com/vizql/sqlviz/serialize"
	"github.com/vizql/sqlviz/term"
	"github.com/vizql/sqlviz/vizspec"
)

func testSchema(dialect term.Dialect) *schema.DatabaseSchema {
	return &schema.DatabaseSchema{
		Dialect: dialect,
		Tables: []schema.TableSchema{
			{Name: "trips", Columns: []schema.ColumnSchema{{Name: "started_at", Type: schema.ColumnDate}}},
			{Name: "customer", Columns: []schema.ColumnSchema{{Name: "c_custkey", Type: schema.ColumnID}, {Name: "c_name", Type: schema.ColumnText}}},
			{Name: "orders", Columns: []schema.ColumnSchema{{Name: "o_custkey", Type: schema.ColumnID}, {Name: "o_totalprice", Type: schema.ColumnFloat}}},
		},
		ForeignKeys: []schema.ForeignKey{
			{Primary: "customer.c_custkey", Reference: "orders.o_custkey"},
		},
	}
}

func TestCompileSimpleCountByDay(t *testing.T) {
	db := testSchema(term.Sqlite)
	c := New(db)
	spec := &vizspec.VizSpec{
		XAxis: &vizspec.XAxis{Name: "started_at", Binner: &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: vizspec.Day}},
		YAxes: []vizspec.YAxis{{Name: "*", Aggregation: vizspec.AggCount, Alias: "num_trips"}},
		Tables: []string{"trips"},
		Limit: intPtr(500),
	}
	tree := c.Compile(spec)
	require.NotNil(t, tree)
	sql := serialize.String(tree)
	require.Contains(t, sql, "strftime(")
	require.Contains(t, sql, "COUNT(*)")
	require.Contains(t, sql, "LIMIT 500")
}

func TestCompileJoinsViaForeignKey(t *testing.T) {
	db := testSchema(term.Sqlite)
	c := New(db)
	spec := &vizspec.VizSpec{
		XAxis:  &vizspec.XAxis{Name: "c_name"},
		YAxes:  []vizspec.YAxis{{Name: "o_totalprice", Aggregation: vizspec.AggSum, Alias: "total"}},
		Tables: []string{"customer", "orders"},
	}
	tree := c.Compile(spec)
	require.Len(t, tree.Joins, 1)
	require.Equal(t, "orders", tree.Joins[0].Table.Name)
}

func TestCompileOmitsTableWithNoForeignKeyPath(t *testing.T) {
	db := testSchema(term.Sqlite)
	c := New(db)
	spec := &vizspec.VizSpec{
		XAxis:  &vizspec.XAxis{Name: "c_name"},
		Tables: []string{"customer", "trips"},
	}
	tree := c.Compile(spec)
	require.Empty(t, tree.Joins)
}

func TestCompileBigQueryWhereDoesNotReferenceAlias(t *testing.T) {
	db := testSchema(term.GoogleSQL)
	c := New(db)
	lo, hi := 0.0, 100.0
	spec := &vizspec.VizSpec{
		XAxis:  &vizspec.XAxis{Name: "o_totalprice", Alias: "price", Domain: &vizspec.Domain{Low: &lo, High: &hi}},
		Tables: []string{"orders"},
	}
	tree := c.Compile(spec)
	require.NotNil(t, tree.Where)
	sql := serialize.String(tree)
	require.NotContains(t, sql, "WHERE price")
}

func TestCompileFilterComparisonSingleValue(t *testing.T) {
	db := testSchema(term.Sqlite)
	c := New(db)
	spec := &vizspec.VizSpec{
		Tables:  []string{"orders"},
		Filters: []vizspec.Filter{{Name: "o_custkey", Type: vizspec.FilterComparison, Values: []string{"null"}}},
	}
	tree := c.Compile(spec)
	_, ok := tree.Where.(term.IsNull)
	require.True(t, ok)
}

func TestCompileStarCollapsesSelect(t *testing.T) {
	db := testSchema(term.Sqlite)
	c := New(db)
	spec := &vizspec.VizSpec{
		YAxes:  []vizspec.YAxis{{Name: "*"}},
		Tables: []string{"orders"},
	}
	tree := c.Compile(spec)
	require.Len(t, tree.SelectTerms, 1)
	require.True(t, term.IsStar(tree.SelectTerms[0]))
}

func intPtr(n int) *int { return &n }
