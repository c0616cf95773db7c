package processor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vizql/sqlviz/schema"
	"github.com/vizql/sqlviz/sqltree"
	"github.com/vizql/sqlviz/vizspec"
)

func TestAliasProcessorBinnedXAxis(t *testing.T) {
	spec := &vizspec.VizSpec{
		XAxis: &vizspec.XAxis{Name: "created_at", Binner: &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: vizspec.Day}},
	}
	out := AliasProcessor{}.Process(spec)
	require.Equal(t, "created_at_DAY", out.XAxis.Alias)
}

func TestAliasProcessorAggregatedYAxis(t *testing.T) {
	spec := &vizspec.VizSpec{
		YAxes: []vizspec.YAxis{{Name: "amount", Aggregation: vizspec.AggSum}, {Name: "*", Aggregation: vizspec.AggCount}},
	}
	out := AliasProcessor{}.Process(spec)
	require.Equal(t, "SUM_amount", out.YAxes[0].Alias)
	require.Equal(t, "COUNT_ROWS", out.YAxes[1].Alias)
}

func TestAliasProcessorUnparsedColumnsGetStableNumbers(t *testing.T) {
	spec := &vizspec.VizSpec{
		YAxes: []vizspec.YAxis{{Name: "garbage1", Unparsed: true}, {Name: "garbage2", Unparsed: true}},
	}
	out := AliasProcessor{}.Process(spec)
	require.Equal(t, "computed_column_1", out.YAxes[0].Alias)
	require.Equal(t, "computed_column_2", out.YAxes[1].Alias)
}

func testDB() *schema.DatabaseSchema {
	return &schema.DatabaseSchema{
		Tables: []schema.TableSchema{
			{Name: "orders", Columns: []schema.ColumnSchema{{Name: "o_custkey", Type: schema.ColumnID}, {Name: "o_totalprice", Type: schema.ColumnFloat}}},
			{Name: "customer", Columns: []schema.ColumnSchema{{Name: "c_custkey", Type: schema.ColumnID}, {Name: "c_name", Type: schema.ColumnText}}},
		},
	}
}

func TestTablesProcessorAddsMissingTable(t *testing.T) {
	db := testDB()
	spec := &vizspec.VizSpec{
		XAxis:  &vizspec.XAxis{Name: "c_name"},
		YAxes:  []vizspec.YAxis{{Name: "o_totalprice", Aggregation: vizspec.AggSum}},
		Tables: []string{"orders"},
	}
	out := TablesProcessor{DB: db}.Process(spec)
	require.Contains(t, out.Tables, "customer")
}

func TestVizTypeProcessorGuessesLineForDateXAxis(t *testing.T) {
	db := &schema.DatabaseSchema{
		Tables: []schema.TableSchema{{Name: "trips", Columns: []schema.ColumnSchema{{Name: "started_at", Type: schema.ColumnDate}}}},
	}
	spec := &vizspec.VizSpec{
		XAxis:  &vizspec.XAxis{Name: "started_at"},
		YAxes:  []vizspec.YAxis{{Name: "*", Aggregation: vizspec.AggCount}},
		Tables: []string{"trips"},
	}
	out := VizTypeProcessor{DB: db}.Process(spec)
	require.Equal(t, vizspec.Line, out.VizType)
}

func TestVizTypeProcessorGuessesTableForNoXAxis(t *testing.T) {
	db := &schema.DatabaseSchema{}
	spec := &vizspec.VizSpec{YAxes: []vizspec.YAxis{{Name: "*", Aggregation: vizspec.AggCount}}}
	out := VizTypeProcessor{DB: db}.Process(spec)
	require.Equal(t, vizspec.Table, out.VizType)
}

func TestVizTypeProcessorGuessesBarForOneBreakdown(t *testing.T) {
	db := &schema.DatabaseSchema{
		Tables: []schema.TableSchema{{Name: "orders", Columns: []schema.ColumnSchema{{Name: "status", Type: schema.ColumnText}}}},
	}
	spec := &vizspec.VizSpec{
		XAxis:      &vizspec.XAxis{Name: "status"},
		YAxes:      []vizspec.YAxis{{Name: "*", Aggregation: vizspec.AggCount}},
		Breakdowns: []vizspec.Breakdown{{Name: "region"}},
		Tables:     []string{"orders"},
	}
	out := VizTypeProcessor{DB: db}.Process(spec)
	require.Equal(t, vizspec.Bar, out.VizType)
}

func TestLimitProcessorAppliesDefault(t *testing.T) {
	tree := &sqltree.SqlTree{}
	out := NewLimitProcessor().Process(tree)
	require.NotNil(t, out.Limit)
	require.Equal(t, DefaultLimit, *out.Limit)
}

func TestLimitProcessorPreservesExisting(t *testing.T) {
	n := 50
	tree := &sqltree.SqlTree{Limit: &n}
	out := NewLimitProcessor().Process(tree)
	require.Equal(t, 50, *out.Limit)
}

func TestFilterBadQueriesProcessorDropsUnknownTable(t *testing.T) {
	db := testDB()
	tree := &sqltree.SqlTree{From: sqltree.TableRef{Name: "ghost_table"}}
	out := FilterBadQueriesProcessor{DB: db}.Process(tree)
	require.Nil(t, out)
}

func TestFilterBadQueriesProcessorKeepsKnownTable(t *testing.T) {
	db := testDB()
	tree := &sqltree.SqlTree{From: sqltree.TableRef{Name: "orders"}}
	out := FilterBadQueriesProcessor{DB: db}.Process(tree)
	require.NotNil(t, out)
}

func TestSanitizeBigQueryProcessorQuotesLeadingDigitTable(t *testing.T) {
	got := SanitizeBigQueryProcessor{}.Process("SELECT a FROM 4sales")
	require.Contains(t, got, "`4sales`")
}

func TestSanitizeBigQueryProcessorLeavesNumericLiteralsAlone(t *testing.T) {
	got := SanitizeBigQueryProcessor{}.Process("SELECT a FROM t LIMIT 500")
	require.Contains(t, got, "LIMIT 500")
	require.NotContains(t, got, "`500`")
}

func TestSanitizeBigQueryProcessorQuotesReservedKeywordColumn(t *testing.T) {
	got := SanitizeBigQueryProcessor{}.Process("SELECT `by` FROM t")
	require.Contains(t, got, "`by`")
}
