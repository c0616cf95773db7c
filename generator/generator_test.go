package generator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vizql/sqlviz/schema"
	"github.com/vizql/sqlviz/sqltree"
	"github.com/vizql/sqlviz/vizspec"
)

func TestGenerateStrftimeDayBinner(t *testing.T) {
	sql := "SELECT strftime('%Y-%m-%d', started_at), COUNT(*) AS num_trips FROM trips GROUP BY strftime('%Y-%m-%d', started_at) LIMIT 500"
	tree, err := sqltree.Parse(sql, "Sqlite")
	require.NoError(t, err)

	spec, err := Generate(tree, &schema.DatabaseSchema{})
	require.NoError(t, err)
	require.NotNil(t, spec)
	require.NotNil(t, spec.XAxis)
	require.Equal(t, "started_at", spec.XAxis.Name)
	require.NotNil(t, spec.XAxis.Binner)
	require.Equal(t, vizspec.Day, spec.XAxis.Binner.TimeUnit)
	require.Len(t, spec.YAxes, 1)
	require.Equal(t, "*", spec.YAxes[0].Name)
	require.Equal(t, vizspec.AggCount, spec.YAxes[0].Aggregation)
	require.Equal(t, "num_trips", spec.YAxes[0].Alias)
	require.NotNil(t, spec.Limit)
	require.Equal(t, 500, *spec.Limit)
	require.Equal(t, []string{"trips"}, spec.Tables)
}

func TestGenerateJoinAndOrderBy(t *testing.T) {
	sql := "select c_name, sum(o_totalprice) as total from customer join orders on customer.c_custkey=orders.o_custkey group by c_name order by total desc limit 10"
	tree, err := sqltree.Parse(sql, "Sqlite")
	require.NoError(t, err)

	spec, err := Generate(tree, &schema.DatabaseSchema{})
	require.NoError(t, err)
	require.NotNil(t, spec.XAxis)
	require.Equal(t, "c_name", spec.XAxis.Name)
	require.Len(t, spec.YAxes, 1)
	require.Equal(t, "o_totalprice", spec.YAxes[0].Name)
	require.Equal(t, vizspec.AggSum, spec.YAxes[0].Aggregation)
	require.NotNil(t, spec.SortBy)
	require.Equal(t, "o_totalprice", spec.SortBy.Name)
	require.Equal(t, vizspec.SortDesc, spec.SortBy.Direction)
	require.Equal(t, []string{"customer", "orders"}, spec.Tables)
}

func TestGenerateNotInFilterBecomesComparison(t *testing.T) {
	tree, err := sqltree.Parse("select * from customers where department not in ('IT','Sales')", "Sqlite")
	require.NoError(t, err)

	spec, err := Generate(tree, &schema.DatabaseSchema{})
	require.NoError(t, err)
	require.Len(t, spec.Filters, 1)
	require.Equal(t, vizspec.FilterComparison, spec.Filters[0].Type)
	require.True(t, spec.Filters[0].Negate)
	require.ElementsMatch(t, []string{"IT", "Sales"}, spec.Filters[0].Values)
}

func TestGenerateMultipleFunctionGroupbysRejected(t *testing.T) {
	tree, err := sqltree.Parse("select strftime('%Y', a), date(b) from t group by strftime('%Y', a), date(b)", "Sqlite")
	require.NoError(t, err)

	_, err = Generate(tree, &schema.DatabaseSchema{})
	require.ErrorIs(t, err, ErrMultipleFunctionGroupbys)
}

func TestGenerateDomainAbsorption(t *testing.T) {
	tree, err := sqltree.Parse("select a, count(*) from t where a > 5 group by a", "Sqlite")
	require.NoError(t, err)

	spec, err := Generate(tree, &schema.DatabaseSchema{})
	require.NoError(t, err)
	require.NotNil(t, spec.XAxis.Domain)
	require.NotNil(t, spec.XAxis.Domain.Low)
	require.Equal(t, 5.0, *spec.XAxis.Domain.Low)
	require.Empty(t, spec.Filters)
}

func TestGenerateReversedComparisonFilter(t *testing.T) {
	tree, err := sqltree.Parse("select * from orders where 5 < price", "Sqlite")
	require.NoError(t, err)

	spec, err := Generate(tree, &schema.DatabaseSchema{})
	require.NoError(t, err)
	require.Len(t, spec.Filters, 1)
	f := spec.Filters[0]
	require.Equal(t, "price", f.Name)
	require.Equal(t, vizspec.FilterNumeric, f.Type)
	require.NotNil(t, f.Domain)
	require.NotNil(t, f.Domain.Low)
	require.Equal(t, 5.0, *f.Domain.Low)
	require.False(t, f.Negate)
}

func TestGenerateReversedEqualityFilterKeepsFieldAsName(t *testing.T) {
	tree, err := sqltree.Parse("select * from orders where 'IT' = department", "Sqlite")
	require.NoError(t, err)

	spec, err := Generate(tree, &schema.DatabaseSchema{})
	require.NoError(t, err)
	require.Len(t, spec.Filters, 1)
	require.Equal(t, "department", spec.Filters[0].Name)
	require.Equal(t, vizspec.FilterComparison, spec.Filters[0].Type)
	require.Equal(t, []string{"IT"}, spec.Filters[0].Values)
}

func TestGenerateNonFieldComparisonFallsBackToComplexFilter(t *testing.T) {
	tree, err := sqltree.Parse("select * from orders where a + b > c + d", "Sqlite")
	require.NoError(t, err)

	spec, err := Generate(tree, &schema.DatabaseSchema{})
	require.NoError(t, err)
	require.Len(t, spec.Filters, 1)
	require.Equal(t, vizspec.FilterComplex, spec.Filters[0].Type)
}

func TestGenerateArithmeticGroupByFallsBackToNormalizedExpression(t *testing.T) {
	tree, err := sqltree.Parse("select a+b, count(*) from t group by a+b", "Sqlite")
	require.NoError(t, err)

	spec, err := Generate(tree, &schema.DatabaseSchema{})
	require.NoError(t, err)
	require.NotNil(t, spec.XAxis)
	require.True(t, spec.XAxis.Unparsed)
	require.NotContains(t, spec.XAxis.Name, "{")
	require.NotContains(t, spec.XAxis.Name, "0x")
}
