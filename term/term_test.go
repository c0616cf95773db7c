package term

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComparisonAlwaysSpacesOperator(t *testing.T) {
	c := Comparison{Op: Eq, Left: Field{Path: "a"}, Right: NewIntLiteral(1)}
	require.Equal(t, "a = 1", c.String(RenderCtx{Dialect: Sqlite}, false))
}

func TestArithmeticAlwaysSpacesOperator(t *testing.T) {
	a := Arithmetic{Op: Add, Left: Field{Path: "a"}, Right: Field{Path: "b"}}
	require.Equal(t, "a + b", a.String(RenderCtx{Dialect: Sqlite}, false))
}

func TestStarNeverAliased(t *testing.T) {
	s := Star{}
	require.Equal(t, "", s.Alias())
	require.Equal(t, s, s.WithAlias("x"))
	require.Equal(t, "*", s.String(RenderCtx{Dialect: Sqlite}, true))
}

func TestSnowflakeNeverQuotesAlias(t *testing.T) {
	f := Field{Path: "weird col", As: "weird alias"}
	out := f.String(RenderCtx{Dialect: Snowflake}, true)
	require.Equal(t, `"weird col" AS weird alias`, out)
}

func TestOtherDialectsQuoteAlias(t *testing.T) {
	f := Field{Path: "weird col", As: "weird alias"}
	require.Equal(t, "`weird col` AS `weird alias`", f.String(RenderCtx{Dialect: Sqlite}, true))
}

func TestAggregateCountStar(t *testing.T) {
	agg := Aggregate{Name: Count, Args: []Term{Star{}}}
	require.Equal(t, "COUNT(*)", agg.String(RenderCtx{Dialect: Sqlite}, false))
}

func TestUnparsedRendersRawVerbatim(t *testing.T) {
	u := Unparsed{Raw: "weird_fn(a, b)"}
	require.Equal(t, "weird_fn(a, b)", u.String(RenderCtx{Dialect: Sqlite}, false))
}

func TestInAndBetweenNegation(t *testing.T) {
	in := In{Term: Field{Path: "dept"}, Values: []Term{NewStringLiteral("IT"), NewStringLiteral("Sales")}, Negated: true}
	require.Equal(t, "dept NOT IN ('IT', 'Sales')", in.String(RenderCtx{Dialect: Sqlite}, false))

	between := Between{Term: Field{Path: "a"}, Low: NewIntLiteral(10), High: NewIntLiteral(20)}
	require.Equal(t, "a BETWEEN 10 AND 20", between.String(RenderCtx{Dialect: Sqlite}, false))
}

func TestEqualIgnoresAlias(t *testing.T) {
	ctx := RenderCtx{Dialect: Sqlite}
	a := Field{Path: "col", As: "x"}
	b := Field{Path: "col", As: "y"}
	require.True(t, Equal(ctx, a, b))
}

func TestCaseRendering(t *testing.T) {
	c := Case{
		Whens: []When{{Cond: Comparison{Op: Gt, Left: Field{Path: "a"}, Right: NewIntLiteral(0)}, Result: NewStringLiteral("pos")}},
		Else:  NewStringLiteral("non-pos"),
	}
	require.Equal(t, "CASE WHEN a > 0 THEN 'pos' ELSE 'non-pos' END", c.String(RenderCtx{Dialect: Sqlite}, false))
}
