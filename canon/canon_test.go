package canon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeQueryUnifiesQuoting(t *testing.T) {
	got := SanitizeQuery(`select "a"."b" from t where name = 'O"Brien'`)
	require.Equal(t, "select `a`.`b` from t where name = 'O\"Brien'", got)
}

func TestSanitizeQueryCollapsesWhitespace(t *testing.T) {
	got := SanitizeQuery("select   a\nfrom   t")
	require.Equal(t, "select a from t", got)
}

func TestNormalizeQueryStripsBackticksAndRedundantAsc(t *testing.T) {
	got := NormalizeQuery("SELECT `a` FROM `t` ORDER BY `a` ASC")
	require.Equal(t, "select a from t order by a", got)
}

func TestNormalizeQueryLowersAggregateFunctions(t *testing.T) {
	got := NormalizeQuery("SELECT COUNT(*), SUM(x) FROM t")
	require.Contains(t, got, "count(*)")
	require.Contains(t, got, "sum(x)")
}

func TestSqlEqualsIgnoresQuotingAndCase(t *testing.T) {
	a := `SELECT "a" FROM t ORDER BY a ASC`
	b := "select `a` from t order by a"
	require.True(t, SqlEquals(a, b))
}

func TestSqlEqualsDetectsRealDifference(t *testing.T) {
	require.False(t, SqlEquals("select a from t", "select b from t"))
}
