package sqlviz

import (
	"testing"

	vitess "github.com/blastrain/vitess-sqlparser/sqlparser"
	"github.com/stretchr/testify/require"

	"github.com/vizql/sqlviz/sqltree"
	"github.com/vizql/sqlviz/term"
)

// These cross-check sqltree.Parse against vitess-sqlparser on the subset
// of SELECT statements both parsers accept, the way compat_test.go
// cross-checks machparse against the same library.
var compatSelects = []struct {
	name  string
	query string
}{
	{"simple select", "select 1 from t"},
	{"select star", "select * from t"},
	{"column alias", "select a as b from t"},
	{"where equals", "select * from t where a = 1"},
	{"where and", "select * from t where a = 1 and b = 2"},
	{"where in", "select * from t where a in (1, 2, 3)"},
	{"where not in", "select * from t where a not in (1, 2, 3)"},
	{"where between", "select * from t where a between 1 and 10"},
	{"where like", "select * from t where a like '%test%'"},
	{"where is null", "select * from t where a is null"},
	{"join", "select * from t1 join t2 on t1.id = t2.id"},
	{"left join", "select * from t1 left join t2 on t1.id = t2.id"},
	{"group by", "select a, count(*) from t group by a"},
	{"group by multiple", "select a, b, count(*) from t group by a, b"},
	{"having", "select a, count(*) from t group by a having count(*) > 5"},
	{"order by desc", "select * from t order by a desc"},
	{"limit", "select * from t limit 10"},
	{"count distinct", "select count(distinct a) from t"},
	{"sum avg", "select sum(a), avg(b) from t"},
	{"not equals", "select * from t where a != b"},
	{"greater than or equal", "select * from t where a >= b"},
}

func TestVitessAcceptsWhateverSqltreeAccepts(t *testing.T) {
	for _, tt := range compatSelects {
		t.Run(tt.name, func(t *testing.T) {
			_, vitessErr := vitess.Parse(tt.query)
			require.NoError(t, vitessErr, "vitess-sqlparser rejected a query sqltree is expected to accept")

			_, err := sqltree.Parse(tt.query, term.Sqlite)
			require.NoError(t, err, "sqltree rejected a query vitess-sqlparser accepts")
		})
	}
}
