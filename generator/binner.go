package generator

import (
	"strings"

	"github.com/vizql/sqlviz/term"
	"github.com/vizql/sqlviz/vizspec"
)

// binnerClassifier recognizes a dialect's function-typed group-by forms
// and maps them to a (column name, Binner) pair.
type binnerClassifier interface {
	classify(ctx term.RenderCtx, t term.Term) (name string, binner *vizspec.Binner, ok bool)
}

func dialectBinner(d term.Dialect) binnerClassifier {
	switch d {
	case term.GoogleSQL:
		return bigqueryBinner{}
	case term.Snowflake:
		return snowflakeBinner{}
	default:
		return sqliteBinner{}
	}
}

// --- SQLite ------------------------------------------------------------

type sqliteBinner struct{}

var sqliteFormatToUnit = map[string]vizspec.TimeUnit{
	"%Y-%m-%d %H:%M:%S": vizspec.Second,
	"%Y-%m-%d %H:%M":    vizspec.Minute,
	"%Y-%m-%d %H":       vizspec.Hour,
	"%Y-%m-%d":          vizspec.Day,
	"%Y-%m":             vizspec.Month,
	"%Y":                vizspec.Year,
}

func (sqliteBinner) classify(ctx term.RenderCtx, t term.Term) (string, *vizspec.Binner, bool) {
	fn, ok := t.(term.Function)
	if !ok {
		return "", nil, false
	}
	switch strings.ToLower(fn.Name) {
	case "strftime":
		if len(fn.Args) < 2 {
			return "", nil, false
		}
		lit, ok := fn.Args[0].(term.Literal)
		if !ok {
			return "", nil, false
		}
		name := termName(ctx, fn.Args[1])
		if lit.Value == "%Y-%m-%d" && len(fn.Args) >= 4 {
			if a2, ok := fn.Args[2].(term.Literal); ok && strings.Contains(a2.Value, "weekday") {
				return name, &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: vizspec.Week}, true
			}
		}
		if unit, ok := sqliteFormatToUnit[lit.Value]; ok {
			return name, &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: unit}, true
		}
		return "", nil, false
	case "date":
		if len(fn.Args) != 1 {
			return "", nil, false
		}
		return termName(ctx, fn.Args[0]), &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: vizspec.Day}, true
	}
	return "", nil, false
}

// --- BigQuery / GoogleSQL ------------------------------------------------

type bigqueryBinner struct{}

func (bigqueryBinner) classify(ctx term.RenderCtx, t term.Term) (string, *vizspec.Binner, bool) {
	if ex, ok := t.(term.Extract); ok {
		name := termName(ctx, ex.Expr)
		switch strings.ToUpper(ex.Unit) {
		case "MONTH":
			return name, &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: vizspec.MonthOfYear}, true
		case "DAY":
			return name, &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: vizspec.DayOfMonth}, true
		case "WEEK":
			return name, &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: vizspec.WeekOfYear}, true
		case "HOUR":
			return name, &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: vizspec.HourOfDay}, true
		}
		return "", nil, false
	}

	fn, ok := t.(term.Function)
	if !ok {
		return "", nil, false
	}
	switch strings.ToUpper(fn.Name) {
	case "FORMAT_DATE":
		if len(fn.Args) != 2 {
			return "", nil, false
		}
		lit, ok := fn.Args[0].(term.Literal)
		if !ok {
			return "", nil, false
		}
		name := termName(ctx, fn.Args[1])
		if unit, ok := sqliteFormatToUnit[lit.Value]; ok {
			return name, &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: unit}, true
		}
		return "", nil, false
	case "DATE_TRUNC":
		if len(fn.Args) != 2 {
			return "", nil, false
		}
		name := termName(ctx, fn.Args[0])
		unit := unitLiteral(fn.Args[1])
		if unit == "" {
			return "", nil, false
		}
		return name, &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: vizspec.TimeUnit(strings.ToLower(unit))}, true
	}
	return "", nil, false
}

// --- Snowflake ------------------------------------------------------------

type snowflakeBinner struct{}

func (snowflakeBinner) classify(ctx term.RenderCtx, t term.Term) (string, *vizspec.Binner, bool) {
	fn, ok := t.(term.Function)
	if !ok {
		return "", nil, false
	}
	switch strings.ToUpper(fn.Name) {
	case "DATE_TRUNC":
		if len(fn.Args) != 2 {
			return "", nil, false
		}
		unit := unitLiteral(fn.Args[0])
		name := ""
		if unit != "" {
			name = termName(ctx, fn.Args[1])
		} else {
			unit = unitLiteral(fn.Args[1])
			name = termName(ctx, fn.Args[0])
		}
		if unit == "" {
			return "", nil, false
		}
		return name, &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: vizspec.TimeUnit(strings.ToLower(unit))}, true
	case "YEAR":
		if len(fn.Args) != 1 {
			return "", nil, false
		}
		return termName(ctx, fn.Args[0]), &vizspec.Binner{Type: vizspec.BinnerDatetime, TimeUnit: vizspec.Year}, true
	}
	return "", nil, false
}

// unitLiteral extracts a bare identifier or string-literal unit name
// (DATE_TRUNC's second argument renders as an unquoted keyword in real
// SQL, which our expression grammar accepts as either a field/identifier
// or a string literal).
func unitLiteral(t term.Term) string {
	switch v := t.(type) {
	case term.Literal:
		return v.Value
	case term.Field:
		if !strings.Contains(v.Path, ".") {
			return v.Path
		}
	case term.Unparsed:
		return strings.TrimSpace(v.Raw)
	}
	return ""
}
