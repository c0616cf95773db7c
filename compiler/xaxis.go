package compiler

import (
	"github.com/vizql/sqlviz/term"
	"github.com/vizql/sqlviz/vizspec"
)

// timeUnitToFormatString is the inverse of generator.sqliteFormatToUnit,
// grounded on viz/helper.py's TIME_UNIT_TO_FORMAT_STRING.
var timeUnitToFormatString = map[vizspec.TimeUnit]string{
	vizspec.Second: "%Y-%m-%d %H:%M:%S",
	vizspec.Minute: "%Y-%m-%d %H:%M",
	vizspec.Hour:   "%Y-%m-%d %H",
	vizspec.Day:    "%Y-%m-%d",
	vizspec.Month:  "%Y-%m",
	vizspec.Year:   "%Y",
}

func xAxisBaseTerm(x *vizspec.XAxis) term.Term {
	if x.Unparsed {
		return term.Unparsed{Raw: x.Name}
	}
	if x.Name == "*" {
		return term.Star{}
	}
	return term.Field{Path: x.Name}
}

func withXAxisAlias(t term.Term, x *vizspec.XAxis) term.Term {
	if x.Alias != "" {
		return t.WithAlias(x.Alias)
	}
	return t
}

// --- SQLite --------------------------------------------------------------

type sqliteXAxis struct{}

func (sqliteXAxis) xAxisToTerm(x *vizspec.XAxis) term.Term {
	t := xAxisBaseTerm(x)
	if x.Binner != nil && x.Binner.Type == vizspec.BinnerDatetime {
		field := term.Field{Path: x.Name}
		if fmt, ok := timeUnitToFormatString[x.Binner.TimeUnit]; ok {
			t = term.Function{Name: "strftime", Args: []term.Term{term.NewStringLiteral(fmt), field}}
		} else if x.Binner.TimeUnit == vizspec.Week {
			t = term.Function{Name: "strftime", Args: []term.Term{
				term.NewStringLiteral("%Y-%m-%d"), field,
				term.NewStringLiteral("weekday 0"), term.NewStringLiteral("-6 days"),
			}}
		}
	}
	return withXAxisAlias(t, x)
}

// xAxisToWhere is shared by SQLite, MySQL and Snowflake: the domain
// applies directly to the alias-or-term already selected for grouping.
func defaultXAxisToWhere(x *vizspec.XAxis, termOrAlias term.Term) term.Term {
	if x.Domain == nil {
		return nil
	}
	return domainToWhere(termOrAlias, x.Domain)
}

func (sqliteXAxis) xAxisToWhere(x *vizspec.XAxis, termOrAlias term.Term) term.Term {
	return defaultXAxisToWhere(x, termOrAlias)
}

// --- BigQuery / GoogleSQL --------------------------------------------------

type bigqueryXAxis struct{}

func (bigqueryXAxis) xAxisToTerm(x *vizspec.XAxis) term.Term {
	t := xAxisBaseTerm(x)
	if x.Binner != nil && x.Binner.Type == vizspec.BinnerDatetime {
		field := term.Field{Path: x.Name}
		switch {
		case timeUnitToFormatString[x.Binner.TimeUnit] != "":
			t = term.Function{Name: "FORMAT_DATE", Args: []term.Term{term.NewStringLiteral(timeUnitToFormatString[x.Binner.TimeUnit]), field}}
		case x.Binner.TimeUnit == vizspec.Week:
			t = term.Function{Name: "DATE_TRUNC", Args: []term.Term{field, term.Unparsed{Raw: "WEEK"}}}
		case x.Binner.TimeUnit == vizspec.MonthOfYear:
			t = term.Extract{Unit: "MONTH", Expr: field}
		case x.Binner.TimeUnit == vizspec.DayOfMonth:
			t = term.Extract{Unit: "DAY", Expr: field}
		case x.Binner.TimeUnit == vizspec.WeekOfYear:
			t = term.Extract{Unit: "WEEK", Expr: field}
		case x.Binner.TimeUnit == vizspec.HourOfDay:
			t = term.Extract{Unit: "HOUR", Expr: field}
		}
	}
	return withXAxisAlias(t, x)
}

// xAxisToWhere recomputes the x-axis term with alias cleared: BigQuery's
// WHERE clause cannot reference SELECT-list aliases.
func (b bigqueryXAxis) xAxisToWhere(x *vizspec.XAxis, _ term.Term) term.Term {
	if x.Domain == nil {
		return nil
	}
	unaliased := b.xAxisToTerm(&vizspec.XAxis{Name: x.Name, Binner: x.Binner, Unparsed: x.Unparsed})
	return domainToWhere(unaliased, x.Domain)
}

// --- Snowflake --------------------------------------------------------------

var snowflakeTimeUnitToDatePart = map[vizspec.TimeUnit]string{
	vizspec.Day:        "day",
	vizspec.Week:       "week",
	vizspec.Month:      "month",
	vizspec.Year:       "year",
	vizspec.DayOfWeek:  "dayofweek",
	vizspec.Hour:       "hour",
	vizspec.Minute:     "minute",
	vizspec.Second:     "second",
}

var snowflakeTimeUnitToDateFormat = map[vizspec.TimeUnit]string{
	vizspec.HourOfDay:  "HH24",
	vizspec.DayOfMonth: "DD",
}

type snowflakeXAxis struct{}

func (snowflakeXAxis) xAxisToTerm(x *vizspec.XAxis) term.Term {
	t := xAxisBaseTerm(x)
	if x.Binner != nil && x.Binner.Type == vizspec.BinnerDatetime {
		field := term.Field{Path: x.Name}
		switch {
		case snowflakeTimeUnitToDatePart[x.Binner.TimeUnit] != "":
			t = term.Function{Name: "DATE_TRUNC", Args: []term.Term{
				term.Unparsed{Raw: snowflakeTimeUnitToDatePart[x.Binner.TimeUnit]}, field,
			}}
		case snowflakeTimeUnitToDateFormat[x.Binner.TimeUnit] != "":
			t = term.Function{Name: "TO_VARCHAR", Args: []term.Term{
				field, term.NewStringLiteral(snowflakeTimeUnitToDateFormat[x.Binner.TimeUnit]),
			}}
		case x.Binner.TimeUnit == vizspec.MonthOfYear:
			t = term.Extract{Unit: "MONTH", Expr: field}
		}
	}
	return withXAxisAlias(t, x)
}

func (snowflakeXAxis) xAxisToWhere(x *vizspec.XAxis, termOrAlias term.Term) term.Term {
	return defaultXAxisToWhere(x, termOrAlias)
}
