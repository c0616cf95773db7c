package token

// Keywords maps the lowercased spelling of a reserved word to its token
// kind. Identifier scanning upper-cases nothing; lookups lowercase first.
var Keywords = map[string]Token{
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"in":       IN,
	"is":       IS,
	"as":       AS,
	"from":     FROM,
	"by":       BY,
	"like":     LIKE,
	"ilike":    ILIKE,
	"null":     NULL,
	"nulls":    NULLS,
	"true":     TRUE,
	"false":    FALSE,
	"distinct": DISTINCT,
	"between":  BETWEEN,
	"over":     OVER,
	"partition": PARTITION,
	"order":    ORDER,
	"asc":      ASC,
	"desc":     DESC,
	"ignore":   IGNORE,
	"case":     CASE,
	"when":     WHEN,
	"then":     THEN,
	"else":     ELSE,
	"end":      END,
	"cast":     CAST,
	"extract":  EXTRACT,
	"using":    USING,
	"parameters":             PARAMETERS,
	"percentile":             PERCENTILE,
	"approximate_percentile": APPROXIMATE_PERCENTILE,

	"select": SELECT,
	"join":   JOIN,
	"where":  WHERE,
	"group":  GROUP,
	"having": HAVING,
	"limit":  LIMIT,
	"on":     ON,

	"integer": INTEGER_TYPE,
	"float":   FLOAT_TYPE,
	"numeric": NUMERIC_TYPE,
	"char":    CHAR_TYPE,
	"varchar": VARCHAR_TYPE,
	"binary":  BINARY_TYPE,
	"long":    LONG_TYPE,
	"boolean": BOOLEAN_TYPE,
	"signed":   SIGNED_TYPE,
	"unsigned": UNSIGNED_TYPE,

	"year":        YEAR,
	"quarter":     QUARTER,
	"month":       MONTH,
	"week":        WEEK,
	"day":         DAY,
	"hour":        HOUR,
	"minute":      MINUTE,
	"second":      SECOND,
	"microsecond": MICROSECOND,
}

// TimeUnits is the set of keywords valid as an EXTRACT unit.
var TimeUnits = map[Token]bool{
	YEAR: true, QUARTER: true, MONTH: true, WEEK: true, DAY: true,
	HOUR: true, MINUTE: true, SECOND: true, MICROSECOND: true,
}

// SectionKeywords is the ordered set of clause-introducing keywords the
// statement parser (C3) splits a SELECT statement on.
var SectionKeywords = []Token{SELECT, FROM, JOIN, WHERE, GROUP, HAVING, ORDER, LIMIT}
