// Package canon implements the C9 canonical-form utilities:
// SanitizeQuery and NormalizeQuery, the durable comparable form used for
// round-trip equality checks. Grounded on
// _examples/original_source/deepdive/sql/parser/util.py.
package canon

import (
	"regexp"
	"strings"
)

var singleQuoted = regexp.MustCompile(`'[^']*'`)
var doubleQuotedPair = regexp.MustCompile("\"([^`\"]+?)\"\\.\"([^`\"]+?)\"")
var doubleQuoted = regexp.MustCompile("\"([^`\"]+?)\"")
var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeQuery unifies quoting (double quotes become backticks, leaving
// string literals untouched) and collapses whitespace runs to single
// spaces.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}

	var literals []string
	placeheld := singleQuoted.ReplaceAllStringFunc(query, func(m string) string {
		literals = append(literals, m)
		return "\x00" + itoa(len(literals)-1) + "\x00"
	})

	placeheld = doubleQuotedPair.ReplaceAllString(placeheld, "`$1`.`$2`")
	placeheld = doubleQuoted.ReplaceAllString(placeheld, "`$1`")

	restored := restorePlaceholders(placeheld, literals)
	restored = whitespaceRun.ReplaceAllString(restored, " ")
	return strings.TrimSpace(restored)
}

func restorePlaceholders(s string, literals []string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == 0 {
			end := strings.IndexByte(s[i+1:], 0)
			if end >= 0 {
				idx := atoi(s[i+1 : i+1+end])
				if idx >= 0 && idx < len(literals) {
					b.WriteString(literals[idx])
				}
				i = i + 1 + end + 1
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return -1
		}
		n = n*10 + int(s[i]-'0')
	}
	return n
}

var aggregateFunctionsUpper = []string{"COUNT(", "AVG(", "MAX(", "MIN(", "SUM("}

func lowerAggregateFunctions(query string) string {
	for _, fn := range aggregateFunctionsUpper {
		query = strings.ReplaceAll(query, fn, strings.ToLower(fn))
	}
	return query
}

var keywords = []string{
	"SELECT", "FROM", "WHERE", "GROUP BY", "HAVING", "ORDER BY", "LIMIT",
	"JOIN", "ON", "AND", "OR", "NOT", "IN", "BETWEEN", "IS", "NULL",
	"LIKE", "ILIKE", "AS", "CASE", "WHEN", "THEN", "ELSE", "END", "DISTINCT",
}

func lowerKeywords(query string) string {
	for _, kw := range keywords {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		query = re.ReplaceAllString(query, strings.ToLower(kw))
	}
	return query
}

// NormalizeQuery produces the canonical comparable string: sanitize,
// strip all backticks, drop redundant " asc " markers, lowercase
// reserved words, lowercase aggregate-function names, collapse
// whitespace.
func NormalizeQuery(query string) string {
	query = strings.ReplaceAll(SanitizeQuery(query), "`", "") + " "
	query = strings.ReplaceAll(query, " asc ", " ")
	query = strings.ReplaceAll(query, " ASC ", " ")
	query = lowerKeywords(query)
	query = lowerAggregateFunctions(query)
	query = whitespaceRun.ReplaceAllString(query, " ")
	return strings.TrimSpace(query)
}

// SqlEquals reports whether a and b are equal after NormalizeQuery.
func SqlEquals(a, b string) bool {
	return NormalizeQuery(a) == NormalizeQuery(b)
}
