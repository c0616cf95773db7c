package processor

import (
	"strings"

	"github.com/vizql/sqlviz/schema"
	"github.com/vizql/sqlviz/sqltree"
)

// SqlTreeProcessor takes and returns a SqlTree, or nil to drop it.
type SqlTreeProcessor interface {
	Process(tree *sqltree.SqlTree) *sqltree.SqlTree
}

// MultiSqlProcessor runs processors left to right; the first to return
// nil short-circuits the rest.
type MultiSqlProcessor struct {
	Processors []SqlTreeProcessor
}

func (m MultiSqlProcessor) Process(tree *sqltree.SqlTree) *sqltree.SqlTree {
	for _, p := range m.Processors {
		tree = p.Process(tree)
		if tree == nil {
			return nil
		}
	}
	return tree
}

// DefaultLimit is the limit LimitProcessor applies when a tree has none,
// matching limit_processor.py's DEFAULT_LIMIT.
const DefaultLimit = 10000

// LimitProcessor appends a LIMIT to trees that don't already have one.
type LimitProcessor struct {
	Limit int
}

// NewLimitProcessor builds a LimitProcessor using DefaultLimit.
func NewLimitProcessor() LimitProcessor { return LimitProcessor{Limit: DefaultLimit} }

func (l LimitProcessor) Process(tree *sqltree.SqlTree) *sqltree.SqlTree {
	if tree.Limit == nil {
		limit := l.Limit
		if limit == 0 {
			limit = DefaultLimit
		}
		tree.Limit = &limit
	}
	return tree
}

// FilterBadQueriesProcessor drops trees whose FROM table is absent or
// not present in the schema.
type FilterBadQueriesProcessor struct {
	DB *schema.DatabaseSchema
}

func (f FilterBadQueriesProcessor) Process(tree *sqltree.SqlTree) *sqltree.SqlTree {
	if tree.From.Name == "" {
		return nil
	}
	if f.DB.GetTable(tree.From.Name) == nil {
		return nil
	}
	return tree
}

// reservedKeywords is the SQLite keyword set reused as a superset of
// ANSI-SQL reserved words for backtick-quoting decisions, matching
// sanitize_bigquery_processor.py's documented reuse of SQLITE_KEYWORDS
// (there being no downside to over-quoting).
var reservedKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "group": true, "by": true,
	"having": true, "order": true, "limit": true, "join": true, "on": true,
	"and": true, "or": true, "not": true, "in": true, "between": true,
	"is": true, "null": true, "like": true, "as": true, "case": true,
	"when": true, "then": true, "else": true, "end": true, "distinct": true,
	"full": true, "left": true, "right": true, "inner": true, "outer": true,
	"cross": true, "union": true, "all": true, "default": true, "key": true,
	"table": true, "column": true, "index": true, "view": true, "desc": true,
	"asc": true,
}

// SanitizeBigQueryProcessor backtick-quotes table/column identifiers
// that BigQuery requires quoting for: names beginning with a digit, and
// reserved-keyword-shaped names appearing where an identifier is
// expected. A post-serialize string pass, not a SqlTreeProcessor, since
// it operates on the rendered SQL text.
type SanitizeBigQueryProcessor struct{}

// Process quotes any bare identifier token in query that either starts
// with a digit or collides with a reserved keyword, leaving string
// literals and already-backtick-quoted identifiers untouched.
func (SanitizeBigQueryProcessor) Process(query string) string {
	var b strings.Builder
	i := 0
	for i < len(query) {
		ch := query[i]
		if ch == '\'' || ch == '`' {
			end := strings.IndexByte(query[i+1:], ch)
			if end < 0 {
				b.WriteString(query[i:])
				break
			}
			b.WriteString(query[i : i+1+end+1])
			i += end + 2
			continue
		}
		if isIdentStartByte(ch) {
			j := i
			for j < len(query) && isIdentByte(query[j]) {
				j++
			}
			word := query[i:j]
			if needsBigQueryQuoting(word) {
				b.WriteByte('`')
				b.WriteString(word)
				b.WriteByte('`')
			} else {
				b.WriteString(word)
			}
			i = j
			continue
		}
		b.WriteByte(ch)
		i++
	}
	return b.String()
}

func needsBigQueryQuoting(word string) bool {
	if word == "" {
		return false
	}
	if word[0] >= '0' && word[0] <= '9' {
		// a pure digit run is a numeric literal, not a leading-digit
		// table/column name; only the latter needs quoting.
		return containsLetter(word)
	}
	return reservedKeywords[strings.ToLower(word)]
}

func containsLetter(s string) bool {
	for i := 0; i < len(s); i++ {
		if (s[i] >= 'a' && s[i] <= 'z') || (s[i] >= 'A' && s[i] <= 'Z') || s[i] == '_' {
			return true
		}
	}
	return false
}

func isIdentStartByte(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func isIdentByte(ch byte) bool {
	return isIdentStartByte(ch)
}
