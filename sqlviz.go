// Package sqlviz is a bidirectional SQL <-> VizSpec interpreter: it
// parses SELECT-only SQL into a typed SqlTree, lowers that tree into a
// chart-shaped VizSpec, and compiles/serializes a VizSpec back to SQL in
// one of four dialects (SQLite, Snowflake, GoogleSQL/BigQuery, MySQL).
//
// Basic usage:
//
//	db := &schema.DatabaseSchema{Dialect: term.Sqlite, Tables: ...}
//	spec, err := sqlviz.Interpret(db, "SELECT status, COUNT(*) FROM trips GROUP BY status")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sql := sqlviz.Render(db, sqlviz.Compile(db, spec))
//
// Package facade adapted from the teacher's root sqlparser.go.
package sqlviz

import (
	"github.com/vizql/sqlviz/canon"
	"github.com/vizql/sqlviz/dialect"
	"github.com/vizql/sqlviz/generator"
	"github.com/vizql/sqlviz/processor"
	"github.com/vizql/sqlviz/schema"
	"github.com/vizql/sqlviz/serialize"
	"github.com/vizql/sqlviz/sqltree"
	"github.com/vizql/sqlviz/vizspec"
)

// Parse parses a single SELECT statement under db's dialect.
func Parse(db *schema.DatabaseSchema, sql string) (*sqltree.SqlTree, error) {
	return dialect.New(db).Parse(sql)
}

// Serialize renders tree back into a SQL string.
func Serialize(tree *sqltree.SqlTree) string {
	return serialize.String(tree)
}

// Generate lowers tree into a VizSpec against db, without repair,
// validation, or the default processor pipeline. Most callers want
// Interpret.
func Generate(db *schema.DatabaseSchema, tree *sqltree.SqlTree) (*vizspec.VizSpec, error) {
	return generator.Generate(tree, db)
}

// Compile lowers spec into a SqlTree for db's dialect, without the
// default SqlTree processor pipeline. Most callers want Render.
func Compile(db *schema.DatabaseSchema, spec *vizspec.VizSpec) *sqltree.SqlTree {
	return dialect.New(db).Compile(spec)
}

// Render serializes tree back into SQL after running the default
// SqlTree processor pipeline (LimitProcessor, FilterBadQueriesProcessor).
func Render(db *schema.DatabaseSchema, tree *sqltree.SqlTree) string {
	tree = DefaultSqlProcessors(db).Process(tree)
	if tree == nil {
		return ""
	}
	sql := serialize.String(tree)
	if db.Dialect == schema.GoogleSQL {
		sql = processor.SanitizeBigQueryProcessor{}.Process(sql)
	}
	return sql
}

// Interpret parses sql, lowers it into a VizSpec, repairs it, validates
// the repaired spec (returning a VizSpecError for anything Repair could
// not silently fix, e.g. a genuine duplicate axis name), and runs the
// default VizSpec processor pipeline (AliasProcessor, TablesProcessor,
// VizTypeProcessor). This is the read direction of the round trip.
func Interpret(db *schema.DatabaseSchema, sql string) (*vizspec.VizSpec, error) {
	tree, err := Parse(db, sql)
	if err != nil {
		return nil, err
	}
	spec, err := Generate(db, tree)
	if err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, nil
	}
	spec = vizspec.Repair(spec)
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return DefaultVizSpecProcessors(db).Process(spec), nil
}

// EmitSQL is the write direction of the round trip: it compiles spec and
// renders it to SQL under db's dialect, applying the default SqlTree
// processor pipeline.
func EmitSQL(db *schema.DatabaseSchema, spec *vizspec.VizSpec) string {
	return Render(db, Compile(db, spec))
}

// DefaultVizSpecProcessors is the processor pipeline Interpret applies
// to every generated VizSpec.
func DefaultVizSpecProcessors(db *schema.DatabaseSchema) processor.VizSpecProcessor {
	return processor.MultiVizSpecProcessor{Processors: []processor.VizSpecProcessor{
		processor.AliasProcessor{},
		processor.TablesProcessor{DB: db},
		processor.VizTypeProcessor{DB: db},
	}}
}

// DefaultSqlProcessors is the processor pipeline Render applies to every
// compiled SqlTree.
func DefaultSqlProcessors(db *schema.DatabaseSchema) processor.SqlTreeProcessor {
	return processor.MultiSqlProcessor{Processors: []processor.SqlTreeProcessor{
		processor.FilterBadQueriesProcessor{DB: db},
		processor.NewLimitProcessor(),
	}}
}

// Normalize returns a whitespace/quoting/case canonical form of query,
// suitable for equality comparison across dialects and serializer quirks.
func Normalize(query string) string {
	return canon.NormalizeQuery(query)
}

// SqlEquals reports whether a and b are the same query up to whitespace,
// quoting style and keyword case.
func SqlEquals(a, b string) bool {
	return canon.SqlEquals(a, b)
}
