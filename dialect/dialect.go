// Package dialect is the C10 dialect registry: it ties parsing,
// generation, compilation and serialization to a single dialect tag, the
// way compiler_helper.py's get_compiler and the sibling
// get_generator/get_serializer functions do for the Python original.
// Every dispatch here falls back to Sqlite for an unrecognized or empty
// dialect, matching that original's default-branch behavior.
package dialect

import (
	"github.com/vizql/sqlviz/compiler"
	"github.com/vizql/sqlviz/generator"
	"github.com/vizql/sqlviz/schema"
	"github.com/vizql/sqlviz/serialize"
	"github.com/vizql/sqlviz/sqltree"
	"github.com/vizql/sqlviz/term"
	"github.com/vizql/sqlviz/vizspec"
)

// Supported lists the dialect tags the registry recognizes.
var Supported = []term.Dialect{term.Sqlite, term.Snowflake, term.MySQL, term.GoogleSQL}

// Normalize maps d to one of Supported, defaulting unrecognized or empty
// tags to term.Sqlite.
func Normalize(d term.Dialect) term.Dialect {
	for _, s := range Supported {
		if d == s {
			return d
		}
	}
	return term.Sqlite
}

// Interpreter bundles the full pipeline — parse, generate, compile,
// serialize — for one dialect and schema, so callers don't have to
// thread a dialect tag through every call themselves.
type Interpreter struct {
	DB      *schema.DatabaseSchema
	Dialect term.Dialect
	compile *compiler.Compiler
}

// New builds an Interpreter for db, normalizing db.Dialect via Normalize.
func New(db *schema.DatabaseSchema) *Interpreter {
	d := Normalize(db.Dialect)
	schemaCopy := *db
	schemaCopy.Dialect = d
	return &Interpreter{DB: &schemaCopy, Dialect: d, compile: compiler.New(&schemaCopy)}
}

// Parse parses sql under this interpreter's dialect.
func (in *Interpreter) Parse(sql string) (*sqltree.SqlTree, error) {
	return sqltree.Parse(sql, in.Dialect)
}

// Generate lowers tree into a VizSpec against this interpreter's schema.
func (in *Interpreter) Generate(tree *sqltree.SqlTree) (*vizspec.VizSpec, error) {
	return generator.Generate(tree, in.DB)
}

// Compile lowers spec into a SqlTree for this interpreter's dialect.
func (in *Interpreter) Compile(spec *vizspec.VizSpec) *sqltree.SqlTree {
	return in.compile.Compile(spec)
}

// Render serializes tree back into a SQL string.
func (in *Interpreter) Render(tree *sqltree.SqlTree) string {
	return serialize.String(tree)
}

// Interpret is the read direction of the round trip: sql -> VizSpec.
func (in *Interpreter) Interpret(sql string) (*vizspec.VizSpec, error) {
	tree, err := in.Parse(sql)
	if err != nil {
		return nil, err
	}
	return in.Generate(tree)
}

// Emit is the write direction of the round trip: VizSpec -> sql.
func (in *Interpreter) Emit(spec *vizspec.VizSpec) string {
	return in.Render(in.Compile(spec))
}
