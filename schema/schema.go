// Package schema describes the database a SqlTree/VizSpec is interpreted
// against: tables, columns, foreign keys, and the target SQL dialect.
// Grounded on _examples/original_source/deepdive/schema.py.
package schema

import (
	"github.com/vizql/sqlviz/term"
)

// ColumnType is the declared type of a column.
type ColumnType string

const (
	ColumnID      ColumnType = "id"
	ColumnText    ColumnType = "text"
	ColumnInt     ColumnType = "int"
	ColumnFloat   ColumnType = "float"
	ColumnBoolean ColumnType = "boolean"
	ColumnDate    ColumnType = "date"
	ColumnTime    ColumnType = "time"
	ColumnRecord  ColumnType = "record"
)

// ColumnSchema describes one column.
type ColumnSchema struct {
	Name string     `yaml:"name"`
	Type ColumnType `yaml:"type"`
}

// ForeignKey links a table.column pair to another table.column pair.
// Both sides are dotted "table.column" paths. Lookups treat the pair as
// bidirectional.
type ForeignKey struct {
	Primary   string `yaml:"primary"`
	Reference string `yaml:"reference"`
}

// TableSchema describes one table and its columns.
type TableSchema struct {
	Name    string         `yaml:"name"`
	Columns []ColumnSchema `yaml:"columns"`
}

// GetColumn returns the column named name, or nil if absent.
func (t *TableSchema) GetColumn(name string) *ColumnSchema {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Dialect is the SQL variant a DatabaseSchema targets. It reuses term's
// Dialect type so rendering never has to translate between two enums.
type Dialect = term.Dialect

const (
	Sqlite    = term.Sqlite
	Snowflake = term.Snowflake
	MySQL     = term.MySQL
	GoogleSQL = term.GoogleSQL
)

// DatabaseSchema is the full schema a SqlTree/VizSpec is resolved against.
type DatabaseSchema struct {
	Tables      []TableSchema `yaml:"tables"`
	PrimaryKeys []string      `yaml:"primary_keys"`
	ForeignKeys []ForeignKey  `yaml:"foreign_keys"`
	Dialect     Dialect       `yaml:"dialect"`
}

// GetTable returns the table named name, or nil if absent.
func (s *DatabaseSchema) GetTable(name string) *TableSchema {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// FindTableForColumn returns the name of the first table owning a column
// named column, or "" if none does. Grounded on
// viz/processor/tables_processor.py's TablesProcessor._find_table.
func (s *DatabaseSchema) FindTableForColumn(column string) string {
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			if c.Name == column {
				return t.Name
			}
		}
	}
	return ""
}

// joinClauseKey is one endpoint of a resolved foreign key.
type joinClauseKey struct {
	table string
	other string
}

// JoinClauses builds the bidirectional table-pair-to-join-criterion map
// used for greedy join resolution (compiler step 7). For each declared
// foreign key, both directions are recorded; the first foreign key
// declared for a given (table, other) pair wins, matching
// BaseCompiler._construct_join_clauses's "first match wins" behavior
// (multiple join paths between the same pair of tables are not
// supported).
func (s *DatabaseSchema) JoinClauses() map[joinClauseKey]ForeignKey {
	out := make(map[joinClauseKey]ForeignKey)
	for _, fk := range s.ForeignKeys {
		pTable, _ := splitTableColumn(fk.Primary)
		rTable, _ := splitTableColumn(fk.Reference)
		if pTable == "" || rTable == "" {
			continue
		}
		kf := joinClauseKey{table: pTable, other: rTable}
		if _, ok := out[kf]; !ok {
			out[kf] = fk
		}
		kr := joinClauseKey{table: rTable, other: pTable}
		if _, ok := out[kr]; !ok {
			out[kr] = fk
		}
	}
	return out
}

// JoinClauseBetween returns the ForeignKey joining table and other, and
// whether one was found.
func (s *DatabaseSchema) JoinClauseBetween(table, other string) (ForeignKey, bool) {
	fk, ok := s.JoinClauses()[joinClauseKey{table: table, other: other}]
	return fk, ok
}

func splitTableColumn(path string) (table, column string) {
	idx := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}
