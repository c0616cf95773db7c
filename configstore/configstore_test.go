package configstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vizql/sqlviz/schema"
)

const sampleYAML = `
dialect: Sqlite
tables:
  - name: orders
    columns:
      - name: o_custkey
        type: id
      - name: o_totalprice
        type: float
  - name: customer
    columns:
      - name: c_custkey
        type: id
      - name: c_name
        type: text
foreign_keys:
  - primary: customer.c_custkey
    reference: orders.o_custkey
`

func TestParseStringBuildsSchema(t *testing.T) {
	db, err := ParseString(sampleYAML)
	require.NoError(t, err)
	require.Equal(t, schema.Sqlite, db.Dialect)
	require.Len(t, db.Tables, 2)
	require.NotNil(t, db.GetTable("orders"))
}

func TestParseStringEmptyReturnsEmptySchema(t *testing.T) {
	db, err := ParseString("")
	require.NoError(t, err)
	require.Empty(t, db.Tables)
}

func TestParseRejectsDuplicateTableName(t *testing.T) {
	_, err := ParseString(`
tables:
  - name: orders
    columns: []
  - name: orders
    columns: []
`)
	require.Error(t, err)
}

func TestParseRejectsForeignKeyMissingSide(t *testing.T) {
	_, err := ParseString(`
foreign_keys:
  - primary: customer.c_custkey
`)
	require.Error(t, err)
}

func TestDumpRoundTrips(t *testing.T) {
	db, err := ParseString(sampleYAML)
	require.NoError(t, err)

	buf, err := Dump(db)
	require.NoError(t, err)

	reloaded, err := Parse(buf)
	require.NoError(t, err)
	require.Equal(t, db.Tables, reloaded.Tables)
}
