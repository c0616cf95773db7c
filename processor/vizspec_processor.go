// Package processor implements the C8 VizSpec and SqlTree processor
// pipelines. Grounded on
// _examples/original_source/deepdive/viz/processor/*.py (VizSpec side)
// and .../sql/processor/*.py (SqlTree side).
package processor

import (
	"fmt"
	"strings"

	"github.com/vizql/sqlviz/schema"
	"github.com/vizql/sqlviz/vizspec"
)

// VizSpecProcessor takes and returns a VizSpec, or nil to drop it.
type VizSpecProcessor interface {
	Process(spec *vizspec.VizSpec) *vizspec.VizSpec
}

// MultiVizSpecProcessor runs processors left to right; the first to
// return nil short-circuits the rest.
type MultiVizSpecProcessor struct {
	Processors []VizSpecProcessor
}

func (m MultiVizSpecProcessor) Process(spec *vizspec.VizSpec) *vizspec.VizSpec {
	for _, p := range m.Processors {
		spec = p.Process(spec)
		if spec == nil {
			return nil
		}
	}
	return spec
}

// NoopVizSpecProcessor passes the spec through unchanged.
type NoopVizSpecProcessor struct{}

func (NoopVizSpecProcessor) Process(spec *vizspec.VizSpec) *vizspec.VizSpec { return spec }

// AliasProcessor attaches canonical aliases to binned/aggregated/
// unparsed axes so the result set's column names are stable and do not
// echo raw SQL expressions back to callers.
type AliasProcessor struct{}

func (AliasProcessor) Process(spec *vizspec.VizSpec) *vizspec.VizSpec {
	if spec == nil {
		return nil
	}

	if spec.XAxis != nil {
		switch {
		case spec.XAxis.Unparsed && spec.XAxis.Alias == "":
			spec.XAxis.Alias = "computed_x_axis"
		case spec.XAxis.Binner != nil:
			spec.XAxis.Alias = spec.XAxis.Name + binnerSuffix(spec.XAxis.Binner)
		}
	}

	numUnparsed := 0
	for i := range spec.YAxes {
		y := &spec.YAxes[i]
		switch {
		case y.Unparsed && y.Alias == "":
			numUnparsed++
			y.Alias = fmt.Sprintf("computed_column_%d", numUnparsed)
		case y.Aggregation != "" && !y.Unparsed:
			name := y.Name
			if name == "*" {
				name = "ROWS"
			}
			y.Alias = fmt.Sprintf("%s_%s", y.Aggregation, name)
		}
	}

	return spec
}

func binnerSuffix(b *vizspec.Binner) string {
	if b.Type == vizspec.BinnerDatetime {
		return "_" + strings.ToUpper(string(b.TimeUnit))
	}
	return "_bins"
}

// TablesProcessor appends the owning table for any axis/filter column
// missing from the spec's current table list.
type TablesProcessor struct {
	DB *schema.DatabaseSchema
}

func (t TablesProcessor) Process(spec *vizspec.VizSpec) *vizspec.VizSpec {
	if spec == nil {
		return nil
	}

	tableColumns := t.tableColumns(spec.Tables)
	allColumns := append(spec.GetAllColumns(), spec.GetFilterColumns()...)
	for _, column := range allColumns {
		if tableColumns[column] {
			continue
		}
		if table := t.DB.FindTableForColumn(column); table != "" {
			spec.Tables = append(spec.Tables, table)
			tableColumns = t.tableColumns(spec.Tables)
		}
	}

	return spec
}

func (t TablesProcessor) tableColumns(tables []string) map[string]bool {
	out := map[string]bool{}
	for _, name := range tables {
		tbl := t.DB.GetTable(name)
		if tbl == nil {
			continue
		}
		for _, c := range tbl.Columns {
			out[c.Name] = true
		}
	}
	return out
}

// VizTypeProcessor guesses an appropriate viz_type for a generated spec.
type VizTypeProcessor struct {
	DB *schema.DatabaseSchema
}

func (v VizTypeProcessor) Process(spec *vizspec.VizSpec) *vizspec.VizSpec {
	if spec == nil {
		return nil
	}
	spec.VizType = v.guess(spec)
	return spec
}

func (v VizTypeProcessor) guess(spec *vizspec.VizSpec) vizspec.VizType {
	if spec.XAxis != nil {
		xType := v.xAxisColumnType(spec)
		if xType == schema.ColumnInt || xType == schema.ColumnFloat {
			if len(spec.Breakdowns) <= 1 {
				return vizspec.Line
			}
		}
	}

	if spec.XAxis == nil || len(spec.Breakdowns) >= 2 {
		return vizspec.Table
	}
	if len(spec.YAxes) > 1 && len(spec.Breakdowns) == 1 {
		return vizspec.Bar
	}
	if len(spec.YAxes) == 1 && len(spec.Breakdowns) == 1 {
		return vizspec.Bar
	}
	if len(spec.Breakdowns) == 0 {
		xType := v.xAxisColumnType(spec)
		if xType == schema.ColumnDate {
			return vizspec.Line
		}
		if spec.XAxis.Binner != nil && spec.XAxis.Binner.Type == vizspec.BinnerDatetime {
			return vizspec.Line
		}
		return vizspec.Bar
	}

	return vizspec.Table
}

func (v VizTypeProcessor) xAxisColumnType(spec *vizspec.VizSpec) schema.ColumnType {
	for _, tableName := range spec.Tables {
		tbl := v.DB.GetTable(tableName)
		if tbl == nil {
			continue
		}
		if col := tbl.GetColumn(spec.XAxis.Name); col != nil {
			return col.Type
		}
	}
	return ""
}
