// Package vizspec implements the C5 VizSpec model: the declarative chart
// description a Generator produces and a Compiler consumes, plus its
// validator and repair step. Grounded on
// _examples/original_source/deepdive/schema.py (VizSpec, XAxis, YAxis,
// Filter, Breakdown, SortBy, Binner and their pydantic validators).
package vizspec

import "fmt"

// VizType is the kind of chart a VizSpec is rendered as.
type VizType string

const (
	Bar     VizType = "bar"
	Line    VizType = "line"
	Area    VizType = "area"
	Pie     VizType = "pie"
	Table   VizType = "table"
	Scatter VizType = "scatter"
)

// BinnerType is datetime or numeric binning.
type BinnerType string

const (
	BinnerDatetime BinnerType = "datetime"
	BinnerNumeric  BinnerType = "numeric"
)

// TimeUnit is a datetime binner granularity.
type TimeUnit string

const (
	Second          TimeUnit = "second"
	Minute          TimeUnit = "minute"
	Hour            TimeUnit = "hour"
	HourOfDay       TimeUnit = "hour_of_day"
	Day             TimeUnit = "day"
	DayOfWeek       TimeUnit = "day_of_week"
	DayOfMonth      TimeUnit = "day_of_month"
	Week            TimeUnit = "week"
	WeekOfYear      TimeUnit = "week_of_year"
	WeekOfYearLong  TimeUnit = "week_of_year_long"
	Month           TimeUnit = "month"
	MonthOfYear     TimeUnit = "month_of_year"
	Year            TimeUnit = "year"
)

// Binner buckets a datetime or numeric column.
type Binner struct {
	Type     BinnerType `json:"type"`
	TimeUnit TimeUnit   `json:"time_unit,omitempty"`
	Scale    *int       `json:"scale,omitempty"`
}

// Validate enforces binner.type=datetime => time_unit set,
// binner.type=numeric => scale set.
func (b Binner) Validate() error {
	switch b.Type {
	case BinnerDatetime:
		if b.TimeUnit == "" {
			return VizSpecError{Kind: InvalidBinner, Message: "datetime binner requires time_unit"}
		}
	case BinnerNumeric:
		if b.Scale == nil {
			return VizSpecError{Kind: InvalidBinner, Message: "numeric binner requires scale"}
		}
	}
	return nil
}

// Domain is an inclusive low/high pair; either side may be open (nil).
type Domain struct {
	Low  *float64
	High *float64
}

// XAxis is the single x-axis of a chart.
type XAxis struct {
	Name     string
	Alias    string
	Domain   *Domain
	Binner   *Binner
	Unparsed bool
}

// Aggregation is one of the recognized y-axis aggregation functions.
type Aggregation string

const (
	AggCount Aggregation = "COUNT"
	AggSum   Aggregation = "SUM"
	AggAvg   Aggregation = "AVG"
	AggMin   Aggregation = "MIN"
	AggMax   Aggregation = "MAX"
)

// YAxis is one measure column.
type YAxis struct {
	Name        string
	Alias       string
	Aggregation Aggregation // "" if none
	Unparsed    bool
}

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortBy is the single sort column (multi-column sort is not supported —
// see DESIGN.md Open Question decision 1).
type SortBy struct {
	Name      string
	Direction SortDirection
	Unparsed  bool
}

// FilterType is the compiled shape of a Filter.
type FilterType string

const (
	FilterComparison FilterType = "comparison"
	FilterNumeric    FilterType = "numeric"
	FilterLike       FilterType = "like"
	FilterComplex    FilterType = "complex"
)

// Filter is one WHERE-clause predicate.
type Filter struct {
	Name       string
	Type       FilterType
	Expression string   // for FilterComplex
	Subfilters []Filter // reserved for future composite filters; unused by the current compiler
	Domain     *Domain  // for FilterNumeric
	Values     []string // for FilterComparison / FilterLike
	Negate     bool
}

// Breakdown is one grouping/series-splitting column.
type Breakdown struct {
	Name     string
	Alias    string
	Unparsed bool
}

// ErrorKind enumerates VizSpecError kinds (spec.md §4.5).
type ErrorKind string

const (
	NoDuplicateAxes        ErrorKind = "no_duplicate_axes"
	AggregationNotSpecified ErrorKind = "aggregation_not_specified"
	SortByNotFound          ErrorKind = "sort_by_not_found"
	ExtraColumnWithStar     ErrorKind = "extra_column_with_star"
	InvalidBinner           ErrorKind = "invalid_binner"
)

// VizSpecError is a semantic validation failure.
type VizSpecError struct {
	Kind    ErrorKind
	Message string
}

func (e VizSpecError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// VizSpec is the declarative description of a chart.
type VizSpec struct {
	XAxis       *XAxis
	YAxes       []YAxis
	Breakdowns  []Breakdown
	Filters     []Filter
	Tables      []string
	Limit       *int
	SortBy      *SortBy
	VizType     VizType
}

// hasUnaggregatedStar reports whether a y-axis is the bare `*` with no
// aggregation — the one case where no other y-axis may coexist.
func (v *VizSpec) hasUnaggregatedStar() bool {
	for _, y := range v.YAxes {
		if y.Name == "*" && y.Aggregation == "" {
			return true
		}
	}
	return false
}

// GetAllColumns returns every column name referenced by axes/breakdowns
// (x-axis, y-axes, breakdowns), used by TablesProcessor and sort-by
// resolution.
func (v *VizSpec) GetAllColumns() []string {
	var cols []string
	if v.XAxis != nil {
		cols = append(cols, v.XAxis.Name)
	}
	for _, y := range v.YAxes {
		cols = append(cols, y.Name)
	}
	for _, b := range v.Breakdowns {
		cols = append(cols, b.Name)
	}
	return cols
}

// GetFilterColumns returns every column name referenced by a filter.
func (v *VizSpec) GetFilterColumns() []string {
	var cols []string
	for _, f := range v.Filters {
		cols = append(cols, f.Name)
	}
	return cols
}

func (v *VizSpec) hasStar() bool {
	if v.XAxis != nil && v.XAxis.Name == "*" {
		return true
	}
	for _, y := range v.YAxes {
		if y.Name == "*" {
			return true
		}
	}
	return false
}

// Validate enforces the VizSpec invariants from spec.md §3/§4.5:
// no duplicate axis names, star exclusivity, sort-by resolvability, and
// binner type coherence.
func (v *VizSpec) Validate() error {
	seen := map[string]bool{}
	addUnique := func(name string) error {
		if name == "" {
			return nil
		}
		if seen[name] {
			return VizSpecError{Kind: NoDuplicateAxes, Message: "duplicate column: " + name}
		}
		seen[name] = true
		return nil
	}
	if v.XAxis != nil {
		if err := addUnique(v.XAxis.Name); err != nil {
			return err
		}
		if v.XAxis.Binner != nil {
			if err := v.XAxis.Binner.Validate(); err != nil {
				return err
			}
		}
	}
	for _, y := range v.YAxes {
		if err := addUnique(y.Name); err != nil {
			return err
		}
	}
	for _, b := range v.Breakdowns {
		if err := addUnique(b.Name); err != nil {
			return err
		}
	}

	if v.hasUnaggregatedStar() && len(v.YAxes) > 1 {
		return VizSpecError{Kind: ExtraColumnWithStar, Message: "star y-axis cannot coexist with other y-axes"}
	}

	if v.SortBy != nil && !v.SortBy.Unparsed && !v.hasStar() {
		found := false
		for _, c := range v.GetAllColumns() {
			if c == v.SortBy.Name {
				found = true
				break
			}
		}
		if !found {
			return VizSpecError{Kind: SortByNotFound, Message: "sort_by references unknown column: " + v.SortBy.Name}
		}
	}

	return nil
}

// Repair performs the structural corrections applied outside the
// validator (spec.md §4.5): dropping extra y-axes when an unaggregated
// star is present, dropping an unresolvable sort_by, and inferring a
// COUNT(*) y-axis when an x-axis exists with no y-axes.
func Repair(v *VizSpec) *VizSpec {
	if v.hasUnaggregatedStar() {
		for _, y := range v.YAxes {
			if y.Name == "*" && y.Aggregation == "" {
				v.YAxes = []YAxis{y}
				break
			}
		}
	}

	if v.SortBy != nil && !v.SortBy.Unparsed && !v.hasStar() {
		found := false
		for _, c := range v.GetAllColumns() {
			if c == v.SortBy.Name {
				found = true
				break
			}
		}
		if !found {
			v.SortBy = nil
		}
	}

	if v.XAxis != nil && len(v.YAxes) == 0 {
		v.YAxes = []YAxis{{Name: "*", Aggregation: AggCount}}
	}

	return v
}
