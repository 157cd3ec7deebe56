package data

import (
	"sort"
	"strconv"
)

type Task string

const (
	Regression     Task = "regression"
	Classification Task = "classification"
)

// Row is one flat record of a dataset. Numbers decode as float64.
type Row map[string]any

type Dataset struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Task    Task     `json:"task"`
	Target  string   `json:"target"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Patient is one synthetic vitals reading with its risk label.
type Patient struct {
	BP   float64 `json:"bp"`
	Chol float64 `json:"chol"`
	HR   float64 `json:"hr"`
	BS   float64 `json:"bs"`
	Risk string  `json:"risk"`
}

func (p Patient) Row() Row {
	return Row{"bp": p.BP, "chol": p.Chol, "hr": p.HR, "bs": p.BS, "risk": p.Risk}
}

// Headers returns the declared column order, or the sorted keys of the first
// row when none was declared.
func (d *Dataset) Headers() []string {
	if len(d.Columns) > 0 {
		return append([]string(nil), d.Columns...)
	}
	if len(d.Rows) == 0 {
		return nil
	}
	out := make([]string, 0, len(d.Rows[0]))
	for k := range d.Rows[0] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NumericColumns lists the columns whose first-row value is a number,
// skipping exclude.
func (d *Dataset) NumericColumns(exclude string) []string {
	if len(d.Rows) == 0 {
		return nil
	}
	out := []string{}
	for _, c := range d.Headers() {
		if c == exclude {
			continue
		}
		if _, ok := AsFloat(d.Rows[0][c]); ok {
			out = append(out, c)
		}
	}
	return out
}

// Column extracts the numeric values of a column, skipping rows where it is
// missing or not a number.
func (d *Dataset) Column(name string) []float64 {
	out := make([]float64, 0, len(d.Rows))
	for _, r := range d.Rows {
		if f, ok := AsFloat(r[name]); ok {
			out = append(out, f)
		}
	}
	return out
}

func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// AsString renders a cell for categorical use.
func AsString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		if f, ok := AsFloat(x); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	}
}
