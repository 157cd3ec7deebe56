package domain

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Value is a single feature value as entered in a form: either a category
// label or a number.
type Value struct {
	text    string
	num     float64
	numeric bool
}

func Text(s string) Value     { return Value{text: s} }
func Number(f float64) Value  { return Value{num: f, numeric: true} }
func (v Value) IsNumber() bool { return v.numeric }

// String renders the value the way a categorical comparison sees it.
func (v Value) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.text
}

// Float returns the numeric reading of the value. Text values are parsed so
// form inputs like "130" still work against numeric rules.
func (v Value) Float() (float64, bool) {
	if v.numeric {
		return v.num, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Empty reports whether the value carries nothing a rule could match.
func (v Value) Empty() bool { return !v.numeric && strings.TrimSpace(v.text) == "" }

func (v Value) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.text)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = Value{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Number(f)
	return nil
}

// Record maps feature names to the values a user supplied for one prediction.
type Record map[string]Value

// Lookup returns the value for a feature; empty values count as absent.
func (r Record) Lookup(name string) (Value, bool) {
	v, ok := r[name]
	if !ok || v.Empty() {
		return Value{}, false
	}
	return v, true
}

// RecordFromStrings builds a record from plain form fields.
func RecordFromStrings(m map[string]string) Record {
	out := make(Record, len(m))
	for k, s := range m {
		out[k] = Text(s)
	}
	return out
}
