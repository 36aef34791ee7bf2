package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Answer is a single response value: a scalar string, or a list for multi-select fields.
type Answer struct {
	values []string
	list   bool
}

func Scalar(v string) Answer { return Answer{values: []string{v}} }

func List(vs ...string) Answer {
	out := make([]string, len(vs))
	copy(out, vs)
	return Answer{values: out, list: true}
}

func (a Answer) IsList() bool { return a.list }

// Text returns the scalar value, or "" for lists.
func (a Answer) Text() string {
	if a.list || len(a.values) == 0 {
		return ""
	}
	return a.values[0]
}

// Items returns the list values. A scalar answer yields a one element slice.
func (a Answer) Items() []string {
	out := make([]string, len(a.values))
	copy(out, a.values)
	return out
}

func (a Answer) IsEmpty() bool {
	if a.list {
		return len(a.values) == 0
	}
	return a.Text() == ""
}

func (a Answer) Equal(b Answer) bool {
	if a.list != b.list || len(a.values) != len(b.values) {
		return false
	}
	for i := range a.values {
		if a.values[i] != b.values[i] {
			return false
		}
	}
	return true
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.list {
		if a.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.values)
	}
	return json.Marshal(a.Text())
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = Scalar("")
	case data[0] == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		vs := make([]string, 0, len(raw))
		for _, r := range raw {
			s, err := scalarString(r)
			if err != nil {
				return err
			}
			vs = append(vs, s)
		}
		*a = List(vs...)
	default:
		s, err := scalarString(data)
		if err != nil {
			return err
		}
		*a = Scalar(s)
	}
	return nil
}

// scalarString accepts JSON strings, numbers and booleans.
func scalarString(data json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return strconv.FormatBool(b), nil
	}
	return "", fmt.Errorf("unsupported answer value %s", string(data))
}

// Responses maps field codes to answers.
type Responses map[string]Answer

func (r Responses) Clone() Responses {
	out := make(Responses, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
