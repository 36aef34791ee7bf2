package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationRule is one `name:value` constraint attached to a field, e.g. min:5.
type ValidationRule struct {
	Name  string `json:"rule_name" yaml:"rule_name"`
	Value string `json:"rule_value" yaml:"rule_value"`
}

func (r ValidationRule) String() string {
	if r.Value == "" {
		return r.Name
	}
	return r.Name + ":" + r.Value
}

// RuleList is the request form of a field's rules. It also accepts the legacy encoded
// form "min:5|max:10" so rules are parsed once, at load time.
type RuleList []ValidationRule

// ParseRules decodes "name:value" pairs separated by '|' or ','.
func ParseRules(encoded string) (RuleList, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return RuleList{}, nil
	}
	sep := "|"
	if !strings.Contains(encoded, "|") {
		sep = ","
	}
	var out RuleList
	for _, part := range strings.Split(encoded, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("rule %q has no name", part)
		}
		out = append(out, ValidationRule{Name: strings.ToLower(name), Value: strings.TrimSpace(value)})
	}
	return out, nil
}

func (l *RuleList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = RuleList{}
		return nil
	}
	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		parsed, err := ParseRules(encoded)
		if err != nil {
			return err
		}
		*l = parsed
		return nil
	}
	var rules []ValidationRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return err
	}
	for i := range rules {
		rules[i].Name = strings.ToLower(strings.TrimSpace(rules[i].Name))
		rules[i].Value = strings.TrimSpace(rules[i].Value)
	}
	*l = rules
	return nil
}

// OptionList accepts either a JSON array or a newline/comma separated string.
type OptionList []string

// ParseOptions splits an encoded option string. Newlines take precedence over commas.
func ParseOptions(encoded string) []string {
	sep := ","
	if strings.Contains(encoded, "\n") {
		sep = "\n"
	}
	out := []string{}
	for _, part := range strings.Split(encoded, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (o *OptionList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = nil
		return nil
	}
	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		*o = ParseOptions(encoded)
		return nil
	}
	var opts []string
	if err := json.Unmarshal(data, &opts); err != nil {
		return err
	}
	out := make([]string, 0, len(opts))
	for _, opt := range opts {
		if opt = strings.TrimSpace(opt); opt != "" {
			out = append(out, opt)
		}
	}
	*o = out
	return nil
}
