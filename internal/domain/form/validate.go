package form

import (
	"sort"
	"time"

	"github.com/linskybing/survey-platform/pkg/errs"
)

// SortFields orders fields for display: by order, ties broken by insertion (id).
func SortFields(fields []FormField) {
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].Order != fields[j].Order {
			return fields[i].Order < fields[j].Order
		}
		return fields[i].ID < fields[j].ID
	})
}

// ValidateResponses normalizes and validates a complete response set against fields.
// With partial set (drafts), missing required values are allowed. Empty answers are
// dropped from the result. Violations are reported in field display order, followed by
// unknown keys in lexical order.
func ValidateResponses(fields []FormField, raw Responses, partial bool, now time.Time) (Responses, error) {
	ordered := make([]FormField, len(fields))
	copy(ordered, fields)
	SortFields(ordered)

	out := make(Responses, len(raw))
	var violations []errs.Violation
	for i := range ordered {
		f := &ordered[i]
		v, present := raw[f.FieldCode]
		if present {
			v = Normalize(f, v)
		}
		if !present || v.IsEmpty() {
			if f.IsRequired && !partial {
				violations = append(violations, errs.Violation{FieldCode: f.FieldCode, Rule: RuleRequired, Message: "is required"})
			}
			continue
		}
		if viol := Check(f, v, now); viol != nil {
			violations = append(violations, *viol)
			continue
		}
		out[f.FieldCode] = v
	}
	violations = append(violations, unknownKeys(ordered, raw)...)
	if err := errs.Violations(violations); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateChanges validates only the keys present in changes and merges them into current.
// An empty answer removes the key, which fails for required fields unless partial.
func ValidateChanges(fields []FormField, current, changes Responses, partial bool, now time.Time) (Responses, error) {
	ordered := make([]FormField, len(fields))
	copy(ordered, fields)
	SortFields(ordered)

	merged := current.Clone()
	var violations []errs.Violation
	for i := range ordered {
		f := &ordered[i]
		v, changed := changes[f.FieldCode]
		if !changed {
			continue
		}
		v = Normalize(f, v)
		if v.IsEmpty() {
			if f.IsRequired && !partial {
				violations = append(violations, errs.Violation{FieldCode: f.FieldCode, Rule: RuleRequired, Message: "is required"})
				continue
			}
			delete(merged, f.FieldCode)
			continue
		}
		if viol := Check(f, v, now); viol != nil {
			violations = append(violations, *viol)
			continue
		}
		merged[f.FieldCode] = v
	}
	violations = append(violations, unknownKeys(ordered, changes)...)
	if err := errs.Violations(violations); err != nil {
		return nil, err
	}
	return merged, nil
}

// MissingRequired lists required fields without a value in responses.
func MissingRequired(fields []FormField, responses Responses) []errs.Violation {
	ordered := make([]FormField, len(fields))
	copy(ordered, fields)
	SortFields(ordered)

	var out []errs.Violation
	for _, f := range ordered {
		if !f.IsRequired {
			continue
		}
		if v, ok := responses[f.FieldCode]; !ok || v.IsEmpty() {
			out = append(out, errs.Violation{FieldCode: f.FieldCode, Rule: RuleRequired, Message: "is required"})
		}
	}
	return out
}

func unknownKeys(fields []FormField, raw Responses) []errs.Violation {
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.FieldCode] = true
	}
	var keys []string
	for k := range raw {
		if !known[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]errs.Violation, 0, len(keys))
	for _, k := range keys {
		out = append(out, errs.Violation{FieldCode: k, Rule: RuleUnknown, Message: "is not a field of this form"})
	}
	return out
}
