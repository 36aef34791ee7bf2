package form

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/linskybing/survey-platform/pkg/errs"
)

const DateLayout = "2006-01-02"

// Rule names understood by the field kinds.
const (
	RuleMin        = "min"
	RuleMax        = "max"
	RuleMinLength  = "min_length"
	RuleMaxLength  = "max_length"
	RulePattern    = "pattern"
	RuleInteger    = "integer"
	RuleNotFuture  = "not_future"
	RuleNotPast    = "not_past"
	RuleRequired   = "required"
	RuleType       = "type"
	RuleOptions    = "options"
	RuleUnknown    = "unknown_field"
	RuleRange      = "range"
	ratingScaleMin = 1
	ratingScaleMax = 5
)

// fieldKind is the behavior of one field type: how raw input is normalized, which rules
// it accepts, and how a normalized value is checked.
type fieldKind struct {
	multiple   bool
	hasOptions bool
	rules      map[string]ruleDef
	normalize  func(raw string) string
	intrinsic  func(f *FormField, v Answer, now time.Time) *errs.Violation
}

// ruleDef validates a rule's value when a field is defined and applies it to an answer.
type ruleDef struct {
	parse func(value string) error
	check func(rule ValidationRule, v Answer, now time.Time) (bool, string)
}

var (
	emailValidator = validator.New()
	phoneStrip     = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	patternCache   sync.Map
)

var kinds map[FieldType]fieldKind

func init() {
	lengthRules := map[string]ruleDef{
		RuleMin:       {parse: parseInt, check: checkLength(true)},
		RuleMax:       {parse: parseInt, check: checkLength(false)},
		RuleMinLength: {parse: parseInt, check: checkLength(true)},
		RuleMaxLength: {parse: parseInt, check: checkLength(false)},
		RulePattern:   {parse: parsePattern, check: checkPattern},
	}
	numberRules := map[string]ruleDef{
		RuleMin:     {parse: parseFloat, check: checkNumber(true)},
		RuleMax:     {parse: parseFloat, check: checkNumber(false)},
		RuleInteger: {parse: parseAny, check: checkInteger},
	}

	kinds = map[FieldType]fieldKind{
		FieldText:     {rules: lengthRules, normalize: strings.TrimSpace, intrinsic: noIntrinsic},
		FieldTextarea: {rules: lengthRules, normalize: strings.TrimSpace, intrinsic: noIntrinsic},
		FieldNumber:   {rules: numberRules, normalize: normalizeNumber, intrinsic: numberIntrinsic},
		FieldRating:   {rules: numberRules, normalize: normalizeNumber, intrinsic: ratingIntrinsic},
		FieldDate: {
			rules: map[string]ruleDef{
				RuleMin:       {parse: parseDate, check: checkDate(true)},
				RuleMax:       {parse: parseDate, check: checkDate(false)},
				RuleNotFuture: {parse: parseAny, check: checkNotFuture},
				RuleNotPast:   {parse: parseAny, check: checkNotPast},
			},
			normalize: normalizeDate,
			intrinsic: dateIntrinsic,
		},
		FieldRadio:    {hasOptions: true, rules: map[string]ruleDef{}, normalize: strings.TrimSpace, intrinsic: optionIntrinsic},
		FieldDropdown: {hasOptions: true, rules: map[string]ruleDef{}, normalize: strings.TrimSpace, intrinsic: optionIntrinsic},
		FieldCheckbox: {
			multiple:   true,
			hasOptions: true,
			rules: map[string]ruleDef{
				RuleMin: {parse: parseInt, check: checkCount(true)},
				RuleMax: {parse: parseInt, check: checkCount(false)},
			},
			normalize: strings.TrimSpace,
			intrinsic: optionIntrinsic,
		},
		FieldEmail: {
			rules: map[string]ruleDef{
				RuleMaxLength: {parse: parseInt, check: checkLength(false)},
				RulePattern:   {parse: parsePattern, check: checkPattern},
			},
			normalize: func(raw string) string { return strings.ToLower(strings.TrimSpace(raw)) },
			intrinsic: emailIntrinsic,
		},
		FieldPhone: {
			rules: map[string]ruleDef{
				RuleMinLength: {parse: parseInt, check: checkLength(true)},
				RuleMaxLength: {parse: parseInt, check: checkLength(false)},
				RulePattern:   {parse: parsePattern, check: checkPattern},
			},
			normalize: func(raw string) string { return phoneStrip.Replace(strings.TrimSpace(raw)) },
			intrinsic: phoneIntrinsic,
		},
		FieldYesNo: {rules: map[string]ruleDef{}, normalize: normalizeYesNo, intrinsic: yesNoIntrinsic},
		FieldFile: {
			rules: map[string]ruleDef{
				RulePattern: {parse: parsePattern, check: checkPattern},
			},
			normalize: strings.TrimSpace,
			intrinsic: noIntrinsic,
		},
	}
}

func (t FieldType) Valid() bool {
	_, ok := kinds[t]
	return ok
}

// Multiple reports whether the type stores a list of values.
func (t FieldType) Multiple() bool { return kinds[t].multiple }

// HasOptions reports whether the type draws its values from the field's options.
func (t FieldType) HasOptions() bool { return kinds[t].hasOptions }

// CheckDefinition validates a field definition: type, options, and rule syntax.
func CheckDefinition(f *FormField) error {
	k, ok := kinds[f.Type]
	if !ok {
		return errs.FieldInvalid(f.FieldCode, RuleType, fmt.Sprintf("unknown field type %q", f.Type))
	}
	if k.hasOptions {
		if len(f.Options) == 0 {
			return errs.FieldInvalid(f.FieldCode, RuleOptions, "options are required for "+string(f.Type)+" fields")
		}
		seen := make(map[string]bool, len(f.Options))
		for _, o := range f.Options {
			if seen[o] {
				return errs.FieldInvalid(f.FieldCode, RuleOptions, fmt.Sprintf("duplicate option %q", o))
			}
			seen[o] = true
		}
	}
	for _, r := range f.ValidationRules {
		def, ok := k.rules[r.Name]
		if !ok {
			return errs.FieldInvalid(f.FieldCode, r.Name, fmt.Sprintf("rule %q is not supported for %s fields", r.Name, f.Type))
		}
		if err := def.parse(r.Value); err != nil {
			return errs.FieldInvalid(f.FieldCode, r.Name, fmt.Sprintf("invalid rule value %q: %v", r.Value, err))
		}
	}
	return nil
}

// Normalize canonicalizes raw input for field f. Normalization is idempotent.
func Normalize(f *FormField, raw Answer) Answer {
	k, ok := kinds[f.Type]
	if !ok {
		return raw
	}
	if !k.multiple {
		if raw.IsList() {
			items := raw.Items()
			if len(items) != 1 {
				return raw
			}
			return Scalar(k.normalize(items[0]))
		}
		return Scalar(k.normalize(raw.Text()))
	}
	items := raw.Items()
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = k.normalize(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return List(out...)
}

// Check validates an already normalized, non-empty answer. The intrinsic type check runs
// first, then each rule independently in declaration order; the first failure is returned.
func Check(f *FormField, v Answer, now time.Time) *errs.Violation {
	k, ok := kinds[f.Type]
	if !ok {
		return &errs.Violation{FieldCode: f.FieldCode, Rule: RuleType, Message: "unknown field type"}
	}
	if !k.multiple && v.IsList() {
		return &errs.Violation{FieldCode: f.FieldCode, Rule: RuleType, Message: "expects a single value"}
	}
	if viol := k.intrinsic(f, v, now); viol != nil {
		return viol
	}
	for _, r := range f.ValidationRules {
		def, ok := k.rules[r.Name]
		if !ok {
			continue
		}
		if pass, msg := def.check(r, v, now); !pass {
			return &errs.Violation{FieldCode: f.FieldCode, Rule: r.Name, Message: msg}
		}
	}
	return nil
}

func noIntrinsic(*FormField, Answer, time.Time) *errs.Violation { return nil }

func numberIntrinsic(f *FormField, v Answer, _ time.Time) *errs.Violation {
	if _, err := parseFinite(v.Text()); err != nil {
		return &errs.Violation{FieldCode: f.FieldCode, Rule: RuleType, Message: "must be a number"}
	}
	return nil
}

func ratingIntrinsic(f *FormField, v Answer, _ time.Time) *errs.Violation {
	n, err := strconv.Atoi(v.Text())
	if err != nil {
		return &errs.Violation{FieldCode: f.FieldCode, Rule: RuleType, Message: "must be a whole number"}
	}
	hasBounds := false
	for _, r := range f.ValidationRules {
		if r.Name == RuleMin || r.Name == RuleMax {
			hasBounds = true
		}
	}
	if !hasBounds && (n < ratingScaleMin || n > ratingScaleMax) {
		return &errs.Violation{FieldCode: f.FieldCode, Rule: RuleRange,
			Message: fmt.Sprintf("must be between %d and %d", ratingScaleMin, ratingScaleMax)}
	}
	return nil
}

func dateIntrinsic(f *FormField, v Answer, _ time.Time) *errs.Violation {
	if _, err := time.Parse(DateLayout, v.Text()); err != nil {
		return &errs.Violation{FieldCode: f.FieldCode, Rule: RuleType, Message: "must be a date (YYYY-MM-DD)"}
	}
	return nil
}

func optionIntrinsic(f *FormField, v Answer, _ time.Time) *errs.Violation {
	for _, item := range v.Items() {
		if !f.HasOption(item) {
			return &errs.Violation{FieldCode: f.FieldCode, Rule: RuleOptions, Message: fmt.Sprintf("%q is not an allowed option", item)}
		}
	}
	return nil
}

func emailIntrinsic(f *FormField, v Answer, _ time.Time) *errs.Violation {
	if err := emailValidator.Var(v.Text(), "email"); err != nil {
		return &errs.Violation{FieldCode: f.FieldCode, Rule: RuleType, Message: "must be a valid email address"}
	}
	return nil
}

func phoneIntrinsic(f *FormField, v Answer, _ time.Time) *errs.Violation {
	if !phonePattern.MatchString(v.Text()) {
		return &errs.Violation{FieldCode: f.FieldCode, Rule: RuleType, Message: "must be a phone number"}
	}
	return nil
}

func yesNoIntrinsic(f *FormField, v Answer, _ time.Time) *errs.Violation {
	if s := v.Text(); s != "yes" && s != "no" {
		return &errs.Violation{FieldCode: f.FieldCode, Rule: RuleType, Message: "must be yes or no"}
	}
	return nil
}

func normalizeNumber(raw string) string {
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return raw
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

var dateInputLayouts = []string{DateLayout, time.RFC3339, "2006/01/02", "02/01/2006"}

func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DateLayout)
		}
	}
	return raw
}

func normalizeYesNo(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "1":
		return "yes"
	case "no", "n", "false", "0":
		return "no"
	}
	return strings.TrimSpace(raw)
}

func parseAny(string) error { return nil }

func parseInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func parseFloat(v string) error {
	_, err := parseFinite(v)
	return err
}

// parseFinite parses a decimal number, rejecting NaN and infinities.
func parseFinite(v string) (float64, error) {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%q is not a finite number", v)
	}
	return n, nil
}

func parseDate(v string) error {
	_, err := time.Parse(DateLayout, v)
	return err
}

func parsePattern(v string) error {
	_, err := compilePattern(v)
	return err
}

func compilePattern(p string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(p); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile("^(?:" + p + ")$")
	if err != nil {
		return nil, err
	}
	patternCache.Store(p, re)
	return re, nil
}

func checkLength(lower bool) func(ValidationRule, Answer, time.Time) (bool, string) {
	return func(r ValidationRule, v Answer, _ time.Time) (bool, string) {
		limit, _ := strconv.Atoi(r.Value)
		n := utf8.RuneCountInString(v.Text())
		if lower && n < limit {
			return false, fmt.Sprintf("must be at least %d characters", limit)
		}
		if !lower && n > limit {
			return false, fmt.Sprintf("must be at most %d characters", limit)
		}
		return true, ""
	}
}

func checkNumber(lower bool) func(ValidationRule, Answer, time.Time) (bool, string) {
	return func(r ValidationRule, v Answer, _ time.Time) (bool, string) {
		limit, _ := parseFinite(r.Value)
		n, err := parseFinite(v.Text())
		if err != nil {
			return false, "must be a number"
		}
		if lower && n < limit {
			return false, "must be at least " + r.Value
		}
		if !lower && n > limit {
			return false, "must be at most " + r.Value
		}
		return true, ""
	}
}

func checkInteger(_ ValidationRule, v Answer, _ time.Time) (bool, string) {
	n, err := parseFinite(v.Text())
	if err != nil || n != math.Trunc(n) {
		return false, "must be a whole number"
	}
	return true, ""
}

func checkDate(lower bool) func(ValidationRule, Answer, time.Time) (bool, string) {
	return func(r ValidationRule, v Answer, _ time.Time) (bool, string) {
		limit, _ := time.Parse(DateLayout, r.Value)
		d, err := time.Parse(DateLayout, v.Text())
		if err != nil {
			return false, "must be a date (YYYY-MM-DD)"
		}
		if lower && d.Before(limit) {
			return false, "must be on or after " + r.Value
		}
		if !lower && d.After(limit) {
			return false, "must be on or before " + r.Value
		}
		return true, ""
	}
}

func checkNotFuture(_ ValidationRule, v Answer, now time.Time) (bool, string) {
	d, err := time.Parse(DateLayout, v.Text())
	if err != nil {
		return false, "must be a date (YYYY-MM-DD)"
	}
	if d.After(truncateDay(now)) {
		return false, "must not be in the future"
	}
	return true, ""
}

func checkNotPast(_ ValidationRule, v Answer, now time.Time) (bool, string) {
	d, err := time.Parse(DateLayout, v.Text())
	if err != nil {
		return false, "must be a date (YYYY-MM-DD)"
	}
	if d.Before(truncateDay(now)) {
		return false, "must not be in the past"
	}
	return true, ""
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func checkCount(lower bool) func(ValidationRule, Answer, time.Time) (bool, string) {
	return func(r ValidationRule, v Answer, _ time.Time) (bool, string) {
		limit, _ := strconv.Atoi(r.Value)
		n := len(v.Items())
		if lower && n < limit {
			return false, fmt.Sprintf("select at least %d options", limit)
		}
		if !lower && n > limit {
			return false, fmt.Sprintf("select at most %d options", limit)
		}
		return true, ""
	}
}

func checkPattern(r ValidationRule, v Answer, _ time.Time) (bool, string) {
	re, err := compilePattern(r.Value)
	if err != nil {
		return false, "invalid pattern"
	}
	if !re.MatchString(v.Text()) {
		return false, "does not match the required format"
	}
	return true, ""
}
