package assessment

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldError is one field-attributed validation violation.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationErrors carries every violation found in one pass. The
// validator never stops at the first problem, so a caller can present
// all errors together.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Reason
	}
	return "invalid assessment: " + strings.Join(parts, "; ")
}

// Validate checks a raw assessment against the field registry and
// returns an immutable Assessment. All violations are collected and
// returned together. Fields outside the registry are ignored. The
// function is pure: it never mutates raw.
func Validate(raw Raw) (*Assessment, error) {
	a := &Assessment{
		numeric:     make(map[string]float64),
		categorical: make(map[string]string),
		flags:       make(map[string]bool),
		missing:     make(map[string]bool),
	}
	var errs ValidationErrors

	for _, f := range Fields {
		val, present := raw[f.Name]
		if !present || val == nil {
			if f.Required {
				errs = append(errs, FieldError{Field: f.Name, Reason: "required field is missing"})
			} else if f.Kind != KindFlag {
				a.missing[f.Name] = true
			}
			continue
		}

		switch f.Kind {
		case KindNumeric:
			n, err := coerceNumeric(val)
			if err != nil {
				errs = append(errs, FieldError{Field: f.Name, Reason: err.Error()})
				continue
			}
			if n < f.Min || n > f.Max {
				errs = append(errs, FieldError{
					Field:  f.Name,
					Reason: fmt.Sprintf("out of range: %v not in [%v, %v]", n, f.Min, f.Max),
				})
				continue
			}
			a.numeric[f.Name] = n

		case KindCategorical:
			s, err := coerceString(val)
			if err != nil {
				errs = append(errs, FieldError{Field: f.Name, Reason: err.Error()})
				continue
			}
			// Unseen values are accepted here and mapped to the other
			// bucket at encoding time.
			a.categorical[f.Name] = strings.ToLower(strings.TrimSpace(s))

		case KindFlag:
			b, err := coerceBool(val)
			if err != nil {
				errs = append(errs, FieldError{Field: f.Name, Reason: err.Error()})
				continue
			}
			a.flags[f.Name] = b
		}
	}

	// Cross-field check: systolic must exceed diastolic when both are in
	// range.
	sys, okS := a.numeric["systolic_bp"]
	dia, okD := a.numeric["diastolic_bp"]
	if okS && okD && sys <= dia {
		errs = append(errs, FieldError{Field: "systolic_bp", Reason: "systolic must be higher than diastolic"})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return a, nil
}

// coerceNumeric accepts numbers and numeric strings. Every branch ends
// in the same finiteness check: ParseFloat happily produces NaN and
// ±Inf, and NaN in particular slides past range comparisons.
func coerceNumeric(v any) (float64, error) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", t)
		}
		n = f
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return n, nil
}

func coerceString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", v)
	}
	return s, nil
}

// coerceBool accepts bools, the strings true/false/yes/no, and 0/1.
func coerceBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "1":
			return true, nil
		case "false", "no", "0", "":
			return false, nil
		}
		return false, fmt.Errorf("expected a boolean, got %q", b)
	case float64:
		return b != 0, nil
	case int:
		return b != 0, nil
	default:
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
}
