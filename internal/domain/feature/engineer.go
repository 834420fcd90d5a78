package feature

import (
	"fmt"

	"github.com/predictwell/riskcore/internal/domain/assessment"
)

// Engineer builds feature vectors against a fixed schema. It holds no
// mutable state; Build is safe to call concurrently.
type Engineer struct {
	schema *Schema
}

// NewEngineer creates an Engineer for the current schema version.
func NewEngineer() *Engineer {
	return &Engineer{schema: V1()}
}

// Schema returns the engineer's schema.
func (e *Engineer) Schema() *Schema {
	return e.schema
}

// Size returns the output vector length.
func (e *Engineer) Size() int {
	return e.schema.Size()
}

// Build constructs the normalized feature vector for a validated
// assessment. Missing optional numerics take their declared median and
// set the corresponding missingness indicator; derived features are
// computed after imputation so they are always defined. The transform
// is deterministic: identical input yields an identical vector.
func (e *Engineer) Build(a *assessment.Assessment) ([]float64, error) {
	s := e.schema
	vec := make([]float64, 0, s.Size())

	// Raw numeric values after imputation, keyed by field name. Derived
	// features read from this map.
	values := make(map[string]float64, len(s.Numeric))
	for _, name := range s.Numeric {
		spec, ok := assessment.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("feature: schema field %q not in registry", name)
		}
		if v, present := a.Numeric(name); present {
			values[name] = v
		} else {
			values[name] = spec.Median
		}
	}

	derived := deriveComposites(values)

	for _, name := range s.Numeric {
		vec = append(vec, zscore(values[name], s.Stats[name]))
	}
	for _, name := range s.Derived {
		vec = append(vec, zscore(derived[name], s.Stats[name]))
	}
	for _, name := range s.Categorical {
		vec = append(vec, float64(encodeCategory(a, name)))
	}
	for _, name := range s.Flags {
		if a.Flag(name) {
			vec = append(vec, 1)
		} else {
			vec = append(vec, 0)
		}
	}
	for _, name := range s.Indicators {
		if a.Missing(name) {
			vec = append(vec, 1)
		} else {
			vec = append(vec, 0)
		}
	}

	if len(vec) != s.Size() {
		return nil, fmt.Errorf("feature: built %d columns, schema %s declares %d", len(vec), s.Version, s.Size())
	}
	return vec, nil
}

// deriveComposites computes the derived features from imputed raw
// values. Formulas:
//
//	bmi                    = weight_kg / (height_m)^2
//	pulse_pressure         = systolic - diastolic
//	mean_arterial_pressure = diastolic + pulse_pressure/3
//	cholesterol_ratio      = total / hdl
//	non_hdl_cholesterol    = total - hdl
func deriveComposites(v map[string]float64) map[string]float64 {
	heightM := v["height_cm"] / 100
	pulse := v["systolic_bp"] - v["diastolic_bp"]
	return map[string]float64{
		"bmi":                    v["weight_kg"] / (heightM * heightM),
		"pulse_pressure":         pulse,
		"mean_arterial_pressure": v["diastolic_bp"] + pulse/3,
		"cholesterol_ratio":      v["total_cholesterol"] / v["hdl_cholesterol"],
		"non_hdl_cholesterol":    v["total_cholesterol"] - v["hdl_cholesterol"],
	}
}

// encodeCategory maps a categorical value to its ordinal code. Values
// outside the fixed vocabulary go to the other bucket; absent optional
// categoricals take the declared default code.
func encodeCategory(a *assessment.Assessment, name string) int {
	spec, _ := assessment.Lookup(name)
	val, present := a.Category(name)
	if !present {
		return spec.DefaultCode
	}
	for i, known := range spec.Vocab {
		if val == known {
			return i
		}
	}
	return spec.OtherCode
}

func zscore(v float64, st Stat) float64 {
	if st.Std == 0 {
		return 0
	}
	return (v - st.Mean) / st.Std
}
