// Package assessment defines the raw health-assessment input, its field
// registry with clinically plausible bounds, and validation into an
// immutable typed form the feature engineer can consume.
package assessment

// Raw is an untyped assessment as decoded from a request body: a
// mapping of field names to values. Unknown fields are ignored.
type Raw map[string]any

// FieldKind distinguishes how a field is validated and encoded.
type FieldKind int

// Field kinds.
const (
	KindNumeric FieldKind = iota
	KindCategorical
	KindFlag
)

// FieldSpec declares one assessment field: its kind, whether it is
// required, plausible bounds for numerics, the fixed vocabulary for
// categoricals, and the imputation median for optional numerics. The
// registry is part of feature schema v1.
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Required bool

	// Numeric bounds (inclusive) and imputation value.
	Min, Max float64
	Median   float64

	// Categorical vocabulary in ordinal order, and the ordinal used for
	// values outside the vocabulary.
	Vocab     []string
	OtherCode int

	// Default ordinal when an optional categorical is absent.
	DefaultCode int
}

// Fields is the v1 field registry in canonical order. Bounds follow the
// clinical plausibility ranges of the intake forms; categorical
// vocabularies are fixed and unseen values map to the other bucket.
var Fields = []FieldSpec{
	{Name: "age", Kind: KindNumeric, Required: true, Min: 18, Max: 120},
	{Name: "gender", Kind: KindCategorical, Required: true, Vocab: []string{"male", "female", "other"}, OtherCode: 2},
	{Name: "systolic_bp", Kind: KindNumeric, Required: true, Min: 60, Max: 260},
	{Name: "diastolic_bp", Kind: KindNumeric, Required: true, Min: 30, Max: 180},
	{Name: "fasting_glucose", Kind: KindNumeric, Required: true, Min: 40, Max: 600},
	{Name: "total_cholesterol", Kind: KindNumeric, Required: true, Min: 80, Max: 500},

	{Name: "height_cm", Kind: KindNumeric, Min: 100, Max: 250, Median: 168},
	{Name: "weight_kg", Kind: KindNumeric, Min: 30, Max: 300, Median: 72},
	{Name: "heart_rate", Kind: KindNumeric, Min: 30, Max: 220, Median: 72},
	{Name: "temperature_c", Kind: KindNumeric, Min: 33, Max: 43, Median: 36.8},
	{Name: "hdl_cholesterol", Kind: KindNumeric, Min: 10, Max: 150, Median: 50},
	{Name: "ldl_cholesterol", Kind: KindNumeric, Min: 30, Max: 400, Median: 115},
	{Name: "triglycerides", Kind: KindNumeric, Min: 30, Max: 1000, Median: 130},
	{Name: "hba1c", Kind: KindNumeric, Min: 3, Max: 20, Median: 5.5},
	{Name: "creatinine", Kind: KindNumeric, Min: 0.2, Max: 15, Median: 0.9},
	{Name: "hemoglobin", Kind: KindNumeric, Min: 5, Max: 25, Median: 14},
	{Name: "stress_level", Kind: KindNumeric, Min: 0, Max: 10, Median: 4},
	{Name: "sleep_hours", Kind: KindNumeric, Min: 0, Max: 24, Median: 7},

	{Name: "smoking_status", Kind: KindCategorical, Vocab: []string{"never", "former", "current"}, OtherCode: 3},
	{Name: "alcohol_consumption", Kind: KindCategorical, Vocab: []string{"never", "occasional", "moderate", "heavy"}, OtherCode: 4},
	{Name: "exercise_level", Kind: KindCategorical, Vocab: []string{"sedentary", "light", "moderate", "vigorous"}, OtherCode: 4},
	{Name: "family_history", Kind: KindCategorical, Vocab: []string{"none", "heart_disease", "diabetes", "cancer", "stroke", "multiple"}, OtherCode: 6},

	{Name: "chest_pain", Kind: KindFlag},
	{Name: "shortness_of_breath", Kind: KindFlag},
	{Name: "fatigue", Kind: KindFlag},
	{Name: "frequent_urination", Kind: KindFlag},
	{Name: "excessive_thirst", Kind: KindFlag},
	{Name: "unexplained_weight_loss", Kind: KindFlag},
	{Name: "blurred_vision", Kind: KindFlag},
	{Name: "dizziness", Kind: KindFlag},
	{Name: "palpitations", Kind: KindFlag},
}

// fieldByName is an index over Fields.
var fieldByName = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

// Lookup returns the spec for a registry field.
func Lookup(name string) (FieldSpec, bool) {
	f, ok := fieldByName[name]
	return f, ok
}

// nonFlagTotal is the completeness denominator: every registry field
// except flags, since an absent flag means false rather than imputed.
var nonFlagTotal = func() int {
	n := 0
	for _, f := range Fields {
		if f.Kind != KindFlag {
			n++
		}
	}
	return n
}()

// Assessment is a validated, immutable assessment. Construct only via
// Validate.
type Assessment struct {
	numeric     map[string]float64
	categorical map[string]string
	flags       map[string]bool
	missing     map[string]bool
}

// Numeric returns a numeric field value and whether it was present in
// the input (as opposed to pending imputation).
func (a *Assessment) Numeric(name string) (float64, bool) {
	v, ok := a.numeric[name]
	return v, ok
}

// Category returns a categorical field value and whether it was present.
func (a *Assessment) Category(name string) (string, bool) {
	v, ok := a.categorical[name]
	return v, ok
}

// Flag returns a symptom flag; absent flags are false.
func (a *Assessment) Flag(name string) bool {
	return a.flags[name]
}

// Missing reports whether an optional field was absent from the input.
func (a *Assessment) Missing(name string) bool {
	return a.missing[name]
}

// MissingCount is the number of optional non-flag fields absent from
// the input.
func (a *Assessment) MissingCount() int {
	return len(a.missing)
}

// Completeness is the fraction of registry fields (excluding flags)
// that were present in the input, in [0,1].
func (a *Assessment) Completeness() float64 {
	return float64(nonFlagTotal-len(a.missing)) / float64(nonFlagTotal)
}
