// Package feature turns a validated assessment into the fixed-order
// normalized vector the risk model consumes. Vector length and column
// order are pinned by a versioned schema; the model negotiates against
// the schema version at load time, never per request.
package feature

// Version identifies the current feature schema. A model artifact built
// against a different version is rejected at load time.
const Version = "v1"

// Stat holds the population mean and standard deviation used for
// z-scoring one column.
type Stat struct {
	Mean float64
	Std  float64
}

// Schema pins the column layout of the feature vector: z-scored base
// numerics, z-scored derived composites, ordinal categorical codes,
// symptom flags, then missingness indicators for the optional numerics.
type Schema struct {
	Version     string
	Numeric     []string
	Derived     []string
	Categorical []string
	Flags       []string
	Indicators  []string
	Stats       map[string]Stat
}

// V1 returns the v1 schema. The population statistics are fixed
// constants shipped with the schema, not derived from request data.
func V1() *Schema {
	return &Schema{
		Version: Version,
		Numeric: []string{
			"age", "systolic_bp", "diastolic_bp", "fasting_glucose", "total_cholesterol",
			"height_cm", "weight_kg", "heart_rate", "temperature_c",
			"hdl_cholesterol", "ldl_cholesterol", "triglycerides", "hba1c",
			"creatinine", "hemoglobin", "stress_level", "sleep_hours",
		},
		Derived: []string{
			"bmi", "pulse_pressure", "mean_arterial_pressure",
			"cholesterol_ratio", "non_hdl_cholesterol",
		},
		Categorical: []string{
			"gender", "smoking_status", "alcohol_consumption", "exercise_level", "family_history",
		},
		Flags: []string{
			"chest_pain", "shortness_of_breath", "fatigue", "frequent_urination",
			"excessive_thirst", "unexplained_weight_loss", "blurred_vision",
			"dizziness", "palpitations",
		},
		Indicators: []string{
			"height_cm", "weight_kg", "heart_rate", "temperature_c",
			"hdl_cholesterol", "ldl_cholesterol", "triglycerides", "hba1c",
			"creatinine", "hemoglobin", "stress_level", "sleep_hours",
		},
		Stats: map[string]Stat{
			"age":                    {Mean: 52, Std: 16},
			"systolic_bp":            {Mean: 128, Std: 18},
			"diastolic_bp":           {Mean: 80, Std: 11},
			"fasting_glucose":        {Mean: 102, Std: 28},
			"total_cholesterol":      {Mean: 195, Std: 38},
			"height_cm":              {Mean: 168, Std: 10},
			"weight_kg":              {Mean: 75, Std: 16},
			"heart_rate":             {Mean: 74, Std: 12},
			"temperature_c":          {Mean: 36.8, Std: 0.4},
			"hdl_cholesterol":        {Mean: 52, Std: 14},
			"ldl_cholesterol":        {Mean: 116, Std: 33},
			"triglycerides":          {Mean: 140, Std: 70},
			"hba1c":                  {Mean: 5.6, Std: 0.9},
			"creatinine":             {Mean: 0.95, Std: 0.3},
			"hemoglobin":             {Mean: 14.2, Std: 1.6},
			"stress_level":           {Mean: 4.5, Std: 2.5},
			"sleep_hours":            {Mean: 7, Std: 1.3},
			"bmi":                    {Mean: 26.5, Std: 5},
			"pulse_pressure":         {Mean: 48, Std: 12},
			"mean_arterial_pressure": {Mean: 96, Std: 12},
			"cholesterol_ratio":      {Mean: 3.9, Std: 1.2},
			"non_hdl_cholesterol":    {Mean: 143, Std: 38},
		},
	}
}

// Size is the vector length for this schema.
func (s *Schema) Size() int {
	return len(s.Numeric) + len(s.Derived) + len(s.Categorical) + len(s.Flags) + len(s.Indicators)
}

// Columns returns all column names in vector order.
func (s *Schema) Columns() []string {
	cols := make([]string, 0, s.Size())
	cols = append(cols, s.Numeric...)
	cols = append(cols, s.Derived...)
	cols = append(cols, s.Categorical...)
	cols = append(cols, s.Flags...)
	for _, name := range s.Indicators {
		cols = append(cols, name+"_missing")
	}
	return cols
}
