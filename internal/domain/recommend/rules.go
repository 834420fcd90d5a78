package recommend

import (
	"github.com/predictwell/riskcore/internal/domain/assessment"
	"github.com/predictwell/riskcore/internal/domain/types"
)

// Rule is one row of the recommendation table. A rule fires when at
// least one of its diseases is elevated at or above MinTier and its
// input condition (if any) holds. Text is a format string; the
// condition supplies the arguments.
type Rule struct {
	ID       string
	Category types.Category
	Text     string

	// Diseases this recommendation mitigates. Priority scales with how
	// many of them are elevated.
	Diseases []types.Disease

	// MinTier gates firing; zero value means any elevated tier.
	MinTier types.Tier

	// Condition inspects the raw input values; nil means always. The
	// returned args parameterize Text.
	Condition func(a *assessment.Assessment) (bool, []any)
}

// numericAtLeast builds a condition on one numeric field, passing the
// value through as the text argument. Absent fields do not fire.
func numericAtLeast(field string, threshold float64) func(*assessment.Assessment) (bool, []any) {
	return func(a *assessment.Assessment) (bool, []any) {
		v, ok := a.Numeric(field)
		if !ok || v < threshold {
			return false, nil
		}
		return true, []any{v}
	}
}

// gate keeps a condition's firing decision but discards its text
// arguments. Required whenever Text carries no format verb: evaluate
// formats the template with whatever arguments the condition returns.
func gate(cond func(*assessment.Assessment) (bool, []any)) func(*assessment.Assessment) (bool, []any) {
	return func(a *assessment.Assessment) (bool, []any) {
		ok, _ := cond(a)
		return ok, nil
	}
}

func anyOf(conds ...func(*assessment.Assessment) (bool, []any)) func(*assessment.Assessment) (bool, []any) {
	return func(a *assessment.Assessment) (bool, []any) {
		for _, c := range conds {
			if ok, args := c(a); ok {
				return true, args
			}
		}
		return false, nil
	}
}

func categoryIn(field string, values ...string) func(*assessment.Assessment) (bool, []any) {
	return func(a *assessment.Assessment) (bool, []any) {
		v, ok := a.Category(field)
		if !ok {
			return false, nil
		}
		for _, want := range values {
			if v == want {
				return true, nil
			}
		}
		return false, nil
	}
}

// bmiAtLeast derives BMI from height and weight; both must be present.
func bmiAtLeast(threshold float64) func(*assessment.Assessment) (bool, []any) {
	return func(a *assessment.Assessment) (bool, []any) {
		h, okH := a.Numeric("height_cm")
		w, okW := a.Numeric("weight_kg")
		if !okH || !okW {
			return false, nil
		}
		m := h / 100
		bmi := w / (m * m)
		if bmi < threshold {
			return false, nil
		}
		return true, []any{bmi}
	}
}

// Rules is the v1 recommendation table. IDs are stable identifiers
// clients use to track completion; do not reuse or renumber them.
var Rules = []Rule{
	{
		ID:       "bp_management",
		Category: types.CategoryMedical,
		Diseases: []types.Disease{types.HeartDisease, types.Stroke},
		Condition: anyOf(
			numericAtLeast("systolic_bp", 130),
			numericAtLeast("diastolic_bp", 85),
		),
		Text: "Blood pressure reading of %.0f mmHg is elevated; discuss blood-pressure management with your physician.",
	},
	{
		ID:        "reduce_sodium",
		Category:  types.CategoryDietary,
		Diseases:  []types.Disease{types.HeartDisease, types.Stroke},
		Condition: numericAtLeast("systolic_bp", 130),
		Text:      "Reduce sodium intake to help lower blood pressure (currently %.0f mmHg systolic).",
	},
	{
		ID:       "cholesterol_management",
		Category: types.CategoryMedical,
		Diseases: []types.Disease{types.HeartDisease},
		Condition: anyOf(
			numericAtLeast("total_cholesterol", 200),
			numericAtLeast("ldl_cholesterol", 130),
		),
		Text: "Cholesterol of %.0f mg/dL is above target; review lipid management options with your physician.",
	},
	{
		ID:       "heart_healthy_diet",
		Category: types.CategoryDietary,
		Diseases: []types.Disease{types.HeartDisease},
		Condition: gate(anyOf(
			numericAtLeast("total_cholesterol", 200),
			numericAtLeast("triglycerides", 150),
		)),
		Text: "Adopt a heart-healthy diet low in saturated fat and refined sugar.",
	},
	{
		ID:       "glucose_monitoring",
		Category: types.CategoryMonitoring,
		Diseases: []types.Disease{types.Diabetes},
		Condition: gate(anyOf(
			numericAtLeast("fasting_glucose", 100),
			numericAtLeast("hba1c", 5.7),
		)),
		Text: "Monitor blood glucose regularly; recent values are above the normal range.",
	},
	{
		ID:       "diabetic_diet",
		Category: types.CategoryDietary,
		Diseases: []types.Disease{types.Diabetes},
		Condition: gate(anyOf(
			numericAtLeast("fasting_glucose", 126),
			numericAtLeast("hba1c", 6.5),
		)),
		Text: "Glucose control is in the diabetic range; implement a structured diabetic diet plan.",
	},
	{
		ID:        "weight_management",
		Category:  types.CategoryLifestyle,
		Diseases:  []types.Disease{types.HeartDisease, types.Diabetes, types.Stroke},
		Condition: bmiAtLeast(25),
		Text:      "A BMI of %.1f increases multiple risks; aim for gradual weight reduction.",
	},
	{
		ID:        "smoking_cessation",
		Category:  types.CategoryLifestyle,
		Diseases:  []types.Disease{types.HeartDisease, types.Cancer, types.Stroke},
		Condition: categoryIn("smoking_status", "current", "former"),
		Text:      "Quitting smoking for good significantly reduces cardiovascular and cancer risks.",
	},
	{
		ID:       "cardiology_consult",
		Category: types.CategoryMedical,
		Diseases: []types.Disease{types.HeartDisease},
		MinTier:  types.TierHigh,
		Text:     "Schedule a cardiology consultation for a comprehensive heart health evaluation.",
	},
	{
		ID:       "endocrinology_consult",
		Category: types.CategoryMedical,
		Diseases: []types.Disease{types.Diabetes},
		MinTier:  types.TierHigh,
		Text:     "Consult an endocrinologist about diabetes risk management.",
	},
	{
		ID:       "cancer_screening",
		Category: types.CategoryMonitoring,
		Diseases: []types.Disease{types.Cancer},
		MinTier:  types.TierModerate,
		Text:     "Keep up with age-appropriate cancer screening appointments.",
	},
	{
		ID:       "stroke_risk_review",
		Category: types.CategoryMedical,
		Diseases: []types.Disease{types.Stroke},
		MinTier:  types.TierHigh,
		Text:     "Discuss stroke risk factors and preventive options with your physician.",
	},
	{
		ID:        "increase_activity",
		Category:  types.CategoryLifestyle,
		Diseases:  []types.Disease{types.HeartDisease, types.Diabetes},
		Condition: categoryIn("exercise_level", "sedentary", "light"),
		Text:      "Increase physical activity toward 150 minutes of moderate exercise per week.",
	},
	{
		ID:        "stress_management",
		Category:  types.CategoryLifestyle,
		Diseases:  []types.Disease{types.HeartDisease},
		Condition: gate(numericAtLeast("stress_level", 7)),
		Text:      "Sustained high stress contributes to cardiovascular risk; consider stress-management techniques.",
	},
	{
		ID:        "home_bp_monitoring",
		Category:  types.CategoryMonitoring,
		Diseases:  []types.Disease{types.HeartDisease, types.Stroke},
		MinTier:   types.TierModerate,
		Condition: gate(numericAtLeast("systolic_bp", 130)),
		Text:      "Track blood pressure at home and share readings at your next visit.",
	},
}

// preventive is the fallback set returned when no disease is elevated.
// The engine never returns an empty list.
var preventive = []types.Recommendation{
	{ID: "annual_checkup", Category: types.CategoryMonitoring, Priority: 1,
		Text: "Continue annual preventive health checkups."},
	{ID: "balanced_diet", Category: types.CategoryDietary, Priority: 1,
		Text: "Maintain a balanced diet rich in vegetables, whole grains and lean protein."},
	{ID: "regular_exercise", Category: types.CategoryLifestyle, Priority: 1,
		Text: "Keep up regular physical activity to preserve your current risk profile."},
}
