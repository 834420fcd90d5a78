package testassess

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/predictwell/riskcore/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	profileDivisor     = 10
)

// Profile mix out of profileDivisor: indices below atRiskCut are
// at-risk, below incompleteCut incomplete, the rest healthy.
const (
	atRiskCut     = 4
	incompleteCut = 6
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randBetween returns a random float64 in [lo, hi) rounded to one decimal.
func randBetween(lo, hi float64) float64 {
	v := lo + getRandomFloat()*(hi-lo)
	return float64(int(v*10)) / 10
}

// pick returns a random element of choices.
func pick(choices ...string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(choices))))
	return choices[n.Int64()]
}

// generatePayloads creates the configured number of assessment payloads
// with a fixed profile mix.
func generatePayloads(ctx context.Context, config *Config, stats *Stats) []Payload {
	logger.Get().Info(ctx, "generating assessment payloads", logger.Int("numTotal", config.NumTotal))

	payloads := make([]Payload, config.NumTotal)
	for i := range payloads {
		n, _ := rand.Int(rand.Reader, big.NewInt(profileDivisor))
		switch {
		case n.Int64() < atRiskCut:
			payloads[i] = Payload{Profile: ProfileAtRisk, Fields: generateAtRisk()}
		case n.Int64() < incompleteCut:
			payloads[i] = Payload{Profile: ProfileIncomplete, Fields: generateIncomplete()}
		default:
			payloads[i] = Payload{Profile: ProfileHealthy, Fields: generateHealthy()}
		}
	}

	stats.Generated = len(payloads)
	logger.Get().Info(ctx, "generated payloads successfully", logger.Int("count", len(payloads)))
	return payloads
}

// generateHealthy produces a fully-populated assessment with values in
// clinically unremarkable ranges.
func generateHealthy() map[string]any {
	systolic := randBetween(105, 125)
	return map[string]any{
		"age":                 randBetween(25, 50),
		"gender":              pick("male", "female"),
		"systolic_bp":         systolic,
		"diastolic_bp":        randBetween(65, min(80, systolic-10)),
		"fasting_glucose":     randBetween(75, 100),
		"total_cholesterol":   randBetween(150, 195),
		"hdl_cholesterol":     randBetween(50, 75),
		"ldl_cholesterol":     randBetween(70, 110),
		"triglycerides":       randBetween(60, 130),
		"hba1c":               randBetween(4.5, 5.5),
		"creatinine":          randBetween(0.6, 1.1),
		"hemoglobin":          randBetween(12.5, 16.5),
		"height_cm":           randBetween(155, 190),
		"weight_kg":           randBetween(55, 80),
		"heart_rate":          randBetween(55, 75),
		"temperature_c":       randBetween(36.2, 37.0),
		"stress_level":        randBetween(0, 4),
		"sleep_hours":         randBetween(7, 9),
		"smoking_status":      "never",
		"alcohol_consumption": pick("never", "occasional"),
		"exercise_level":      pick("moderate", "vigorous"),
		"family_history":      "none",
	}
}

// generateAtRisk produces an assessment with multiple elevated markers.
func generateAtRisk() map[string]any {
	systolic := randBetween(150, 200)
	return map[string]any{
		"age":                 randBetween(55, 85),
		"gender":              pick("male", "female"),
		"systolic_bp":         systolic,
		"diastolic_bp":        randBetween(92, min(115, systolic-10)),
		"fasting_glucose":     randBetween(130, 280),
		"total_cholesterol":   randBetween(245, 330),
		"hdl_cholesterol":     randBetween(20, 38),
		"ldl_cholesterol":     randBetween(165, 250),
		"triglycerides":       randBetween(210, 500),
		"hba1c":               randBetween(6.6, 11.0),
		"creatinine":          randBetween(1.2, 3.0),
		"hemoglobin":          randBetween(9.0, 13.0),
		"height_cm":           randBetween(155, 190),
		"weight_kg":           randBetween(90, 140),
		"heart_rate":          randBetween(85, 110),
		"stress_level":        randBetween(6, 10),
		"sleep_hours":         randBetween(3, 6),
		"smoking_status":      pick("current", "former"),
		"alcohol_consumption": pick("moderate", "heavy"),
		"exercise_level":      "sedentary",
		"family_history":      pick("heart_disease", "diabetes", "stroke", "multiple"),
	}
}

// generateIncomplete produces only the required fields, exercising the
// imputation path and depressing the completeness signal.
func generateIncomplete() map[string]any {
	systolic := randBetween(110, 165)
	return map[string]any{
		"age":               randBetween(30, 75),
		"gender":            pick("male", "female", "other"),
		"systolic_bp":       systolic,
		"diastolic_bp":      randBetween(70, min(100, systolic-10)),
		"fasting_glucose":   randBetween(80, 160),
		"total_cholesterol": randBetween(160, 260),
	}
}
