// Package types contains common types shared across the risk pipeline.
package types

import "fmt"

// Disease identifies one of the predicted conditions.
type Disease string

// Predicted conditions, in model output order.
const (
	HeartDisease Disease = "heart_disease"
	Diabetes     Disease = "diabetes"
	Cancer       Disease = "cancer"
	Stroke       Disease = "stroke"
)

// Diseases lists all predicted conditions in model output order.
// The order is part of the model contract and must not change.
var Diseases = []Disease{HeartDisease, Diabetes, Cancer, Stroke}

// NumDiseases is the number of model outputs.
const NumDiseases = 4

// Tier is a qualitative risk bucket derived from a score via thresholds.
type Tier string

// Risk tiers, ordered.
const (
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
)

// Weight returns the numeric weight of a tier used in recommendation
// priority calculation.
func (t Tier) Weight() int {
	switch t {
	case TierHigh:
		return 3
	case TierModerate:
		return 2
	default:
		return 1
	}
}

// Thresholds holds the score boundaries for one disease. Scores at or
// above High map to the high tier, at or above Moderate to the moderate
// tier, everything else to low. Scores below Low are not considered
// elevated and do not trigger disease-gated recommendations.
type Thresholds struct {
	Low      float64 `koanf:"low"`
	Moderate float64 `koanf:"moderate"`
	High     float64 `koanf:"high"`
}

// Tier buckets a 0-100 score.
func (t Thresholds) Tier(score float64) Tier {
	switch {
	case score >= t.High:
		return TierHigh
	case score >= t.Moderate:
		return TierModerate
	default:
		return TierLow
	}
}

// Elevated reports whether a score has crossed the low boundary.
func (t Thresholds) Elevated(score float64) bool {
	return score >= t.Low
}

// Validate checks boundary ordering.
func (t Thresholds) Validate() error {
	if t.Low < 0 || t.High > 100 || t.Low >= t.Moderate || t.Moderate >= t.High {
		return fmt.Errorf("thresholds must satisfy 0 <= low < moderate < high <= 100, got %v/%v/%v",
			t.Low, t.Moderate, t.High)
	}
	return nil
}

// ThresholdSet maps each disease to its tier boundaries. It is built at
// process start and read-only thereafter.
type ThresholdSet map[Disease]Thresholds

// DefaultThresholds returns the stock v1 boundaries.
func DefaultThresholds() ThresholdSet {
	std := Thresholds{Low: 20, Moderate: 50, High: 75}
	set := make(ThresholdSet, NumDiseases)
	for _, d := range Diseases {
		set[d] = std
	}
	return set
}

// Validate checks that every disease has well-ordered boundaries.
func (s ThresholdSet) Validate() error {
	for _, d := range Diseases {
		th, ok := s[d]
		if !ok {
			return fmt.Errorf("missing thresholds for %s", d)
		}
		if err := th.Validate(); err != nil {
			return fmt.Errorf("%s: %w", d, err)
		}
	}
	return nil
}

// Category classifies a recommendation.
type Category string

// Recommendation categories in precedence order (ties in priority are
// broken by this order).
const (
	CategoryMedical    Category = "medical"
	CategoryDietary    Category = "dietary"
	CategoryLifestyle  Category = "lifestyle"
	CategoryMonitoring Category = "monitoring"
)

// Precedence returns the tie-break rank of a category; lower sorts first.
func (c Category) Precedence() int {
	switch c {
	case CategoryMedical:
		return 0
	case CategoryDietary:
		return 1
	case CategoryLifestyle:
		return 2
	case CategoryMonitoring:
		return 3
	default:
		return 4
	}
}

// Recommendation is one actionable entry in a prediction result. A
// client can track completion externally via the stable ID.
type Recommendation struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Priority int      `json:"priority"`
	Text     string   `json:"text"`
}

// RiskPrediction is the assembled pipeline result: four independent
// 0-100 risk scores (the diseases are not mutually exclusive, so the
// scores do not sum to anything in particular), a confidence scalar in
// [0,1], per-disease tiers and ranked recommendations.
type RiskPrediction struct {
	HeartDiseaseRisk float64 `json:"heart_disease_risk"`
	DiabetesRisk     float64 `json:"diabetes_risk"`
	CancerRisk       float64 `json:"cancer_risk"`
	StrokeRisk       float64 `json:"stroke_risk"`

	Confidence float64 `json:"prediction_confidence"`

	Tiers        map[Disease]Tier `json:"risk_tiers"`
	ModelVersion string           `json:"model_version"`

	Recommendations []Recommendation `json:"recommendations"`
}

// Score returns the score for one disease.
func (p *RiskPrediction) Score(d Disease) float64 {
	switch d {
	case HeartDisease:
		return p.HeartDiseaseRisk
	case Diabetes:
		return p.DiabetesRisk
	case Cancer:
		return p.CancerRisk
	case Stroke:
		return p.StrokeRisk
	default:
		return 0
	}
}

// SetScore sets the score for one disease.
func (p *RiskPrediction) SetScore(d Disease, score float64) {
	switch d {
	case HeartDisease:
		p.HeartDiseaseRisk = score
	case Diabetes:
		p.DiabetesRisk = score
	case Cancer:
		p.CancerRisk = score
	case Stroke:
		p.StrokeRisk = score
	}
}
