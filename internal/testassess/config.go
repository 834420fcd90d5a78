package testassess

import "time"

// Config holds configuration for the assessment test
type Config struct {
	BaseURL    string        // Base URL of the service
	NumTotal   int           // Number of assessments to generate
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for generated payloads
	LogFile    string        // Log file for test output
	Verbose    bool          // Enable verbose logging
}

// Profile selects the shape of a generated assessment.
type Profile string

// Generated assessment profiles.
const (
	ProfileHealthy    Profile = "healthy"
	ProfileAtRisk     Profile = "at_risk"
	ProfileIncomplete Profile = "incomplete"
)

// Payload is one generated assessment with its profile label.
type Payload struct {
	Profile Profile        `json:"profile"`
	Fields  map[string]any `json:"fields"`
}

// PredictionEnvelope mirrors the success response of POST /v1/assess.
type PredictionEnvelope struct {
	Success    bool `json:"success"`
	Prediction struct {
		HeartDiseaseRisk float64 `json:"heart_disease_risk"`
		DiabetesRisk     float64 `json:"diabetes_risk"`
		CancerRisk       float64 `json:"cancer_risk"`
		StrokeRisk       float64 `json:"stroke_risk"`
		Confidence       float64 `json:"prediction_confidence"`
	} `json:"prediction"`
	Timestamp string `json:"timestamp"`
}

// Stats holds test statistics
type Stats struct {
	Generated     int
	Submitted     int
	Successful    int
	Rejected      int // validation failures (422)
	Unavailable   int // model unavailable (503)
	Failed        int // transport or unexpected status
	SumConfidence float64
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
