package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/predictwell/riskcore/internal/adapters/http/api"
	service "github.com/predictwell/riskcore/internal/app"
	"github.com/predictwell/riskcore/internal/domain/assessment"
	"github.com/predictwell/riskcore/internal/domain/types"
	"github.com/predictwell/riskcore/internal/pipeline"
	. "github.com/smartystreets/goconvey/convey"
)

// stubDeps fakes the service layer behind the handlers.
type stubDeps struct {
	pred *types.RiskPrediction
	err  error

	batchItems []service.BatchItem
	batchErr   error
}

func (s *stubDeps) Assess(ctx context.Context, raw assessment.Raw) (*types.RiskPrediction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pred, nil
}

func (s *stubDeps) AssessBatch(ctx context.Context, raws []assessment.Raw) ([]service.BatchItem, error) {
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	return s.batchItems, nil
}

func examplePrediction() *types.RiskPrediction {
	return &types.RiskPrediction{
		HeartDiseaseRisk: 75.5,
		DiabetesRisk:     45.2,
		CancerRisk:       25.8,
		StrokeRisk:       35.1,
		Confidence:       0.85,
		Tiers: map[types.Disease]types.Tier{
			types.HeartDisease: types.TierHigh,
			types.Diabetes:     types.TierLow,
			types.Cancer:       types.TierLow,
			types.Stroke:       types.TierLow,
		},
		ModelVersion: "1.0.0",
		Recommendations: []types.Recommendation{
			{ID: "bp_management", Category: types.CategoryMedical, Priority: 3, Text: "Discuss blood pressure management with your physician."},
		},
	}
}

func newTestServer(deps api.Dependencies) *httptest.Server {
	s := api.NewServer(deps)
	mux := http.NewServeMux()
	s.Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp, decoded
}

func TestHandleAssess(t *testing.T) {
	Convey("Given an assessment endpoint", t, func() {
		Convey("When posting a valid assessment", func() {
			srv := newTestServer(&stubDeps{pred: examplePrediction()})
			defer srv.Close()

			resp, body := postJSON(t, srv.URL+"/v1/assess", `{"age": 45, "gender": "male"}`)

			Convey("Then it should return the prediction envelope", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["success"], ShouldEqual, true)
				So(body["timestamp"], ShouldNotBeEmpty)

				pred, ok := body["prediction"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(pred["heart_disease_risk"], ShouldEqual, 75.5)
				So(pred["diabetes_risk"], ShouldEqual, 45.2)
				So(pred["cancer_risk"], ShouldEqual, 25.8)
				So(pred["stroke_risk"], ShouldEqual, 35.1)
				So(pred["prediction_confidence"], ShouldEqual, 0.85)
				So(pred["model_version"], ShouldEqual, "1.0.0")
				So(pred["recommendations"], ShouldNotBeEmpty)
			})

			Convey("Then it should assign a request id", func() {
				So(resp.Header.Get("X-Request-ID"), ShouldNotBeEmpty)
			})
		})

		Convey("When posting an assessment that fails validation", func() {
			verrs := assessment.ValidationErrors{
				{Field: "systolic_bp", Reason: "out of range"},
				{Field: "age", Reason: "required field missing"},
			}
			srv := newTestServer(&stubDeps{err: verrs})
			defer srv.Close()

			resp, body := postJSON(t, srv.URL+"/v1/assess", `{"systolic_bp": 400}`)

			Convey("Then it should return 422 with every field error", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusUnprocessableEntity)
				So(body["success"], ShouldEqual, false)

				errs, ok := body["errors"].([]any)
				So(ok, ShouldBeTrue)
				So(errs, ShouldHaveLength, 2)
				first, ok := errs[0].(map[string]any)
				So(ok, ShouldBeTrue)
				So(first["field"], ShouldEqual, "systolic_bp")
				So(first["reason"], ShouldEqual, "out of range")
			})
		})

		Convey("When the model is unavailable", func() {
			srv := newTestServer(&stubDeps{err: pipeline.ErrModelUnavailable})
			defer srv.Close()

			resp, body := postJSON(t, srv.URL+"/v1/assess", `{"age": 45}`)

			Convey("Then it should return 503 with the unavailability code", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
				So(body["success"], ShouldEqual, false)
				So(body["error"], ShouldEqual, "model_unavailable")
			})
		})

		Convey("When posting malformed JSON", func() {
			srv := newTestServer(&stubDeps{pred: examplePrediction()})
			defer srv.Close()

			resp, body := postJSON(t, srv.URL+"/v1/assess", `{"age": `)

			Convey("Then it should return 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["error"], ShouldEqual, "bad_request")
			})
		})

		Convey("When using GET instead of POST", func() {
			srv := newTestServer(&stubDeps{pred: examplePrediction()})
			defer srv.Close()

			resp, err := http.Get(srv.URL + "/v1/assess")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then it should return 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHandleAssessBatch(t *testing.T) {
	Convey("Given a batch assessment endpoint", t, func() {
		Convey("When posting a batch with mixed outcomes", func() {
			deps := &stubDeps{
				batchItems: []service.BatchItem{
					{Prediction: examplePrediction()},
					{Err: assessment.ValidationErrors{{Field: "systolic_bp", Reason: "out of range"}}},
				},
			}
			srv := newTestServer(deps)
			defer srv.Close()

			resp, body := postJSON(t, srv.URL+"/v1/assess/batch",
				`{"assessments": [{"age": 45}, {"systolic_bp": 400}]}`)

			Convey("Then it should return per-item outcomes in order", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["success"], ShouldEqual, true)

				results, ok := body["results"].([]any)
				So(ok, ShouldBeTrue)
				So(results, ShouldHaveLength, 2)

				first, ok := results[0].(map[string]any)
				So(ok, ShouldBeTrue)
				So(first["success"], ShouldEqual, true)
				So(first["prediction"], ShouldNotBeNil)

				second, ok := results[1].(map[string]any)
				So(ok, ShouldBeTrue)
				So(second["success"], ShouldEqual, false)
				So(second["errors"], ShouldNotBeEmpty)
			})
		})

		Convey("When the batch is too large", func() {
			srv := newTestServer(&stubDeps{batchErr: service.ErrBatchTooLarge})
			defer srv.Close()

			resp, body := postJSON(t, srv.URL+"/v1/assess/batch", `{"assessments": [{}]}`)

			Convey("Then it should return 413", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(body["error"], ShouldEqual, "batch_too_large")
			})
		})

		Convey("When the batch is empty", func() {
			srv := newTestServer(&stubDeps{batchErr: service.ErrEmptyBatch})
			defer srv.Close()

			resp, body := postJSON(t, srv.URL+"/v1/assess/batch", `{"assessments": []}`)

			Convey("Then it should return 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["error"], ShouldEqual, "empty_batch")
			})
		})
	})
}

func TestHandleHealth(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		srv := newTestServer(&stubDeps{pred: examplePrediction()})
		defer srv.Close()

		Convey("When scraping /healthz", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then it should serve the metrics registry", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
