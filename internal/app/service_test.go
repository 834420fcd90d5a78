package service_test

import (
	"context"
	"errors"
	"testing"

	service "github.com/predictwell/riskcore/internal/app"
	"github.com/predictwell/riskcore/internal/domain/assessment"
	"github.com/predictwell/riskcore/internal/domain/confidence"
	"github.com/predictwell/riskcore/internal/domain/feature"
	"github.com/predictwell/riskcore/internal/domain/model"
	"github.com/predictwell/riskcore/internal/domain/recommend"
	"github.com/predictwell/riskcore/internal/domain/types"
	"github.com/predictwell/riskcore/internal/pipeline"
	"github.com/predictwell/riskcore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type stubModel struct {
	schemaVersion string
	inputSize     int
	outputs       model.Outputs
	err           error
}

func (s *stubModel) Predict(vec []float64) (model.Outputs, error) {
	if s.err != nil {
		return model.Outputs{}, s.err
	}
	return s.outputs, nil
}

func (s *stubModel) InputSize() int        { return s.inputSize }
func (s *stubModel) SchemaVersion() string { return s.schemaVersion }
func (s *stubModel) Version() string       { return "stub-1" }
func (s *stubModel) Close() error          { return nil }

func newService(t *testing.T, m model.Model, opts ...service.Option) *service.Service {
	t.Helper()
	th := types.DefaultThresholds()
	pipe, err := pipeline.New(
		feature.NewEngineer(),
		m,
		confidence.New(),
		recommend.New(th),
		th,
	)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	return service.New(pipe, opts...)
}

func healthyStub() *stubModel {
	eng := feature.NewEngineer()
	return &stubModel{
		schemaVersion: eng.Schema().Version,
		inputSize:     eng.Size(),
		outputs:       model.Outputs{Probabilities: [4]float64{0.755, 0.452, 0.258, 0.351}},
	}
}

func validRaw() assessment.Raw {
	return assessment.Raw{
		"age":               45,
		"gender":            "male",
		"systolic_bp":       140,
		"diastolic_bp":      90,
		"fasting_glucose":   110,
		"total_cholesterol": 220,
	}
}

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestServiceAssess(t *testing.T) {
	Convey("Given a service over a working model", t, func() {
		ctx := context.Background()
		svc := newService(t, healthyStub())

		Convey("When assessing a valid payload", func() {
			pred, err := svc.Assess(ctx, validRaw())

			Convey("Then it should return a full prediction", func() {
				So(err, ShouldBeNil)
				So(pred, ShouldNotBeNil)
				So(pred.HeartDiseaseRisk, ShouldEqual, 75.5)
				So(pred.Recommendations, ShouldNotBeEmpty)
				So(pred.ModelVersion, ShouldEqual, "stub-1")
			})
		})

		Convey("When assessing an invalid payload", func() {
			raw := validRaw()
			raw["systolic_bp"] = 400

			pred, err := svc.Assess(ctx, raw)

			Convey("Then it should surface the validation errors", func() {
				So(pred, ShouldBeNil)
				var verrs assessment.ValidationErrors
				So(errors.As(err, &verrs), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service over a failing model", t, func() {
		ctx := context.Background()
		stub := healthyStub()
		stub.err = model.ErrBadOutput
		svc := newService(t, stub)

		Convey("When assessing a valid payload", func() {
			pred, err := svc.Assess(ctx, validRaw())

			Convey("Then it should report the model as unavailable", func() {
				So(pred, ShouldBeNil)
				So(errors.Is(err, pipeline.ErrModelUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestServiceAssessBatch(t *testing.T) {
	Convey("Given a service with batch limits", t, func() {
		ctx := context.Background()
		svc := newService(t, healthyStub(),
			service.WithBatchConcurrency(4),
			service.WithMaxBatchSize(10),
		)

		Convey("When assessing a mixed batch", func() {
			bad := validRaw()
			bad["systolic_bp"] = 400
			raws := []assessment.Raw{validRaw(), bad, validRaw()}

			items, err := svc.AssessBatch(ctx, raws)

			Convey("Then outcomes should arrive in input order", func() {
				So(err, ShouldBeNil)
				So(items, ShouldHaveLength, 3)
				So(items[0].Err, ShouldBeNil)
				So(items[0].Prediction, ShouldNotBeNil)
				So(items[2].Err, ShouldBeNil)
			})

			Convey("Then the invalid item should fail alone", func() {
				So(err, ShouldBeNil)
				So(items[1].Prediction, ShouldBeNil)
				var verrs assessment.ValidationErrors
				So(errors.As(items[1].Err, &verrs), ShouldBeTrue)
			})
		})

		Convey("When the batch exceeds the size cap", func() {
			raws := make([]assessment.Raw, 11)
			for i := range raws {
				raws[i] = validRaw()
			}

			items, err := svc.AssessBatch(ctx, raws)

			Convey("Then it should reject the whole batch", func() {
				So(items, ShouldBeNil)
				So(errors.Is(err, service.ErrBatchTooLarge), ShouldBeTrue)
			})
		})

		Convey("When the batch is empty", func() {
			items, err := svc.AssessBatch(ctx, nil)

			Convey("Then it should reject it", func() {
				So(items, ShouldBeNil)
				So(errors.Is(err, service.ErrEmptyBatch), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			items, err := svc.AssessBatch(cctx, []assessment.Raw{validRaw()})

			Convey("Then it should return the context error", func() {
				So(items, ShouldBeNil)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When assessing a large batch", func() {
			raws := make([]assessment.Raw, 10)
			for i := range raws {
				raws[i] = validRaw()
			}

			items, err := svc.AssessBatch(ctx, raws)

			Convey("Then every item should succeed", func() {
				So(err, ShouldBeNil)
				So(items, ShouldHaveLength, 10)
				for _, it := range items {
					So(it.Err, ShouldBeNil)
					So(it.Prediction, ShouldNotBeNil)
				}
			})
		})
	})
}
