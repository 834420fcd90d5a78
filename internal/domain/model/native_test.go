package model_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/predictwell/riskcore/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// testArtifact mirrors the artifact JSON layout for test construction.
type testArtifact struct {
	Version       string       `json:"version"`
	SchemaVersion string       `json:"schema_version"`
	InputSize     int          `json:"input_size"`
	HiddenSize    int          `json:"hidden_size"`
	Outputs       []string     `json:"outputs"`
	Members       []testMember `json:"members"`
}

type testMember struct {
	W1 [][]float64 `json:"w1"`
	B1 []float64   `json:"b1"`
	W2 [][]float64 `json:"w2"`
	B2 []float64   `json:"b2"`
}

var outputNames = []string{"heart_disease", "diabetes", "cancer", "stroke"}

// makeMember builds a member with constant weights so predictions are
// hand-checkable.
func makeMember(inputSize, hiddenSize int, w, bias float64) testMember {
	w1 := make([][]float64, hiddenSize)
	b1 := make([]float64, hiddenSize)
	for h := range w1 {
		w1[h] = make([]float64, inputSize)
		for j := range w1[h] {
			w1[h][j] = w
		}
	}
	w2 := make([][]float64, 4)
	b2 := make([]float64, 4)
	for o := range w2 {
		w2[o] = make([]float64, hiddenSize)
		for h := range w2[o] {
			w2[o][h] = w
		}
		b2[o] = bias
	}
	return testMember{W1: w1, B1: b1, W2: w2, B2: b2}
}

func writeArtifact(t *testing.T, art testArtifact) string {
	t.Helper()
	data, err := json.Marshal(art)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadNative(t *testing.T) {
	Convey("Given a well-formed artifact", t, func() {
		art := testArtifact{
			Version:       "1.2.0",
			SchemaVersion: "v1",
			InputSize:     3,
			HiddenSize:    2,
			Outputs:       outputNames,
			Members: []testMember{
				makeMember(3, 2, 0.1, 0),
				makeMember(3, 2, 0.2, -0.5),
			},
		}
		path := writeArtifact(t, art)

		m, err := model.LoadNative(path)

		Convey("Then it loads and exposes its contract", func() {
			So(err, ShouldBeNil)
			So(m.InputSize(), ShouldEqual, 3)
			So(m.SchemaVersion(), ShouldEqual, "v1")
			So(m.Version(), ShouldEqual, "1.2.0")
			So(m.Close(), ShouldBeNil)
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := model.LoadNative(filepath.Join(t.TempDir(), "nope.json"))

		Convey("Then loading fails as an artifact error", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "artifact")
		})
	})

	Convey("Given an empty ensemble", t, func() {
		path := writeArtifact(t, testArtifact{
			Version: "1.0.0", SchemaVersion: "v1",
			InputSize: 3, HiddenSize: 2, Outputs: outputNames,
		})

		Convey("Then loading fails", func() {
			_, err := model.LoadNative(path)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given misordered output names", t, func() {
		path := writeArtifact(t, testArtifact{
			Version: "1.0.0", SchemaVersion: "v1",
			InputSize: 3, HiddenSize: 2,
			Outputs: []string{"diabetes", "heart_disease", "cancer", "stroke"},
			Members: []testMember{makeMember(3, 2, 0.1, 0)},
		})

		Convey("Then loading fails", func() {
			_, err := model.LoadNative(path)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a member with mismatched matrix shapes", t, func() {
		bad := makeMember(3, 2, 0.1, 0)
		bad.W1[0] = bad.W1[0][:2]
		path := writeArtifact(t, testArtifact{
			Version: "1.0.0", SchemaVersion: "v1",
			InputSize: 3, HiddenSize: 2, Outputs: outputNames,
			Members: []testMember{bad},
		})

		Convey("Then loading fails", func() {
			_, err := model.LoadNative(path)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestNativePredict(t *testing.T) {
	Convey("Given a loaded two-member ensemble", t, func() {
		path := writeArtifact(t, testArtifact{
			Version: "1.0.0", SchemaVersion: "v1",
			InputSize: 3, HiddenSize: 2, Outputs: outputNames,
			Members: []testMember{
				makeMember(3, 2, 0.1, 0),
				makeMember(3, 2, 0.3, -1),
			},
		})
		m, err := model.LoadNative(path)
		So(err, ShouldBeNil)

		Convey("When predicting on a valid vector", func() {
			out, err := m.Predict([]float64{1, 0.5, -0.5})

			Convey("Then probabilities are in [0,1] with nonzero spread", func() {
				So(err, ShouldBeNil)
				for i := 0; i < 4; i++ {
					So(out.Probabilities[i], ShouldBeBetweenOrEqual, 0, 1)
					So(out.Spread[i], ShouldBeGreaterThan, 0)
				}
			})

			Convey("And repeated prediction is identical", func() {
				out2, err2 := m.Predict([]float64{1, 0.5, -0.5})
				So(err2, ShouldBeNil)
				So(out2, ShouldResemble, out)
			})
		})

		Convey("When the vector length is wrong", func() {
			_, err := m.Predict([]float64{1, 2})

			Convey("Then prediction fails with the size error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "size mismatch")
			})
		})
	})

	Convey("Given identical ensemble members", t, func() {
		path := writeArtifact(t, testArtifact{
			Version: "1.0.0", SchemaVersion: "v1",
			InputSize: 3, HiddenSize: 2, Outputs: outputNames,
			Members: []testMember{
				makeMember(3, 2, 0.1, 0),
				makeMember(3, 2, 0.1, 0),
			},
		})
		m, err := model.LoadNative(path)
		So(err, ShouldBeNil)

		Convey("Then the spread is zero", func() {
			out, err := m.Predict([]float64{1, 1, 1})
			So(err, ShouldBeNil)
			for i := 0; i < 4; i++ {
				So(out.Spread[i], ShouldEqual, 0)
			}
		})
	})
}
