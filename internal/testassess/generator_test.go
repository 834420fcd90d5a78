package testassess

import (
	"context"
	"testing"

	"github.com/predictwell/riskcore/internal/domain/assessment"
	"github.com/predictwell/riskcore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestGeneratePayloads(t *testing.T) {
	Convey("Given the payload generator", t, func() {
		ctx := context.Background()
		config := &Config{NumTotal: 200, Workers: 4}
		stats := &Stats{}

		payloads := generatePayloads(ctx, config, stats)

		Convey("Then it should produce the requested count", func() {
			So(payloads, ShouldHaveLength, 200)
			So(stats.Generated, ShouldEqual, 200)
		})

		Convey("Then every payload should pass input validation", func() {
			for _, p := range payloads {
				_, err := assessment.Validate(assessment.Raw(p.Fields))
				So(err, ShouldBeNil)
			}
		})

		Convey("Then the profile mix should include every kind", func() {
			seen := map[Profile]int{}
			for _, p := range payloads {
				seen[p.Profile]++
			}
			So(seen[ProfileHealthy], ShouldBeGreaterThan, 0)
			So(seen[ProfileAtRisk], ShouldBeGreaterThan, 0)
			So(seen[ProfileIncomplete], ShouldBeGreaterThan, 0)
		})

		Convey("Then incomplete payloads should carry only required fields", func() {
			for _, p := range payloads {
				if p.Profile != ProfileIncomplete {
					continue
				}
				So(len(p.Fields), ShouldEqual, 6)
				So(p.Fields, ShouldContainKey, "age")
				So(p.Fields, ShouldContainKey, "total_cholesterol")
			}
		})
	})
}
