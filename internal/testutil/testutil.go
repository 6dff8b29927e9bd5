// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/banshee-data/gaze.report/internal/gaze/l1samples"
)

// HalfIPD is the lateral eye offset, in metres, used by the fixtures.
const HalfIPD = 0.0345

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// yawDir returns a unit direction rotated yawDeg about the vertical axis.
func yawDir(yawDeg float64) l1samples.Vec3 {
	rad := yawDeg * math.Pi / 180
	return l1samples.Vec3{X: math.Sin(rad), Z: math.Cos(rad)}
}

// GazeSample builds a sample whose derived diopters, at one degree per
// diopter and an on-axis target one metre ahead, are exactly left and right.
// Vertical angles are zero.
func GazeSample(ts, left, right float64) l1samples.Sample {
	return l1samples.Sample{
		Timestamp:     ts,
		LeftEyeDir:    yawDir(-left),
		RightEyeDir:   yawDir(right),
		LeftEyePos:    l1samples.Vec3{X: -HalfIPD},
		RightEyePos:   l1samples.Vec3{X: HalfIPD},
		TargetCenter:  l1samples.Vec3{Z: 1},
		VergencePoint: l1samples.Vec3{Z: 1},
	}
}

// Scenario builds n samples dt seconds apart; f gives the left and right
// diopters of sample i.
func Scenario(n int, dt float64, f func(i int) (left, right float64)) []l1samples.Sample {
	out := make([]l1samples.Sample, n)
	for i := range out {
		l, r := f(i)
		out[i] = GazeSample(float64(i)*dt, l, r)
	}
	return out
}

// SteadyGaze is n samples of both eyes on target.
func SteadyGaze(n int, dt float64) []l1samples.Sample {
	return Scenario(n, dt, func(int) (float64, float64) { return 0, 0 })
}

// WriteCSV writes samples in the ingest format with the canonical header.
func WriteCSV(w io.Writer, samples []l1samples.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(l1samples.RequiredColumns); err != nil {
		return err
	}
	for _, s := range samples {
		vals := []float64{s.Timestamp}
		for _, v := range []l1samples.Vec3{s.LeftEyeDir, s.RightEyeDir, s.LeftEyePos, s.RightEyePos, s.TargetCenter, s.VergencePoint} {
			vals = append(vals, v.X, v.Y, v.Z)
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV is WriteCSV into a string.
func CSV(t testing.TB, samples []l1samples.Sample) string {
	t.Helper()
	var b strings.Builder
	AssertNoError(t, WriteCSV(&b, samples))
	return b.String()
}
