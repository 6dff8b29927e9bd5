package l1samples

import "math"

// Vec3 is a 3D direction or position in the tracker's head-fixed frame
// (x right, y up, z forward).
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the Euclidean length of v without intermediate overflow or
// underflow.
func (v Vec3) Norm() float64 {
	return math.Hypot(math.Hypot(v.X, v.Y), v.Z)
}

// MaxAbs returns the largest absolute component of v.
func (v Vec3) MaxAbs() float64 {
	return math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Sample is one binocular observation. Samples are immutable once ingested.
type Sample struct {
	Timestamp     float64
	LeftEyeDir    Vec3
	RightEyeDir   Vec3
	LeftEyePos    Vec3
	RightEyePos   Vec3
	TargetCenter  Vec3
	VergencePoint Vec3
}

// Timestamps extracts the timestamp column.
func Timestamps(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i := range samples {
		out[i] = samples[i].Timestamp
	}
	return out
}
