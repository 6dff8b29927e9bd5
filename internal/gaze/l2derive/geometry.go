package l2derive

import (
	"math"

	"github.com/banshee-data/gaze.report/internal/gaze/l1samples"
)

// Eye selects the per-eye sign convention.
type Eye int

const (
	Left Eye = iota
	Right
)

func (e Eye) String() string {
	if e == Left {
		return "left"
	}
	return "right"
}

// DiopterMode selects how eye deviation is referenced.
type DiopterMode int

const (
	// TargetRelative measures the eye's yaw against the target's yaw.
	TargetRelative DiopterMode = iota
	// EyeAngleOnly measures yaw against straight ahead, i.e. TargetRelative
	// with the target on the z axis.
	EyeAngleOnly
)

func (m DiopterMode) String() string {
	switch m {
	case TargetRelative:
		return "target-relative"
	case EyeAngleOnly:
		return "eye-angle-only"
	default:
		return "unknown"
	}
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Normalize returns v scaled to unit length. A zero vector returns the zero
// vector and false. Components are first divided by the largest one so that
// tiny and huge finite vectors keep their direction.
func Normalize(v l1samples.Vec3) (l1samples.Vec3, bool) {
	m := v.MaxAbs()
	if m == 0 {
		return l1samples.Vec3{}, false
	}
	w := l1samples.Vec3{X: v.X / m, Y: v.Y / m, Z: v.Z / m}
	n := w.Norm()
	return l1samples.Vec3{X: w.X / n, Y: w.Y / n, Z: w.Z / n}, true
}

// HorizontalAngle returns the yaw of v in degrees, atan2(x, z) of the
// normalised vector. Zero vectors read as 0.
func HorizontalAngle(v l1samples.Vec3) float64 {
	u, _ := Normalize(v)
	return degrees(math.Atan2(u.X, u.Z))
}

// VerticalAngle returns the pitch of v in degrees, asin(y) of the normalised
// vector with y clamped to [-1, 1]. Zero vectors read as 0.
func VerticalAngle(v l1samples.Vec3) float64 {
	u, _ := Normalize(v)
	return degrees(math.Asin(math.Max(-1, math.Min(1, u.Y))))
}

// TargetAngles returns the target's horizontal and vertical angles.
func TargetAngles(target l1samples.Vec3) (horizontal, vertical float64) {
	return HorizontalAngle(target), VerticalAngle(target)
}

// EyeDiopters returns the eye's horizontal deviation from the target divided
// by degreesPerDiopter. The left eye's deviation is negated after the
// difference is taken, so outward rotation is positive for both eyes and an
// eye looking straight at the target reads 0.
func EyeDiopters(eyeDir, target l1samples.Vec3, eye Eye, mode DiopterMode, degreesPerDiopter float64) float64 {
	targetAngle := 0.0
	if mode == TargetRelative {
		targetAngle = HorizontalAngle(target)
	}
	deviation := HorizontalAngle(eyeDir) - targetAngle
	if eye == Left {
		deviation = -deviation
	}
	return deviation / degreesPerDiopter
}

// Vergence returns the distance in metres from the midpoint between the eyes
// to the vergence point, and the vergence angle in degrees implied by that
// distance and the interpupillary distance. The measured IPD is used when the
// eye positions differ, defaultIPD otherwise. A zero distance yields angle 0.
func Vergence(s l1samples.Sample, defaultIPD float64) (distance, angle float64) {
	mid := s.LeftEyePos.Add(s.RightEyePos).Scale(0.5)
	distance = s.VergencePoint.Sub(mid).Norm()

	ipd := s.RightEyePos.Sub(s.LeftEyePos).Norm()
	if ipd == 0 {
		ipd = defaultIPD
	}
	if distance == 0 {
		return 0, 0
	}
	return distance, degrees(2 * math.Atan((ipd/2)/distance))
}
