package l2derive

// Field names a scalar column of DerivedSample.
type Field int

const (
	FieldTimestamp Field = iota
	FieldLeftDiopters
	FieldRightDiopters
	FieldLeftVertical
	FieldRightVertical
	FieldTargetHorizontal
	FieldTargetVertical
	FieldLeftHorizontal
	FieldRightHorizontal
	FieldVergenceDistance
	FieldVergenceAngle
)

var fieldNames = [...]string{
	"Timestamp",
	"LeftDiopters",
	"RightDiopters",
	"LeftVertical",
	"RightVertical",
	"TargetHorizontal",
	"TargetVertical",
	"LeftHorizontal",
	"RightHorizontal",
	"VergenceDistance",
	"VergenceAngle",
}

func (f Field) String() string {
	if int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return "unknown"
}

// Value returns the field's value for d.
func (f Field) Value(d *DerivedSample) float64 {
	switch f {
	case FieldTimestamp:
		return d.Timestamp
	case FieldLeftDiopters:
		return d.LeftDiopters
	case FieldRightDiopters:
		return d.RightDiopters
	case FieldLeftVertical:
		return d.LeftVertical
	case FieldRightVertical:
		return d.RightVertical
	case FieldTargetHorizontal:
		return d.TargetHorizontal
	case FieldTargetVertical:
		return d.TargetVertical
	case FieldLeftHorizontal:
		return d.LeftHorizontal
	case FieldRightHorizontal:
		return d.RightHorizontal
	case FieldVergenceDistance:
		return d.VergenceDistance
	case FieldVergenceAngle:
		return d.VergenceAngle
	}
	return 0
}

// Column extracts one field across ds.
func Column(ds []DerivedSample, f Field) []float64 {
	out := make([]float64, len(ds))
	for i := range ds {
		out[i] = f.Value(&ds[i])
	}
	return out
}

// TrackedFields are the four signals checked by outlier filtering and used as
// clustering features.
var TrackedFields = []Field{FieldLeftDiopters, FieldLeftVertical, FieldRightDiopters, FieldRightVertical}
