package l6alignment

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/gaze.report/internal/gaze/l2derive"
)

// Description is a five-number summary plus mean and standard deviation.
type Description struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Describe summarises values. Quantiles interpolate linearly between order
// statistics at position q*(n-1). Std is the sample standard deviation and
// is 0 when fewer than two values are present.
func Describe(values []float64) Description {
	n := len(values)
	if n == 0 {
		return Description{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	d := Description{
		Count:  n,
		Mean:   stat.Mean(sorted, nil),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Q25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q75:    quantile(sorted, 0.75),
	}
	if n > 1 {
		d.Std = stat.StdDev(sorted, nil)
	}
	return d
}

// quantile expects sorted input.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// DescribeFields describes each field of ds, keyed by field name.
func DescribeFields(ds []l2derive.DerivedSample, fields []l2derive.Field) map[string]Description {
	out := make(map[string]Description, len(fields))
	for _, f := range fields {
		out[f.String()] = Describe(l2derive.Column(ds, f))
	}
	return out
}

// CorrelationFields are the signals compared in the correlation matrix.
var CorrelationFields = []l2derive.Field{
	l2derive.FieldLeftDiopters,
	l2derive.FieldLeftVertical,
	l2derive.FieldRightDiopters,
	l2derive.FieldRightVertical,
	l2derive.FieldTargetHorizontal,
	l2derive.FieldTargetVertical,
}

// Correlation is a symmetric Pearson correlation matrix. Entries involving a
// constant signal are NaN and encode as JSON null.
type Correlation struct {
	Fields []string
	Values [][]float64
}

// CorrelationMatrix computes pairwise correlations of CorrelationFields over
// ds. Fewer than two samples yield an all-NaN matrix.
func CorrelationMatrix(ds []l2derive.DerivedSample) Correlation {
	k := len(CorrelationFields)
	c := Correlation{Fields: make([]string, k), Values: make([][]float64, k)}
	for j, f := range CorrelationFields {
		c.Fields[j] = f.String()
		c.Values[j] = make([]float64, k)
	}
	if len(ds) < 2 {
		for i := range c.Values {
			for j := range c.Values[i] {
				c.Values[i][j] = math.NaN()
			}
		}
		return c
	}

	x := mat.NewDense(len(ds), k, nil)
	constant := make([]bool, k)
	for j, f := range CorrelationFields {
		col := l2derive.Column(ds, f)
		x.SetCol(j, col)
		constant[j] = floats.Min(col) == floats.Max(col)
	}
	var sym mat.SymDense
	stat.CorrelationMatrix(&sym, x, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			c.Values[i][j] = sym.At(i, j)
		}
		// gonum pins the diagonal to 1 even for a constant column.
		if constant[i] {
			c.Values[i][i] = math.NaN()
		}
	}
	return c
}

// MarshalJSON writes non-finite entries as null.
func (c Correlation) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(c.Values))
	for i, row := range c.Values {
		values[i] = make([]*float64, len(row))
		for j := range row {
			if v := row[j]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				values[i][j] = &v
			}
		}
	}
	return json.Marshal(struct {
		Fields []string     `json:"fields"`
		Values [][]*float64 `json:"values"`
	}{c.Fields, values})
}
