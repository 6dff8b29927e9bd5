package l1samples

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/gaze.report/internal/fsutil"
)

// Input errors. Any of these aborts the analysis for that input.
var (
	ErrFileNotFound  = errors.New("input file not found")
	ErrEmptyInput    = errors.New("input contains no samples")
	ErrMissingColumn = errors.New("required column missing")
	ErrInvalidValue  = errors.New("invalid sample value")
)

// RequiredColumns lists the CSV header names (case-sensitive) every input
// must carry. Additional columns are ignored.
var RequiredColumns = []string{
	"Timestamp",
	"LeftEyeDirX", "LeftEyeDirY", "LeftEyeDirZ",
	"RightEyeDirX", "RightEyeDirY", "RightEyeDirZ",
	"LeftEyePosX", "LeftEyePosY", "LeftEyePosZ",
	"RightEyePosX", "RightEyePosY", "RightEyePosZ",
	"TargetCenterX", "TargetCenterY", "TargetCenterZ",
	"VergencePointX", "VergencePointY", "VergencePointZ",
}

// LoadCSV opens path on fsys and parses it with ReadCSV.
func LoadCSV(fsys fsutil.FileSystem, path string) ([]Sample, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	samples, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

// ReadCSV parses a header-prefixed CSV stream into samples, in file order.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		// Exported spreadsheets often prefix the first header with a BOM.
		col[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}
	idx := make([]int, len(RequiredColumns))
	for i, name := range RequiredColumns {
		c, ok := col[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		idx[i] = c
	}

	var samples []Sample
	vals := make([]float64, len(RequiredColumns))
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidValue, row, err)
		}
		for i, c := range idx {
			if c >= len(rec) {
				return nil, fmt.Errorf("%w: row %d: column %s missing", ErrInvalidValue, row, RequiredColumns[i])
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: row %d: column %s: %q", ErrInvalidValue, row, RequiredColumns[i], rec[c])
			}
			vals[i] = v
		}
		samples = append(samples, sampleFromValues(vals))
	}

	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}
	return samples, nil
}

// sampleFromValues maps values ordered as RequiredColumns onto a Sample.
func sampleFromValues(v []float64) Sample {
	return Sample{
		Timestamp:     v[0],
		LeftEyeDir:    Vec3{v[1], v[2], v[3]},
		RightEyeDir:   Vec3{v[4], v[5], v[6]},
		LeftEyePos:    Vec3{v[7], v[8], v[9]},
		RightEyePos:   Vec3{v[10], v[11], v[12]},
		TargetCenter:  Vec3{v[13], v[14], v[15]},
		VergencePoint: Vec3{v[16], v[17], v[18]},
	}
}
