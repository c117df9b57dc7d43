// Package disparity computes placeholder disparity maps from pixel grids and masks
// them by confidence.
package disparity

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// ErrValidation is returned when two grids do not line up.
var ErrValidation = errors.New("grid shape mismatch")

const (
	// DefaultInvalidValue marks pixels without a usable disparity.
	DefaultInvalidValue = 0.0
	// DefaultThreshold is the minimum confidence kept by ApplyConfidenceMask.
	DefaultThreshold = 0.5
)

// Number is any numeric pixel type a grid may hold.
type Number interface {
	constraints.Integer | constraints.Float
}

// ComputeDisparityMap returns left minus right, pixel by pixel. This is not stereo
// matching; it is the simplest stand-in metric for one.
//
// Both grids must have the same number of rows. When a pair of rows differs in
// length the shorter one is right-padded with zero, so the output is always
// rectangular per row. Padding is zero regardless of invalidValue.
func ComputeDisparityMap[T Number](left, right [][]T, invalidValue float64) ([][]float64, error) {
	if len(left) != len(right) {
		return nil, errors.Wrapf(ErrValidation,
			"left and right images must have the same number of rows: left=%d, right=%d", len(left), len(right))
	}

	out := make([][]float64, len(left))
	for i := range left {
		l, r := left[i], right[i]
		n := len(l)
		if len(r) > n {
			n = len(r)
		}
		row := make([]float64, n)
		for j := range row {
			var lv, rv float64
			if j < len(l) {
				lv = float64(l[j])
			}
			if j < len(r) {
				rv = float64(r[j])
			}
			row[j] = lv - rv
		}
		out[i] = row
	}
	return out, nil
}

// Clone deep-copies a grid.
func Clone(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}
