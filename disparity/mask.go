package disparity

import "github.com/pkg/errors"

// ApplyConfidenceMask replaces every disparity whose confidence is below threshold with
// invalidValue. A confidence equal to threshold is kept. With a nil confidenceMap the
// result is a plain copy. The input is never modified.
//
// Unlike ComputeDisparityMap, rows of different lengths are an error here.
func ApplyConfidenceMask(disparityMap, confidenceMap [][]float64, threshold, invalidValue float64) ([][]float64, error) {
	if confidenceMap == nil {
		return Clone(disparityMap), nil
	}

	if len(disparityMap) != len(confidenceMap) {
		return nil, errors.Wrapf(ErrValidation,
			"disparity map and confidence map must have the same number of rows: disparity=%d, confidence=%d",
			len(disparityMap), len(confidenceMap))
	}

	masked := make([][]float64, len(disparityMap))
	for i, row := range disparityMap {
		conf := confidenceMap[i]
		if len(row) != len(conf) {
			return nil, errors.Wrapf(ErrValidation,
				"row %d has mismatched lengths: disparity=%d, confidence=%d", i, len(row), len(conf))
		}
		out := make([]float64, len(row))
		for j, v := range row {
			if conf[j] >= threshold {
				out[j] = v
			} else {
				out[j] = invalidValue
			}
		}
		masked[i] = out
	}
	return masked, nil
}
