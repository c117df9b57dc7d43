package disparity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the valid cells of a disparity map.
type Summary struct {
	Rows   int
	Cells  int
	Valid  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Summarize computes statistics over the cells of m that are not invalidValue.
// Min, Max, Mean and StdDev are NaN when no cell is valid.
func Summarize(m [][]float64, invalidValue float64) Summary {
	s := Summary{Rows: len(m)}
	var valid []float64
	for _, row := range m {
		s.Cells += len(row)
		for _, v := range row {
			if v != invalidValue {
				valid = append(valid, v)
			}
		}
	}
	s.Valid = len(valid)
	if s.Valid == 0 {
		s.Min, s.Max, s.Mean, s.StdDev = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}

	s.Min = floats.Min(valid)
	s.Max = floats.Max(valid)
	if s.Valid == 1 {
		s.Mean = valid[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(valid, nil)
	return s
}

// ValidFraction is the share of cells holding a valid disparity.
func (s Summary) ValidFraction() float64 {
	if s.Cells == 0 {
		return 0
	}
	return float64(s.Valid) / float64(s.Cells)
}

// ToMap flattens the summary, e.g. for a DoCommand response.
func (s Summary) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"rows":   s.Rows,
		"cells":  s.Cells,
		"valid":  s.Valid,
		"min":    s.Min,
		"max":    s.Max,
		"mean":   s.Mean,
		"stddev": s.StdDev,
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("rows=%d cells=%d valid=%d (%.1f%%) min=%g max=%g mean=%g stddev=%g",
		s.Rows, s.Cells, s.Valid, 100*s.ValidFraction(), s.Min, s.Max, s.Mean, s.StdDev)
}
