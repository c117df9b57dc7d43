// Package calibration holds the stereo camera model and the rectification parameters
// derived from it.
package calibration

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CameraModel describes a stereo rig.
type CameraModel struct {
	FocalLength    float64  `json:"focal_length"`
	Baseline       float64  `json:"baseline"` // distance between the two cameras
	PrincipalPoint r2.Point `json:"principal_point"`
}

// DefaultCameraModel is the rig used when a workspace does not configure one.
func DefaultCameraModel() CameraModel {
	return CameraModel{FocalLength: 35.0, Baseline: 0.12}
}

// Matrix3 is a row-major 3x3 matrix.
type Matrix3 [3][3]float64

// Identity returns the 3x3 identity matrix.
func Identity() Matrix3 {
	return Matrix3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Dense copies m into a gonum matrix.
func (m Matrix3) Dense() *mat.Dense {
	data := make([]float64, 0, 9)
	for _, row := range m {
		data = append(data, row[:]...)
	}
	return mat.NewDense(3, 3, data)
}

// Apply maps the pixel p through m treated as a homography.
func (m Matrix3) Apply(p r2.Point) r2.Point {
	var out mat.VecDense
	out.MulVec(m.Dense(), mat.NewVecDense(3, []float64{p.X, p.Y, 1}))
	w := out.AtVec(2)
	if w == 0 {
		return r2.Point{X: out.AtVec(0), Y: out.AtVec(1)}
	}
	return r2.Point{X: out.AtVec(0) / w, Y: out.AtVec(1) / w}
}

// Parameters is the rotation/translation/rectifying-transform bundle for a rig.
type Parameters struct {
	Rotation           Matrix3
	Translation        r3.Vector
	LeftRectification  Matrix3
	RightRectification Matrix3
}

// ComputeRectificationParameters returns placeholder rectification parameters for camera:
// identity rotation and rectifying transforms, and a translation of the baseline along X.
// It stands in for a real solver and is deterministic.
func ComputeRectificationParameters(camera CameraModel) Parameters {
	return Parameters{
		Rotation:           Identity(),
		Translation:        r3.Vector{X: camera.Baseline, Y: 0, Z: 0},
		LeftRectification:  Identity(),
		RightRectification: Identity(),
	}
}

// BaselineLength is the length of the translation between the two cameras.
func (p Parameters) BaselineLength() float64 {
	return floats.Norm([]float64{p.Translation.X, p.Translation.Y, p.Translation.Z}, 2)
}

// RectifyPoints maps a pixel from each image through its rectifying transform.
func (p Parameters) RectifyPoints(left, right r2.Point) (r2.Point, r2.Point) {
	return p.LeftRectification.Apply(left), p.RightRectification.Apply(right)
}

// ToMap flattens the parameters into plain values, e.g. for a DoCommand response.
func (p Parameters) ToMap() map[string]interface{} {
	rows := func(m Matrix3) []interface{} {
		out := make([]interface{}, 0, 3)
		for _, row := range m {
			out = append(out, []interface{}{row[0], row[1], row[2]})
		}
		return out
	}
	return map[string]interface{}{
		"rotation":            rows(p.Rotation),
		"translation":         []interface{}{p.Translation.X, p.Translation.Y, p.Translation.Z},
		"left_rectification":  rows(p.LeftRectification),
		"right_rectification": rows(p.RightRectification),
	}
}

func (p Parameters) String() string {
	var sb strings.Builder
	write := func(name string, m Matrix3) {
		fmt.Fprintf(&sb, "%s:\n%v\n", name, mat.Formatted(m.Dense(), mat.Prefix("  "), mat.Squeeze()))
	}
	write("rotation", p.Rotation)
	fmt.Fprintf(&sb, "translation: [%g %g %g]\n", p.Translation.X, p.Translation.Y, p.Translation.Z)
	write("left_rectification", p.LeftRectification)
	write("right_rectification", p.RightRectification)
	return sb.String()
}
