// Package grid converts between images and the numeric pixel grids the disparity
// package works on.
package grid

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// FromBytes decodes an encoded image (png, jpeg, bmp, ...) into a grid of grayscale
// intensities in [0, 255].
func FromBytes(data []byte) ([][]float64, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadGrayScale)
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("decoding image: no pixel data")
	}
	return matToGrid(mat), nil
}

// FromImage converts img into a grid of grayscale intensities in [0, 255].
func FromImage(img image.Image) ([][]float64, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	src := imageToMat(img)
	defer src.Close()
	if src.Channels() == 1 {
		return matToGrid(src), nil
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	return matToGrid(gray), nil
}

func matToGrid(mat gocv.Mat) [][]float64 {
	out := make([][]float64, mat.Rows())
	for y := range out {
		row := make([]float64, mat.Cols())
		for x := range row {
			row[x] = float64(mat.GetUCharAt(y, x))
		}
		out[y] = row
	}
	return out
}

// imageToMat copies img into a mat anchored at its bounds' origin. Gray images become a
// single channel mat, everything else 8-bit BGR for OpenCV to convert.
func imageToMat(img image.Image) gocv.Mat {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok {
		mat := gocv.NewMatWithSize(b.Dy(), b.Dx(), gocv.MatTypeCV8U)
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				mat.SetUCharAt(y, x, g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
		return mat
	}

	mat := gocv.NewMatWithSize(b.Dy(), b.Dx(), gocv.MatTypeCV8UC3)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			mat.SetUCharAt(y, 3*x, c.B)
			mat.SetUCharAt(y, 3*x+1, c.G)
			mat.SetUCharAt(y, 3*x+2, c.R)
		}
	}
	return mat
}

// ToGray renders m as an 8-bit image, stretching its value range to 0..255.
// Rows shorter than the widest row are left black.
func ToGray(m [][]float64) *image.Gray {
	width := 0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range m {
		if len(row) > width {
			width = len(row)
		}
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	img := image.NewGray(image.Rect(0, 0, width, len(m)))
	scale := 0.0
	if hi > lo {
		scale = 255 / (hi - lo)
	}
	for y, row := range m {
		for x, v := range row {
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round((v - lo) * scale))})
		}
	}
	return img
}

// ToConfidence maps 8-bit intensities to confidences in [0, 1].
func ToConfidence(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for y, row := range m {
		conf := make([]float64, len(row))
		for x, v := range row {
			conf[x] = math.Max(0, math.Min(1, v/255))
		}
		out[y] = conf
	}
	return out
}
