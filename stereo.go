package stereovisionagri

import (
	"image"

	"github.com/pkg/errors"

	"stereovisionagri/disparity"
	"stereovisionagri/grid"
)

// FrameConfig controls how a stereo frame is turned into a disparity map.
type FrameConfig struct {
	Threshold    float64 // minimum confidence kept, inclusive
	InvalidValue float64 // written where confidence is too low
}

// DefaultFrameConfig uses the disparity package defaults.
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{Threshold: disparity.DefaultThreshold, InvalidValue: disparity.DefaultInvalidValue}
}

// StereoToDisparity converts a (conceptually rectified) left/right image pair to
// grayscale grids and returns their disparity map. When confidenceImg is not nil its
// intensities, scaled to [0, 1], mask the result.
func StereoToDisparity(leftImg, rightImg, confidenceImg image.Image, config FrameConfig) ([][]float64, error) {
	images := []image.Image{leftImg, rightImg, confidenceImg}
	grids := make([][][]float64, len(images))
	for i, img := range images {
		if img == nil && i == 2 {
			break
		}
		g, err := grid.FromImage(img)
		if err != nil {
			return nil, errors.Wrapf(err, "%s image", frameSides[i])
		}
		grids[i] = g
	}
	return gridsToDisparity(grids[0], grids[1], grids[2], config)
}

// StereoBytesToDisparity is StereoToDisparity for encoded image files, as returned by
// fileio.LoadImageBytes. confidenceData may be nil.
func StereoBytesToDisparity(leftData, rightData, confidenceData []byte, config FrameConfig) ([][]float64, error) {
	blobs := [][]byte{leftData, rightData, confidenceData}
	grids := make([][][]float64, len(blobs))
	for i, data := range blobs {
		if data == nil && i == 2 {
			break
		}
		g, err := grid.FromBytes(data)
		if err != nil {
			return nil, errors.Wrapf(err, "%s image", frameSides[i])
		}
		grids[i] = g
	}
	return gridsToDisparity(grids[0], grids[1], grids[2], config)
}

var frameSides = []string{"left", "right", "confidence"}

func gridsToDisparity(left, right, confidence [][]float64, config FrameConfig) ([][]float64, error) {
	raw, err := disparity.ComputeDisparityMap(left, right, config.InvalidValue)
	if err != nil {
		return nil, err
	}
	if confidence != nil {
		confidence = grid.ToConfidence(confidence)
	}
	return disparity.ApplyConfidenceMask(raw, confidence, config.Threshold, config.InvalidValue)
}

// DisparityImage renders a disparity map for display.
func DisparityImage(m [][]float64) image.Image {
	return grid.ToGray(m)
}
