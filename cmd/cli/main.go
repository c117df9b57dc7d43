// Package main is the stereovision command line tool.
package main

import (
	"os"

	"github.com/urfave/cli/v2"
	"go.viam.com/rdk/logging"
)

const (
	flagWorkspace   = "workspace"
	flagDataset     = "dataset"
	flagExt         = "ext"
	flagLeftSuffix  = "left-suffix"
	flagRightSuffix = "right-suffix"
	flagFocal       = "focal"
	flagBaseline    = "baseline"
	flagPpx         = "ppx"
	flagPpy         = "ppy"
	flagLeft        = "left"
	flagRight       = "right"
	flagConfidence  = "confidence"
	flagThreshold   = "threshold"
	flagInvalid     = "invalid"
	flagOut         = "out"
	flagBaseURL     = "base-url"
)

func main() {
	logger := logging.NewLogger("stereovision")
	if err := newApp(logger).Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newApp(logger logging.Logger) *cli.App {
	a := &actions{logger: logger}

	workspaceFlag := &cli.StringFlag{
		Name:  flagWorkspace,
		Usage: "workspace config (JSON) providing datasets and the camera model",
	}
	suffixFlags := []cli.Flag{
		&cli.StringFlag{Name: flagLeftSuffix, Value: "_L", Usage: "stem suffix of left images"},
		&cli.StringFlag{Name: flagRightSuffix, Value: "_R", Usage: "stem suffix of right images"},
	}

	return &cli.App{
		Name:  "stereovision",
		Usage: "stereo vision tooling for agricultural robotics datasets",
		Commands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "print package metadata",
				Action: a.info,
			},
			{
				Name:      "images",
				Usage:     "list image files under a directory",
				ArgsUsage: "<dir>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: flagExt, Usage: "extensions to include (default .png .jpg .jpeg .bmp)"},
				},
				Action: a.images,
			},
			{
				Name:      "discover",
				Usage:     "list the stereo pairs of a dataset",
				ArgsUsage: "[dir]",
				Flags: append([]cli.Flag{
					workspaceFlag,
					&cli.StringFlag{Name: flagDataset, Usage: "dataset name registered in the workspace"},
				}, suffixFlags...),
				Action: a.discover,
			},
			{
				Name:  "calibrate",
				Usage: "print placeholder rectification parameters for a camera model",
				Flags: []cli.Flag{
					workspaceFlag,
					&cli.Float64Flag{Name: flagFocal, Usage: "focal length in pixels"},
					&cli.Float64Flag{Name: flagBaseline, Usage: "baseline in meters"},
					&cli.Float64Flag{Name: flagPpx, Usage: "principal point x"},
					&cli.Float64Flag{Name: flagPpy, Usage: "principal point y"},
				},
				Action: a.calibrate,
			},
			{
				Name:      "disparity",
				Usage:     "compute disparity maps for one pair or every pair of a dataset",
				ArgsUsage: "[dataset dir]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: flagLeft, Usage: "left image"},
					&cli.StringFlag{Name: flagRight, Usage: "right image"},
					&cli.StringFlag{Name: flagConfidence, Usage: "confidence image (gray, 255 = fully confident)"},
					&cli.Float64Flag{Name: flagThreshold, Value: 0.5, Usage: "minimum confidence kept"},
					&cli.Float64Flag{Name: flagInvalid, Value: 0, Usage: "value written for masked pixels"},
					&cli.StringFlag{Name: flagOut, Usage: "output image, or output directory for a dataset"},
				}, suffixFlags...),
				Action: a.computeDisparity,
			},
			{
				Name:      "download-sample",
				Usage:     "download the OpenCV aloe stereo pair",
				ArgsUsage: "<dir>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagBaseURL, Value: sampleBaseURL, Hidden: true},
				},
				Action: a.downloadSample,
			},
		},
	}
}
