package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/rdk/logging"

	"stereovisionagri"
	"stereovisionagri/calibration"
	"stereovisionagri/dataset"
	"stereovisionagri/disparity"
	"stereovisionagri/fileio"
)

type actions struct {
	logger logging.Logger
}

func (a *actions) info(c *cli.Context) error {
	info := stereovisionagri.Info()
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(c.App.Writer, "%s: %s\n", k, info[k])
	}
	return nil
}

func (a *actions) images(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("images needs exactly one directory")
	}
	paths, err := fileio.ListImages(c.Args().First(), c.StringSlice(flagExt)...)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(c.App.Writer, p)
	}
	return nil
}

func loadWorkspace(c *cli.Context) (*stereovisionagri.WorkspaceConfig, error) {
	if !c.IsSet(flagWorkspace) {
		return nil, nil
	}
	return stereovisionagri.LoadWorkspaceConfig(c.String(flagWorkspace))
}

// datasetRoot picks the directory to scan: an explicit argument, or a dataset of the
// workspace (--dataset, else its default dataset).
func datasetRoot(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return c.Args().First(), nil
	}
	ws, err := loadWorkspace(c)
	if err != nil {
		return "", err
	}
	if ws == nil {
		return "", errors.New("need a dataset directory or --workspace")
	}
	name := c.String(flagDataset)
	if name == "" {
		name = ws.DefaultDataset
	}
	return ws.Registry().Get(name)
}

func discoverFlags(c *cli.Context, root string) ([]dataset.ImagePair, error) {
	return dataset.Discover(root, dataset.WithSuffixes(c.String(flagLeftSuffix), c.String(flagRightSuffix)))
}

func (a *actions) discover(c *cli.Context) error {
	root, err := datasetRoot(c)
	if err != nil {
		return err
	}
	pairs, err := discoverFlags(c, root)
	if err != nil {
		return err
	}
	a.logger.Debugf("found %d pairs under %s", len(pairs), root)
	for _, p := range pairs {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", p.PairID(), p.Left, p.Right)
	}
	return nil
}

func (a *actions) calibrate(c *cli.Context) error {
	ws, err := loadWorkspace(c)
	if err != nil {
		return err
	}
	model := calibration.DefaultCameraModel()
	if ws != nil {
		model = ws.CameraModel()
	}
	if c.IsSet(flagFocal) {
		model.FocalLength = c.Float64(flagFocal)
	}
	if c.IsSet(flagBaseline) {
		model.Baseline = c.Float64(flagBaseline)
	}
	if c.IsSet(flagPpx) || c.IsSet(flagPpy) {
		model.PrincipalPoint = r2.Point{X: c.Float64(flagPpx), Y: c.Float64(flagPpy)}
	}

	fmt.Fprintf(c.App.Writer, "focal_length: %g\nbaseline: %g\nprincipal_point: [%g %g]\n",
		model.FocalLength, model.Baseline, model.PrincipalPoint.X, model.PrincipalPoint.Y)
	params := calibration.ComputeRectificationParameters(model)
	fmt.Fprint(c.App.Writer, params.String())
	fmt.Fprintf(c.App.Writer, "baseline_length: %g\n", params.BaselineLength())
	return nil
}

func (a *actions) computeDisparity(c *cli.Context) error {
	frame := stereovisionagri.FrameConfig{Threshold: c.Float64(flagThreshold), InvalidValue: c.Float64(flagInvalid)}

	if c.IsSet(flagLeft) || c.IsSet(flagRight) {
		if !c.IsSet(flagLeft) || !c.IsSet(flagRight) {
			return errors.New("--left and --right go together")
		}
		return a.disparityPair(c, c.String(flagLeft), c.String(flagRight), c.String(flagConfidence), c.String(flagOut), frame)
	}

	if c.NArg() != 1 {
		return errors.New("need --left/--right or a dataset directory")
	}
	pairs, err := discoverFlags(c, c.Args().First())
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		a.logger.Warnf("no stereo pairs under %s", c.Args().First())
	}
	for _, p := range pairs {
		out := ""
		if c.IsSet(flagOut) {
			out = filepath.Join(c.String(flagOut), p.PairID()+"_D.png")
		}
		fmt.Fprintf(c.App.Writer, "%s: ", p.PairID())
		if err := a.disparityPair(c, p.Left, p.Right, "", out, frame); err != nil {
			return errors.Wrapf(err, "pair %s", p.PairID())
		}
	}
	return nil
}

func (a *actions) disparityPair(c *cli.Context, left, right, confidence, out string, frame stereovisionagri.FrameConfig) error {
	leftData, err := fileio.LoadImageBytes(left)
	if err != nil {
		return err
	}
	rightData, err := fileio.LoadImageBytes(right)
	if err != nil {
		return err
	}
	var confidenceData []byte
	if confidence != "" {
		if confidenceData, err = fileio.LoadImageBytes(confidence); err != nil {
			return err
		}
	}

	m, err := stereovisionagri.StereoBytesToDisparity(leftData, rightData, confidenceData, frame)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, disparity.Summarize(m, frame.InvalidValue))

	if out == "" {
		return nil
	}
	if err := imaging.Save(stereovisionagri.DisparityImage(m), out); err != nil {
		return errors.Wrapf(err, "writing %s", out)
	}
	a.logger.Infof("wrote %s", out)
	return nil
}
