// Package replay provides a camera that plays back one side of a stereo dataset on disk,
// so the disparity camera can run against recorded field data.
package replay

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/rimage"
	"go.viam.com/rdk/utils"

	"stereovisionagri"
	"stereovisionagri/dataset"
	"stereovisionagri/fileio"
)

// Model is the dataset replay camera.
var Model = stereovisionagri.NamespaceFamily.WithModel("dataset-replay")

const (
	sideLeft  = "left"
	sideRight = "right"
)

func init() {
	resource.RegisterComponent(camera.API, Model,
		resource.Registration[camera.Camera, *Config]{
			Constructor: newReplay,
		},
	)
}

// Config selects the dataset directory and which side of each pair to serve.
type Config struct {
	Root        string `json:"root"`
	Side        string `json:"side"`
	LeftSuffix  string `json:"left-suffix,omitempty"`
	RightSuffix string `json:"right-suffix,omitempty"`
}

func (cfg *Config) discoverOptions() []dataset.DiscoverOption {
	left, right := cfg.LeftSuffix, cfg.RightSuffix
	if left == "" {
		left = dataset.DefaultLeftSuffix
	}
	if right == "" {
		right = dataset.DefaultRightSuffix
	}
	return []dataset.DiscoverOption{dataset.WithSuffixes(left, right)}
}

// Validate checks the config. A replay camera has no dependencies.
func (cfg *Config) Validate(path string) ([]string, error) {
	if cfg.Root == "" {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "root")
	}
	if cfg.Side != sideLeft && cfg.Side != sideRight {
		return nil, fmt.Errorf("%s: side must be %q or %q, got %q", path, sideLeft, sideRight, cfg.Side)
	}
	return nil, nil
}

type replay struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name resource.Name

	logger logging.Logger
	cfg    *Config

	pairs []dataset.ImagePair

	mu   sync.Mutex
	next int
}

func newReplay(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (camera.Camera, error) {
	conf, err := resource.NativeConfig[*Config](rawConf)
	if err != nil {
		return nil, err
	}

	return NewReplay(ctx, rawConf.ResourceName(), conf, logger)
}

// NewReplay discovers the pairs under conf.Root and returns a camera cycling through them.
func NewReplay(ctx context.Context, name resource.Name, conf *Config, logger logging.Logger) (camera.Camera, error) {
	pairs, err := dataset.Discover(conf.Root, conf.discoverOptions()...)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, errors.Wrapf(fileio.ErrNotFound, "no stereo pairs under %s", conf.Root)
	}
	logger.Infof("replaying %d %s images from %s", len(pairs), conf.Side, conf.Root)

	return &replay{
		name:   name,
		logger: logger,
		cfg:    conf,
		pairs:  pairs,
	}, nil
}

func (r *replay) Name() resource.Name {
	return r.name
}

// advance returns the path of the current frame and moves to the next pair, wrapping.
func (r *replay) advance() (string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pair := r.pairs[r.next]
	r.next = (r.next + 1) % len(r.pairs)
	if r.cfg.Side == sideRight {
		return pair.Right, pair.PairID()
	}
	return pair.Left, pair.PairID()
}

func (r *replay) frame() (image.Image, string, error) {
	path, id := r.advance()
	data, err := fileio.LoadImageBytes(path)
	if err != nil {
		return nil, "", err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrapf(err, "decoding %s", path)
	}
	r.logger.Debugf("serving pair %s from %s", id, path)
	return img, id, nil
}

func (r *replay) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	if raw, ok := cmd["seek"]; ok {
		idx, ok := raw.(float64)
		// compare as float so NaN, Inf and huge values never reach the int conversion
		if !ok || math.IsNaN(idx) || idx < 0 || idx >= float64(len(r.pairs)) || idx != math.Trunc(idx) {
			return nil, fmt.Errorf("seek needs an integer index in [0, %d), got %v", len(r.pairs), raw)
		}
		next := int(idx)
		r.mu.Lock()
		r.next = next
		r.mu.Unlock()
		return map[string]interface{}{"next": r.pairs[next].PairID()}, nil
	}
	if _, ok := cmd["pairs"]; ok {
		ids := make([]interface{}, 0, len(r.pairs))
		for _, p := range r.pairs {
			ids = append(ids, p.PairID())
		}
		return map[string]interface{}{"pairs": ids}, nil
	}
	return nil, fmt.Errorf("unknown command %v", cmd)
}

func (r *replay) Image(ctx context.Context, mimeType string, extra map[string]interface{}) ([]byte, camera.ImageMetadata, error) {
	if mimeType == "" {
		mimeType = utils.MimeTypeJPEG
	}
	img, _, err := r.frame()
	if err != nil {
		return nil, camera.ImageMetadata{}, err
	}
	data, err := rimage.EncodeImage(ctx, img, mimeType)
	if err != nil {
		return nil, camera.ImageMetadata{}, err
	}
	return data, camera.ImageMetadata{MimeType: mimeType}, nil
}

func (r *replay) Images(ctx context.Context) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	img, id, err := r.frame()
	if err != nil {
		return nil, resource.ResponseMetadata{}, err
	}
	return []camera.NamedImage{{Image: img, SourceName: id}}, resource.ResponseMetadata{}, nil
}

func (r *replay) NextPointCloud(ctx context.Context) (pointcloud.PointCloud, error) {
	return nil, errors.New("dataset replay camera does not produce point clouds")
}

func (r *replay) Properties(ctx context.Context) (camera.Properties, error) {
	return camera.Properties{
		SupportsPCD: false,
		MimeTypes:   []string{utils.MimeTypeJPEG, utils.MimeTypePNG},
	}, nil
}
