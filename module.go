package stereovisionagri

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/golang/geo/r2"
	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/rimage"
	"go.viam.com/rdk/rimage/transform"
	"go.viam.com/rdk/utils"

	"stereovisionagri/calibration"
	"stereovisionagri/disparity"
)

var (
	// NamespaceFamily is the model family of every component in this module.
	NamespaceFamily = resource.NewModelFamily("agristereo", "stereo-vision")

	// DisparityCamera serves the disparity map of two camera dependencies.
	DisparityCamera  = NamespaceFamily.WithModel("disparity-camera")
	errUnimplemented = errors.New("unimplemented")
)

func init() {
	resource.RegisterComponent(camera.API, DisparityCamera,
		resource.Registration[camera.Camera, *Config]{
			Constructor: newDisparityCamera,
		},
	)
}

// Config configures a disparity camera.
type Config struct {
	Left  string `json:"left"`
	Right string `json:"right"`

	// Confidence optionally names a camera whose gray intensities (0-255) are used as a
	// per-pixel confidence map.
	Confidence string `json:"confidence,omitempty"`

	FocalLengthPixels float64   `json:"focal-length-pixels"`
	BaselineMeters    float64   `json:"baseline-meters"`
	PrincipalPoint    []float64 `json:"principal-point,omitempty"`

	ConfidenceThreshold *float64 `json:"confidence-threshold,omitempty"`
	InvalidValue        float64  `json:"invalid-value,omitempty"`
}

func (cfg *Config) getConfidenceThreshold() float64 {
	if cfg.ConfidenceThreshold == nil {
		return disparity.DefaultThreshold
	}
	return *cfg.ConfidenceThreshold
}

func (cfg *Config) frameConfig() FrameConfig {
	return FrameConfig{Threshold: cfg.getConfidenceThreshold(), InvalidValue: cfg.InvalidValue}
}

// CameraModel is the stereo rig described by the config.
func (cfg *Config) CameraModel() calibration.CameraModel {
	model := calibration.CameraModel{FocalLength: cfg.FocalLengthPixels, Baseline: cfg.BaselineMeters}
	if len(cfg.PrincipalPoint) == 2 {
		model.PrincipalPoint = r2.Point{X: cfg.PrincipalPoint[0], Y: cfg.PrincipalPoint[1]}
	}
	return model
}

// Validate checks the config and returns the names of the cameras it depends on.
func (cfg *Config) Validate(path string) ([]string, error) {
	if cfg.Left == "" {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "left")
	}
	if cfg.Right == "" {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "right")
	}
	if cfg.FocalLengthPixels <= 0 {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "focal-length-pixels")
	}
	if cfg.BaselineMeters <= 0 {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "baseline-meters")
	}
	if cfg.PrincipalPoint != nil && len(cfg.PrincipalPoint) != 2 {
		return nil, fmt.Errorf("%s: principal-point needs exactly 2 values, got %d", path, len(cfg.PrincipalPoint))
	}

	deps := []string{cfg.Left, cfg.Right}
	if cfg.Confidence != "" {
		deps = append(deps, cfg.Confidence)
	}
	return deps, nil
}

type disparityCamera struct {
	resource.AlwaysRebuild

	name resource.Name

	logger logging.Logger
	cfg    *Config
	params calibration.Parameters

	cancelCtx  context.Context
	cancelFunc func()

	left, right, confidence camera.Camera

	mu       sync.Mutex
	lastSize image.Point
}

func newDisparityCamera(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (camera.Camera, error) {
	conf, err := resource.NativeConfig[*Config](rawConf)
	if err != nil {
		return nil, err
	}

	return NewDisparityCamera(ctx, deps, rawConf.ResourceName(), conf, logger)
}

// NewDisparityCamera builds a disparity camera from already resolved dependencies.
func NewDisparityCamera(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *Config, logger logging.Logger) (camera.Camera, error) {
	cancelCtx, cancelFunc := context.WithCancel(context.Background())

	s := &disparityCamera{
		name:       name,
		logger:     logger,
		cfg:        conf,
		params:     calibration.ComputeRectificationParameters(conf.CameraModel()),
		cancelCtx:  cancelCtx,
		cancelFunc: cancelFunc,
	}

	var err error
	s.left, err = camera.FromDependencies(deps, conf.Left)
	if err != nil {
		cancelFunc()
		return nil, err
	}
	s.right, err = camera.FromDependencies(deps, conf.Right)
	if err != nil {
		cancelFunc()
		return nil, err
	}
	if conf.Confidence != "" {
		s.confidence, err = camera.FromDependencies(deps, conf.Confidence)
		if err != nil {
			cancelFunc()
			return nil, err
		}
	}

	logger.Debugf("disparity camera %s: baseline %v, confidence threshold %v",
		name, s.params.BaselineLength(), conf.getConfidenceThreshold())
	return s, nil
}

func (s *disparityCamera) Name() resource.Name {
	return s.name
}

func (s *disparityCamera) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	if _, ok := cmd["calibration"]; ok {
		return s.params.ToMap(), nil
	}
	if _, ok := cmd["summary"]; ok {
		m, err := s.disparity(ctx)
		if err != nil {
			return nil, err
		}
		return disparity.Summarize(m, s.cfg.InvalidValue).ToMap(), nil
	}
	return nil, errUnimplemented
}

func (s *disparityCamera) Close(context.Context) error {
	s.cancelFunc()
	return nil
}

func grabOne(ctx context.Context, cam camera.Camera, which string) (image.Image, error) {
	all, _, err := cam.Images(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) != 1 {
		return nil, fmt.Errorf("expected exactly one image from %s camera, got %d", which, len(all))
	}
	return all[0].Image, nil
}

// disparity grabs one frame from every dependency and computes its masked disparity map.
// Grabs still in flight when the camera is closed are cancelled.
func (s *disparityCamera) disparity(ctx context.Context) ([][]float64, error) {
	if err := s.cancelCtx.Err(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.cancelCtx, cancel)
	defer stop()

	// TODO: fetch left and right concurrently so frames are closer in time
	leftImg, err := grabOne(ctx, s.left, "left")
	if err != nil {
		return nil, err
	}
	rightImg, err := grabOne(ctx, s.right, "right")
	if err != nil {
		return nil, err
	}

	var confidenceImg image.Image
	if s.confidence != nil {
		confidenceImg, err = grabOne(ctx, s.confidence, "confidence")
		if err != nil {
			return nil, err
		}
	}

	m, err := StereoToDisparity(leftImg, rightImg, confidenceImg, s.cfg.frameConfig())
	if err != nil {
		return nil, err
	}

	size := image.Point{Y: len(m)}
	for _, row := range m {
		if len(row) > size.X {
			size.X = len(row)
		}
	}
	s.mu.Lock()
	s.lastSize = size
	s.mu.Unlock()
	return m, nil
}

func (s *disparityCamera) Image(ctx context.Context, mimeType string, extra map[string]interface{}) ([]byte, camera.ImageMetadata, error) {
	if mimeType == "" {
		mimeType = utils.MimeTypePNG
	}
	m, err := s.disparity(ctx)
	if err != nil {
		return nil, camera.ImageMetadata{}, err
	}
	data, err := rimage.EncodeImage(ctx, DisparityImage(m), mimeType)
	if err != nil {
		return nil, camera.ImageMetadata{}, err
	}
	return data, camera.ImageMetadata{MimeType: mimeType}, nil
}

func (s *disparityCamera) Images(ctx context.Context) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	m, err := s.disparity(ctx)
	if err != nil {
		return nil, resource.ResponseMetadata{}, err
	}
	return []camera.NamedImage{{Image: DisparityImage(m), SourceName: "disparity"}}, resource.ResponseMetadata{}, nil
}

func (s *disparityCamera) NextPointCloud(ctx context.Context) (pointcloud.PointCloud, error) {
	return nil, errUnimplemented
}

func (s *disparityCamera) Properties(ctx context.Context) (camera.Properties, error) {
	s.mu.Lock()
	size := s.lastSize
	s.mu.Unlock()

	model := s.cfg.CameraModel()
	// the principal point is reported in rectified pixel coordinates
	pp, _ := s.params.RectifyPoints(model.PrincipalPoint, model.PrincipalPoint)
	return camera.Properties{
		SupportsPCD: false,
		IntrinsicParams: &transform.PinholeCameraIntrinsics{
			Width:  size.X,
			Height: size.Y,
			Fx:     model.FocalLength,
			Fy:     model.FocalLength,
			Ppx:    pp.X,
			Ppy:    pp.Y,
		},
		MimeTypes: []string{utils.MimeTypePNG, utils.MimeTypeJPEG},
	}, nil
}
