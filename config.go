package stereovisionagri

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"stereovisionagri/calibration"
	"stereovisionagri/dataset"
	"stereovisionagri/fileio"
)

// DefaultProjectName names workspaces that do not set one.
const DefaultProjectName = "Stereo Vision for Agricultural Robotics"

// WorkspaceConfig anchors experiments at a workspace directory. Datasets live in
// <workspace_root>/data/<name>.
type WorkspaceConfig struct {
	ProjectName    string                   `json:"project_name"`
	WorkspaceRoot  string                   `json:"workspace_root"`
	DefaultDataset string                   `json:"default_dataset,omitempty"`
	Camera         *calibration.CameraModel `json:"camera,omitempty"`
	Datasets       []string                 `json:"datasets,omitempty"`
}

// WorkspaceFromRoot returns the default workspace config for root.
func WorkspaceFromRoot(root string) WorkspaceConfig {
	camera := calibration.DefaultCameraModel()
	return WorkspaceConfig{
		ProjectName:   DefaultProjectName,
		WorkspaceRoot: fileio.ResolvePath(root),
		Camera:        &camera,
	}
}

// LoadWorkspaceConfig reads a JSON workspace config. A relative workspace_root is taken
// relative to the config file; missing fields get the WorkspaceFromRoot defaults.
func LoadWorkspaceConfig(path string) (*WorkspaceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(fileio.ErrNotFound, "workspace config not found: %s", path)
		}
		return nil, err
	}

	var cfg WorkspaceConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing workspace config %s", path)
	}

	root := cfg.WorkspaceRoot
	if !filepath.IsAbs(root) && !strings.HasPrefix(root, "~") {
		root = filepath.Join(filepath.Dir(path), root)
	}
	defaults := WorkspaceFromRoot(root)
	cfg.WorkspaceRoot = defaults.WorkspaceRoot
	if cfg.ProjectName == "" {
		cfg.ProjectName = defaults.ProjectName
	}
	if cfg.Camera == nil {
		cfg.Camera = defaults.Camera
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid workspace config %s", path)
	}
	return &cfg, nil
}

// Validate checks that the default dataset, if any, is one of the listed datasets.
func (cfg *WorkspaceConfig) Validate() error {
	if cfg.WorkspaceRoot == "" {
		return errors.New("workspace_root is required")
	}
	if cfg.DefaultDataset == "" || len(cfg.Datasets) == 0 {
		return nil
	}
	for _, name := range cfg.Datasets {
		if name == cfg.DefaultDataset {
			return nil
		}
	}
	return errors.Errorf("default_dataset %q is not one of the datasets %v", cfg.DefaultDataset, cfg.Datasets)
}

// Registry registers every configured dataset under the workspace's data directory.
func (cfg *WorkspaceConfig) Registry() *dataset.Registry {
	return CreateDatasetRegistry(cfg.WorkspaceRoot, cfg.Datasets...)
}

// CameraModel returns the configured rig, or the default one.
func (cfg *WorkspaceConfig) CameraModel() calibration.CameraModel {
	if cfg.Camera == nil {
		return calibration.DefaultCameraModel()
	}
	return *cfg.Camera
}
