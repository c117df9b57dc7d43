// Package stereovisionagri is a stereo-vision scaffold for agricultural robotics: dataset
// discovery, placeholder rectification, a trivial disparity map and confidence masking,
// plus viam camera components built on them.
package stereovisionagri

import (
	"path/filepath"

	"stereovisionagri/calibration"
	"stereovisionagri/dataset"
	"stereovisionagri/fileio"
)

// Version of the module.
const Version = "0.1.0"

// Info returns package metadata for banners and quick checks.
func Info() map[string]string {
	return map[string]string{
		"name":    "stereo-vision-agri-robotics",
		"version": Version,
		"modules": "dataset,calibration,disparity,fileio",
	}
}

// BuildDefaultConfig returns the default workspace config for root.
func BuildDefaultConfig(root string) WorkspaceConfig {
	return WorkspaceFromRoot(root)
}

// CreateDatasetRegistry registers each name as <root>/data/<name>.
func CreateDatasetRegistry(root string, names ...string) *dataset.Registry {
	dataDir := filepath.Join(fileio.ResolvePath(root), "data")
	registry := dataset.NewRegistry()
	for _, name := range names {
		registry.Register(name, filepath.Join(dataDir, name))
	}
	return registry
}

// DefaultCalibration returns placeholder rectification parameters for camera, or for
// the default rig when camera is nil.
func DefaultCalibration(camera *calibration.CameraModel) calibration.Parameters {
	model := calibration.DefaultCameraModel()
	if camera != nil {
		model = *camera
	}
	return calibration.ComputeRectificationParameters(model)
}
