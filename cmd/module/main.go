package main

import (
	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/module"
	"go.viam.com/rdk/resource"

	"stereovisionagri"
	"stereovisionagri/replay"
)

func main() {
	module.ModularMain(
		resource.APIModel{API: camera.API, Model: stereovisionagri.DisparityCamera},
		resource.APIModel{API: camera.API, Model: replay.Model},
	)
}
