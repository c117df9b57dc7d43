package replay

import (
	"context"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/test"

	"stereovisionagri"
)

func writeFrame(t *testing.T, path string, v uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: v})
	img.SetGray(1, 0, color.Gray{Y: v + 1})
	test.That(t, imaging.Save(img, path), test.ShouldBeNil)
}

func testDataset(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFrame(t, filepath.Join(root, "b_L.png"), 100)
	writeFrame(t, filepath.Join(root, "b_R.png"), 40)
	writeFrame(t, filepath.Join(root, "a_L.png"), 50)
	writeFrame(t, filepath.Join(root, "a_R.png"), 20)
	test.That(t, os.WriteFile(filepath.Join(root, "c_L.png"), []byte("unpaired"), 0o644), test.ShouldBeNil)
	return root
}

func TestConfigValidate(t *testing.T) {
	deps, err := (&Config{Root: "/data", Side: "left"}).Validate("path")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldBeEmpty)

	_, err = (&Config{Side: "left"}).Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = (&Config{Root: "/data", Side: "middle"}).Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReplayCycles(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	cam, err := NewReplay(ctx, camera.Named("left"), &Config{Root: testDataset(t), Side: "left"}, logger)
	test.That(t, err, test.ShouldBeNil)
	defer cam.Close(ctx)

	var ids []string
	for i := 0; i < 3; i++ {
		imgs, _, err := cam.Images(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, imgs, test.ShouldHaveLength, 1)
		ids = append(ids, imgs[0].SourceName)
	}
	test.That(t, ids, test.ShouldResemble, []string{"a", "b", "a"})

	resp, err := cam.DoCommand(ctx, map[string]interface{}{"pairs": true})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, resp["pairs"], test.ShouldResemble, []interface{}{"a", "b"})

	resp, err = cam.DoCommand(ctx, map[string]interface{}{"seek": 1.0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, resp["next"], test.ShouldEqual, "b")
	imgs, _, err := cam.Images(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, imgs[0].SourceName, test.ShouldEqual, "b")

	for _, bad := range []interface{}{7.0, -1.0, 1.5, 1e19, math.Inf(1), math.NaN(), "1"} {
		_, err = cam.DoCommand(ctx, map[string]interface{}{"seek": bad})
		test.That(t, err, test.ShouldNotBeNil)
	}
	imgs, _, err = cam.Images(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, imgs[0].SourceName, test.ShouldEqual, "a")

	data, meta, err := cam.Image(ctx, "", nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, meta.MimeType, test.ShouldEqual, "image/jpeg")
	test.That(t, data, test.ShouldNotBeEmpty)
}

func TestReplayEmptyDataset(t *testing.T) {
	logger := logging.NewTestLogger(t)
	_, err := NewReplay(context.Background(), camera.Named("x"), &Config{Root: t.TempDir(), Side: "right"}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no stereo pairs")

	_, err = NewReplay(context.Background(), camera.Named("x"), &Config{Root: "/does/not/exist", Side: "right"}, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReplayFeedsDisparityCamera(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	root := testDataset(t)

	left, err := NewReplay(ctx, camera.Named("left"), &Config{Root: root, Side: "left"}, logger)
	test.That(t, err, test.ShouldBeNil)
	right, err := NewReplay(ctx, camera.Named("right"), &Config{Root: root, Side: "right"}, logger)
	test.That(t, err, test.ShouldBeNil)

	deps := resource.Dependencies{camera.Named("left"): left, camera.Named("right"): right}
	conf := &stereovisionagri.Config{Left: "left", Right: "right", FocalLengthPixels: 35, BaselineMeters: 0.12}
	disp, err := stereovisionagri.NewDisparityCamera(ctx, deps, camera.Named("disp"), conf, logger)
	test.That(t, err, test.ShouldBeNil)

	resp, err := disp.DoCommand(ctx, map[string]interface{}{"summary": true})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, resp["mean"], test.ShouldEqual, 30.0)

	resp, err = disp.DoCommand(ctx, map[string]interface{}{"summary": true})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, resp["mean"], test.ShouldEqual, 60.0)
}
