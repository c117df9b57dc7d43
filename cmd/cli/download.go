package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const sampleBaseURL = "https://raw.githubusercontent.com/opencv/opencv/4.x/samples/data"

// sampleManifest is written next to the downloaded pair. Nothing reads it back.
type sampleManifest struct {
	Left        string `json:"left"`
	Right       string `json:"right"`
	Description string `json:"description"`
}

func (a *actions) downloadSample(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("download-sample needs an output directory")
	}
	outDir := c.Args().First()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	a.logger.Infof("downloading sample images to %s", outDir)
	files := []struct{ remote, local string }{
		{"aloeL.jpg", "aloe_L.jpg"},
		{"aloeR.jpg", "aloe_R.jpg"},
	}
	for _, f := range files {
		url := c.String(flagBaseURL) + "/" + f.remote
		if err := fetch(c.Context, url, filepath.Join(outDir, f.local)); err != nil {
			return err
		}
	}

	manifest, err := json.MarshalIndent(sampleManifest{
		Left:        files[0].local,
		Right:       files[1].local,
		Description: "Sample aloe stereo pair from OpenCV",
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "manifest.json"), manifest, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Done.")
	return nil
}

func fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "downloading %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("downloading %s: %s", url, resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", dest)
	}
	return f.Close()
}
