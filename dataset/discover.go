package dataset

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"stereovisionagri/fileio"
)

const (
	// DefaultLeftSuffix marks the left image of a pair, e.g. frame001_L.png.
	DefaultLeftSuffix = "_L"
	// DefaultRightSuffix marks the right image of a pair, e.g. frame001_R.png.
	DefaultRightSuffix = "_R"

	// MetadataPairID is the metadata key holding the shared base name of a pair.
	MetadataPairID = "pair_id"
)

// ImagePair is one left/right stereo pair found on disk.
type ImagePair struct {
	Left  string
	Right string

	metadata map[string]string
}

// Exists reports whether both images are currently on disk.
func (p ImagePair) Exists() bool {
	return fileio.Exists(p.Left) && fileio.Exists(p.Right)
}

// Metadata returns a copy of the pair's metadata.
func (p ImagePair) Metadata() map[string]string {
	out := make(map[string]string, len(p.metadata))
	for k, v := range p.metadata {
		out[k] = v
	}
	return out
}

// PairID is the base name the two images share.
func (p ImagePair) PairID() string {
	return p.metadata[MetadataPairID]
}

type discoverOptions struct {
	leftSuffix, rightSuffix string
}

// DiscoverOption configures Discover.
type DiscoverOption func(*discoverOptions)

// WithSuffixes overrides the stem suffixes identifying left and right images.
func WithSuffixes(left, right string) DiscoverOption {
	return func(o *discoverOptions) {
		o.leftSuffix = left
		o.rightSuffix = right
	}
}

// Discover walks root and returns every complete stereo pair, sorted by pair id.
// A file whose stem carries the left suffix is always treated as a left image, even
// if it also ends with the right suffix. Bases with only one side are dropped.
func Discover(root string, opts ...DiscoverOption) ([]ImagePair, error) {
	o := discoverOptions{leftSuffix: DefaultLeftSuffix, rightSuffix: DefaultRightSuffix}
	for _, opt := range opts {
		opt(&o)
	}

	dir := fileio.ResolvePath(root)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(fileio.ErrNotFound, "dataset root does not exist: %s", dir)
		}
		return nil, err
	}

	lefts := map[string]string{}
	rights := map[string]string{}
	err := fileio.WalkFiles(dir, func(path string) {
		stem, _ := fileio.SplitExt(path)
		switch {
		case strings.HasSuffix(stem, o.leftSuffix):
			lefts[strings.TrimSuffix(stem, o.leftSuffix)] = path
		case strings.HasSuffix(stem, o.rightSuffix):
			rights[strings.TrimSuffix(stem, o.rightSuffix)] = path
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning dataset root %s", dir)
	}

	bases := make([]string, 0, len(lefts))
	for base := range lefts {
		if _, ok := rights[base]; ok {
			bases = append(bases, base)
		}
	}
	sort.Strings(bases)

	pairs := make([]ImagePair, 0, len(bases))
	for _, base := range bases {
		pairs = append(pairs, ImagePair{
			Left:     lefts[base],
			Right:    rights[base],
			metadata: map[string]string{MetadataPairID: base},
		})
	}
	return pairs, nil
}
