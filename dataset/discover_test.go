package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"stereovisionagri/fileio"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		test.That(t, os.MkdirAll(filepath.Dir(path), 0o755), test.ShouldBeNil)
		test.That(t, os.WriteFile(path, []byte(name), 0o644), test.ShouldBeNil)
	}
}

func TestDiscoverSinglePair(t *testing.T) {
	root := filepath.Join(t.TempDir(), "low_light")
	writeFiles(t, root, "frame001_L.png", "frame001_R.png", "readme.txt")

	pairs, err := Discover(root)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pairs, test.ShouldHaveLength, 1)

	pair := pairs[0]
	test.That(t, pair.PairID(), test.ShouldEqual, "frame001")
	test.That(t, pair.Metadata(), test.ShouldResemble, map[string]string{"pair_id": "frame001"})
	test.That(t, pair.Exists(), test.ShouldBeTrue)
	test.That(t, filepath.Base(pair.Left), test.ShouldEqual, "frame001_L.png")
	test.That(t, filepath.Base(pair.Right), test.ShouldEqual, "frame001_R.png")

	test.That(t, os.Remove(pair.Right), test.ShouldBeNil)
	test.That(t, pair.Exists(), test.ShouldBeFalse)
}

func TestDiscoverOrderingAndUnpaired(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"zeta_L.jpg", "zeta_R.jpg",
		"row2/alpha_R.png", "row1/alpha_L.png",
		"lonely_L.png",
		"orphan_R.png",
		"mid_L.bmp", "mid_R.bmp",
	)

	pairs, err := Discover(root)
	test.That(t, err, test.ShouldBeNil)

	var ids []string
	for _, p := range pairs {
		ids = append(ids, p.PairID())
		test.That(t, p.Exists(), test.ShouldBeTrue)
	}
	test.That(t, ids, test.ShouldResemble, []string{"alpha", "mid", "zeta"})
	test.That(t, pairs[0].Left, test.ShouldEqual, filepath.Join(fileio.ResolvePath(root), "row1", "alpha_L.png"))
}

func TestDiscoverCustomSuffixesAndTieBreak(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "plant-left.png", "plant-right.png", "plant_L.png", "plant_R.png")

	pairs, err := Discover(root, WithSuffixes("-left", "-right"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pairs, test.ShouldHaveLength, 1)
	test.That(t, pairs[0].PairID(), test.ShouldEqual, "plant")
	test.That(t, filepath.Base(pairs[0].Left), test.ShouldEqual, "plant-left.png")

	// with identical suffixes the left check always wins, so nothing pairs
	tie := t.TempDir()
	writeFiles(t, tie, "leaf_X.png", "leaf.png")
	pairs, err = Discover(tie, WithSuffixes("_X", "_X"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pairs, test.ShouldBeEmpty)
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, fileio.ErrNotFound), test.ShouldBeTrue)
}

func TestDiscoverRewalks(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a_L.png", "a_R.png")

	pairs, err := Discover(root)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pairs, test.ShouldHaveLength, 1)

	writeFiles(t, root, "b_L.png", "b_R.png")
	pairs, err = Discover(root)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pairs, test.ShouldHaveLength, 2)
}
