package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"stereovisionagri/fileio"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry()

	r.Register("low_light", filepath.Join(dir, "low_light"))
	root, err := r.Get("low_light")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, root, test.ShouldEqual, filepath.Join(fileio.ResolvePath(dir), "low_light"))

	// last registration wins
	r.Register("low_light", filepath.Join(dir, "other"))
	root, err = r.Get("low_light")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, filepath.Base(root), test.ShouldEqual, "other")

	_, err = os.Stat(root)
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
}

func TestRegistryUnknownName(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("orchard")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, fileio.ErrNotFound), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldEqual, `unknown dataset "orchard"; known datasets: none`)

	r.Register("vineyard", "/tmp/vineyard")
	r.Register("greenhouse", "/tmp/greenhouse")
	_, err = r.Get("orchard")
	test.That(t, err.Error(), test.ShouldEqual, `unknown dataset "orchard"; known datasets: greenhouse, vineyard`)

	var unknown *UnknownDatasetError
	test.That(t, errors.As(err, &unknown), test.ShouldBeTrue)
	test.That(t, unknown.Known, test.ShouldResemble, []string{"greenhouse", "vineyard"})
}

func TestRegistryItems(t *testing.T) {
	r := NewRegistry()
	test.That(t, r.Items(), test.ShouldBeEmpty)

	r.Register("b", "/data/b")
	r.Register("a", "/data/a")

	items := r.Items()
	test.That(t, items, test.ShouldHaveLength, 2)
	test.That(t, items["a"], test.ShouldEqual, fileio.ResolvePath("/data/a"))
	test.That(t, r.Names(), test.ShouldResemble, []string{"a", "b"})

	items["c"] = "/data/c"
	_, err := r.Get("c")
	test.That(t, err, test.ShouldNotBeNil)
}
