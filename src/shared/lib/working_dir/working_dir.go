package working_dir

import (
	"os"
	"path/filepath"

	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
)

type WorkingDir struct {
	root string
}

func NewWorkingDir(dir string) (WorkingDir, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return WorkingDir{}, cerr.Field("dir", dir).Wrap(err).Error("Failed to convert working dir to absolute format")
	}

	if err := os.MkdirAll(absDir, os.ModePerm); err != nil {
		return WorkingDir{}, cerr.Field("dir", absDir).Wrap(err).Error("Failed to create working dir")
	}

	return WorkingDir{root: absDir}, nil
}

func (w WorkingDir) Root() string {
	return w.root
}

// TempDir creates a fresh scratch directory under the root.
// Callers own its removal.
func (w WorkingDir) TempDir() (string, error) {
	dir, err := os.MkdirTemp(w.root, "scratch-")
	if err != nil {
		return "", cerr.Field("root", w.root).Wrap(err).Error("Failed to create temp dir")
	}

	return dir, nil
}

func (w WorkingDir) String() string {
	return w.root
}
