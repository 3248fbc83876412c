package acquire

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Workspace is the scratch directory that holds every clone of one run.
type Workspace struct {
	root string
}

// NewWorkspace creates gitrepos_<login>_<suffix> under base, or under the
// system temp dir when base is empty. The random suffix only avoids collisions
// between concurrent runs for the same login.
func NewWorkspace(base, login string) (*Workspace, error) {
	if base == "" {
		base = os.TempDir()
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	root := filepath.Join(base, fmt.Sprintf("gitrepos_%s_%s", sanitize(login), suffix))

	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{root: root}, nil
}

func (w *Workspace) Root() string {
	return w.root
}

// Dir is the clone destination of the i-th repository.
func (w *Workspace) Dir(i int, fullName string) string {
	return filepath.Join(w.root, fmt.Sprintf("%03d-%s", i, sanitize(fullName)))
}

func (w *Workspace) Remove() error {
	return os.RemoveAll(w.root)
}

func sanitize(s string) string {
	return strings.NewReplacer("/", "-", "\\", "-", "..", "-").Replace(s)
}
