package checkers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/commons/logger"
)

// scratchProject materializes a throwaway project wrapping a single-file
// fixture so project-scoped tools can run over it. files maps relative
// paths to content. The returned cleanup removes the whole directory and
// is safe to call on every exit path.
func scratchProject(label string, files map[string]string) (string, func(), error) {
	dir, err := os.MkdirTemp("", fmt.Sprintf("verdict-%s-*", label))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}

	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warnf("failed to remove scratch dir %s: %v", dir, err)
		}
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("failed to create scratch dir %s: %w", filepath.Dir(name), err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("failed to write scratch file %s: %w", name, err)
		}
	}

	return dir, cleanup, nil
}
