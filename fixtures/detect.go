package fixtures

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flanksource/verdict/models"
)

var markerFiles = []struct {
	file      string
	toolchain models.Toolchain
}{
	{"Cargo.toml", models.ToolchainRust},
	{"go.mod", models.ToolchainGo},
	{"pyproject.toml", models.ToolchainPython},
	{"requirements.txt", models.ToolchainPython},
}

var extensions = []struct {
	ext       string
	toolchain models.Toolchain
}{
	{".rs", models.ToolchainRust},
	{".go", models.ToolchainGo},
	{".py", models.ToolchainPython},
}

func toolchainForExt(ext string) models.Toolchain {
	for _, e := range extensions {
		if e.ext == ext {
			return e.toolchain
		}
	}
	return models.ToolchainUnknown
}

// DetectToolchain determines the toolchain for a fixture path. Directories
// are identified by their marker file (Cargo.toml, go.mod, pyproject.toml),
// single files by extension. When a directory has no marker the sources
// inside it decide.
func DetectToolchain(path string) models.Toolchain {
	info, err := os.Stat(path)
	if err != nil {
		return models.ToolchainUnknown
	}

	if !info.IsDir() {
		return toolchainForExt(filepath.Ext(path))
	}

	for _, marker := range markerFiles {
		if _, err := os.Stat(filepath.Join(path, marker.file)); err == nil {
			return marker.toolchain
		}
	}

	for _, e := range extensions {
		matches, err := doublestar.Glob(os.DirFS(path), "**/*"+e.ext)
		if err == nil && len(matches) > 0 {
			return e.toolchain
		}
	}

	return models.ToolchainUnknown
}
