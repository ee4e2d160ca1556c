package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ghodss/yaml"
)

const DefaultTimeout = 2 * time.Minute

// ToolCommands overrides the command line used for one toolchain.
// Commands are gomplate templates, {{.dir}}, {{.file}}, {{.filename}} and
// {{.ext}} expand to the fixture being analyzed.
type ToolCommands struct {
	Lint   string `yaml:"lint,omitempty" json:"lint,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

type HarnessConfig struct {
	MaxWorkers  int                     `yaml:"max_workers,omitempty" json:"max_workers,omitempty"`
	Timeout     string                  `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	MinVersions map[string]string       `yaml:"min_versions,omitempty" json:"min_versions,omitempty"`
	Commands    map[string]ToolCommands `yaml:"commands,omitempty" json:"commands,omitempty"`
	Exclude     []string                `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

type VerdictConfig struct {
	Harness HarnessConfig `yaml:"harness" json:"harness"`
}

func DefaultHarnessConfig() HarnessConfig {
	return HarnessConfig{
		MinVersions: map[string]string{},
		Commands:    map[string]ToolCommands{},
	}
}

// TimeoutDuration parses the configured per-fixture timeout, falling back to
// the default on empty or unparseable values. Timeouts are stored as strings
// because the yaml layer round-trips through JSON and cannot decode "30s"
// into a time.Duration.
func (c HarnessConfig) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// LoadConfig merges .verdict.yaml files from the user's home directory, the
// git root and the working directory, in that order. Later files win.
func LoadConfig(cwd string) (HarnessConfig, error) {
	cfg := DefaultHarnessConfig()

	home, err := os.UserHomeDir()
	if err == nil {
		cfg = mergeFromFile(cfg, filepath.Join(home, ".verdict.yaml"))
	}

	gitRoot := findGitRoot(cwd)
	if gitRoot != "" {
		cfg = mergeFromFile(cfg, filepath.Join(gitRoot, ".verdict.yaml"))
	}

	absCwd, _ := filepath.Abs(cwd)
	if absCwd != gitRoot {
		cfg = mergeFromFile(cfg, filepath.Join(absCwd, ".verdict.yaml"))
	}

	return cfg, nil
}

func mergeFromFile(base HarnessConfig, path string) HarnessConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		return base
	}
	var vc VerdictConfig
	if err := yaml.Unmarshal(data, &vc); err != nil {
		return base
	}
	return MergeHarnessConfig(base, vc.Harness)
}

// MergeHarnessConfig overlays override onto base. MinVersions and
// Commands merge key-wise so a level can adjust a single tool without
// restating the rest; Exclude replaces wholesale, the nearest level that
// sets it owns the full exclusion list.
func MergeHarnessConfig(base, override HarnessConfig) HarnessConfig {
	if override.MaxWorkers > 0 {
		base.MaxWorkers = override.MaxWorkers
	}
	if override.Timeout != "" {
		base.Timeout = override.Timeout
	}
	if len(override.MinVersions) > 0 {
		for k, v := range override.MinVersions {
			base.MinVersions[k] = v
		}
	}
	if len(override.Commands) > 0 {
		for k, v := range override.Commands {
			base.Commands[k] = v
		}
	}
	if len(override.Exclude) > 0 {
		base.Exclude = override.Exclude
	}
	return base
}

func findGitRoot(path string) string {
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}

	for {
		if isGitRoot(dir) {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return dir
			}
			return abs
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}
