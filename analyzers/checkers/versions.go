package checkers

import (
	"fmt"
	osexec "os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// versionArgs lists how each tool reports its version; everything not
// listed here accepts --version.
var versionArgs = map[string][]string{
	"go": {"version"},
}

var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+|\d+\.\d+`)

// ToolVersion resolves a tool on PATH and probes it for its version.
// A missing binary or an unrecognizable answer is an error, the caller
// cannot analyze anything without the tool.
func ToolVersion(tool string) (*semver.Version, string, error) {
	path, err := osexec.LookPath(tool)
	if err != nil {
		return nil, "", fmt.Errorf("%s is not installed: %w", tool, err)
	}

	args, ok := versionArgs[tool]
	if !ok {
		args = []string{"--version"}
	}

	result, err := run(Invocation{}, tool, args...)
	if err != nil {
		return nil, path, err
	}
	if result.ExitCode != 0 {
		return nil, path, crash(tool, result)
	}

	output := result.Stdout
	if strings.TrimSpace(output) == "" {
		output = result.Stderr
	}

	raw := versionPattern.FindString(output)
	if raw == "" {
		return nil, path, fmt.Errorf("%s did not report a version: %s", tool, strings.TrimSpace(output))
	}

	version, err := semver.NewVersion(strings.TrimPrefix(raw, "v"))
	if err != nil {
		return nil, path, fmt.Errorf("failed to parse %s version %q: %w", tool, raw, err)
	}
	return version, path, nil
}
