package checkers

import (
	"fmt"
	"strings"

	"github.com/flanksource/clicky/exec"
	"github.com/flanksource/gomplate/v3"
)

// run executes a tool and collects its output. A non-zero exit is not a
// failure at this layer, linters exit non-zero when they find issues;
// callers judge the exit code after parsing. The returned error covers
// failures to start, time out, or be found on PATH.
func run(inv Invocation, name string, args ...string) (*exec.ExecResult, error) {
	process := exec.NewExec(name, args...).WithCwd(inv.WorkDir)
	process.SucceedOnNonZero = true
	if inv.Timeout > 0 {
		process = process.WithTimeout(inv.Timeout)
	}
	if inv.Task != nil {
		process = process.WithTask(inv.Task)
	}

	result := process.Run().Result()
	if result.Error != nil {
		return result, fmt.Errorf("%s: %w", name, result.Error)
	}
	return result, nil
}

// execTool dispatches between a configured command override and the
// analyzer default. Overrides are gomplate templates run through
// bash -c, the same way build commands are templated.
func execTool(inv Invocation, override string, name string, args ...string) (*exec.ExecResult, error) {
	if override == "" {
		return run(inv, name, args...)
	}

	rendered, err := gomplate.RunTemplate(inv.Vars, gomplate.Template{
		Template: override,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to template command %q: %w", override, err)
	}
	return run(inv, "bash", "-c", rendered)
}

// crash summarizes a tool run that exited non-zero without a single
// parseable finding, which means the tool itself fell over rather than
// reporting issues.
func crash(name string, result *exec.ExecResult) error {
	detail := strings.TrimSpace(result.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(result.Stdout)
	}
	if len(detail) > 2000 {
		detail = detail[:2000] + "..."
	}
	return fmt.Errorf("%s exited with code %d: %s", name, result.ExitCode, detail)
}
