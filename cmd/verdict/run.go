package main

import (
	"fmt"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"

	"github.com/flanksource/verdict/analyzers/checkers"
	"github.com/flanksource/verdict/cmd/verdict/choose"
	"github.com/flanksource/verdict/fixtures"
	"github.com/flanksource/verdict/harness"
	"github.com/flanksource/verdict/shutdown"
)

type RunOptions struct {
	Filter     []string `json:"filter,omitempty" flag:"filter" help:"Only verify fixtures matching these globs"`
	MaxWorkers int      `json:"max_workers,omitempty" flag:"max-workers" help:"Verify up to N fixtures concurrently (default serial)"`
	Timeout    string   `json:"timeout,omitempty" flag:"timeout" help:"Per-fixture tool timeout (e.g. 90s)"`
	List       bool     `json:"list,omitempty" flag:"list" help:"List the fixtures that would be verified without running them"`
	Choose     bool     `json:"choose,omitempty" flag:"choose" help:"Pick fixtures interactively"`
	Args       []string `json:"-" args:"true"`
}

func (o RunOptions) GetName() string { return "run" }

func (o RunOptions) Help() api.Text {
	return clicky.Text(`Verify lint and format fixtures against their declared expectations.

Fixtures are discovered from verdict-fixtures.yaml and fixtures.md
manifests under the given paths (the working directory when no path is
given). Each fixture is analyzed with its toolchain's tools and the
diagnostics are matched against the declared expectation.

The exit code is 0 only when every fixture passes.

EXAMPLES:
  # Verify everything under the current directory
  verdict run

  # Verify one fixture tree
  verdict run testdata/rust

  # Only fixtures matching a glob
  verdict run --filter 'needless-*'

  # Verify up to 4 fixtures concurrently
  verdict run --max-workers 4

  # Pick fixtures interactively
  verdict run --choose`)
}

func init() {
	clicky.AddCommand(rootCmd, RunOptions{}, func(opts RunOptions) (any, error) {
		workDir, err := getWorkingDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}

		runner, err := harness.Prepare(harness.RunOptions{
			Paths:      opts.Args,
			Filter:     opts.Filter,
			WorkDir:    workDir,
			MaxWorkers: opts.MaxWorkers,
			Timeout:    opts.Timeout,
		})
		if err != nil {
			return nil, err
		}

		if opts.List {
			return runner.Selected(), nil
		}

		if opts.Choose {
			filter, err := chooseFixtures(runner.Selected())
			if err != nil {
				return nil, err
			}
			if len(filter) == 0 {
				return nil, fmt.Errorf("no fixtures chosen")
			}
			runner.Filter = filter
		}

		shutdown.AddHookWithPriority("stop launching fixtures", shutdown.PriorityIngress, runner.Cancel)
		shutdown.AddHookWithPriority("kill stray tool processes", shutdown.PriorityWorkers, checkers.KillStrays)
		shutdown.OnInterrupt()
		defer shutdown.Shutdown()

		report, err := runner.Verify()
		if err != nil {
			return nil, err
		}

		exitCode = report.ExitCode()
		return report.Summary(), nil
	})
}

func chooseFixtures(selected []fixtures.Fixture) ([]string, error) {
	items := make([]choose.Item, len(selected))
	for i, fixture := range selected {
		items[i] = choose.Item{
			Label:  fixture.Name,
			Detail: fmt.Sprintf("%s expect=%s", fixture.Toolchain, fixture.Expected),
		}
	}
	return choose.Pick(items, choose.WithHeader("Select fixtures to verify"))
}
