package main

import (
	"fmt"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"

	"github.com/flanksource/verdict/analyzers"
	"github.com/flanksource/verdict/config"
)

type AnalyzersOptions struct{}

func (o AnalyzersOptions) GetName() string { return "analyzers" }

func (o AnalyzersOptions) Help() api.Text {
	return clicky.Text(`Show the registered analyzers and probe their tools.

Each analyzer's external tools are resolved on PATH and version-checked
against the configured minimums, the same gate a verification run uses.`)
}

// ToolStatus is one probed tool, or one unavailable toolchain.
type ToolStatus struct {
	Toolchain string `json:"toolchain" pretty:"label=Toolchain,style=text-blue-600"`
	Tool      string `json:"tool,omitempty" pretty:"label=Tool,omitempty"`
	Version   string `json:"version,omitempty" pretty:"label=Version,style=text-yellow-600,omitempty"`
	Path      string `json:"path,omitempty" pretty:"label=Path,style=text-gray-500,omitempty"`
	Error     string `json:"error,omitempty" pretty:"label=Error,style=text-red-600,omitempty"`
}

func init() {
	clicky.AddCommand(rootCmd, AnalyzersOptions{}, func(opts AnalyzersOptions) (any, error) {
		workDir, err := getWorkingDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}

		cfg, err := config.LoadConfig(workDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}

		registry := analyzers.DefaultRegistry()
		adapter := analyzers.NewAdapter(registry, cfg)

		var rows []ToolStatus
		for _, analyzer := range registry.List() {
			tools, err := adapter.ProbeToolchain(analyzer.Toolchain())
			if err != nil {
				rows = append(rows, ToolStatus{
					Toolchain: analyzer.Name(),
					Error:     err.Error(),
				})
				continue
			}
			for _, tool := range tools {
				rows = append(rows, ToolStatus{
					Toolchain: analyzer.Name(),
					Tool:      tool.Name,
					Version:   tool.Version,
					Path:      tool.Path,
				})
			}
		}
		return rows, nil
	})
}
