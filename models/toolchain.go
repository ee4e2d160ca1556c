package models

import (
	"strings"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
)

// Toolchain identifies the language ecosystem a fixture belongs to.
type Toolchain string

const (
	ToolchainRust    Toolchain = "rust"
	ToolchainGo      Toolchain = "go"
	ToolchainPython  Toolchain = "python"
	ToolchainUnknown Toolchain = "unknown"
)

// String returns the string representation
func (t Toolchain) String() string {
	return string(t)
}

func (t Toolchain) Icon() string {
	switch t {
	case ToolchainRust:
		return "🦀"
	case ToolchainGo:
		return "🐹"
	case ToolchainPython:
		return "🐍"
	default:
		return "❓"
	}
}

func (t Toolchain) Pretty() api.Text {
	return clicky.Text(t.Icon()).Append(" ").Append(t.String(), "text-gray-500")
}

// ParseToolchain converts a string to a Toolchain type
func ParseToolchain(s string) Toolchain {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rust", "cargo":
		return ToolchainRust
	case "go", "golang":
		return ToolchainGo
	case "python", "py":
		return ToolchainPython
	default:
		return ToolchainUnknown
	}
}
