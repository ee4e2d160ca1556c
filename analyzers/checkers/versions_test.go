package checkers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPattern(t *testing.T) {
	cases := map[string]string{
		"go version go1.22.1 linux/amd64":           "1.22.1",
		"cargo 1.75.0 (1d8b05cdd 2023-11-20)":       "1.75.0",
		"rustfmt 1.7.0-stable (a28077b 2023-12-04)": "1.7.0",
		"ruff 0.4.4":   "0.4.4",
		"tool vNext":   "",
		"no digits at": "",
	}

	for input, expected := range cases {
		assert.Equal(t, expected, versionPattern.FindString(input), "input: %s", input)
	}
}

func TestToolVersionMissingBinary(t *testing.T) {
	_, _, err := ToolVersion("definitely-not-a-real-tool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not installed")
}
