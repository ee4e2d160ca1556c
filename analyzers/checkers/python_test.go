package checkers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPythonPrepareDirectory(t *testing.T) {
	dir := t.TempDir()

	inv := Invocation{Path: dir}
	cleanup, err := Python{}.Prepare(&inv)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, dir, inv.WorkDir)
	assert.Equal(t, ".", Python{}.target(inv))
}

func TestPythonPrepareSingleFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(file, []byte("import os\n"), 0644))

	inv := Invocation{Path: file}
	cleanup, err := Python{}.Prepare(&inv)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, dir, inv.WorkDir)
	assert.Equal(t, "app.py", Python{}.target(inv))
}
