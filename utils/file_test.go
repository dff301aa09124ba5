// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.False(FileExists(path))
	require.NoError(os.WriteFile(path, nil, 0o600))
	require.True(FileExists(path))
	require.False(FileExists(dir))
}

func TestExpandHome(t *testing.T) {
	require := require.New(t)

	home, err := os.UserHomeDir()
	require.NoError(err)
	require.Equal(filepath.Join(home, ".nanod"), ExpandHome("~/.nanod"))
	require.Equal("/var/nanod", ExpandHome("/var/nanod"))
	require.Empty(ExpandHome(""))
}
