package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrepareClean(t *testing.T) {
	root := t.TempDir()
	internal := filepath.Join(root, "src", "cmd", "internal")
	require.NoError(t, os.MkdirAll(filepath.Join(internal, "objfile"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(internal, "objfile", "objfile.go"), []byte("package objfile\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(internal, "run.sh"), []byte("#!/bin/sh\n"), 0o755))
	objfile := filepath.Join(root, "src", "cmd", "objfile")

	out, err := run(t, "prepare", "--goroot", root)
	require.NoError(t, err)
	require.Equal(t, "copied "+objfile+"\n", out)
	b, err := os.ReadFile(filepath.Join(objfile, "objfile", "objfile.go"))
	require.NoError(t, err)
	require.Equal(t, "package objfile\n", string(b))
	si, err := os.Stat(filepath.Join(objfile, "run.sh"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), si.Mode().Perm())

	out, err = run(t, "prepare", "--goroot", root)
	require.NoError(t, err)
	require.Equal(t, "exists "+objfile+"\n", out)

	out, err = run(t, "clean", "--goroot", root)
	require.NoError(t, err)
	require.Equal(t, "removed "+objfile+"\n", out)
	_, err = os.Stat(objfile)
	require.True(t, os.IsNotExist(err))
	out, err = run(t, "clean", "--goroot", root)
	require.NoError(t, err)
	require.Equal(t, "absent "+objfile+"\n", out)

	_, err = run(t, "prepare", "--goroot", filepath.Join(root, "none"))
	require.Error(t, err)
}
