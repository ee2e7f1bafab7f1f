//go:build goloader

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSymbols(t *testing.T) {
	out, err := run(t, "symbols", "--prefix", "runtime.ma")
	if err != nil {
		t.Skipf("goloader can not read this executable: %v", err)
	}
	require.Contains(t, strings.Split(out, "\n"), "runtime.main")
}
