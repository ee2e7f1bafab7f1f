package native

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlatform(t *testing.T) {
	require.True(t, Platform(runtime.GOOS))
	require.True(t, Platform(runtime.GOARCH))
	require.False(t, Platform("plan10"))
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd":
		require.True(t, Platform("unix"))
	case "windows":
		require.False(t, Platform("unix"))
	}

	t.Setenv("NATIVE_TEST_ATOM", "1")
	require.True(t, Platform("env:NATIVE_TEST_ATOM"))
	t.Setenv("NATIVE_TEST_ATOM", "")
	require.False(t, Platform("env:NATIVE_TEST_ATOM"))
}

func TestOverlay(t *testing.T) {
	eval := Overlay(Platform, map[string]bool{runtime.GOOS: false, "wayland": true})
	require.False(t, eval(runtime.GOOS))
	require.True(t, eval("wayland"))
	require.True(t, eval(runtime.GOARCH))
	require.False(t, Overlay(nil, nil)("x"))
	require.True(t, MustParseCondition(`wayland && !`+runtime.GOOS).Evaluate(eval))
}

func TestCandidates(t *testing.T) {
	c := NewCandidates(DefaultPolicy, "a", "b")
	name, policy := c.Next()
	require.Equal(t, "a", name)
	require.Equal(t, DefaultPolicy, policy)
	require.True(t, c.Retry("a", policy, errNotFound))
	name, _ = c.Next()
	require.Equal(t, "b", name)
	require.False(t, c.Retry("b", policy, errNotFound))
	name, _ = c.Next()
	require.Empty(t, name)
	require.False(t, c.Retry("", policy, nil))
	require.Equal(t, 2, c.Tried())
	require.ErrorIs(t, c.Err(), errNotFound)

	empty := NewCandidates(DefaultPolicy)
	require.False(t, empty.Retry("", DefaultPolicy, nil))
	require.ErrorIs(t, empty.Err(), ErrNoCandidate)
}

func TestRaise(t *testing.T) {
	retry := Raise(func(string, LoadPolicy, error) bool { return true })
	require.True(t, retry("a", DefaultPolicy, errNotFound))

	giveUp := Raise(nil)
	require.False(t, giveUp("", DefaultPolicy, nil))
	require.PanicsWithError(t, errNotFound.Error(), func() { giveUp("a", DefaultPolicy, errNotFound) })
}

func TestParseHelpers(t *testing.T) {
	k, err := ParseKind("data")
	require.NoError(t, err)
	require.Equal(t, DataReference, k)
	k, err = ParseKind("")
	require.NoError(t, err)
	require.Equal(t, Function, k)
	_, err = ParseKind("table")
	require.Error(t, err)

	s, err := ParseSearchPath("application", "System")
	require.NoError(t, err)
	require.Equal(t, SearchApplicationDir|SearchSystem32, s)
	_, err = ParseSearchPath("nowhere")
	require.Error(t, err)
}

func TestProbe(t *testing.T) {
	names := candidatePaths("/opt/lib/libx.so", LoadPolicy{})
	require.Equal(t, []string{"/opt/lib/libx.so"}, names)
	names = candidatePaths("x", LoadPolicy{})
	require.Equal(t, "x", names[0])
	require.Contains(t, names, "x"+libSuffix)
	require.Contains(t, names, libPrefix+"x"+libSuffix)
}
