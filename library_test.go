package native

import (
	"bytes"
	"testing"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/require"
)

func captureLogger(t *testing.T, level log.Level) *bytes.Buffer {
	b := new(bytes.Buffer)
	old := Logger
	Logger = &log.Logger{Level: level, Writer: &log.IOWriter{Writer: b}}
	t.Cleanup(func() { Logger = old })
	return b
}

func TestDebugLibrary(t *testing.T) {
	b := captureLogger(t, log.WarnLevel)
	loader := newFakeLoader(map[string]map[string]uintptr{"lib": {"f": 1}})
	quiet, _, _ := fakeLibrary("quiet", loader, nil, "lib")
	plan := Consolidate([]ImportRequest{{Symbol: "f", Library: quiet}})
	require.Equal(t, Resolved, plan.Groups[0].Resolve())
	require.Zero(t, b.Len())

	loud, _, _ := fakeLibrary("loud", loader, nil, "missing", "lib")
	loud.Debug = true
	plan = Consolidate([]ImportRequest{
		{Symbol: "f", Library: loud},
		{Symbol: "g", Library: loud, Condition: Atom("never")},
	})
	require.Equal(t, Resolved, plan.Groups[0].Resolve())
	out := b.String()
	t.Log(out)
	require.Contains(t, out, `"library":"loud"`)
	require.Contains(t, out, "library load failed")
	require.Contains(t, out, "library loaded")
	require.Contains(t, out, "bucket skipped")
	require.Contains(t, out, "library group finished")
	require.NotContains(t, out, `"library":"quiet"`)
	require.Equal(t, log.WarnLevel, Logger.Level)
}

func TestDebugLibraryFollowsLowerLevel(t *testing.T) {
	b := captureLogger(t, log.TraceLevel)
	loader := newFakeLoader(map[string]map[string]uintptr{"lib": {"f": 1}})
	lib, _, _ := fakeLibrary("lib", loader, nil, "lib")
	plan := Consolidate([]ImportRequest{{Symbol: "f", Library: lib}})
	require.Equal(t, Resolved, plan.Groups[0].Resolve())
	require.Contains(t, b.String(), `"level":"debug"`)
	require.Contains(t, b.String(), "library group finished")
}
