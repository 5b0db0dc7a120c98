package eventlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cyber_events.txt")
	sink, err := NewFileSink(path, false)
	require.NoError(t, err)

	require.NoError(t, sink.LogEvent(3, "CYBER EVENT: SOC sensor spoofing detected"))
	require.NoError(t, sink.LogEvent(4, "CYBER EVENT: Load sensor spoofing detected"))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"time=3 CYBER EVENT: SOC sensor spoofing detected\n"+
			"time=4 CYBER EVENT: Load sensor spoofing detected\n",
		string(data))
}

func TestFileSinkCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nested", "events.txt")
	sink, err := NewFileSink(path, false)
	require.NoError(t, err)
	require.NoError(t, sink.LogEvent(0, "x"))
	require.NoError(t, sink.Close())
	assert.FileExists(t, path)
}

func TestFileSinkAppendAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.txt")

	sink, err := NewFileSink(path, false)
	require.NoError(t, err)
	require.NoError(t, sink.LogEvent(1, "first"))
	require.NoError(t, sink.Close())

	sink, err = NewFileSink(path, false)
	require.NoError(t, err)
	require.NoError(t, sink.LogEvent(2, "second"))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "time=1 first\ntime=2 second\n", string(data))
}

func TestFileSinkTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content\n"), 0o644))

	sink, err := NewFileSink(path, true)
	require.NoError(t, err)
	require.NoError(t, sink.LogEvent(0, "fresh"))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "time=0 fresh\n", string(data))
}
