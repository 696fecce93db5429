package logflags

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	tracer, session, procfs = false, false, false
	Close()
}

type nopCloser struct {
	*bytes.Buffer
}

func (nopCloser) Close() error { return nil }

func TestSetup_withoutLog(t *testing.T) {
	defer reset()

	require.NoError(t, Setup(false, "", ""))
	assert.False(t, Tracer())
	assert.False(t, Session())
	assert.False(t, Procfs())
	assert.Equal(t, logrus.PanicLevel, TracerLogger().Logger.Level)
}

func TestSetup_outputWithoutLog(t *testing.T) {
	defer reset()

	assert.Equal(t, errLogstrWithoutLog, Setup(false, "tracer", ""))
	assert.Equal(t, errLogDestWithoutLog, Setup(false, "", "/tmp/x.log"))
}

func TestSetup_defaultLayers(t *testing.T) {
	defer reset()

	require.NoError(t, Setup(true, "", ""))
	assert.True(t, Tracer())
	assert.True(t, Session())
	assert.False(t, Procfs())
	assert.Equal(t, logrus.DebugLevel, SessionLogger().Logger.Level)
}

func TestSetup_selectedLayers(t *testing.T) {
	defer reset()

	require.NoError(t, Setup(true, "procfs, tracer", ""))
	assert.True(t, Tracer())
	assert.False(t, Session())
	assert.True(t, Procfs())
}

func TestSetup_logDest(t *testing.T) {
	defer reset()

	dest := filepath.Join(t.TempDir(), "stopthread.log")
	require.NoError(t, Setup(true, "tracer", dest))
	require.NotNil(t, logOut)
	assert.Equal(t, logOut, TracerLogger().Logger.Out)
}

func TestMakeLogger_fields(t *testing.T) {
	defer reset()

	buf := &bytes.Buffer{}
	logOut = nopCloser{buf}

	l := makeLogger(true, logrus.Fields{"layer": "tracer"})
	l.Debug("seized")
	assert.Contains(t, buf.String(), "layer=tracer")
	assert.Contains(t, buf.String(), "seized")

	buf.Reset()
	l = makeLogger(false, logrus.Fields{"layer": "tracer"})
	l.Debug("seized")
	assert.Empty(t, buf.String())
}

func TestSetup_resetsLayers(t *testing.T) {
	defer reset()

	require.NoError(t, Setup(true, "tracer,procfs", ""))
	require.NoError(t, Setup(true, "session", ""))
	assert.False(t, Tracer())
	assert.True(t, Session())
	assert.False(t, Procfs())
}
