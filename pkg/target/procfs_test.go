package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureFS(t *testing.T) *ProcFS {
	fs, err := NewProcFS("testdata/proc")
	require.NoError(t, err)
	return fs
}

func TestProcFS_Thread(t *testing.T) {
	th, err := fixtureFS(t).Thread(101)
	require.NoError(t, err)
	assert.Equal(t, &Thread{Tid: 101, Tgid: 100, Comm: "worker-1", State: "R"}, th)
}

func TestProcFS_ThreadMissing(t *testing.T) {
	_, err := fixtureFS(t).Thread(999)
	assert.Error(t, err)
}

func TestProcFS_ThreadGroup(t *testing.T) {
	tgid, err := fixtureFS(t).ThreadGroup(101)
	require.NoError(t, err)
	assert.Equal(t, 100, tgid)
}

func TestProcFS_Threads(t *testing.T) {
	threads, err := fixtureFS(t).Threads(100)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, Tid(100), threads[0].Tid)
	assert.Equal(t, "server", threads[0].Comm)
	assert.Equal(t, Tid(101), threads[1].Tid)
	assert.Equal(t, "worker-1", threads[1].Comm)
}

func TestProcFS_ThreadsMissingProcess(t *testing.T) {
	_, err := fixtureFS(t).Threads(999)
	assert.Error(t, err)
}

func TestNewProcFS_missingRoot(t *testing.T) {
	_, err := NewProcFS("testdata/nope")
	assert.Error(t, err)
}
