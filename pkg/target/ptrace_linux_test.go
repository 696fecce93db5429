package target

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func startSleeper(t *testing.T) *exec.Cmd {
	cmd := exec.Command("sleep", "60")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		cmd.Process.Kill()
		cmd.Wait()
	})
	return cmd
}

func TestPtraceTracer_StopsThread(t *testing.T) {
	cmd := startSleeper(t)
	tid := Tid(cmd.Process.Pid)

	err := NewController(PtraceTracer()).Stop(tid)
	if errors.Is(err, unix.EPERM) || errors.Is(err, unix.ENOSYS) {
		t.Skipf("ptrace not permitted here: %v", err)
	}
	require.NoError(t, err)

	fs, err := NewProcFS(DefaultProcRoot)
	require.NoError(t, err)
	th, err := fs.Thread(tid)
	require.NoError(t, err)
	assert.Equal(t, "t", th.State)
}

func TestPtraceTracer_NoSuchThread(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	tid := Tid(cmd.Process.Pid)

	err := NewController(PtraceTracer()).Stop(tid)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAttach))
	assert.True(t, errors.Is(err, unix.ESRCH) || errors.Is(err, unix.EPERM))
}
