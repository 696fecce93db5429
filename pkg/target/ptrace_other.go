//go:build unix && !linux

package target

import (
	sys "golang.org/x/sys/unix"
)

func ptraceSeize(tid int) error {
	return sys.ENOSYS
}

func ptraceInterrupt(tid int) error {
	return sys.ENOSYS
}

func waitThread(tid int) (int, sys.WaitStatus, error) {
	return -1, 0, sys.ENOSYS
}
