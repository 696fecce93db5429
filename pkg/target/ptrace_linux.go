package target

import (
	sys "golang.org/x/sys/unix"
)

// ptraceSeize calls ptrace(PTRACE_SEIZE). Unlike PTRACE_ATTACH it does not
// send SIGSTOP to the thread.
func ptraceSeize(tid int) error {
	_, _, e1 := sys.Syscall6(sys.SYS_PTRACE, sys.PTRACE_SEIZE, uintptr(tid), 0, 0, 0, 0)
	if e1 != 0 {
		return e1
	}
	return nil
}

// ptraceInterrupt calls ptrace(PTRACE_INTERRUPT), which stops exactly the
// given seized thread and not the rest of its thread group.
func ptraceInterrupt(tid int) error {
	_, _, e1 := sys.Syscall6(sys.SYS_PTRACE, sys.PTRACE_INTERRUPT, uintptr(tid), 0, 0, 0, 0)
	if e1 != 0 {
		return e1
	}
	return nil
}

// waitThread blocks in wait4 until tid reports a state change. __WALL is
// required to see threads other than the group leader.
func waitThread(tid int) (int, sys.WaitStatus, error) {
	var s sys.WaitStatus
	for {
		wpid, err := sys.Wait4(tid, &s, sys.WALL, nil)
		if err == sys.EINTR {
			continue
		}
		return wpid, s, err
	}
}
