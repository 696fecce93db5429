package target

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

var (
	ErrInvalidTid = errors.New("invalid tid")
	ErrAttach     = errors.New("attach failed")
	ErrInterrupt  = errors.New("interrupt failed")
	ErrWait       = errors.New("wait failed")
)

// InvalidTidError reports a token that is not a valid thread id.
type InvalidTidError struct {
	Token string
}

func (e *InvalidTidError) Error() string {
	return fmt.Sprintf("invalid tid '%s'", e.Token)
}

func (e *InvalidTidError) Is(target error) bool {
	return target == ErrInvalidTid
}

// Op names the step of the stop sequence that failed.
type Op string

const (
	OpAttach    Op = "attach"
	OpInterrupt Op = "interrupt"
	OpWait      Op = "wait"
)

// TraceError is a failed ptrace or wait4 call against a thread.
type TraceError struct {
	Op    Op
	Tid   Tid
	Errno syscall.Errno
}

func (e *TraceError) Error() string {
	return fmt.Sprintf("cannot trace stop %d: %s", e.Tid, e.Errno.Error())
}

func (e *TraceError) Unwrap() error {
	return e.Errno
}

func (e *TraceError) Is(target error) bool {
	switch e.Op {
	case OpAttach:
		return target == ErrAttach
	case OpInterrupt:
		return target == ErrInterrupt
	case OpWait:
		return target == ErrWait
	}
	return false
}

// StopStateViolation is the panic value raised when a thread reported a
// state change other than a stop after being interrupted. Continuing would
// report a thread as stopped when it is not.
type StopStateViolation struct {
	Tid    Tid
	Status unix.WaitStatus
}

func (v *StopStateViolation) Error() string {
	return fmt.Sprintf("thread %d: expected stopped, got %s", v.Tid, describeStatus(v.Status))
}

// errnoOf extracts the errno from err, falling back to EINVAL for errors
// that did not come from a syscall.
func errnoOf(err error) syscall.Errno {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return unix.EINVAL
}
