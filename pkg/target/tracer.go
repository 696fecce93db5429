package target

import (
	"runtime"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sys/unix"

	"github.com/hitzhangjie/stopthread/pkg/logflags"
)

// Tracer issues the three requests needed to stop a single thread.
type Tracer interface {
	// Seize attaches to tid without stopping it.
	Seize(tid Tid) error
	// Interrupt asks the kernel to stop the seized thread tid.
	Interrupt(tid Tid) error
	// Wait blocks until tid reports a state change.
	Wait(tid Tid) (int, unix.WaitStatus, error)
}

// ptracer is the Tracer backed by ptrace(2) and wait4(2).
//
// The kernel records the calling *thread* as the tracer, so every request
// has to come from the same OS thread, and that thread must outlive the
// attachments: when a tracer thread exits its tracees are detached and
// resume running. All requests are therefore funneled through one goroutine
// that locks itself to its OS thread and never returns.
//
// issue: https://github.com/golang/go/issues/7699
type ptracer struct {
	once       sync.Once
	ptraceCh   chan func()
	ptraceDone chan struct{}
}

var defaultTracer = &ptracer{
	ptraceCh:   make(chan func()),
	ptraceDone: make(chan struct{}),
}

// PtraceTracer returns the process-wide ptrace Tracer.
func PtraceTracer() Tracer {
	return defaultTracer
}

func (p *ptracer) exec(fn func()) {
	p.once.Do(func() {
		go func() {
			// never unlocked, see the type comment
			runtime.LockOSThread()
			for reqFn := range p.ptraceCh {
				reqFn()
				p.ptraceDone <- struct{}{}
			}
		}()
	})
	p.ptraceCh <- fn
	<-p.ptraceDone
}

func (p *ptracer) Seize(tid Tid) (err error) {
	p.exec(func() { err = ptraceSeize(int(tid)) })
	return
}

func (p *ptracer) Interrupt(tid Tid) (err error) {
	p.exec(func() { err = ptraceInterrupt(int(tid)) })
	return
}

func (p *ptracer) Wait(tid Tid) (wpid int, status unix.WaitStatus, err error) {
	p.exec(func() { wpid, status, err = waitThread(int(tid)) })
	return
}

// Controller stops threads through a Tracer. It keeps no record of the
// threads it stopped: the kernel owns the attachments and releases all of
// them when this process exits.
type Controller struct {
	tracer  Tracer
	stopped *atomic.Uint64
	log     *logrus.Entry
}

// NewController returns a Controller issuing requests through t.
func NewController(t Tracer) *Controller {
	return &Controller{
		tracer:  t,
		stopped: atomic.NewUint64(0),
		log:     logflags.TracerLogger(),
	}
}

// Stop seizes tid, interrupts it and waits until the kernel reports it
// stopped. The wait has no timeout.
//
// A state change other than a stop panics with *StopStateViolation.
func (c *Controller) Stop(tid Tid) error {
	if err := c.tracer.Seize(tid); err != nil {
		return &TraceError{Op: OpAttach, Tid: tid, Errno: errnoOf(err)}
	}
	c.log.WithField("tid", tid).Debug("seized")

	if err := c.tracer.Interrupt(tid); err != nil {
		return &TraceError{Op: OpInterrupt, Tid: tid, Errno: errnoOf(err)}
	}
	c.log.WithField("tid", tid).Debug("interrupt requested")

	wpid, status, err := c.tracer.Wait(tid)
	if err != nil {
		return &TraceError{Op: OpWait, Tid: tid, Errno: errnoOf(err)}
	}
	if wpid != int(tid) {
		return &TraceError{Op: OpWait, Tid: tid, Errno: unix.ECHILD}
	}
	if logflags.Tracer() {
		c.log.WithFields(logrus.Fields{"tid": tid, "status": describeStatus(status)}).Debug("waited")
	}

	if !status.Stopped() {
		panic(&StopStateViolation{Tid: tid, Status: status})
	}

	c.stopped.Inc()
	return nil
}

// Stopped returns how many threads this controller has stopped.
func (c *Controller) Stopped() uint64 {
	return c.stopped.Load()
}

func describeStatus(status unix.WaitStatus) string {
	switch {
	case status.Exited():
		return "exited: " + strconv.Itoa(status.ExitStatus())
	case status.Signaled():
		return "signaled: " + status.Signal().String()
	case status.Stopped():
		return "stopped: " + status.StopSignal().String()
	case status.Continued():
		return "continued"
	default:
		return strconv.Itoa(int(status))
	}
}
