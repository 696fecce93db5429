package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/hitzhangjie/stopthread/pkg/logflags"
	"github.com/hitzhangjie/stopthread/pkg/target"
)

var (
	ErrSelfTarget = errors.New("thread belongs to this process")
	ErrDeclined   = errors.New("declined by operator")
)

// Options configures a Session.
type Options struct {
	// Tracer issues the ptrace requests. Defaults to target.PtraceTracer().
	Tracer target.Tracer
	// Procfs is used to refuse our own threads and to describe stopped
	// threads. Nil disables both.
	Procfs *target.ProcFS
	// Self is the pid of this process. Defaults to os.Getpid().
	Self int

	Confirm  bool
	Describe bool
	// Prompter asks the operator when Confirm is set.
	Prompter Prompter

	// Signals end the wait for termination. They are only caught once
	// every thread is stopped; until then they keep their default action.
	Signals []os.Signal

	Stdout io.Writer
	Stderr io.Writer
}

// Session stops the threads named on the command line and then holds them
// until its context is cancelled.
type Session struct {
	controller *target.Controller
	procfs     *target.ProcFS
	self       int
	confirm    bool
	describe   bool
	prompter   Prompter
	lifecycle  *target.Lifecycle
	stdout     io.Writer
	stderr     io.Writer
	signals    []os.Signal
	notify     func(context.Context, ...os.Signal) (context.Context, context.CancelFunc)
	log        *logrus.Entry

	defers []func()
}

// New creates a Session from opts.
func New(opts Options) *Session {
	if opts.Tracer == nil {
		opts.Tracer = target.PtraceTracer()
	}
	if opts.Self == 0 {
		opts.Self = os.Getpid()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Confirm && opts.Prompter == nil {
		opts.Prompter = NewLinePrompter()
	}
	return &Session{
		controller: target.NewController(opts.Tracer),
		procfs:     opts.Procfs,
		self:       opts.Self,
		confirm:    opts.Confirm,
		describe:   opts.Describe,
		prompter:   opts.Prompter,
		lifecycle:  target.NewLifecycle(),
		stdout:     opts.Stdout,
		stderr:     opts.Stderr,
		signals:    opts.Signals,
		notify:     signal.NotifyContext,
		log:        logflags.SessionLogger(),
	}
}

// AtExit registers fn to run when Run returns, in reverse order.
func (s *Session) AtExit(fn func()) *Session {
	s.defers = append(s.defers, fn)
	return s
}

// State reports where the session is in its lifecycle.
func (s *Session) State() target.State {
	return s.lifecycle.State()
}

// Stopped returns the number of threads stopped so far.
func (s *Session) Stopped() uint64 {
	return s.controller.Stopped()
}

// Run processes tokens one at a time. The first failure is printed to
// stderr and returned; the remaining tokens are not looked at and the
// threads already stopped stay stopped until the process exits.
//
// When every token succeeded Run blocks until ctx is done or one of the
// configured signals arrives, and returns nil.
// Nothing is detached explicitly: the kernel resumes every stopped thread
// once this process is gone.
func (s *Session) Run(ctx context.Context, tokens []string) error {
	defer func() {
		s.closePrompter()
		for idx := len(s.defers) - 1; idx >= 0; idx-- {
			s.defers[idx]()
		}
		s.lifecycle.Advance(target.Terminated)
	}()

	s.lifecycle.Advance(target.ProcessingArguments)
	for _, token := range tokens {
		if err := s.stop(token); err != nil {
			fmt.Fprintln(s.stderr, err)
			return err
		}
	}
	s.closePrompter()

	if len(s.signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = s.notify(ctx, s.signals...)
		defer stop()
	}

	fmt.Fprintln(s.stdout, "Waiting for signal...")
	s.lifecycle.Advance(target.AwaitingTermination)
	if logflags.Session() {
		s.log.WithField("stopped", s.Stopped()).Debug("awaiting termination")
	}

	<-ctx.Done()
	s.log.Debug("interrupted, releasing threads on exit")
	return nil
}

func (s *Session) stop(token string) error {
	tid, err := target.ParseTid(token)
	if err != nil {
		return err
	}
	if err := s.checkSelf(tid); err != nil {
		return err
	}

	var th *target.Thread
	if s.describe && s.procfs != nil {
		if th, err = s.procfs.Thread(tid); err != nil {
			s.log.WithError(err).WithField("tid", tid).Debug("could not describe thread")
		}
	}

	if s.confirm {
		ok, err := s.prompter.Confirm(fmt.Sprintf("Stop TID %d%s? [y/N] ", tid, label(th)))
		if err != nil {
			return fmt.Errorf("cannot trace stop %d: %w", tid, err)
		}
		if !ok {
			return fmt.Errorf("cannot trace stop %d: %w", tid, ErrDeclined)
		}
	}

	if err := s.controller.Stop(tid); err != nil {
		return err
	}
	fmt.Fprintf(s.stdout, "Stopped TID %d%s\n", tid, label(th))
	return nil
}

func (s *Session) closePrompter() {
	if s.prompter != nil {
		s.prompter.Close()
		s.prompter = nil
	}
}

// checkSelf refuses threads of this very process. Stopping one of them
// could stop the thread that is supposed to wait for the others.
func (s *Session) checkSelf(tid target.Tid) error {
	if int(tid) == s.self {
		return fmt.Errorf("cannot trace stop %d: %w", tid, ErrSelfTarget)
	}
	if s.procfs == nil {
		return nil
	}
	tgid, err := s.procfs.ThreadGroup(tid)
	if err != nil {
		// let the kernel report it
		s.log.WithError(err).WithField("tid", tid).Debug("thread group unknown")
		return nil
	}
	if tgid == s.self {
		return fmt.Errorf("cannot trace stop %d: %w", tid, ErrSelfTarget)
	}
	return nil
}

func label(th *target.Thread) string {
	if th == nil {
		return ""
	}
	return fmt.Sprintf(" (%s, state %s)", th.Comm, th.State)
}
