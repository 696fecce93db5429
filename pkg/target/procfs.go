package target

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/prometheus/procfs"
	"github.com/sirupsen/logrus"

	"github.com/hitzhangjie/stopthread/pkg/logflags"
)

// DefaultProcRoot is where procfs is normally mounted.
const DefaultProcRoot = procfs.DefaultMountPoint

// Thread describes one task as seen in /proc.
type Thread struct {
	Tid   Tid    // thread ID
	Tgid  int    // thread group (process) ID
	Comm  string // command name of the thread
	State string // scheduler state, e.g. R, S, D, t
}

// ProcFS reads thread information from a procfs mount.
type ProcFS struct {
	root string
	fs   procfs.FS
	log  *logrus.Entry
}

// NewProcFS opens the procfs mounted at root.
func NewProcFS(root string) (*ProcFS, error) {
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("could not open procfs at %s: %w", root, err)
	}
	return &ProcFS{root: root, fs: fs, log: logflags.ProcfsLogger()}, nil
}

// Thread loads comm, state and thread group of tid. Thread ids are
// accessible as /proc/<tid> even though they are not listed there.
func (p *ProcFS) Thread(tid Tid) (*Thread, error) {
	return readThread(p.fs, tid)
}

// ThreadGroup returns the id of the process tid belongs to.
func (p *ProcFS) ThreadGroup(tid Tid) (int, error) {
	proc, err := p.fs.Proc(int(tid))
	if err != nil {
		return 0, err
	}
	status, err := proc.NewStatus()
	if err != nil {
		return 0, fmt.Errorf("could not read status of %d: %w", tid, err)
	}
	p.log.WithFields(logrus.Fields{"tid": tid, "tgid": status.TGID}).Debug("thread group")
	return status.TGID, nil
}

// Threads lists every task of process pid, ordered by tid.
func (p *ProcFS) Threads(pid int) ([]*Thread, error) {
	taskDir := filepath.Join(p.root, strconv.Itoa(pid), "task")
	tfs, err := procfs.NewFS(taskDir)
	if err != nil {
		return nil, fmt.Errorf("process %d not existed: %w", pid, err)
	}
	procs, err := tfs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("load threads err: %w", err)
	}

	threads := make([]*Thread, 0, len(procs))
	for _, proc := range procs {
		th, err := readThread(tfs, Tid(proc.PID))
		if err != nil {
			// the task may have exited since the directory was read
			p.log.WithError(err).WithField("tid", proc.PID).Debug("skipping task")
			continue
		}
		threads = append(threads, th)
	}
	if logflags.Procfs() {
		p.log.WithFields(logrus.Fields{"pid": pid, "threads": len(threads)}).Debug("listed threads")
	}
	return threads, nil
}

func readThread(fs procfs.FS, tid Tid) (*Thread, error) {
	proc, err := fs.Proc(int(tid))
	if err != nil {
		return nil, err
	}
	stat, err := proc.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not read stat of %d: %w", tid, err)
	}
	status, err := proc.NewStatus()
	if err != nil {
		return nil, fmt.Errorf("could not read status of %d: %w", tid, err)
	}
	return &Thread{
		Tid:   tid,
		Tgid:  status.TGID,
		Comm:  stat.Comm,
		State: stat.State,
	}, nil
}
