package logflags

import (
	"errors"
	"io"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var tracer = false
var session = false
var procfs = false

var logOut io.WriteCloser

func makeLogger(flag bool, fields logrus.Fields) *logrus.Entry {
	logger := logrus.New().WithFields(fields)
	logger.Logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	logger.Logger.Level = logrus.DebugLevel
	if !flag {
		logger.Logger.Level = logrus.PanicLevel
	}
	if logOut != nil {
		logger.Logger.Out = logOut
	} else {
		logger.Logger.Out = os.Stderr
	}
	return logger
}

// Tracer returns true if the ptrace requests issued against target
// threads should be logged.
func Tracer() bool {
	return tracer
}

// TracerLogger returns a logger for the ptrace layer.
func TracerLogger() *logrus.Entry {
	return makeLogger(tracer, logrus.Fields{"layer": "tracer"})
}

// Session returns true if the session package should log.
func Session() bool {
	return session
}

// SessionLogger returns a logger for the session package.
func SessionLogger() *logrus.Entry {
	return makeLogger(session, logrus.Fields{"layer": "session"})
}

// Procfs returns true if lookups in /proc should be logged.
func Procfs() bool {
	return procfs
}

// ProcfsLogger returns a logger for /proc lookups.
func ProcfsLogger() *logrus.Entry {
	return makeLogger(procfs, logrus.Fields{"layer": "procfs"})
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")
var errLogDestWithoutLog = errors.New("--log-dest specified without --log")

// Setup sets the logging flags based on the contents of logstr.
// If logDest is not empty logs are appended to that file instead of
// being written to stderr.
func Setup(logFlag bool, logstr, logDest string) error {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	tracer, session, procfs = false, false, false
	if !logFlag {
		log.SetOutput(io.Discard)
		if logstr != "" {
			return errLogstrWithoutLog
		}
		if logDest != "" {
			return errLogDestWithoutLog
		}
		return nil
	}
	if logDest != "" {
		f, err := os.OpenFile(logDest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		logOut = f
		log.SetOutput(f)
	}
	if logstr == "" {
		logstr = "tracer,session"
	}
	v := strings.Split(logstr, ",")
	for _, logcmd := range v {
		switch strings.TrimSpace(logcmd) {
		case "tracer":
			tracer = true
		case "session":
			session = true
		case "procfs":
			procfs = true
		}
	}
	return nil
}

// Close closes the log destination, if one was opened by Setup.
func Close() {
	if logOut != nil {
		logOut.Close()
		logOut = nil
	}
}
