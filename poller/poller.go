// Package poller is a small epoll based event loop that delivers one-shot read
// readiness notifications. It implements gpio.Notifier.
package poller

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Handler receives the token of a descriptor that became readable. It runs on the
// goroutine calling Run and should not block. It may call Register to rearm.
type Handler func(token interface{})

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrorClosed      = Error("Poller is closed")
	ErrorRunning     = Error("Poller is already running")
	ErrorUnsupported = Error("Poller is not supported on this platform")
)

var discardLogger = func() *logrus.Entry {
	l := logrus.New()
	l.Out = io.Discard
	return logrus.NewEntry(l)
}()
