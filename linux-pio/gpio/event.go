package gpio

import "runtime"

// Notifier is the host's readiness mechanism. Register must arrange for token to be
// delivered once when fd becomes readable; after that the registration is spent.
type Notifier interface {
	Register(fd int, token interface{}) error
}

// Notifiers that also implement Unregister are told when a registered handle closes,
// so they can drop notifications for the dead descriptor.
type unregisterer interface {
	Unregister(fd int) error
}

// EventRequestHandle delivers edge events for one line
type EventRequestHandle struct {
	handle

	offset   int
	notifier Notifier
	buf      []byte
}

func newEventRequestHandle(k kernel, fd int, offset int) *EventRequestHandle {
	e := &EventRequestHandle{
		offset: offset,
		buf:    make([]byte, eventDataSize),
	}
	e.init(k, fd)
	runtime.SetFinalizer(e, (*EventRequestHandle).finalize)

	return e
}

func (e *EventRequestHandle) finalize() {
	e.release()
}

func (e *EventRequestHandle) release() error {
	if e.notifier != nil && !e.flag.IsClosed() {
		if u, ok := e.notifier.(unregisterer); ok {
			u.Unregister(e.fd)
		}
		e.notifier = nil
	}

	return e.close()
}

// Close releases the event descriptor, dropping any outstanding registration with
// notifiers that support it
func (e *EventRequestHandle) Close() error {
	runtime.SetFinalizer(e, nil)
	return e.release()
}

func (e *EventRequestHandle) Offset() int {
	return e.offset
}

// ReadEvent blocks until the kernel has an event for the line. Call it from a
// dedicated goroutine, or only after a readiness notification.
func (e *EventRequestHandle) ReadEvent() (EventRecord, error) {
	if err := e.guard(); err != nil {
		return EventRecord{}, err
	}

	n, err := e.read(e.buf)
	if err != nil {
		return EventRecord{}, err
	}

	return decodeEventData(e.buf[:n])
}

// RegisterForReadiness asks n to deliver token once the descriptor is readable. The
// registration fires at most once and must be renewed after each event. Moving to a
// different notifier drops the registration held by the previous one.
func (e *EventRequestHandle) RegisterForReadiness(n Notifier, token interface{}) error {
	if err := e.guard(); err != nil {
		return err
	}

	if err := n.Register(e.fd, token); err != nil {
		return err
	}

	if old := e.notifier; old != nil && old != n {
		if u, ok := old.(unregisterer); ok {
			u.Unregister(e.fd)
		}
	}
	runtime.KeepAlive(e)

	e.notifier = n
	return nil
}

// ReadEventAndRegister reads one event and renews the registration with n. It is
// meant to be called from the notification for token.
func (e *EventRequestHandle) ReadEventAndRegister(n Notifier, token interface{}) (EventRecord, error) {
	ev, err := e.ReadEvent()
	if err != nil {
		return ev, err
	}

	return ev, e.RegisterForReadiness(n, token)
}
