package poller

import (
	"encoding/binary"
	"sync"

	"github.com/BertoldVdb/go-gpiocdev/closeflag"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// registration is one arming of a descriptor. gen travels through the kernel in the
// upper half of the epoll data word, so notifications queued for an earlier arming
// of a reused fd can be told apart.
type registration struct {
	token interface{}
	gen   uint32
}

type Poller struct {
	mutex   sync.Mutex
	epfd    int
	wakefd  int
	tokens  map[int]registration
	members map[int]struct{}
	gen     uint32
	running bool

	handler     Handler
	closed      closeflag.CloseFlag
	releaseOnce sync.Once

	// Logger receives diagnostics, nothing is logged when nil
	Logger *logrus.Entry
}

// New creates a poller that calls handler for every notification
func New(handler Handler) (*Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	wakefd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, err
	}

	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, ev); err != nil {
		unix.Close(wakefd)
		unix.Close(epfd)
		return nil, err
	}

	p := &Poller{
		epfd:    epfd,
		wakefd:  wakefd,
		tokens:  make(map[int]registration),
		members: make(map[int]struct{}),
		handler: handler,
	}
	p.closed.CloseFunc = p.shutdown

	return p, nil
}

func (p *Poller) log() *logrus.Entry {
	if p.Logger != nil {
		return p.Logger
	}
	return discardLogger
}

// Register arms fd for a single read readiness notification carrying token.
// Registering an armed fd replaces its token.
func (p *Poller) Register(fd int, token interface{}) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed.IsClosed() {
		return ErrorClosed
	}

	p.gen++
	gen := p.gen
	ev := &unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLONESHOT, Fd: int32(fd), Pad: int32(gen)}

	var err error
	if _, member := p.members[fd]; member {
		err = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev)
		if err == unix.ENOENT {
			/* The kernel dropped it when the old descriptor was closed */
			err = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev)
		}
	} else {
		err = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev)
		if err == unix.EEXIST {
			err = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev)
		}
	}

	if err != nil {
		p.log().WithError(err).Warnf("Failed to register fd %d", fd)
		return err
	}

	p.members[fd] = struct{}{}
	p.tokens[fd] = registration{token: token, gen: gen}
	return nil
}

// Unregister forgets fd. Pending notifications for it are dropped.
func (p *Poller) Unregister(fd int) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed.IsClosed() {
		return ErrorClosed
	}

	delete(p.tokens, fd)
	if _, member := p.members[fd]; member {
		delete(p.members, fd)

		err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		if err != nil && err != unix.ENOENT && err != unix.EBADF {
			return err
		}
	}

	return nil
}

// take consumes the registration that produced a notification. A notification
// from an older arming of fd leaves the current one in place.
func (p *Poller) take(fd int, gen uint32) (interface{}, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	r, ok := p.tokens[fd]
	if !ok || r.gen != gen {
		return nil, false
	}
	delete(p.tokens, fd)
	return r.token, true
}

// Run dispatches notifications until Close is called
func (p *Poller) Run() error {
	p.mutex.Lock()
	if p.closed.IsClosed() {
		p.mutex.Unlock()
		return ErrorClosed
	}
	if p.running {
		p.mutex.Unlock()
		return ErrorRunning
	}
	p.running = true
	p.mutex.Unlock()

	defer func() {
		p.mutex.Lock()
		p.running = false
		p.mutex.Unlock()

		p.release()
	}()

	events := make([]unix.EpollEvent, 64)
	var wakeBuf [8]byte

	for {
		n, err := unix.EpollWait(p.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			p.log().WithError(err).Warn("Wait failed")
			return err
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)

			if fd == p.wakefd {
				unix.Read(p.wakefd, wakeBuf[:])
				if p.closed.IsClosed() {
					return nil
				}
				continue
			}

			token, ok := p.take(fd, uint32(events[i].Pad))
			if !ok {
				p.log().Debugf("Discarded stale notification for fd %d", fd)
				continue
			}

			p.handler(token)
		}
	}
}

func (p *Poller) shutdown() error {
	p.mutex.Lock()
	running := p.running
	p.mutex.Unlock()

	if !running {
		p.release()
		return nil
	}

	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(p.wakefd, buf[:])
	return err
}

func (p *Poller) release() {
	p.releaseOnce.Do(func() {
		unix.Close(p.wakefd)
		unix.Close(p.epfd)
	})
}

// Close stops Run and releases the epoll instance. Calling it again is harmless.
func (p *Poller) Close() error {
	err := p.closed.Close()
	if err == closeflag.ErrorClosed {
		return nil
	}
	return err
}
