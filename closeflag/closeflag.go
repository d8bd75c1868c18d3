package closeflag

import (
	"errors"
	"sync"
)

// CloseFlag tracks whether a resource has been released. The release function runs
// at most once, no matter how many times or from where Close is called.
type CloseFlag struct {
	mutex     sync.Mutex
	closed    bool
	closeChan chan (struct{})

	// CloseFunc releases the underlying resource. It runs on the first Close only and
	// may itself call Close.
	CloseFunc func() error
}

var (
	// ErrorClosed is returned by Close and Guard once the flag has been closed
	ErrorClosed = errors.New("Resource was already closed")
)

// IsClosed reports if Close has been called
func (c *CloseFlag) IsClosed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.closed
}

// Guard returns ErrorClosed if the flag is closed, nil otherwise. Use it at the start
// of every operation that touches the resource.
func (c *CloseFlag) Guard() error {
	if c.IsClosed() {
		return ErrorClosed
	}
	return nil
}

// Chan returns a channel that is closed together with the flag
func (c *CloseFlag) Chan() <-chan (struct{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closeChan == nil {
		c.closeChan = make(chan (struct{}))
		if c.closed {
			close(c.closeChan)
		}
	}

	return c.closeChan
}

// Close marks the flag closed and runs CloseFunc. Only the first call releases the
// resource, later calls return ErrorClosed.
func (c *CloseFlag) Close() error {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return ErrorClosed
	}

	c.closed = true
	if c.closeChan != nil {
		close(c.closeChan)
	}
	release := c.CloseFunc
	c.mutex.Unlock()

	if release != nil {
		return release()
	}

	return nil
}
