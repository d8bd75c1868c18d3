//go:build !linux

package poller

import "github.com/sirupsen/logrus"

type Poller struct {
	Logger *logrus.Entry
}

func New(handler Handler) (*Poller, error) {
	return nil, ErrorUnsupported
}

func (p *Poller) Register(fd int, token interface{}) error { return ErrorUnsupported }
func (p *Poller) Unregister(fd int) error                  { return ErrorUnsupported }
func (p *Poller) Run() error                               { return ErrorUnsupported }
func (p *Poller) Close() error                             { return nil }
