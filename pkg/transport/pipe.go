package transport

import (
	"net"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// pipeTickInterval is how often a Pipe's background goroutine drains
// queued bytes between its two ends.
const pipeTickInterval = time.Millisecond

// Pipe is a bidirectional, in-memory net.Conn pair for driving two TCP
// transports against each other without a real socket. Tests build one
// per scenario and hand each end to a separate transport.NewTCP via
// TCPConfig.Conn.
type Pipe struct {
	bridge *test.Bridge

	mu     sync.Mutex
	closed bool
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPipe creates a Pipe with background delivery already running.
func NewPipe() *Pipe {
	p := &Pipe{
		bridge: test.NewBridge(),
		stopCh: make(chan struct{}),
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(pipeTickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.bridge.Tick()
			}
		}
	}()
	return p
}

// Conn0 returns one end of the pipe.
func (p *Pipe) Conn0() net.Conn { return p.bridge.GetConn0() }

// Conn1 returns the other end of the pipe.
func (p *Pipe) Conn1() net.Conn { return p.bridge.GetConn1() }

// Close stops background delivery and closes both ends.
func (p *Pipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()

	err0 := p.bridge.GetConn0().Close()
	err1 := p.bridge.GetConn1().Close()
	if err0 != nil {
		return err0
	}
	return err1
}
