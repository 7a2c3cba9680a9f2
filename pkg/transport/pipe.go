package transport

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// Pipe provides bidirectional in-memory packet communication between two
// endpoints. It wraps pion's test.Bridge and pumps queued packets in a
// background goroutine, so protocol-flow tests run without real sockets.
type Pipe struct {
	bridge *test.Bridge

	mu     sync.Mutex
	closed bool
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPipe creates a pipe with automatic packet delivery.
func NewPipe() *Pipe {
	p := &Pipe{
		bridge: test.NewBridge(),
		stopCh: make(chan struct{}),
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(time.Millisecond)
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

// PacketConns returns net.PacketConn views of the pipe's two endpoints.
// Endpoint 0 writes arrive at endpoint 1 and vice versa.
func (p *Pipe) PacketConns() (net.PacketConn, net.PacketConn) {
	c0 := &pipePacketConn{
		conn:     p.bridge.GetConn0(),
		local:    PipeAddr{ID: 0},
		peerAddr: PipeAddr{ID: 1},
	}
	c1 := &pipePacketConn{
		conn:     p.bridge.GetConn1(),
		local:    PipeAddr{ID: 1},
		peerAddr: PipeAddr{ID: 0},
	}
	return c0, c1
}

// Process delivers all queued packets. Useful after Close has stopped the
// background pump, or for deterministic stepping.
func (p *Pipe) Process() int {
	count := 0
	for {
		n := p.bridge.Tick()
		if n == 0 {
			return count
		}
		count += n
	}
}

// Close closes both endpoints and stops the delivery goroutine.
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

// PipeAddr implements net.Addr for pipe endpoints.
type PipeAddr struct {
	ID int // endpoint id, 0 or 1
}

// Network returns "pipe".
func (a PipeAddr) Network() string { return "pipe" }

// String returns a string representation of the address.
func (a PipeAddr) String() string { return fmt.Sprintf("pipe:%d", a.ID) }

// pipePacketConn adapts a pipe endpoint to net.PacketConn so it can be
// plugged into UDPConfig.Conn.
type pipePacketConn struct {
	conn     net.Conn
	local    PipeAddr
	peerAddr net.Addr
}

func (c *pipePacketConn) ReadFrom(b []byte) (int, net.Addr, error) {
	n, err := c.conn.Read(b)
	return n, c.peerAddr, err
}

func (c *pipePacketConn) WriteTo(b []byte, _ net.Addr) (int, error) {
	// The pipe has a single peer; the destination address is ignored.
	return c.conn.Write(b)
}

func (c *pipePacketConn) Close() error { return c.conn.Close() }

func (c *pipePacketConn) LocalAddr() net.Addr { return c.local }

func (c *pipePacketConn) SetDeadline(t time.Time) error { return c.conn.SetDeadline(t) }

func (c *pipePacketConn) SetReadDeadline(t time.Time) error { return c.conn.SetReadDeadline(t) }

func (c *pipePacketConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }

var _ net.PacketConn = (*pipePacketConn)(nil)
