package statpublish

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/dd0wney/tlsm-writeamp/pkg/simlog"
)

// TCPPublisher accepts subscriber connections on a listen address and
// fans out every Publish call to all of them as newline-delimited JSON.
type TCPPublisher struct {
	listener net.Listener
	log      simlog.Logger

	mu      sync.Mutex
	clients map[net.Conn]struct{}

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewTCPPublisher starts listening on addr (e.g. ":9400") and accepting
// subscriber connections in the background.
func NewTCPPublisher(addr string, log simlog.Logger) (*TCPPublisher, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("starting stat publisher listener: %w", err)
	}
	if log == nil {
		log = simlog.NopLogger{}
	}

	p := &TCPPublisher{
		listener: listener,
		log:      log,
		clients:  make(map[net.Conn]struct{}),
		stopCh:   make(chan struct{}),
	}
	go p.acceptLoop()
	return p, nil
}

func (p *TCPPublisher) acceptLoop() {
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			select {
			case <-p.stopCh:
				return
			default:
				p.log.Warn("stat publisher accept failed", simlog.Error(err))
				return
			}
		}
		p.mu.Lock()
		p.clients[conn] = struct{}{}
		p.mu.Unlock()
		p.log.Debug("stat subscriber connected", simlog.String("remote", conn.RemoteAddr().String()))
	}
}

// Publish serializes update as JSON and writes it, newline-terminated, to
// every currently connected subscriber. A subscriber whose connection has
// gone bad is dropped rather than retried.
func (p *TCPPublisher) Publish(update CycleUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshaling cycle update: %w", err)
	}
	data = append(data, '\n')

	p.mu.Lock()
	defer p.mu.Unlock()
	for conn := range p.clients {
		if _, err := conn.Write(data); err != nil {
			conn.Close()
			delete(p.clients, conn)
		}
	}
	return nil
}

// Close stops accepting new subscribers and closes all open connections.
func (p *TCPPublisher) Close() error {
	p.stopOnce.Do(func() { close(p.stopCh) })
	err := p.listener.Close()

	p.mu.Lock()
	defer p.mu.Unlock()
	for conn := range p.clients {
		conn.Close()
		delete(p.clients, conn)
	}
	return err
}

var _ Publisher = (*TCPPublisher)(nil)
