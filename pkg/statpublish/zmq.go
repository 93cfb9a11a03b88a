//go:build zmq

package statpublish

import (
	"encoding/json"
	"fmt"

	zmq "github.com/pebbe/zmq4"
)

// ZMQPublisher broadcasts CycleUpdates over a ZeroMQ PUB socket, for
// deployments that already standardize on ZeroMQ transports.
type ZMQPublisher struct {
	sock *zmq.Socket
}

// NewZMQPublisher creates a PUB socket and binds it to addr
// (e.g. "tcp://*:9400").
func NewZMQPublisher(addr string) (*ZMQPublisher, error) {
	sock, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		return nil, fmt.Errorf("creating pub socket: %w", err)
	}
	if err := sock.Bind(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("binding %s: %w", addr, err)
	}
	return &ZMQPublisher{sock: sock}, nil
}

// Publish serializes update as JSON and sends it on the PUB socket.
func (p *ZMQPublisher) Publish(update CycleUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshaling cycle update: %w", err)
	}
	_, err = p.sock.SendBytes(data, 0)
	return err
}

// Close releases the underlying socket.
func (p *ZMQPublisher) Close() error {
	return p.sock.Close()
}

var _ Publisher = (*ZMQPublisher)(nil)
