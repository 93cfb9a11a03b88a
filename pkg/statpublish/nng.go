//go:build nng

package statpublish

import (
	"encoding/json"
	"fmt"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// NNGPublisher broadcasts CycleUpdates over a mangos PUB socket, for
// deployments that already standardize on nanomsg transports.
type NNGPublisher struct {
	sock mangos.Socket
}

// NewNNGPublisher binds a PUB socket and listens on addr
// (e.g. "tcp://*:9400").
func NewNNGPublisher(addr string) (*NNGPublisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("creating pub socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return &NNGPublisher{sock: sock}, nil
}

// Publish serializes update as JSON and sends it on the PUB socket.
func (p *NNGPublisher) Publish(update CycleUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshaling cycle update: %w", err)
	}
	return p.sock.Send(data)
}

// Close releases the underlying socket.
func (p *NNGPublisher) Close() error {
	return p.sock.Close()
}

var _ Publisher = (*NNGPublisher)(nil)
