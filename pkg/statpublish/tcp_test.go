package statpublish

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"
)

func TestTCPPublisherBroadcastsToSubscriber(t *testing.T) {
	pub, err := NewTCPPublisher("127.0.0.1:0", nil)
	if err != nil {
		t.Fatalf("NewTCPPublisher: %v", err)
	}
	defer pub.Close()

	conn, err := net.Dial("tcp", pub.listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	// Give the accept loop a moment to register the connection.
	deadline := time.Now().Add(time.Second)
	for {
		pub.mu.Lock()
		n := len(pub.clients)
		pub.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for subscriber registration")
		}
		time.Sleep(time.Millisecond)
	}

	update := CycleUpdate{RunID: "r1", Engine: "lsm", TotalPoints: 10, TotalWrites: 12}
	if err := pub.Publish(update); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}

	var decoded CycleUpdate
	if err := json.Unmarshal(line, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.RunID != "r1" || decoded.TotalWrites != 12 {
		t.Errorf("decoded = %+v, want RunID=r1 TotalWrites=12", decoded)
	}
}

func TestTCPPublisherCloseStopsAccepting(t *testing.T) {
	pub, err := NewTCPPublisher("127.0.0.1:0", nil)
	if err != nil {
		t.Fatalf("NewTCPPublisher: %v", err)
	}
	addr := pub.listener.Addr().String()
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := net.Dial("tcp", addr); err == nil {
		t.Fatal("expected dial to fail after Close")
	}
}
