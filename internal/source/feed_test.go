package source

import (
	"context"
	"net"
	"testing"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
)

// serveLines starts a one-shot TCP detector that writes the given lines to
// the first client and then keeps the connection open.
func serveLines(t *testing.T, lines ...string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		for _, l := range lines {
			conn.Write([]byte(l + "\n"))
		}
	}()
	return ln.Addr().String()
}

func TestFeedReadsDetectorSamples(t *testing.T) {
	addr := serveLines(t,
		`{"signal":true,"aux":{"cashier_present":1}}`,
		`{"signal":false,"value":2}`,
	)

	f := NewFeed(addr)
	if err := f.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	tick, err := f.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !tick.Signal || !tick.Flag(domain.AuxCashierPresent) {
		t.Fatalf("first sample decoded wrong: %+v", tick)
	}
	if !tick.At.IsZero() {
		t.Fatalf("feed must not invent a sample time, got %s", tick.At)
	}

	tick, err = f.Read(context.Background())
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if tick.Signal || tick.Value != 2 {
		t.Fatalf("second sample decoded wrong: %+v", tick)
	}
}

func TestFeedMalformedSampleIsAnError(t *testing.T) {
	addr := serveLines(t, `not json`)

	f := NewFeed(addr)
	if err := f.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if _, err := f.Read(context.Background()); err == nil {
		t.Fatalf("malformed sample read without error")
	}
}

func TestFeedReadBeforeOpenFails(t *testing.T) {
	f := NewFeed("127.0.0.1:1")
	if _, err := f.Read(context.Background()); err == nil {
		t.Fatalf("read on a closed feed succeeded")
	}
}

func TestFeedOpenUnreachableDetector(t *testing.T) {
	// A listener that is closed immediately leaves a port nobody answers.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	f := NewFeed(addr)
	if err := f.Open(context.Background()); err == nil {
		f.Close()
		t.Fatalf("open succeeded against a dead detector")
	}
}
