// Package source adapts the external detector processes to the sampling
// loop. Detectors run out of process and publish their observations as
// newline-delimited JSON over a local socket; this package is only the
// transport.
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
)

const (
	dialTimeout = 5 * time.Second
	readTimeout = 5 * time.Second

	// maxSample guards against a runaway detector line.
	maxSample = 64 * 1024
)

// wireTick is the detector's wire format for one observation. It carries no
// timestamp: samples are timed on receipt by the sampling loop's own clock,
// so a skewed or stepping detector clock cannot reach the interval math.
type wireTick struct {
	Signal bool               `json:"signal"`
	Value  float64            `json:"value"`
	Aux    map[string]float64 `json:"aux,omitempty"`
}

// Feed is a session source reading ticks from one detector socket. It is
// opened at the start of each work session and closed at its end, so a
// detector restart between sessions costs nothing.
type Feed struct {
	addr string

	conn net.Conn
	r    *bufio.Reader
}

// NewFeed builds a feed for the given address. Addresses containing a colon
// are dialed as TCP; anything else is a unix socket path.
func NewFeed(addr string) *Feed {
	return &Feed{addr: addr}
}

// Open dials the detector.
func (f *Feed) Open(ctx context.Context) error {
	network := "unix"
	if strings.Contains(f.addr, ":") {
		network = "tcp"
	}

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, network, f.addr)
	if err != nil {
		return fmt.Errorf("dial detector %s: %w", f.addr, err)
	}
	f.conn = conn
	f.r = bufio.NewReaderSize(conn, maxSample)
	return nil
}

// Read returns the next observation. A slow or silent detector surfaces as
// an error, which the sampling loop treats as a skipped sample; the
// connection is kept so the next Read can try again.
func (f *Feed) Read(ctx context.Context) (domain.Tick, error) {
	if f.conn == nil {
		return domain.Tick{}, fmt.Errorf("detector %s: feed not open", f.addr)
	}

	deadline := time.Now().Add(readTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := f.conn.SetReadDeadline(deadline); err != nil {
		return domain.Tick{}, fmt.Errorf("detector %s: %w", f.addr, err)
	}

	line, err := f.r.ReadBytes('\n')
	if err != nil {
		return domain.Tick{}, fmt.Errorf("detector %s: read sample: %w", f.addr, err)
	}

	var w wireTick
	if err := json.Unmarshal(line, &w); err != nil {
		return domain.Tick{}, fmt.Errorf("detector %s: malformed sample: %w", f.addr, err)
	}
	return domain.Tick{Signal: w.Signal, Value: w.Value, Aux: w.Aux}, nil
}

// Close hangs up on the detector.
func (f *Feed) Close() error {
	if f.conn == nil {
		return nil
	}
	err := f.conn.Close()
	f.conn = nil
	f.r = nil
	return err
}
