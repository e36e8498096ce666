// Package probe checks whether the controlled PC answers on the network.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	MethodICMP = "icmp"
	MethodTCP  = "tcp"

	protocolICMP = 1 // iana ICMP for IPv4
)

var ErrNoReply = errors.New("no echo reply")

// Prober performs one reachability check. A nil error means reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// Func adapts a plain function to Prober.
type Func func(ctx context.Context) error

func (f Func) Probe(ctx context.Context) error { return f(ctx) }

// ICMP sends one echo request and waits for the matching reply.
// Unprivileged mode uses a datagram ICMP socket ("udp4"), which Linux allows
// when net.ipv4.ping_group_range covers the process group.
type ICMP struct {
	target     string
	timeout    time.Duration
	privileged bool
	id         int
	seq        atomic.Uint32
}

func NewICMP(target string, timeout time.Duration, privileged bool) *ICMP {
	return &ICMP{
		target:     target,
		timeout:    timeout,
		privileged: privileged,
		id:         os.Getpid() & 0xffff,
	}
}

func (p *ICMP) Probe(ctx context.Context) error {
	network, listen := "udp4", "0.0.0.0"
	if p.privileged {
		network = "ip4:icmp"
	}

	conn, err := icmp.ListenPacket(network, listen)
	if err != nil {
		return fmt.Errorf("listen icmp: %w", err)
	}
	defer conn.Close()

	ip := net.ParseIP(p.target).To4()
	if ip == nil {
		return fmt.Errorf("invalid ipv4 target %q", p.target)
	}
	var dst net.Addr = &net.IPAddr{IP: ip}
	if !p.privileged {
		dst = &net.UDPAddr{IP: ip}
	}

	seq := int(p.seq.Add(1) & 0xffff)
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: p.id, Seq: seq, Data: []byte("zenith-pc-control")},
	}
	wb, err := msg.Marshal(nil)
	if err != nil {
		return fmt.Errorf("marshal echo: %w", err)
	}

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}

	if _, err := conn.WriteTo(wb, dst); err != nil {
		return fmt.Errorf("send echo: %w", err)
	}

	rb := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(rb)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return ErrNoReply
			}
			return fmt.Errorf("read reply: %w", err)
		}
		if !samePeer(peer, ip) {
			continue
		}
		rm, err := icmp.ParseMessage(protocolICMP, rb[:n])
		if err != nil || rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := rm.Body.(*icmp.Echo)
		// the kernel rewrites the ID of unprivileged sockets
		if ok && echo.Seq == seq && (!p.privileged || echo.ID == p.id) {
			return nil
		}
	}
}

func samePeer(addr net.Addr, ip net.IP) bool {
	switch a := addr.(type) {
	case *net.IPAddr:
		return a.IP.Equal(ip)
	case *net.UDPAddr:
		return a.IP.Equal(ip)
	}
	return false
}

// TCP treats a completed handshake on target:port as reachable.
type TCP struct {
	addr    string
	timeout time.Duration
	dialer  net.Dialer
}

func NewTCP(target string, port int, timeout time.Duration) *TCP {
	return &TCP{
		addr:    net.JoinHostPort(target, strconv.Itoa(port)),
		timeout: timeout,
	}
}

func (p *TCP) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", p.addr, err)
	}
	return conn.Close()
}

// New builds the prober for method.
func New(method, target string, port int, timeout time.Duration, privileged bool) (Prober, error) {
	switch method {
	case MethodICMP, "":
		return NewICMP(target, timeout, privileged), nil
	case MethodTCP:
		return NewTCP(target, port, timeout), nil
	}
	return nil, fmt.Errorf("unknown probe method %q", method)
}
