// Package netlink reports the state of the uplink interface and asks
// NetworkManager to join the configured network or to host a fallback
// access point.
package netlink

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"
)

var ErrInterfaceNotFound = errors.New("interface not found")

// FallbackConnection is the NetworkManager profile name of the access point.
const FallbackConnection = "zenith-fallback"

// DefaultConnectWait bounds how long nmcli waits for a join to activate.
const DefaultConnectWait = 10 * time.Second

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// InterfaceLister matches gopsutil's net.InterfacesWithContext.
type InterfaceLister func(ctx context.Context) (psnet.InterfaceStatList, error)

type Link struct {
	iface  string
	nmcli  bool
	wait   time.Duration
	run    Runner
	listIf InterfaceLister

	mu      sync.Mutex
	hotspot string
}

type Option func(*Link)

// WithRunner replaces the command runner (tests, dry runs).
func WithRunner(r Runner) Option { return func(l *Link) { l.run = r } }

func WithInterfaceLister(f InterfaceLister) Option { return func(l *Link) { l.listIf = f } }

// WithConnectWait sets the nmcli --wait used by Connect. Values under one
// second are rounded up to one.
func WithConnectWait(d time.Duration) Option { return func(l *Link) { l.wait = d } }

// New returns a link bound to iface. With useNmcli false, Connect and
// StartFallback only report what they would do.
func New(iface string, useNmcli bool, opts ...Option) *Link {
	l := &Link{
		iface:  iface,
		nmcli:  useNmcli,
		wait:   DefaultConnectWait,
		run:    ExecRunner,
		listIf: psnet.InterfacesWithContext,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Connected is true when the interface is up, holds a routable IPv4 address
// and, under NetworkManager, is associated as a station. The fallback access
// point also has an address but does not count.
func (l *Link) Connected(ctx context.Context) (bool, error) {
	ifs, err := l.listIf(ctx)
	if err != nil {
		return false, fmt.Errorf("list interfaces: %w", err)
	}
	for _, it := range ifs {
		if it.Name != l.iface {
			continue
		}
		if !isUp(it.Flags) || !hasRoutableIPv4(it.Addrs) {
			return false, nil
		}
		if !l.nmcli {
			return true, nil
		}
		return l.stationActive(ctx)
	}
	return false, fmt.Errorf("%w: %s", ErrInterfaceNotFound, l.iface)
}

func (l *Link) stationActive(ctx context.Context) (bool, error) {
	out, err := l.run(ctx, "nmcli", "-g", "GENERAL.CONNECTION", "device", "show", l.iface)
	if err != nil {
		return false, fmt.Errorf("nmcli device show: %w: %s", err, strings.TrimSpace(string(out)))
	}
	conn := strings.TrimSpace(string(out))
	return conn != "" && conn != FallbackConnection, nil
}

func isUp(flags []string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, "up") {
			return true
		}
	}
	return false
}

func hasRoutableIPv4(addrs psnet.InterfaceAddrList) bool {
	for _, a := range addrs {
		ip, _, err := net.ParseCIDR(a.Addr)
		if err != nil {
			ip = net.ParseIP(a.Addr)
		}
		if ip == nil || ip.To4() == nil {
			continue
		}
		if ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			continue
		}
		return true
	}
	return false
}

// Connect joins ssid and blocks until NetworkManager activates the profile
// or the connect wait expires. When the fallback access point was up and the
// join fails, the access point is brought back so the device stays reachable
// for reconfiguration.
func (l *Link) Connect(ctx context.Context, ssid, password string) error {
	if ssid == "" {
		return errors.New("no ssid configured")
	}
	if !l.nmcli {
		return nil
	}
	args := []string{"--wait", l.waitSeconds(), "device", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	args = append(args, "ifname", l.iface)
	out, err := l.run(ctx, "nmcli", args...)
	if err == nil {
		l.mu.Lock()
		l.hotspot = ""
		l.mu.Unlock()
		return nil
	}
	err = fmt.Errorf("nmcli connect: %w: %s", err, strings.TrimSpace(string(out)))

	l.mu.Lock()
	name := l.hotspot
	l.mu.Unlock()
	if name != "" {
		if herr := l.startHotspot(ctx, name); herr != nil {
			return errors.Join(err, herr)
		}
	}
	return err
}

func (l *Link) waitSeconds() string {
	secs := int((l.wait + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// StartFallback turns the interface into an access point named name.
func (l *Link) StartFallback(ctx context.Context, name string) error {
	if !l.nmcli {
		return nil
	}
	if err := l.startHotspot(ctx, name); err != nil {
		return err
	}
	l.mu.Lock()
	l.hotspot = name
	l.mu.Unlock()
	return nil
}

func (l *Link) startHotspot(ctx context.Context, name string) error {
	out, err := l.run(ctx, "nmcli", "device", "wifi", "hotspot",
		"ifname", l.iface, "con-name", FallbackConnection, "ssid", name)
	if err != nil {
		return fmt.Errorf("nmcli hotspot: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
