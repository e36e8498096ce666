package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"zenith_pc_control/internal/metrics"
	"zenith_pc_control/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

type recordedEvent struct {
	typ     string
	message string
	meta    any
}

// fakeRecorder captures LogEvent calls.
type fakeRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *fakeRecorder) LogEvent(_ context.Context, typ, message string, meta any) {
	r.mu.Lock()
	r.events = append(r.events, recordedEvent{typ: typ, message: message, meta: meta})
	r.mu.Unlock()
}

func (r *fakeRecorder) count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.typ == typ {
			n++
		}
	}
	return n
}

type fakeSettings struct {
	mu sync.Mutex
	s  models.Settings
}

func (f *fakeSettings) Get() models.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

// scriptedProber returns the queued results in order, then nil.
type scriptedProber struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (p *scriptedProber) Probe(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.results) == 0 {
		return nil
	}
	err := p.results[0]
	p.results = p.results[1:]
	return err
}

var errNoReply = errors.New("no reply")

// fakeLink is a scripted uplink.
type fakeLink struct {
	mu          sync.Mutex
	up          bool
	statusErr   error
	connectErr  error
	connects    []string
	fallbacks   []string
	fallbackErr error
}

func (l *fakeLink) setUp(up bool) {
	l.mu.Lock()
	l.up = up
	l.mu.Unlock()
}

func (l *fakeLink) Connected(context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.up, l.statusErr
}

func (l *fakeLink) Connect(_ context.Context, ssid, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connects = append(l.connects, ssid)
	return l.connectErr
}

func (l *fakeLink) StartFallback(_ context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fallbacks = append(l.fallbacks, name)
	return l.fallbackErr
}

func (l *fakeLink) attempts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.connects)
}

// fakeStateRepo keeps the device record in memory.
type fakeStateRepo struct {
	mu      sync.Mutex
	rec     models.DeviceRecord
	saves   []models.DeviceRecord
	status  []models.DeviceStatus
	saveErr error
	loadErr error
}

func (r *fakeStateRepo) Save(_ context.Context, rec models.DeviceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, rec)
	if r.saveErr != nil {
		return r.saveErr
	}
	rec.ID = 1
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	r.rec = rec
	return nil
}

func (r *fakeStateRepo) SaveStatus(_ context.Context, st models.DeviceStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = append(r.status, st)
	if r.saveErr != nil {
		return r.saveErr
	}
	if at.IsZero() {
		at = time.Now()
	}
	r.rec.ID = 1
	r.rec.PcStatus = st
	r.rec.UpdatedAt = at.UTC()
	return nil
}

func (r *fakeStateRepo) Load(context.Context) (models.DeviceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec, r.loadErr
}

// fakeDisplay records every signal shown.
type fakeDisplay struct {
	mu    sync.Mutex
	shown []models.IndicatorSignal
	err   error
}

func (d *fakeDisplay) Show(sig models.IndicatorSignal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown = append(d.shown, sig)
	return d.err
}

// fakePublisher records published payloads.
type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(payload []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return 1
}

func (p *fakePublisher) last() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.payloads) == 0 {
		return nil
	}
	return p.payloads[len(p.payloads)-1]
}

// fakeChannel is a notification channel with a fixed enabled flag.
type fakeChannel struct {
	name    string
	enabled bool
	err     error

	mu   sync.Mutex
	sent []string
}

func (c *fakeChannel) Name() string                 { return c.name }
func (c *fakeChannel) Enabled(models.Settings) bool { return c.enabled }

func (c *fakeChannel) Send(_ context.Context, _ models.Settings, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return c.err
}

func (c *fakeChannel) sends() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}
