package service

import (
	"context"
	"sync"
	"time"

	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/state"
)

// Display renders one indicator signal.
type Display interface {
	Show(sig models.IndicatorSignal) error
}

// Indicator maps the device state to a single visual signal. Precedence:
// error, maintenance, link not connected (blinking), connected.
type Indicator struct {
	store    *state.Store
	display  Display
	log      *logger.Logger
	interval time.Duration

	mu      sync.Mutex
	blink   bool
	current models.IndicatorSignal
}

func NewIndicator(store *state.Store, display Display, log *logger.Logger, interval time.Duration) *Indicator {
	return &Indicator{
		store:    store,
		display:  display,
		log:      log,
		interval: interval,
		current:  models.SignalOff,
	}
}

func (i *Indicator) Run(ctx context.Context) {
	runLoop(ctx, i.interval, true, func(context.Context) { i.Tick() })
}

// Tick evaluates the signal and writes it once.
func (i *Indicator) Tick() models.IndicatorSignal {
	i.mu.Lock()
	sig := Resolve(i.store.Status(), i.store.Maintenance(), i.store.Connectivity(), &i.blink)
	i.current = sig
	i.mu.Unlock()

	if err := i.display.Show(sig); err != nil {
		i.log.Warnw("indicator_write_failed", "signal", sig, "err", err)
	}
	return sig
}

// Current is the last evaluated signal.
func (i *Indicator) Current() models.IndicatorSignal {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.current
}

// Resolve picks the signal for the given state. blink is the toggle for the
// disconnected pattern and flips on every disconnected evaluation.
func Resolve(status models.DeviceStatus, maintenance bool, link models.ConnectivityState, blink *bool) models.IndicatorSignal {
	switch {
	case status == models.StatusError:
		return models.SignalAlert
	case maintenance:
		return models.SignalMaintenance
	case link != models.Connected:
		*blink = !*blink
		if *blink {
			return models.SignalBlink
		}
		return models.SignalOff
	default:
		return models.SignalConnected
	}
}
