package service

import (
	"errors"
	"testing"

	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/state"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Precedence(t *testing.T) {
	tests := []struct {
		name        string
		status      models.DeviceStatus
		maintenance bool
		link        models.ConnectivityState
		want        models.IndicatorSignal
	}{
		{"error beats everything", models.StatusError, true, models.Disconnected, models.SignalAlert},
		{"maintenance beats link", models.StatusOn, true, models.Disconnected, models.SignalMaintenance},
		{"connected", models.StatusOn, false, models.Connected, models.SignalConnected},
		{"off but connected", models.StatusOff, false, models.Connected, models.SignalConnected},
		{"connecting blinks", models.StatusOn, false, models.Connecting, models.SignalBlink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blink := false
			assert.Equal(t, tt.want, Resolve(tt.status, tt.maintenance, tt.link, &blink))
		})
	}
}

func TestIndicator_DisconnectedTogglesEachTick(t *testing.T) {
	store := state.New()
	display := &fakeDisplay{}
	ind := NewIndicator(store, display, logger.NewNop(), 0)

	assert.Equal(t, models.SignalOff, ind.Current(), "nothing shown before the first tick")

	ind.Tick()
	ind.Tick()
	ind.Tick()

	assert.Equal(t, []models.IndicatorSignal{models.SignalBlink, models.SignalOff, models.SignalBlink}, display.shown)
	assert.Equal(t, models.SignalBlink, ind.Current())
}

func TestIndicator_WritesOncePerTick(t *testing.T) {
	store := state.New()
	store.SetConnectivity(models.Connected)
	display := &fakeDisplay{err: errors.New("line released")}
	ind := NewIndicator(store, display, logger.NewNop(), 0)

	assert.Equal(t, models.SignalConnected, ind.Tick())
	store.SetStatus(models.StatusError)
	assert.Equal(t, models.SignalAlert, ind.Tick())

	assert.Len(t, display.shown, 2)
	assert.Equal(t, models.SignalAlert, ind.Current())
}
