package gpio

import (
	"errors"
	"testing"

	"zenith_pc_control/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMemory_RecordsWrites(t *testing.T) {
	m := NewMemory()
	assert.False(t, m.Level())

	assert.NoError(t, m.Set(true))
	assert.NoError(t, m.Set(false))
	assert.Equal(t, []bool{true, false}, m.Writes())
	assert.False(t, m.Level())
}

func TestMemory_HistoryIsBounded(t *testing.T) {
	m := NewMemory()
	for i := 0; i < 5000; i++ {
		assert.NoError(t, m.Set(i%2 == 0))
	}

	writes := m.Writes()
	assert.Len(t, writes, MemoryHistory)
	assert.Equal(t, uint64(5000), m.Count())
	// 4999 is odd, so the newest level is low and the one before it high
	assert.False(t, writes[len(writes)-1])
	assert.True(t, writes[len(writes)-2])
	assert.False(t, m.Level())
}

func TestMemory_FailWith(t *testing.T) {
	m := NewMemory()
	boom := errors.New("line busy")
	m.FailWith(boom)

	assert.ErrorIs(t, m.Set(true), boom)
	assert.Empty(t, m.Writes())
	assert.Zero(t, m.Count())

	m.FailWith(nil)
	assert.NoError(t, m.Set(true))
}

func TestLED_OneWritePerSignal(t *testing.T) {
	tests := []struct {
		sig  models.IndicatorSignal
		want bool
	}{
		{models.SignalAlert, true},
		{models.SignalMaintenance, true},
		{models.SignalBlink, true},
		{models.SignalOff, false},
		{models.SignalConnected, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.sig), func(t *testing.T) {
			m := NewMemory()
			assert.NoError(t, NewLED(m).Show(tt.sig))
			assert.Equal(t, []bool{tt.want}, m.Writes())
		})
	}
}
