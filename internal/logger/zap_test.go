package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zapcore.Level
	}{
		{InfoLevel, zapcore.InfoLevel},
		{WarnLevel, zapcore.WarnLevel},
		{ErrorLevel, zapcore.ErrorLevel},
		{DebugLevel, zapcore.DebugLevel},
		{"bogus", defaultZapLevel},
	}
	for _, tc := range cases {
		if got := toZapLevel(tc.in); got != tc.want {
			t.Errorf("toZapLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNamed_KeepsWrapper(t *testing.T) {
	l := NewNop().Named("health")
	if l == nil || l.SugaredLogger == nil {
		t.Fatalf("expected named logger")
	}
	l.Infow("probe_ok", "target", "192.168.1.10")
}
