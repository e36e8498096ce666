package server

import (
	"context"
	"net/http"
	"testing"
)

func TestNormalizeAddr(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"8080", ":8080"},
		{":8080", ":8080"},
		{"127.0.0.1:8080", "127.0.0.1:8080"},
	}
	for _, tc := range cases {
		if got := normalizeAddr(tc.in); got != tc.want {
			t.Fatalf("normalizeAddr(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewHTTPServerLimits(t *testing.T) {
	srv := newHTTPServer(":0", http.NotFoundHandler())
	if srv.ReadHeaderTimeout != readHeaderTimeout || srv.MaxHeaderBytes != maxHeaderBytes {
		t.Fatalf("unexpected limits: %+v", srv)
	}
}

func TestShutdownBeforeRun(t *testing.T) {
	var s Server
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
