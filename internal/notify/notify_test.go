package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"zenith_pc_control/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"PC status: ON", "PC%20status%3A%20ON"},
		{"a-b_c.d~e", "a-b_c.d~e"},
		{"x+y&z=1", "x%2By%26z%3D1"},
		{"ñ", "%C3%B1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodeText(tt.in), tt.in)
	}
}

func TestEscapeContent(t *testing.T) {
	assert.Equal(t, `say \"hi\" \\ bye`, EscapeContent(`say "hi" \ bye`))
	assert.Equal(t, "line\nbreak", EscapeContent("line\nbreak"), "newlines are not escaped")
}

func TestTelegram_Send(t *testing.T) {
	var gotPath, gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL, srv.Client())
	s := models.Settings{TelegramToken: "123:abc", TelegramChatID: "42"}
	require.True(t, tg.Enabled(s))

	require.NoError(t, tg.Send(context.Background(), s, "PC status: OFF"))
	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "application/x-www-form-urlencoded", gotType)
	assert.Equal(t, "chat_id=42&text=PC%20status%3A%20OFF", gotBody)
}

func TestTelegram_EnabledNeedsBothCredentials(t *testing.T) {
	tg := NewTelegram("", http.DefaultClient)
	assert.False(t, tg.Enabled(models.Settings{TelegramToken: "t"}))
	assert.False(t, tg.Enabled(models.Settings{TelegramChatID: "c"}))
}

func TestWebhook_Send(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.Client())
	s := models.Settings{DiscordWebhook: srv.URL + "/api/webhooks/1/x"}
	require.True(t, wh.Enabled(s))

	require.NoError(t, wh.Send(context.Background(), s, `PC status: "ON"`))
	assert.Equal(t, `{"content":"PC status: \"ON\""}`, gotBody)
}

func TestWebhook_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewWebhook(srv.Client()).Send(context.Background(), models.Settings{DiscordWebhook: srv.URL}, "x")
	assert.ErrorIs(t, err, errStatus)
}
