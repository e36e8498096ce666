package handlers

import (
	"context"
	"net/http"
	"time"

	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error
	claimed       bool
	claimedErr    error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}
func (m *mockAuth) Claimed() (bool, error) {
	return m.claimed, m.claimedErr
}

type mockPower struct {
	err     error
	desired bool
	calls   []bool
}

func (m *mockPower) Command(ctx context.Context, on bool) error {
	m.calls = append(m.calls, on)
	if m.err == nil {
		m.desired = on
	}
	return m.err
}
func (m *mockPower) Desired() bool { return m.desired }

type mockMonitoring struct {
	state    models.DeviceState
	snapshot models.Snapshot
	err      error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.DeviceState, error) {
	return m.state, m.err
}
func (m *mockMonitoring) Snapshot() models.Snapshot { return m.snapshot }

type mockEventLog struct {
	resp     []models.DeviceEvent
	err      error
	text     string
	oldText  string
	readErr  error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DeviceEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}
func (m *mockEventLog) ReadLog() (string, error)    { return m.text, m.readErr }
func (m *mockEventLog) ReadOldLog() (string, error) { return m.oldText, m.readErr }

type mockSettings struct {
	current    models.Settings
	updateErr  error
	backup     []byte
	backupErr  error
	restoreErr error

	lastPatch   service.SettingsPatch
	lastRestore []byte
}

func (m *mockSettings) Redacted() models.Settings { return m.current }
func (m *mockSettings) Update(ctx context.Context, p service.SettingsPatch) (models.Settings, error) {
	m.lastPatch = p
	if m.updateErr != nil {
		return models.Settings{}, m.updateErr
	}
	if p.DeviceName != nil {
		m.current.DeviceName = *p.DeviceName
	}
	return m.current, nil
}
func (m *mockSettings) Backup() ([]byte, error) { return m.backup, m.backupErr }
func (m *mockSettings) Restore(ctx context.Context, payload []byte) (models.Settings, error) {
	m.lastRestore = payload
	return m.current, m.restoreErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request) *http.Request {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
