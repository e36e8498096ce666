package service

import (
	"context"

	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/state"
)

const redacted = "********"

// SettingsStore persists the device settings.
type SettingsStore interface {
	Get() models.Settings
	Save(next models.Settings) error
	Backup() ([]byte, error)
	Restore(payload []byte) (models.Settings, error)
}

// SettingsPatch carries a partial update. Nil fields keep their value.
type SettingsPatch struct {
	WifiSSID             *string `json:"wifiSsid"`
	WifiPass             *string `json:"wifiPass"`
	DeviceName           *string `json:"deviceName"`
	TelegramToken        *string `json:"telegramToken"`
	TelegramChatID       *string `json:"telegramChatId"`
	DiscordWebhook       *string `json:"discordWebhook"`
	WolMacList           *string `json:"wolMacList"`
	MaintenanceMode      *bool   `json:"maintenanceMode"`
	PowerRecoveryEnabled *bool   `json:"powerRecoveryEnabled"`
	SchedulesEnabled     *bool   `json:"schedulesEnabled"`
	NtpOffset            *int    `json:"ntpOffset"`
}

// SettingsService edits the device settings and mirrors the maintenance flag
// into the shared state.
type SettingsService struct {
	settings SettingsStore
	store    *state.Store
	events   EventRecorder
	log      *logger.Logger
}

func NewSettingsService(settings SettingsStore, store *state.Store, events EventRecorder, log *logger.Logger) *SettingsService {
	return &SettingsService{settings: settings, store: store, events: events, log: log}
}

func (s *SettingsService) Get() models.Settings {
	return s.settings.Get()
}

// Redacted hides the secrets for display.
func (s *SettingsService) Redacted() models.Settings {
	cur := s.settings.Get()
	if cur.WifiPass != "" {
		cur.WifiPass = redacted
	}
	if cur.TelegramToken != "" {
		cur.TelegramToken = redacted
	}
	return cur
}

// Update applies p on top of the current settings. Invalid input leaves both
// the file and the running state untouched.
func (s *SettingsService) Update(ctx context.Context, p SettingsPatch) (models.Settings, error) {
	next := p.apply(s.settings.Get())
	if err := s.settings.Save(next); err != nil {
		return models.Settings{}, err
	}
	s.Apply()
	s.events.LogEvent(ctx, models.EventConfig, "settings updated", map[string]any{
		"device_name":      next.DeviceName,
		"maintenance_mode": next.MaintenanceMode,
	})
	return next, nil
}

// Apply pushes the stored settings into the running state.
func (s *SettingsService) Apply() {
	s.store.SetMaintenance(s.settings.Get().MaintenanceMode)
}

func (s *SettingsService) Backup() ([]byte, error) {
	return s.settings.Backup()
}

// Restore replaces the settings with payload after validating it.
func (s *SettingsService) Restore(ctx context.Context, payload []byte) (models.Settings, error) {
	next, err := s.settings.Restore(payload)
	if err != nil {
		return models.Settings{}, err
	}
	s.Apply()
	s.events.LogEvent(ctx, models.EventConfig, "settings restored", map[string]any{
		"device_name": next.DeviceName,
	})
	return next, nil
}

func (p SettingsPatch) apply(cur models.Settings) models.Settings {
	setString(&cur.WifiSSID, p.WifiSSID)
	setString(&cur.WifiPass, p.WifiPass)
	setString(&cur.DeviceName, p.DeviceName)
	setString(&cur.TelegramToken, p.TelegramToken)
	setString(&cur.TelegramChatID, p.TelegramChatID)
	setString(&cur.DiscordWebhook, p.DiscordWebhook)
	setString(&cur.WolMacList, p.WolMacList)
	if p.MaintenanceMode != nil {
		cur.MaintenanceMode = *p.MaintenanceMode
	}
	if p.PowerRecoveryEnabled != nil {
		cur.PowerRecoveryEnabled = *p.PowerRecoveryEnabled
	}
	if p.SchedulesEnabled != nil {
		cur.SchedulesEnabled = *p.SchedulesEnabled
	}
	if p.NtpOffset != nil {
		cur.NtpOffset = *p.NtpOffset
	}
	return cur
}

// setString writes v into dst unless v is nil or the redaction placeholder
// echoed back from a display form.
func setString(dst *string, v *string) {
	if v == nil || *v == redacted {
		return
	}
	*dst = *v
}
