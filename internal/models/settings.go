package models

// Settings are the user-editable device settings persisted as JSON.
// Length limits mirror the fixed buffers of the firmware settings file.
type Settings struct {
	WifiSSID             string `json:"wifiSsid" mapstructure:"wifiSsid" validate:"max=31"`
	WifiPass             string `json:"wifiPass" mapstructure:"wifiPass" validate:"max=63"`
	DeviceName           string `json:"deviceName" mapstructure:"deviceName" validate:"required,max=31"`
	TelegramToken        string `json:"telegramToken" mapstructure:"telegramToken" validate:"max=127"`
	TelegramChatID       string `json:"telegramChatId" mapstructure:"telegramChatId" validate:"max=31"`
	DiscordWebhook       string `json:"discordWebhook" mapstructure:"discordWebhook" validate:"omitempty,startswith=https://,max=189"`
	WolMacList           string `json:"wolMacList" mapstructure:"wolMacList" validate:"omitempty,max=255,maclist"`
	MaintenanceMode      bool   `json:"maintenanceMode" mapstructure:"maintenanceMode"`
	PowerRecoveryEnabled bool   `json:"powerRecoveryEnabled" mapstructure:"powerRecoveryEnabled"`
	SchedulesEnabled     bool   `json:"schedulesEnabled" mapstructure:"schedulesEnabled"`
	NtpOffset            int    `json:"ntpOffset" mapstructure:"ntpOffset" validate:"min=-43200,max=50400"`
}
