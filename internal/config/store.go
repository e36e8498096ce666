package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"zenith_pc_control"
	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrNoBackup        = errors.New("no settings file to back up")
)

// Defaults are applied when the settings file is missing or unreadable.
func Defaults() models.Settings {
	return models.Settings{
		DeviceName:           zenith_pc_control.DefaultDeviceName,
		PowerRecoveryEnabled: true,
		SchedulesEnabled:     true,
	}
}

// Store holds the device settings in memory and mirrors them to a JSON file.
type Store struct {
	mu       sync.RWMutex
	path     string
	current  models.Settings
	validate *validator.Validate
	log      *logger.Logger
}

func NewStore(path string, log *logger.Logger) *Store {
	return &Store{
		path:     path,
		current:  Defaults(),
		validate: newValidator(),
		log:      log,
	}
}

// Load reads the settings file. A missing file is created with defaults; an
// unreadable or invalid one leaves defaults in memory and returns the error.
func (s *Store) Load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.set(Defaults())
		return s.write(Defaults())
	}
	if err != nil {
		s.set(Defaults())
		return fmt.Errorf("read settings: %w", err)
	}

	parsed, err := s.parse(raw)
	if err != nil {
		s.set(Defaults())
		return err
	}
	s.set(parsed)
	return nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save validates next, writes it and only then makes it current.
func (s *Store) Save(next models.Settings) error {
	if err := s.validate.Struct(next); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.set(next)
	return nil
}

// Backup returns the settings file as stored on disk.
func (s *Store) Backup() ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return raw, nil
}

// Restore replaces the settings with a backup payload. The payload must parse
// and validate before anything is written.
func (s *Store) Restore(payload []byte) (models.Settings, error) {
	parsed, err := s.parse(payload)
	if err != nil {
		return models.Settings{}, err
	}
	if err := s.write(parsed); err != nil {
		return models.Settings{}, err
	}
	s.set(parsed)
	return parsed, nil
}

// parse decodes a JSON settings document on top of the defaults, so absent
// keys keep their default value.
func (s *Store) parse(raw []byte) (models.Settings, error) {
	v := viper.New()
	v.SetConfigType("json")
	def := Defaults()
	v.SetDefault("deviceName", def.DeviceName)
	v.SetDefault("powerRecoveryEnabled", def.PowerRecoveryEnabled)
	v.SetDefault("schedulesEnabled", def.SchedulesEnabled)

	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return models.Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	var out models.Settings
	if err := v.Unmarshal(&out); err != nil {
		return models.Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.validate.Struct(out); err != nil {
		return models.Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return out, nil
}

// write goes through a temp file so a crash never leaves half a document.
func (s *Store) write(st models.Settings) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

func (s *Store) set(st models.Settings) {
	s.mu.Lock()
	s.current = st
	s.mu.Unlock()
	if s.log != nil {
		s.log.Debugw("settings_applied", "device_name", st.DeviceName, "maintenance", st.MaintenanceMode)
	}
}
