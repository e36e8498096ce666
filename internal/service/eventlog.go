package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/repository"
)

// EventLogService records device events in the text log and in the event
// table. Write failures are logged and dropped; they never reach the caller.
type EventLogService struct {
	eventRepo repository.EventRepo
	logs      repository.LogStore
	log       *logger.Logger
	now       func() time.Time
}

func NewEventLogService(eventRepo repository.EventRepo, logs repository.LogStore, log *logger.Logger) *EventLogService {
	return &EventLogService{eventRepo: eventRepo, logs: logs, log: log, now: time.Now}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// LogEvent appends one line to the text log and one row to the event table.
func (s *EventLogService) LogEvent(ctx context.Context, typ, message string, meta any) {
	now := s.now().UTC()
	typ = normalizeEventType(typ)

	if s.logs != nil {
		line := now.Format(time.RFC3339) + " " + typ + " " + message
		if err := s.logs.Append(line); err != nil {
			s.log.Warnw("log_append_failed", "type", typ, "err", err)
		}
	}

	err := s.eventRepo.Append(ctx, models.DeviceEvent{
		OccurredAt:  now,
		Type:        typ,
		Description: message,
		Metadata:    meta,
	})
	if err != nil {
		s.log.Warnw("event_append_failed", "type", typ, "err", err)
	}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	eventType := normalizeEventType(f.Type)
	return from, to, eventType, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, typ)
}

// ReadLog returns the current text log.
func (s *EventLogService) ReadLog() (string, error) { return s.logs.Read() }

// ReadOldLog returns the rotated text log.
func (s *EventLogService) ReadOldLog() (string, error) { return s.logs.ReadOld() }

// Tail returns the last n bytes of the current text log.
func (s *EventLogService) Tail(n int) (string, error) { return s.logs.Tail(n) }
