package care

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"babycare-backend/internal/model"
	"babycare-backend/internal/schedule"
)

// LactationInterval returns the configured time between feedings.
func (s *Service) LactationInterval(ctx context.Context) (time.Duration, error) {
	raw, err := s.store.GetSetting(ctx, model.SettingLactationInterval, model.DefaultLactationInterval)
	if err != nil {
		return 0, err
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("setting %s=%q: %w", model.SettingLactationInterval, raw, err)
	}
	return schedule.HoursToDuration(hours), nil
}

// DiaperThreshold returns the stock level at or below which a low-stock alert is sent.
func (s *Service) DiaperThreshold(ctx context.Context) (int, error) {
	raw, err := s.store.GetSetting(ctx, model.SettingDiaperThreshold, model.DefaultDiaperThreshold)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("setting %s=%q: %w", model.SettingDiaperThreshold, raw, err)
	}
	return n, nil
}

// UpdateSetting validates and stores a setting. Known keys must hold numbers.
func (s *Service) UpdateSetting(ctx context.Context, key, value string) error {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	switch key {
	case model.SettingLactationInterval:
		hours, err := strconv.ParseFloat(value, 64)
		if err != nil || hours <= 0 {
			return invalid("%s must be a positive number of hours", key)
		}
	case model.SettingDiaperThreshold:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return invalid("%s must be a non-negative integer", key)
		}
	default:
		return invalid("unknown setting %q", key)
	}
	return s.store.SetSetting(ctx, key, value, "")
}
