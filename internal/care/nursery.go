package care

import (
	"context"
	"fmt"
	"strings"
	"time"

	"babycare-backend/internal/model"
	"babycare-backend/internal/schedule"
)

// DiaperChange is a diaper change as reported by a caregiver.
// A zero Time means the change happened now.
type DiaperChange struct {
	ProfileID int64           `json:"profile_id"`
	SizeLabel string          `json:"size"`
	WasteType model.WasteType `json:"waste_type"`
	Time      time.Time       `json:"time"`
	Notes     string          `json:"notes"`
}

// DiaperResult reports the stock left after a change.
type DiaperResult struct {
	Log      *model.DiaperLog `json:"log"`
	Stock    int              `json:"stock"`
	LowStock bool             `json:"low_stock"`
}

func (s *Service) babyProfile(ctx context.Context, id int64) (*model.Profile, error) {
	p, err := s.profile(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsBaby() {
		return nil, invalid("profile %d is not a baby", id)
	}
	return p, nil
}

// RecordDiaperChange logs a change, takes one diaper out of stock and alerts
// the caregivers when the remaining stock is at or below the threshold.
func (s *Service) RecordDiaperChange(ctx context.Context, reporterID int64, in DiaperChange) (*DiaperResult, error) {
	if !in.WasteType.Valid() {
		return nil, invalid("unknown waste type %q", in.WasteType)
	}
	if strings.TrimSpace(in.SizeLabel) == "" {
		return nil, invalid("size is required")
	}
	if _, err := s.babyProfile(ctx, in.ProfileID); err != nil {
		return nil, err
	}
	if in.Time.IsZero() {
		in.Time = s.Now()
	}

	entry := &model.DiaperLog{
		ProfileID:  in.ProfileID,
		ReporterID: &reporterID,
		Time:       in.Time.UTC(),
		WasteType:  in.WasteType,
		SizeLabel:  strings.TrimSpace(in.SizeLabel),
		Notes:      in.Notes,
	}
	stock, err := s.store.RecordDiaperChange(ctx, entry)
	if err != nil {
		return nil, err
	}

	threshold, err := s.DiaperThreshold(ctx)
	if err != nil {
		return nil, err
	}
	res := &DiaperResult{Log: entry, Stock: stock, LowStock: stock <= threshold}
	if res.LowStock {
		s.broadcast(model.TopicDiapers, "Alerta de stock",
			fmt.Sprintf("Quedan %d pañales talla %s.", stock, entry.SizeLabel))
	}
	return res, nil
}

// Restock adds diapers of one size to the inventory.
func (s *Service) Restock(ctx context.Context, sizeLabel string, quantity int) (*model.DiaperInventory, error) {
	if quantity <= 0 {
		return nil, invalid("quantity must be positive")
	}
	return s.store.Restock(ctx, strings.TrimSpace(sizeLabel), quantity)
}

// AddDiaperSize registers a new size label at the end of the list.
func (s *Service) AddDiaperSize(ctx context.Context, label string) (*model.DiaperSize, error) {
	label = strings.ToUpper(strings.TrimSpace(label))
	if label == "" || len(label) > 10 {
		return nil, invalid("size label must have between 1 and 10 characters")
	}
	sizes, err := s.store.ListDiaperSizes(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, existing := range sizes {
		if existing.Label == label {
			return nil, invalid("size %s already exists", label)
		}
	}
	size := &model.DiaperSize{Label: label, Active: true, Order: len(sizes)}
	if err := s.store.CreateDiaperSize(ctx, size); err != nil {
		return nil, err
	}
	return size, nil
}

// Feeding is a feeding session as reported by a caregiver.
type Feeding struct {
	ProfileID int64     `json:"profile_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Notes     string    `json:"notes"`
	Manual    bool      `json:"manual"`
}

// FeedingResult carries the stored log and the time of the next feeding.
type FeedingResult struct {
	Log  *model.FeedingLog `json:"log"`
	Next time.Time         `json:"next"`
}

// RecordFeeding logs a feeding and schedules the next lactation reminder one
// interval after the session ended.
func (s *Service) RecordFeeding(ctx context.Context, reporterID int64, in Feeding) (*FeedingResult, error) {
	if in.Start.IsZero() || in.End.IsZero() {
		return nil, invalid("start and end are required")
	}
	if in.End.Before(in.Start) {
		return nil, invalid("feeding cannot end before it starts")
	}
	p, err := s.babyProfile(ctx, in.ProfileID)
	if err != nil {
		return nil, err
	}

	entry := &model.FeedingLog{
		ProfileID:   in.ProfileID,
		ReporterID:  &reporterID,
		StartTime:   in.Start.UTC(),
		EndTime:     in.End.UTC(),
		Notes:       in.Notes,
		ManualEntry: in.Manual,
	}
	if err := s.store.CreateFeedingLog(ctx, entry); err != nil {
		return nil, err
	}

	interval, err := s.LactationInterval(ctx)
	if err != nil {
		return nil, err
	}
	status, err := schedule.FeedingDue(entry.EndTime, interval, s.Now())
	if err != nil {
		return nil, err
	}
	if err := s.scheduleEvent(ctx, model.EventLactation, p.ID, status.At, eventPayload{ProfileName: p.Name}); err != nil {
		return nil, err
	}
	return &FeedingResult{Log: entry, Next: status.At.In(s.Location())}, nil
}
