package store

import (
	"context"
	"fmt"
	"time"

	"babycare-backend/internal/model"
)

func (s *gormStore) CreateTreatment(ctx context.Context, t *model.Treatment) error {
	if err := s.db.WithContext(ctx).Omit("Profile").Create(t).Error; err != nil {
		return fmt.Errorf("failed to create treatment: %w", err)
	}
	return nil
}

func (s *gormStore) GetTreatment(ctx context.Context, id int64) (*model.Treatment, error) {
	var t model.Treatment
	if err := s.db.WithContext(ctx).Preload("Profile").First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *gormStore) ListActiveTreatments(ctx context.Context, profileID int64) ([]model.Treatment, error) {
	var treatments []model.Treatment
	err := s.db.WithContext(ctx).
		Where("profile_id = ? AND active = ?", profileID, true).
		Order("start_date").
		Order("id").
		Find(&treatments).Error
	return treatments, err
}

func (s *gormStore) SetTreatmentActive(ctx context.Context, id int64, active bool) error {
	res := s.db.WithContext(ctx).Model(&model.Treatment{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update treatment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) CreateMedicationLog(ctx context.Context, l *model.MedicationLog) error {
	return s.db.WithContext(ctx).Omit("Treatment").Create(l).Error
}

// LatestMedicationLog returns the most recent dose of a treatment, or ErrNotFound.
func (s *gormStore) LatestMedicationLog(ctx context.Context, treatmentID int64) (*model.MedicationLog, error) {
	var l model.MedicationLog
	err := s.db.WithContext(ctx).
		Where("treatment_id = ?", treatmentID).
		Order("administered_at DESC").
		First(&l).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

func (s *gormStore) MedicationLogsBetween(ctx context.Context, profileID int64, from, to time.Time) ([]model.MedicationLog, error) {
	var logs []model.MedicationLog
	err := s.db.WithContext(ctx).
		Preload("Treatment").
		Joins("JOIN treatments t ON t.id = medication_logs.treatment_id").
		Where("t.profile_id = ?", profileID).
		Where("medication_logs.administered_at >= ? AND medication_logs.administered_at < ?", from.UTC(), to.UTC()).
		Order("medication_logs.administered_at").
		Find(&logs).Error
	return logs, err
}

func (s *gormStore) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	return s.db.WithContext(ctx).Omit("Profile").Create(a).Error
}

func (s *gormStore) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	var a model.Appointment
	if err := s.db.WithContext(ctx).Preload("Profile").First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// CompleteAppointment stores the visit results. Only the first writer wins;
// later calls get ErrAlreadyCompleted.
func (s *gormStore) CompleteAppointment(ctx context.Context, a *model.Appointment) error {
	res := s.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("id = ? AND completed = ?", a.ID, false).
		Updates(map[string]any{
			"weight_kg":             a.WeightKg,
			"height_cm":             a.HeightCm,
			"head_circumference_cm": a.HeadCircumferenceCm,
			"notes":                 a.Notes,
			"completed":             true,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to complete appointment %d: %w", a.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyCompleted
	}
	a.Completed = true
	return nil
}

func (s *gormStore) UpcomingAppointments(ctx context.Context, profileID int64, from time.Time, limit int) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := s.db.WithContext(ctx).
		Where("profile_id = ? AND date >= ? AND completed = ?", profileID, from.UTC(), false).
		Order("date").
		Limit(limit).
		Find(&appts).Error
	return appts, err
}

func (s *gormStore) PendingAppointmentsBetween(ctx context.Context, from, to time.Time) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := s.db.WithContext(ctx).
		Preload("Profile").
		Where("completed = ? AND date >= ? AND date < ?", false, from.UTC(), to.UTC()).
		Order("date").
		Find(&appts).Error
	return appts, err
}
