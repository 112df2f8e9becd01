package care

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"babycare-backend/internal/model"
	"babycare-backend/internal/schedule"
	"babycare-backend/internal/store"
)

// lateTolerance is how long after its expected time a dose still counts as on time.
const lateTolerance = 30 * time.Minute

// appointmentLead is how long before an appointment its reminder fires.
const appointmentLead = time.Hour

// minDoseInterval is the shortest accepted time between two doses.
const minDoseInterval = 15 * time.Minute

// NewTreatment describes a prescription to start tracking.
type NewTreatment struct {
	ProfileID      int64     `json:"profile_id"`
	MedicineName   string    `json:"medicine_name"`
	Dose           string    `json:"dose"`
	FrequencyHours float64   `json:"frequency_hours"`
	DurationDays   int       `json:"duration_days"`
	Start          time.Time `json:"start"`
}

// TreatmentPlan is a stored treatment with its first reminder and the doses
// projected for the rest of today.
type TreatmentPlan struct {
	Treatment *model.Treatment `json:"treatment"`
	Next      *time.Time       `json:"next,omitempty"`
	Today     []schedule.Dose  `json:"today"`
}

// CreateTreatment stores a treatment and schedules its first dose reminder.
func (s *Service) CreateTreatment(ctx context.Context, creatorID int64, in NewTreatment) (*TreatmentPlan, error) {
	in.MedicineName = strings.TrimSpace(in.MedicineName)
	if in.MedicineName == "" {
		return nil, invalid("medicine name is required")
	}
	if in.DurationDays <= 0 {
		return nil, &schedule.InvalidScheduleError{Field: "duration", Reason: "must be at least one day"}
	}

	t := &model.Treatment{
		ProfileID:      in.ProfileID,
		MedicineName:   in.MedicineName,
		Dose:           strings.TrimSpace(in.Dose),
		FrequencyHours: in.FrequencyHours,
		StartDate:      in.Start.UTC(),
		DurationDays:   in.DurationDays,
		Active:         true,
		CreatedByID:    &creatorID,
	}
	if err := t.Activity().Validate(); err != nil {
		return nil, err
	}
	if t.Activity().Interval < minDoseInterval {
		return nil, &schedule.InvalidScheduleError{Field: "frequency", Reason: "must be at least 0.25 hours"}
	}
	p, err := s.profile(ctx, in.ProfileID)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateTreatment(ctx, t); err != nil {
		return nil, err
	}
	t.Profile = *p

	plan, err := s.plan(t, nil)
	if err != nil {
		return nil, err
	}
	if plan.Next == nil {
		// The whole course already lies in the past.
		if err := s.store.SetTreatmentActive(ctx, t.ID, false); err != nil {
			return nil, err
		}
		t.Active = false
	} else if err := s.scheduleEvent(ctx, model.EventMedication, t.ID, *plan.Next, eventPayload{ProfileName: p.Name}); err != nil {
		return nil, err
	}

	s.broadcast(model.TopicMeds, "Nuevo tratamiento", fmt.Sprintf(
		"%s: %s (%s)\nCada %sh por %d días\nRegistrado por: %s",
		p.Name, t.MedicineName, t.Dose, formatNumber(t.FrequencyHours), t.DurationDays, s.caregiverName(ctx, creatorID)))
	return plan, nil
}

// Plan returns a treatment's next dose and the doses left today, counted
// from the last logged dose.
func (s *Service) Plan(ctx context.Context, treatmentID int64) (*TreatmentPlan, error) {
	t, err := s.store.GetTreatment(ctx, treatmentID)
	if err != nil {
		return nil, err
	}
	var last *time.Time
	prev, err := s.store.LatestMedicationLog(ctx, t.ID)
	switch {
	case err == nil:
		last = &prev.AdministeredAt
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	return s.plan(t, last)
}

// plan projects the next dose and today's remaining doses after last.
func (s *Service) plan(t *model.Treatment, last *time.Time) (*TreatmentPlan, error) {
	now := s.Now()
	activity := t.Activity()
	plan := &TreatmentPlan{Treatment: t, Today: []schedule.Dose{}}

	next, ok, err := s.projector.NextDue(activity, last, now)
	if err != nil {
		return nil, err
	}
	if ok {
		local := next.In(s.Location())
		plan.Next = &local
	}

	doses, err := s.projector.ProjectToday(activity, last, now, now)
	if err != nil {
		return nil, err
	}
	for d := range doses {
		d.At = d.At.In(s.Location())
		plan.Today = append(plan.Today, d)
	}
	return plan, nil
}

// DoseResult reports a logged dose and what comes after it.
type DoseResult struct {
	Log       *model.MedicationLog `json:"log"`
	Next      *time.Time           `json:"next,omitempty"`
	Completed bool                 `json:"completed"`
}

// AdministerDose logs a dose given at the given time (zero means now) and
// schedules the following reminder. When no dose remains before the end of
// the course the treatment is closed instead.
func (s *Service) AdministerDose(ctx context.Context, caregiverID, treatmentID int64, at time.Time) (*DoseResult, error) {
	t, err := s.store.GetTreatment(ctx, treatmentID)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, ErrTreatmentFinished
	}
	now := s.Now()
	if at.IsZero() {
		at = now
	}
	if at.After(now) {
		return nil, invalid("a dose cannot be logged in the future")
	}

	expected := t.StartDate
	prev, err := s.store.LatestMedicationLog(ctx, t.ID)
	switch {
	case err == nil:
		expected = prev.AdministeredAt
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	activity := t.Activity()
	expected = expected.Add(activity.Interval)

	entry := &model.MedicationLog{
		TreatmentID:      t.ID,
		AdministeredAt:   at.UTC(),
		AdministeredByID: &caregiverID,
		WasLate:          at.After(expected.Add(lateTolerance)),
	}
	if err := s.store.CreateMedicationLog(ctx, entry); err != nil {
		return nil, err
	}

	res := &DoseResult{Log: entry}
	next, ok, err := s.projector.NextDue(activity, &at, now)
	if err != nil {
		return nil, err
	}
	if ok {
		local := next.In(s.Location())
		res.Next = &local
		if err := s.scheduleEvent(ctx, model.EventMedication, t.ID, next, eventPayload{ProfileName: t.Profile.Name}); err != nil {
			return nil, err
		}
	} else {
		if err := s.store.SetTreatmentActive(ctx, t.ID, false); err != nil {
			return nil, err
		}
		if err := s.store.CancelEvents(ctx, model.EventMedication, t.ID); err != nil {
			return nil, err
		}
		res.Completed = true
	}

	s.broadcast(model.TopicMeds, "Aviso de dosis", fmt.Sprintf(
		"%s ya suministró el medicamento a %s.\n%s a las %s",
		s.caregiverName(ctx, caregiverID), t.Profile.Name, t.MedicineName, s.clockTime(at)))
	return res, nil
}

// SnoozeDose postpones the dose reminder of a treatment. It fails with
// ErrReminderPending while the next dose reminder has not fired yet.
func (s *Service) SnoozeDose(ctx context.Context, caregiverID, treatmentID int64) (time.Time, error) {
	t, err := s.store.GetTreatment(ctx, treatmentID)
	if err != nil {
		return time.Time{}, err
	}
	if !t.Active {
		return time.Time{}, ErrTreatmentFinished
	}
	now := s.Now()
	pending, err := s.store.PendingEvent(ctx, model.EventMedication, t.ID)
	switch {
	case err == nil:
		if pending.ScheduledTime.After(now) {
			return time.Time{}, fmt.Errorf("%w: next dose at %s", ErrReminderPending, s.clockTime(pending.ScheduledTime))
		}
	case !errors.Is(err, store.ErrNotFound):
		return time.Time{}, err
	}
	at := now.Add(s.opts.Snooze)
	if err := s.scheduleEvent(ctx, model.EventMedication, t.ID, at, eventPayload{ProfileName: t.Profile.Name}); err != nil {
		return time.Time{}, err
	}
	s.broadcast(model.TopicMeds, "Dosis pospuesta", fmt.Sprintf(
		"%s pospuso la medicina de %s (%s) hasta las %s.",
		s.caregiverName(ctx, caregiverID), t.Profile.Name, t.MedicineName, s.clockTime(at)))
	return at, nil
}

// NewAppointment describes a medical visit to schedule.
type NewAppointment struct {
	ProfileID  int64     `json:"profile_id"`
	Date       time.Time `json:"date"`
	Specialist string    `json:"specialist"`
	Location   string    `json:"location"`
	Notes      string    `json:"notes"`
}

// CreateAppointment stores an appointment, schedules a reminder shortly
// before it and a prompt for the results shortly after it.
func (s *Service) CreateAppointment(ctx context.Context, creatorID int64, in NewAppointment) (*model.Appointment, error) {
	in.Specialist = strings.TrimSpace(in.Specialist)
	if in.Specialist == "" {
		return nil, invalid("specialist is required")
	}
	if in.Date.IsZero() {
		return nil, invalid("date is required")
	}
	p, err := s.profile(ctx, in.ProfileID)
	if err != nil {
		return nil, err
	}

	a := &model.Appointment{
		ProfileID:  in.ProfileID,
		Date:       in.Date.UTC(),
		Specialist: in.Specialist,
		Location:   strings.TrimSpace(in.Location),
		Notes:      in.Notes,
	}
	if err := s.store.CreateAppointment(ctx, a); err != nil {
		return nil, err
	}
	a.Profile = *p

	payload := eventPayload{ProfileName: p.Name}
	if reminder := a.Date.Add(-appointmentLead); reminder.After(s.Now()) {
		if err := s.scheduleEvent(ctx, model.EventAppointment, a.ID, reminder, payload); err != nil {
			return nil, err
		}
	}
	if err := s.scheduleEvent(ctx, model.EventResults, a.ID, a.Date.Add(s.opts.ResultsDelay), payload); err != nil {
		return nil, err
	}

	s.broadcast(model.TopicAppointments, "Nueva cita registrada", fmt.Sprintf(
		"%s con %s\n%s\nLugar: %s\nRegistrada por: %s",
		p.Name, a.Specialist, s.dayTime(a.Date), orDefault(a.Location, "No especificado"), s.caregiverName(ctx, creatorID)))
	return a, nil
}

// Results are the measurements taken at an appointment.
type Results struct {
	WeightKg            *float64 `json:"weight_kg"`
	HeightCm            *float64 `json:"height_cm"`
	HeadCircumferenceCm *float64 `json:"head_circumference_cm"`
	Notes               string   `json:"notes"`
}

// RecordResults stores the results of an appointment. Results can be stored
// only once.
func (s *Service) RecordResults(ctx context.Context, caregiverID, appointmentID int64, in Results) (*model.Appointment, error) {
	a, err := s.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.Completed {
		return nil, ErrAlreadyCompleted
	}
	for _, v := range []*float64{in.WeightKg, in.HeightCm, in.HeadCircumferenceCm} {
		if v != nil && *v <= 0 {
			return nil, invalid("measurements must be positive")
		}
	}

	a.WeightKg = in.WeightKg
	a.HeightCm = in.HeightCm
	a.HeadCircumferenceCm = in.HeadCircumferenceCm
	a.Notes = strings.TrimSpace(in.Notes)
	if err := s.store.CompleteAppointment(ctx, a); err != nil {
		return nil, err
	}
	if err := s.store.CancelEvents(ctx, model.EventResults, a.ID); err != nil {
		return nil, err
	}

	s.broadcast(model.TopicAppointments, "Resultados registrados", fmt.Sprintf(
		"%s (cita %s)\nPeso: %s\nTalla: %s\nNotas: %s\nPor: %s",
		a.Profile.Name, a.Specialist, measure(a.WeightKg, "kg"), measure(a.HeightCm, "cm"),
		orDefault(a.Notes, "Sin notas"), s.caregiverName(ctx, caregiverID)))
	return a, nil
}

// CustomReminder is a free-form reminder for everyone.
type CustomReminder struct {
	At    time.Time   `json:"at"`
	Topic model.Topic `json:"topic"`
	Title string      `json:"title"`
	Body  string      `json:"body"`
}

// ScheduleReminder stores a custom reminder to be broadcast at the given time.
func (s *Service) ScheduleReminder(ctx context.Context, in CustomReminder) (*model.ScheduledEvent, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("title is required")
	}
	if !in.At.After(s.Now()) {
		return nil, invalid("reminder time must be in the future")
	}
	if in.Topic == "" {
		in.Topic = model.TopicAppointments
	}
	if _, err := in.Topic.Column(); err != nil {
		return nil, invalid("%v", err)
	}
	raw, err := json.Marshal(eventPayload{Title: in.Title, Body: in.Body, Topic: in.Topic})
	if err != nil {
		return nil, err
	}
	event := &model.ScheduledEvent{
		Type:          model.EventCustom,
		ScheduledTime: in.At,
		Payload:       string(raw),
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func formatNumber(h float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", h), "0"), ".")
}

func measure(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s", formatNumber(*v), unit)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
