package care

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"babycare-backend/internal/model"
	"babycare-backend/internal/notification"
	"babycare-backend/internal/schedule"
	"babycare-backend/internal/store"
)

// upcomingLimit caps the appointments listed by WhatIsNext.
const upcomingLimit = 5

// DaySummary aggregates one profile's logs for a local calendar day.
type DaySummary struct {
	Date        string   `json:"date"`
	IsBaby      bool     `json:"is_baby"`
	MedsCount   int      `json:"meds_count"`
	MedsNames   []string `json:"meds_names"`
	DiaperTotal int      `json:"diapers_total"`
	Pee         int      `json:"pee"`
	Poo         int      `json:"poo"`
	Feedings    int      `json:"feedings"`
	FeedingMins int      `json:"feeding_mins"`
}

// DaySummary counts medications for any profile and, for babies, diapers and feedings.
func (s *Service) DaySummary(ctx context.Context, profileID int64, day time.Time) (*DaySummary, error) {
	p, err := s.profile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if day.IsZero() {
		day = s.Now()
	}
	from, to := s.dayBounds(day)

	meds, err := s.store.MedicationLogsBetween(ctx, p.ID, from, to)
	if err != nil {
		return nil, err
	}
	sum := &DaySummary{
		Date:      from.Format("02/01/2006"),
		IsBaby:    p.IsBaby(),
		MedsCount: len(meds),
		MedsNames: []string{},
	}
	seen := make(map[string]bool)
	for _, m := range meds {
		if name := m.Treatment.MedicineName; !seen[name] {
			seen[name] = true
			sum.MedsNames = append(sum.MedsNames, name)
		}
	}
	if !sum.IsBaby {
		return sum, nil
	}

	diapers, err := s.store.DiaperLogsBetween(ctx, p.ID, from, to)
	if err != nil {
		return nil, err
	}
	sum.DiaperTotal = len(diapers)
	for _, d := range diapers {
		if d.WasteType == model.WastePee || d.WasteType == model.WasteBoth {
			sum.Pee++
		}
		if d.WasteType == model.WastePoo || d.WasteType == model.WasteBoth {
			sum.Poo++
		}
	}

	feedings, err := s.store.FeedingLogsBetween(ctx, p.ID, from, to)
	if err != nil {
		return nil, err
	}
	sum.Feedings = len(feedings)
	for _, f := range feedings {
		sum.FeedingMins += f.DurationMinutes()
	}
	return sum, nil
}

// MedicationOutlook lists the doses of one treatment still due today, or the
// next dose when none is left today.
type MedicationOutlook struct {
	TreatmentID  int64           `json:"treatment_id"`
	MedicineName string          `json:"medicine_name"`
	Today        []schedule.Dose `json:"today"`
	Next         *time.Time      `json:"next,omitempty"`
}

// Outlook is everything pending for a profile.
type Outlook struct {
	Feeding      *schedule.FeedingStatus `json:"feeding,omitempty"`
	Medications  []MedicationOutlook     `json:"medications"`
	Appointments []model.Appointment     `json:"appointments"`
}

// WhatIsNext returns the next feeding (babies only), the remaining doses of
// every active treatment and the upcoming appointments.
func (s *Service) WhatIsNext(ctx context.Context, profileID int64) (*Outlook, error) {
	p, err := s.profile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	out := &Outlook{Medications: []MedicationOutlook{}}

	if p.IsBaby() {
		last, err := s.store.LatestFeedingLog(ctx, p.ID)
		switch {
		case err == nil:
			interval, err := s.LactationInterval(ctx)
			if err != nil {
				return nil, err
			}
			status, err := schedule.FeedingDue(last.EndTime, interval, now)
			if err != nil {
				return nil, err
			}
			status.At = status.At.In(s.Location())
			out.Feeding = &status
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	treatments, err := s.store.ListActiveTreatments(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	for i := range treatments {
		t := &treatments[i]
		var last *time.Time
		prev, err := s.store.LatestMedicationLog(ctx, t.ID)
		switch {
		case err == nil:
			last = &prev.AdministeredAt
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}

		plan, err := s.plan(t, last)
		if err != nil {
			var invalidErr *schedule.InvalidScheduleError
			if errors.As(err, &invalidErr) {
				log.Printf("Skipping treatment %d: %v", t.ID, err)
				continue
			}
			return nil, err
		}
		mo := MedicationOutlook{TreatmentID: t.ID, MedicineName: t.MedicineName, Today: plan.Today}
		if len(plan.Today) == 0 && plan.Next != nil {
			mo.Next = plan.Next
		}
		if len(mo.Today) > 0 || mo.Next != nil {
			out.Medications = append(out.Medications, mo)
		}
	}

	out.Appointments, err = s.store.UpcomingAppointments(ctx, p.ID, now, upcomingLimit)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DailyAppointmentAlerts builds the alerts for pending appointments today,
// tomorrow and in one week, in that order.
func (s *Service) DailyAppointmentAlerts(ctx context.Context, now time.Time) ([]notification.Alert, error) {
	var alerts []notification.Alert
	for _, offset := range []int{0, 1, 7} {
		from, to := s.dayBounds(now.In(s.Location()).AddDate(0, 0, offset))
		appts, err := s.store.PendingAppointmentsBetween(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to load appointments in %d days: %w", offset, err)
		}
		for _, a := range appts {
			alerts = append(alerts, s.appointmentAlert(offset, a))
		}
	}
	return alerts, nil
}

func (s *Service) appointmentAlert(offset int, a model.Appointment) notification.Alert {
	alert := notification.Alert{Topic: model.TopicAppointments}
	place := orDefault(a.Location, "No especificado")
	switch offset {
	case 0:
		alert.Title = "¡Hoy tienes cita!"
		alert.Body = fmt.Sprintf("Paciente: %s\nEspecialista: %s\nHora: %s\nLugar: %s\nNo olvides los documentos necesarios.",
			a.Profile.Name, a.Specialist, s.clockTime(a.Date), place)
	case 1:
		alert.Title = "Recordatorio: cita mañana"
		alert.Body = fmt.Sprintf("Paciente: %s\nEspecialista: %s\nHora: %s\nLugar: %s",
			a.Profile.Name, a.Specialist, s.clockTime(a.Date), place)
	default:
		alert.Title = "Planificación semanal"
		alert.Body = fmt.Sprintf("En %d días tienes un compromiso:\n%s con %s\nFecha: %s",
			offset, a.Profile.Name, a.Specialist, s.dayTime(a.Date))
	}
	return alert
}

// EventAlert renders the alert for a due scheduled event. It reports false
// when the event is obsolete: its treatment ended, its appointment already
// has results, or the row it refers to is gone.
func (s *Service) EventAlert(ctx context.Context, e model.ScheduledEvent) (notification.Alert, bool, error) {
	var payload eventPayload
	if e.Payload != "" {
		if err := json.Unmarshal([]byte(e.Payload), &payload); err != nil {
			return notification.Alert{}, false, fmt.Errorf("event %s has a malformed payload: %w", e.ID, err)
		}
	}

	switch e.Type {
	case model.EventLactation:
		name := payload.ProfileName
		if p, err := s.store.GetProfile(ctx, e.RelatedID); err == nil {
			name = p.Name
		} else if !errors.Is(err, store.ErrNotFound) {
			return notification.Alert{}, false, err
		}
		return notification.Alert{
			Topic: model.TopicLactation,
			Title: "¡Hora de comer!",
			Body:  fmt.Sprintf("Ya toca la siguiente toma de %s.", name),
		}, true, nil

	case model.EventMedication:
		t, err := s.store.GetTreatment(ctx, e.RelatedID)
		if errors.Is(err, store.ErrNotFound) {
			return notification.Alert{}, false, nil
		}
		if err != nil {
			return notification.Alert{}, false, err
		}
		if !t.Active {
			return notification.Alert{}, false, nil
		}
		return notification.Alert{
			Topic: model.TopicMeds,
			Title: "¡Hora del medicamento!",
			Body:  fmt.Sprintf("Paciente: %s\nMedicina: %s\nDosis: %s", t.Profile.Name, t.MedicineName, t.Dose),
		}, true, nil

	case model.EventAppointment, model.EventResults:
		a, err := s.store.GetAppointment(ctx, e.RelatedID)
		if errors.Is(err, store.ErrNotFound) {
			return notification.Alert{}, false, nil
		}
		if err != nil {
			return notification.Alert{}, false, err
		}
		if a.Completed {
			return notification.Alert{}, false, nil
		}
		if e.Type == model.EventAppointment {
			return notification.Alert{
				Topic: model.TopicAppointments,
				Title: "Cita en una hora",
				Body: fmt.Sprintf("%s con %s a las %s\nLugar: %s",
					a.Profile.Name, a.Specialist, s.clockTime(a.Date), orDefault(a.Location, "No especificado")),
			}, true, nil
		}
		return notification.Alert{
			Topic: model.TopicAppointments,
			Title: "¿Cómo les fue en la cita?",
			Body: fmt.Sprintf("La cita de %s con %s ya debería haber terminado. Registra peso, talla y notas.",
				a.Profile.Name, a.Specialist),
		}, true, nil

	case model.EventCustom:
		topic := payload.Topic
		if topic == "" {
			topic = model.TopicAppointments
		}
		return notification.Alert{Topic: topic, Title: payload.Title, Body: payload.Body}, true, nil
	}
	return notification.Alert{}, false, fmt.Errorf("event %s has unknown type %q", e.ID, e.Type)
}
