package care

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babycare-backend/config"
	"babycare-backend/internal/db"
	"babycare-backend/internal/model"
	"babycare-backend/internal/notification"
	"babycare-backend/internal/schedule"
	"babycare-backend/internal/store"
)

var caracas = time.FixedZone("VET", -4*60*60)

func local(month time.Month, day, hour, min int) time.Time {
	return time.Date(2026, month, day, hour, min, 0, 0, caracas)
}

// recorder collects broadcast alerts instead of pushing them.
type recorder struct {
	mu     sync.Mutex
	alerts []notification.Alert
}

func (r *recorder) Broadcast(a notification.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, a := range r.alerts {
		out = append(out, a.Title)
	}
	return out
}

func (r *recorder) last() notification.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alerts[len(r.alerts)-1]
}

// clock is a settable test clock.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type fixture struct {
	svc    *Service
	store  store.Store
	alerts *recorder
	clock  *clock
	ctx    context.Context
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gormDB, err := db.Open(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:care_%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	st := store.NewGormStore(gormDB)
	rec := &recorder{}
	clk := &clock{t: now}
	svc := NewService(st, rec, clk, caracas, Options{})
	return &fixture{svc: svc, store: st, alerts: rec, clock: clk, ctx: context.Background()}
}

func (f *fixture) profile(t *testing.T, name string, typ model.ProfileType) *model.Profile {
	t.Helper()
	p := &model.Profile{Name: name, Type: typ, BirthDate: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, f.store.CreateProfile(f.ctx, p))
	return p
}

func (f *fixture) pending(t *testing.T, at time.Time) []model.ScheduledEvent {
	t.Helper()
	events, err := f.store.DueEvents(f.ctx, at)
	require.NoError(t, err)
	return events
}

func TestRegisterAndApprove(t *testing.T) {
	f := newFixture(t, local(2, 3, 10, 0))

	owner, err := f.svc.RegisterCaregiver(f.ctx, Registration{ID: 1, FirstName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, owner.Role)
	assert.True(t, owner.Active)
	assert.Empty(t, f.alerts.titles())

	guest, err := f.svc.RegisterCaregiver(f.ctx, Registration{ID: 2, FirstName: "Luis", Username: "luis"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleGuest, guest.Role)
	assert.False(t, guest.Active)
	require.Len(t, f.alerts.titles(), 1)
	assert.Equal(t, int64(1), f.alerts.last().CaregiverID)
	assert.Contains(t, f.alerts.last().Body, "@luis")

	// Registering again while pending repeats the request.
	_, err = f.svc.RegisterCaregiver(f.ctx, Registration{ID: 2, FirstName: "Luis"})
	require.NoError(t, err)
	assert.Len(t, f.alerts.titles(), 2)

	_, err = f.svc.Authorize(f.ctx, 2)
	assert.ErrorIs(t, err, ErrInactiveCaregiver)

	_, err = f.svc.ApproveCaregiver(f.ctx, 2, 2, model.RoleAdmin, "Papá")
	assert.ErrorIs(t, err, ErrInactiveCaregiver)

	_, err = f.svc.ApproveCaregiver(f.ctx, 1, 2, model.RoleOwner, "Papá")
	assert.ErrorIs(t, err, ErrInvalidInput)

	approved, err := f.svc.ApproveCaregiver(f.ctx, 1, 2, model.RoleAdmin, "Papá")
	require.NoError(t, err)
	assert.True(t, approved.Active)
	assert.Equal(t, "Papá", approved.DisplayName())
	assert.Equal(t, int64(2), f.alerts.last().CaregiverID)

	_, err = f.svc.RegisterCaregiver(f.ctx, Registration{ID: 3, FirstName: "Rosa"})
	require.NoError(t, err)

	_, err = f.svc.ApproveCaregiver(f.ctx, 2, 3, model.RoleGuest, "Tía Rosa")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.RejectCaregiver(f.ctx, 1, 3))
	_, err = f.store.GetCaregiver(f.ctx, 3)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, f.svc.RejectCaregiver(f.ctx, 1, 1), ErrInvalidInput)
}

func TestRecordDiaperChange(t *testing.T) {
	f := newFixture(t, local(2, 3, 10, 0))
	baby := f.profile(t, "Sofía", model.ProfileBaby)
	adult := f.profile(t, "Abuela", model.ProfileAdult)

	_, err := f.svc.Restock(f.ctx, "M", 16)
	require.NoError(t, err)

	res, err := f.svc.RecordDiaperChange(f.ctx, 1, DiaperChange{ProfileID: baby.ID, SizeLabel: "M", WasteType: model.WastePee})
	require.NoError(t, err)
	assert.Equal(t, 15, res.Stock)
	assert.True(t, res.LowStock, "stock equal to the threshold alerts")
	assert.True(t, res.Log.Time.Equal(local(2, 3, 10, 0)))
	assert.Equal(t, model.TopicDiapers, f.alerts.last().Topic)
	assert.Contains(t, f.alerts.last().Body, "15 pañales talla M")

	_, err = f.svc.Restock(f.ctx, "M", 10)
	require.NoError(t, err)
	alertsBefore := len(f.alerts.titles())

	res, err = f.svc.RecordDiaperChange(f.ctx, 1, DiaperChange{ProfileID: baby.ID, SizeLabel: "M", WasteType: model.WasteBoth})
	require.NoError(t, err)
	assert.Equal(t, 24, res.Stock)
	assert.False(t, res.LowStock)
	assert.Len(t, f.alerts.titles(), alertsBefore)

	_, err = f.svc.RecordDiaperChange(f.ctx, 1, DiaperChange{ProfileID: adult.ID, SizeLabel: "M", WasteType: model.WastePee})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.RecordDiaperChange(f.ctx, 1, DiaperChange{ProfileID: baby.ID, SizeLabel: "M", WasteType: "WET"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.RecordDiaperChange(f.ctx, 1, DiaperChange{ProfileID: baby.ID, SizeLabel: "XXL", WasteType: model.WastePee})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.Restock(f.ctx, "M", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddDiaperSize(t *testing.T) {
	f := newFixture(t, local(2, 3, 10, 0))

	size, err := f.svc.AddDiaperSize(f.ctx, " xg ")
	require.NoError(t, err)
	assert.Equal(t, "XG", size.Label)
	assert.Equal(t, 4, size.Order)

	_, err = f.svc.AddDiaperSize(f.ctx, "XG")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecordFeeding(t *testing.T) {
	f := newFixture(t, local(2, 3, 10, 0))
	baby := f.profile(t, "Sofía", model.ProfileBaby)

	res, err := f.svc.RecordFeeding(f.ctx, 1, Feeding{ProfileID: baby.ID, Start: local(2, 3, 9, 0), End: local(2, 3, 9, 20)})
	require.NoError(t, err)
	assert.True(t, res.Next.Equal(local(2, 3, 12, 20)))
	assert.Equal(t, 20, res.Log.DurationMinutes())

	assert.Empty(t, f.pending(t, local(2, 3, 12, 19)))
	events := f.pending(t, local(2, 3, 12, 20))
	require.Len(t, events, 1)
	assert.Equal(t, model.EventLactation, events[0].Type)
	assert.Equal(t, baby.ID, events[0].RelatedID)

	require.NoError(t, f.svc.UpdateSetting(f.ctx, model.SettingLactationInterval, "2,5"))
	res, err = f.svc.RecordFeeding(f.ctx, 1, Feeding{ProfileID: baby.ID, Start: local(2, 3, 9, 40), End: local(2, 3, 10, 0)})
	require.NoError(t, err)
	assert.True(t, res.Next.Equal(local(2, 3, 12, 30)))

	// The newer feeding replaces the pending reminder.
	events = f.pending(t, local(2, 4, 0, 0))
	require.Len(t, events, 1)
	assert.True(t, events[0].ScheduledTime.Equal(local(2, 3, 12, 30)))

	_, err = f.svc.RecordFeeding(f.ctx, 1, Feeding{ProfileID: baby.ID, Start: local(2, 3, 9, 0), End: local(2, 3, 8, 0)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateSetting(t *testing.T) {
	f := newFixture(t, local(2, 3, 10, 0))

	interval, err := f.svc.LactationInterval(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Hour, interval)

	require.NoError(t, f.svc.UpdateSetting(f.ctx, model.SettingLactationInterval, "2,5"))
	interval, err = f.svc.LactationInterval(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 150*time.Minute, interval)

	require.NoError(t, f.svc.UpdateSetting(f.ctx, model.SettingDiaperThreshold, "5"))
	threshold, err := f.svc.DiaperThreshold(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, threshold)

	assert.ErrorIs(t, f.svc.UpdateSetting(f.ctx, model.SettingLactationInterval, "abc"), ErrInvalidInput)
	assert.ErrorIs(t, f.svc.UpdateSetting(f.ctx, model.SettingDiaperThreshold, "-1"), ErrInvalidInput)
	assert.ErrorIs(t, f.svc.UpdateSetting(f.ctx, "color", "blue"), ErrInvalidInput)
}

func TestCreateTreatment(t *testing.T) {
	f := newFixture(t, local(2, 3, 10, 0))
	baby := f.profile(t, "Sofía", model.ProfileBaby)

	plan, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
		ProfileID: baby.ID, MedicineName: "Amoxicilina", Dose: "5ml",
		FrequencyHours: 8, DurationDays: 7, Start: local(2, 3, 8, 0),
	})
	require.NoError(t, err)
	require.NotNil(t, plan.Next)
	assert.True(t, plan.Next.Equal(local(2, 3, 16, 0)))
	require.Len(t, plan.Today, 1)
	assert.True(t, plan.Today[0].At.Equal(local(2, 3, 16, 0)))
	assert.False(t, plan.Today[0].Overdue)
	require.NotNil(t, plan.Treatment.EndDate)
	assert.True(t, plan.Treatment.EndDate.Equal(local(2, 10, 8, 0)))

	events := f.pending(t, local(2, 3, 16, 0))
	require.Len(t, events, 1)
	assert.Equal(t, model.EventMedication, events[0].Type)
	assert.Equal(t, plan.Treatment.ID, events[0].RelatedID)
	assert.Equal(t, model.TopicMeds, f.alerts.last().Topic)
	assert.Contains(t, f.alerts.last().Body, "Cada 8h por 7 días")

	t.Run("invalid frequency", func(t *testing.T) {
		_, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
			ProfileID: baby.ID, MedicineName: "X", FrequencyHours: 0, DurationDays: 1, Start: local(2, 3, 8, 0),
		})
		var invalidErr *schedule.InvalidScheduleError
		assert.True(t, errors.As(err, &invalidErr))
	})

	t.Run("frequency below a quarter hour", func(t *testing.T) {
		for _, hours := range []float64{0.0000001, 0.2} {
			_, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
				ProfileID: baby.ID, MedicineName: "X", FrequencyHours: hours, DurationDays: 1, Start: local(2, 3, 8, 0),
			})
			var invalidErr *schedule.InvalidScheduleError
			require.True(t, errors.As(err, &invalidErr), "hours %v", hours)
			assert.Equal(t, "frequency", invalidErr.Field)
		}

		plan, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
			ProfileID: baby.ID, MedicineName: "Suero", FrequencyHours: 0.25, DurationDays: 1, Start: local(2, 3, 8, 0),
		})
		require.NoError(t, err)
		assert.Len(t, plan.Today, 55)
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
			ProfileID: baby.ID, MedicineName: "X", FrequencyHours: 8, DurationDays: 0, Start: local(2, 3, 8, 0),
		})
		var invalidErr *schedule.InvalidScheduleError
		assert.True(t, errors.As(err, &invalidErr))
	})

	t.Run("course already over", func(t *testing.T) {
		plan, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
			ProfileID: baby.ID, MedicineName: "Ibuprofeno", Dose: "2ml",
			FrequencyHours: 6, DurationDays: 2, Start: local(1, 1, 8, 0),
		})
		require.NoError(t, err)
		assert.Nil(t, plan.Next)
		assert.Empty(t, plan.Today)
		assert.False(t, plan.Treatment.Active)
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
			ProfileID: 999, MedicineName: "X", FrequencyHours: 8, DurationDays: 1, Start: local(2, 3, 8, 0),
		})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestAdministerDose(t *testing.T) {
	f := newFixture(t, local(2, 3, 10, 0))
	baby := f.profile(t, "Sofía", model.ProfileBaby)

	plan, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
		ProfileID: baby.ID, MedicineName: "Paracetamol", Dose: "3ml",
		FrequencyHours: 8, DurationDays: 1, Start: local(2, 3, 8, 0),
	})
	require.NoError(t, err)
	id := plan.Treatment.ID

	f.clock.t = local(2, 3, 16, 5)
	res, err := f.svc.AdministerDose(f.ctx, 1, id, time.Time{})
	require.NoError(t, err)
	assert.False(t, res.Log.WasLate)
	assert.False(t, res.Completed)
	require.NotNil(t, res.Next)
	assert.True(t, res.Next.Equal(local(2, 4, 0, 5)))
	assert.Equal(t, "Aviso de dosis", f.alerts.last().Title)

	events := f.pending(t, local(2, 4, 0, 5))
	require.Len(t, events, 1, "the first reminder was replaced")
	assert.True(t, events[0].ScheduledTime.Equal(local(2, 4, 0, 5)))

	current, err := f.svc.Plan(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, current.Next)
	assert.True(t, current.Next.Equal(local(2, 4, 0, 5)))
	assert.Empty(t, current.Today, "the next dose is tomorrow")

	// The next dose would land after the end of the course.
	f.clock.t = local(2, 4, 0, 10)
	res, err = f.svc.AdministerDose(f.ctx, 1, id, time.Time{})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Nil(t, res.Next)
	assert.Empty(t, f.pending(t, local(2, 5, 0, 0)))

	stored, err := f.store.GetTreatment(f.ctx, id)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	_, err = f.svc.AdministerDose(f.ctx, 1, id, time.Time{})
	assert.ErrorIs(t, err, ErrTreatmentFinished)

	t.Run("late dose", func(t *testing.T) {
		f.clock.t = local(2, 5, 18, 0)
		plan, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
			ProfileID: baby.ID, MedicineName: "Vitamina D", Dose: "1 gota",
			FrequencyHours: 8, DurationDays: 3, Start: local(2, 5, 8, 0),
		})
		require.NoError(t, err)

		res, err := f.svc.AdministerDose(f.ctx, 1, plan.Treatment.ID, local(2, 5, 17, 0))
		require.NoError(t, err)
		assert.True(t, res.Log.WasLate)
		require.NotNil(t, res.Next)
		assert.True(t, res.Next.Equal(local(2, 6, 1, 0)))
	})

	t.Run("future dose", func(t *testing.T) {
		_, err := f.svc.AdministerDose(f.ctx, 1, id, f.clock.t.Add(time.Hour))
		assert.Error(t, err)
	})
}

func TestSnoozeDose(t *testing.T) {
	f := newFixture(t, local(2, 3, 10, 0))
	baby := f.profile(t, "Sofía", model.ProfileBaby)

	plan, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
		ProfileID: baby.ID, MedicineName: "Paracetamol", Dose: "3ml",
		FrequencyHours: 8, DurationDays: 2, Start: local(2, 3, 8, 0),
	})
	require.NoError(t, err)

	_, err = f.svc.SnoozeDose(f.ctx, 1, plan.Treatment.ID)
	assert.ErrorIs(t, err, ErrReminderPending)
	events := f.pending(t, local(2, 3, 16, 0))
	require.Len(t, events, 1, "the dose reminder stays in place")
	assert.True(t, events[0].ScheduledTime.Equal(local(2, 3, 16, 0)))

	f.clock.t = local(2, 3, 16, 0)
	at, err := f.svc.SnoozeDose(f.ctx, 1, plan.Treatment.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(local(2, 3, 16, 15)))
	assert.Equal(t, "Dosis pospuesta", f.alerts.last().Title)

	assert.Empty(t, f.pending(t, local(2, 3, 16, 14)))
	require.Len(t, f.pending(t, local(2, 3, 16, 15)), 1)

	// A second snooze once the postponed reminder has fired.
	f.clock.t = local(2, 3, 16, 20)
	at, err = f.svc.SnoozeDose(f.ctx, 1, plan.Treatment.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(local(2, 3, 16, 35)))
}

func TestAppointmentResults(t *testing.T) {
	f := newFixture(t, local(2, 3, 10, 0))
	baby := f.profile(t, "Sofía", model.ProfileBaby)

	appt, err := f.svc.CreateAppointment(f.ctx, 1, NewAppointment{
		ProfileID: baby.ID, Date: local(2, 5, 10, 0), Specialist: "Pediatra", Location: "Clínica",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nueva cita registrada", f.alerts.last().Title)

	events := f.pending(t, local(2, 5, 10, 15))
	require.Len(t, events, 2)
	assert.Equal(t, model.EventAppointment, events[0].Type)
	assert.True(t, events[0].ScheduledTime.Equal(local(2, 5, 9, 0)))
	assert.Equal(t, model.EventResults, events[1].Type)

	weight := 5.4
	done, err := f.svc.RecordResults(f.ctx, 1, appt.ID, Results{WeightKg: &weight, Notes: "Todo bien"})
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Contains(t, f.alerts.last().Body, "Peso: 5.4 kg")
	assert.Contains(t, f.alerts.last().Body, "Talla: -")

	_, err = f.svc.RecordResults(f.ctx, 1, appt.ID, Results{WeightKg: &weight})
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	events = f.pending(t, local(2, 6, 0, 0))
	require.Len(t, events, 1, "the results prompt is withdrawn")
	assert.Equal(t, model.EventAppointment, events[0].Type)

	_, err = f.svc.CreateAppointment(f.ctx, 1, NewAppointment{ProfileID: baby.ID, Date: local(2, 5, 10, 0)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDaySummary(t *testing.T) {
	// 20:00 in Caracas is already the next day in UTC.
	f := newFixture(t, local(2, 3, 20, 0))
	baby := f.profile(t, "Sofía", model.ProfileBaby)
	adult := f.profile(t, "Abuela", model.ProfileAdult)

	for _, c := range []DiaperChange{
		{ProfileID: baby.ID, SizeLabel: "P", WasteType: model.WastePee, Time: local(2, 3, 8, 0)},
		{ProfileID: baby.ID, SizeLabel: "P", WasteType: model.WastePoo, Time: local(2, 3, 12, 0)},
		{ProfileID: baby.ID, SizeLabel: "P", WasteType: model.WasteBoth, Time: local(2, 3, 19, 30)},
		{ProfileID: baby.ID, SizeLabel: "P", WasteType: model.WastePee, Time: local(2, 2, 23, 30)},
	} {
		_, err := f.svc.RecordDiaperChange(f.ctx, 1, c)
		require.NoError(t, err)
	}
	_, err := f.svc.RecordFeeding(f.ctx, 1, Feeding{ProfileID: baby.ID, Start: local(2, 3, 9, 0), End: local(2, 3, 9, 20)})
	require.NoError(t, err)
	_, err = f.svc.RecordFeeding(f.ctx, 1, Feeding{ProfileID: baby.ID, Start: local(2, 3, 19, 0), End: local(2, 3, 19, 15)})
	require.NoError(t, err)

	plan, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
		ProfileID: baby.ID, MedicineName: "Amoxicilina", Dose: "5ml",
		FrequencyHours: 8, DurationDays: 3, Start: local(2, 3, 1, 0),
	})
	require.NoError(t, err)
	for _, at := range []time.Time{local(2, 3, 9, 0), local(2, 3, 17, 0)} {
		_, err := f.svc.AdministerDose(f.ctx, 1, plan.Treatment.ID, at)
		require.NoError(t, err)
	}

	sum, err := f.svc.DaySummary(f.ctx, baby.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "03/02/2026", sum.Date)
	assert.True(t, sum.IsBaby)
	assert.Equal(t, 2, sum.MedsCount)
	assert.Equal(t, []string{"Amoxicilina"}, sum.MedsNames)
	assert.Equal(t, 3, sum.DiaperTotal)
	assert.Equal(t, 2, sum.Pee)
	assert.Equal(t, 2, sum.Poo)
	assert.Equal(t, 2, sum.Feedings)
	assert.Equal(t, 35, sum.FeedingMins)

	yesterday, err := f.svc.DaySummary(f.ctx, baby.ID, local(2, 2, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, yesterday.DiaperTotal)
	assert.Zero(t, yesterday.MedsCount)

	sum, err = f.svc.DaySummary(f.ctx, adult.ID, time.Time{})
	require.NoError(t, err)
	assert.False(t, sum.IsBaby)
	assert.Zero(t, sum.DiaperTotal)
	assert.Empty(t, sum.MedsNames)
}

func TestWhatIsNext(t *testing.T) {
	f := newFixture(t, local(2, 3, 13, 0))
	baby := f.profile(t, "Sofía", model.ProfileBaby)

	empty, err := f.svc.WhatIsNext(f.ctx, baby.ID)
	require.NoError(t, err)
	assert.Nil(t, empty.Feeding)
	assert.Empty(t, empty.Medications)
	assert.Empty(t, empty.Appointments)

	_, err = f.svc.RecordFeeding(f.ctx, 1, Feeding{ProfileID: baby.ID, Start: local(2, 3, 8, 40), End: local(2, 3, 9, 0)})
	require.NoError(t, err)

	every4h, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
		ProfileID: baby.ID, MedicineName: "Paracetamol", Dose: "3ml",
		FrequencyHours: 4, DurationDays: 5, Start: local(2, 3, 8, 0),
	})
	require.NoError(t, err)
	_, err = f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
		ProfileID: baby.ID, MedicineName: "Vitamina D", Dose: "1 gota",
		FrequencyHours: 24, DurationDays: 30, Start: local(2, 3, 8, 0),
	})
	require.NoError(t, err)

	tomorrow, err := f.svc.CreateAppointment(f.ctx, 1, NewAppointment{ProfileID: baby.ID, Date: local(2, 4, 9, 0), Specialist: "Pediatra"})
	require.NoError(t, err)
	past, err := f.svc.CreateAppointment(f.ctx, 1, NewAppointment{ProfileID: baby.ID, Date: local(2, 5, 9, 0), Specialist: "Dermatólogo"})
	require.NoError(t, err)
	_, err = f.svc.RecordResults(f.ctx, 1, past.ID, Results{Notes: "cancelada"})
	require.NoError(t, err)

	out, err := f.svc.WhatIsNext(f.ctx, baby.ID)
	require.NoError(t, err)

	require.NotNil(t, out.Feeding)
	assert.True(t, out.Feeding.At.Equal(local(2, 3, 12, 0)))
	assert.True(t, out.Feeding.Overdue)

	require.Len(t, out.Medications, 2)
	assert.Equal(t, every4h.Treatment.ID, out.Medications[0].TreatmentID)
	var times []time.Time
	for _, d := range out.Medications[0].Today {
		times = append(times, d.At)
	}
	require.Len(t, times, 2)
	assert.True(t, times[0].Equal(local(2, 3, 16, 0)))
	assert.True(t, times[1].Equal(local(2, 3, 20, 0)))
	assert.Nil(t, out.Medications[0].Next)

	assert.Empty(t, out.Medications[1].Today)
	require.NotNil(t, out.Medications[1].Next)
	assert.True(t, out.Medications[1].Next.Equal(local(2, 4, 8, 0)))

	require.Len(t, out.Appointments, 1)
	assert.Equal(t, tomorrow.ID, out.Appointments[0].ID)
}

func TestDailyAppointmentAlerts(t *testing.T) {
	f := newFixture(t, local(2, 3, 7, 0))
	baby := f.profile(t, "Sofía", model.ProfileBaby)

	for _, a := range []NewAppointment{
		{ProfileID: baby.ID, Date: local(2, 3, 21, 0), Specialist: "Pediatra"},
		{ProfileID: baby.ID, Date: local(2, 4, 9, 0), Specialist: "Nutricionista", Location: "Centro"},
		{ProfileID: baby.ID, Date: local(2, 5, 9, 0), Specialist: "Oftalmólogo"},
		{ProfileID: baby.ID, Date: local(2, 10, 11, 0), Specialist: "Cardiólogo"},
	} {
		_, err := f.svc.CreateAppointment(f.ctx, 1, a)
		require.NoError(t, err)
	}
	done, err := f.svc.CreateAppointment(f.ctx, 1, NewAppointment{ProfileID: baby.ID, Date: local(2, 3, 8, 0), Specialist: "Vacunas"})
	require.NoError(t, err)
	_, err = f.svc.RecordResults(f.ctx, 1, done.ID, Results{})
	require.NoError(t, err)

	alerts, err := f.svc.DailyAppointmentAlerts(f.ctx, f.clock.Now())
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	assert.Equal(t, "¡Hoy tienes cita!", alerts[0].Title)
	assert.Contains(t, alerts[0].Body, "Pediatra")
	assert.Contains(t, alerts[0].Body, "09:00 PM")
	assert.Contains(t, alerts[0].Body, "No especificado")

	assert.Equal(t, "Recordatorio: cita mañana", alerts[1].Title)
	assert.Contains(t, alerts[1].Body, "Centro")

	assert.Equal(t, "Planificación semanal", alerts[2].Title)
	assert.Contains(t, alerts[2].Body, "Cardiólogo")
	for _, a := range alerts {
		assert.Equal(t, model.TopicAppointments, a.Topic)
	}
}

func TestEventAlert(t *testing.T) {
	f := newFixture(t, local(2, 3, 10, 0))
	baby := f.profile(t, "Sofía", model.ProfileBaby)

	plan, err := f.svc.CreateTreatment(f.ctx, 1, NewTreatment{
		ProfileID: baby.ID, MedicineName: "Paracetamol", Dose: "3ml",
		FrequencyHours: 8, DurationDays: 2, Start: local(2, 3, 8, 0),
	})
	require.NoError(t, err)

	alert, ok, err := f.svc.EventAlert(f.ctx, model.ScheduledEvent{Type: model.EventMedication, RelatedID: plan.Treatment.ID})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.TopicMeds, alert.Topic)
	assert.Contains(t, alert.Body, "Paracetamol")

	require.NoError(t, f.store.SetTreatmentActive(f.ctx, plan.Treatment.ID, false))
	_, ok, err = f.svc.EventAlert(f.ctx, model.ScheduledEvent{Type: model.EventMedication, RelatedID: plan.Treatment.ID})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = f.svc.EventAlert(f.ctx, model.ScheduledEvent{Type: model.EventResults, RelatedID: 999})
	require.NoError(t, err)
	assert.False(t, ok)

	alert, ok, err = f.svc.EventAlert(f.ctx, model.ScheduledEvent{Type: model.EventLactation, RelatedID: baby.ID})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, alert.Body, "Sofía")

	event, err := f.svc.ScheduleReminder(f.ctx, CustomReminder{At: local(2, 3, 18, 0), Topic: model.TopicDiapers, Title: "Comprar pañales"})
	require.NoError(t, err)
	alert, ok, err = f.svc.EventAlert(f.ctx, *event)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.TopicDiapers, alert.Topic)
	assert.Equal(t, "Comprar pañales", alert.Title)

	_, err = f.svc.ScheduleReminder(f.ctx, CustomReminder{At: local(2, 3, 9, 0), Title: "Tarde"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = f.svc.EventAlert(f.ctx, model.ScheduledEvent{ID: "x", Type: "BOGUS"})
	assert.Error(t, err)
}

func TestCreateProfile(t *testing.T) {
	f := newFixture(t, local(2, 3, 10, 0))

	p, err := f.svc.CreateProfile(f.ctx, NewProfile{Name: "  Sofía ", BirthDate: local(1, 10, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, "Sofía", p.Name)
	assert.Equal(t, model.ProfileBaby, p.Type)

	found, err := f.store.FindProfileByName(f.ctx, "sofía")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	tests := []struct {
		name string
		in   NewProfile
	}{
		{"empty name", NewProfile{Name: " ", BirthDate: local(1, 10, 0, 0)}},
		{"unknown type", NewProfile{Name: "Ana", Type: "PET", BirthDate: local(1, 10, 0, 0)}},
		{"missing birth date", NewProfile{Name: "Ana"}},
		{"future birth date", NewProfile{Name: "Ana", BirthDate: local(3, 1, 0, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateProfile(f.ctx, tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
