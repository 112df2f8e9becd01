package internal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babycare-backend/config"
	"babycare-backend/internal/care"
	"babycare-backend/internal/db"
	"babycare-backend/internal/model"
	"babycare-backend/internal/notification"
	"babycare-backend/internal/reminder"
	"babycare-backend/internal/store"
)

// inbox records every push it is asked to send.
type inbox struct {
	mu     sync.Mutex
	titles []string
}

func (b *inbox) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	var alert notification.Alert
	if err := json.Unmarshal(payload, &alert); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.titles = append(b.titles, alert.Title)
	b.mu.Unlock()
	return &http.Response{StatusCode: http.StatusCreated, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func (b *inbox) received(title string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Contains(b.titles, title)
}

func (b *inbox) count(title string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, t := range b.titles {
		if t == title {
			n++
		}
	}
	return n
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// TestTreatmentLifecycle follows a one-day treatment from creation to its
// last dose, with reminders flowing through the dispatcher and the push
// worker pool.
func TestTreatmentLifecycle(t *testing.T) {
	// --- Test Setup ---
	loc := time.FixedZone("VET", -4*60*60)
	at := func(day, hour, min int) time.Time {
		return time.Date(2026, 2, day, hour, min, 0, 0, loc)
	}

	gormDB, err := db.Open(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file:lifecycle?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.NewGormStore(gormDB)
	pushes := &inbox{}
	pool := notification.NewWorkerPool(2, st, &webpush.Options{})
	pool.SetSender(pushes)
	pool.Start(ctx)

	clk := &clock{t: at(3, 8, 30)}
	svc := care.NewService(st, pool, clk, loc, care.Options{})
	dispatcher, err := reminder.NewDispatcher(config.ReminderConfig{Enabled: true, DailyCheckCron: "0 0 8 * * *"}, loc, st, svc, pool, clk)
	require.NoError(t, err)

	owner, err := svc.RegisterCaregiver(ctx, care.Registration{ID: 1, FirstName: "Ana"})
	require.NoError(t, err)
	require.NoError(t, st.UpsertSubscription(ctx, &model.PushSubscription{
		Endpoint: "https://push.example/ana", P256DH: "key", Auth: "secret", CaregiverID: owner.ID,
	}))
	baby, err := svc.CreateProfile(ctx, care.NewProfile{Name: "Sofía", BirthDate: at(1, 0, 0)})
	require.NoError(t, err)

	// --- Step 1: create the treatment ---
	plan, err := svc.CreateTreatment(ctx, owner.ID, care.NewTreatment{
		ProfileID: baby.ID, MedicineName: "Amoxicilina", Dose: "5 ml",
		FrequencyHours: 8, DurationDays: 1, Start: at(3, 8, 0),
	})
	require.NoError(t, err)
	require.NotNil(t, plan.Next)
	assert.True(t, plan.Next.Equal(at(3, 16, 0)))
	assert.Eventually(t, func() bool { return pushes.received("Nuevo tratamiento") }, time.Second, 10*time.Millisecond)

	// --- Step 2: nothing is due before the reminder time ---
	assert.Equal(t, 0, dispatcher.DispatchDue(ctx, at(3, 15, 59)))

	// --- Step 3: the reminder fires once ---
	assert.Equal(t, 1, dispatcher.DispatchDue(ctx, at(3, 16, 0)))
	assert.Eventually(t, func() bool { return pushes.received("¡Hora del medicamento!") }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, dispatcher.DispatchDue(ctx, at(3, 16, 1)), "sent events are not repeated")

	// --- Step 4: the dose schedules the next reminder ---
	clk.set(at(3, 16, 5))
	res, err := svc.AdministerDose(ctx, owner.ID, plan.Treatment.ID, time.Time{})
	require.NoError(t, err)
	require.NotNil(t, res.Next)
	assert.True(t, res.Next.Equal(at(4, 0, 5)))
	assert.False(t, res.Completed)

	// --- Step 5: the last dose closes the treatment and its reminder ---
	clk.set(at(4, 0, 10))
	res, err = svc.AdministerDose(ctx, owner.ID, plan.Treatment.ID, time.Time{})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, 0, dispatcher.DispatchDue(ctx, at(5, 0, 0)))

	stored, err := st.GetTreatment(ctx, plan.Treatment.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Eventually(t, func() bool { return pushes.count("Aviso de dosis") == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, pushes.count("¡Hora del medicamento!"))
}
