// Package reminder delivers scheduled reminders and the daily appointment check.
package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"babycare-backend/config"
	"babycare-backend/internal/model"
	"babycare-backend/internal/notification"
	"babycare-backend/internal/schedule"
)

// EventStore is the persistence the dispatcher needs.
type EventStore interface {
	DueEvents(ctx context.Context, now time.Time) ([]model.ScheduledEvent, error)
	MarkEventSent(ctx context.Context, id string) error
}

// Renderer turns due events and appointments into alerts.
type Renderer interface {
	EventAlert(ctx context.Context, e model.ScheduledEvent) (notification.Alert, bool, error)
	DailyAppointmentAlerts(ctx context.Context, now time.Time) ([]notification.Alert, error)
}

// Dispatcher polls for due events and runs the daily appointment check.
type Dispatcher struct {
	cfg    config.ReminderConfig
	store  EventStore
	render Renderer
	alerts notification.Broadcaster
	clock  schedule.Clock
	cron   *cron.Cron
	daily  cron.Schedule
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NewDispatcher creates a dispatcher. The daily check runs in loc.
func NewDispatcher(cfg config.ReminderConfig, loc *time.Location, st EventStore, render Renderer, alerts notification.Broadcaster, clock schedule.Clock) (*Dispatcher, error) {
	d := &Dispatcher{
		cfg:    cfg,
		store:  st,
		render: render,
		alerts: alerts,
		clock:  clock,
		cron:   cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
	}
	if cfg.PollInterval <= 0 {
		d.cfg.PollInterval = 30 * time.Second
	}
	if cfg.DailyCheckCron != "" {
		daily, err := cronParser.Parse(cfg.DailyCheckCron)
		if err != nil {
			return nil, fmt.Errorf("invalid daily check schedule %q: %w", cfg.DailyCheckCron, err)
		}
		d.daily = daily
	}
	return d, nil
}

// Run checks for due reminders until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	if !d.cfg.Enabled {
		log.Println("Reminders are disabled. Not starting.")
		return
	}
	log.Println("Starting reminder dispatcher...")

	if d.daily != nil {
		d.cron.Schedule(d.daily, cron.FuncJob(func() {
			d.CheckAppointments(ctx)
		}))
		d.cron.Start()
		defer func() {
			<-d.cron.Stop().Done()
		}()
	}

	d.DispatchDue(ctx, d.clock.Now())

	timer := time.NewTimer(d.cfg.PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reminder dispatcher shutting down.")
			return
		case <-timer.C:
			d.DispatchDue(ctx, d.clock.Now())
			timer.Reset(d.cfg.PollInterval)
		}
	}
}

// DispatchDue broadcasts every unsent event scheduled at or before now and
// marks it sent. Obsolete and unrenderable events are marked sent without an
// alert. It returns the number of alerts broadcast.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time) int {
	events, err := d.store.DueEvents(ctx, now)
	if err != nil {
		log.Printf("Error loading due reminders: %v", err)
		return 0
	}

	sent := 0
	for _, e := range events {
		alert, ok, err := d.render.EventAlert(ctx, e)
		switch {
		case err != nil:
			log.Printf("Dropping %s reminder %s: %v", e.Type, e.ID, err)
		case !ok:
			log.Printf("Skipping obsolete %s reminder %s", e.Type, e.ID)
		default:
			d.alerts.Broadcast(alert)
			sent++
		}
		if err := d.store.MarkEventSent(ctx, e.ID); err != nil {
			log.Printf("Error marking reminder %s as sent: %v", e.ID, err)
		}
	}
	if len(events) > 0 {
		log.Printf("Reminder cycle finished: %d due, %d sent.", len(events), sent)
	}
	return sent
}

// CheckAppointments broadcasts the appointments of today, tomorrow and next week.
func (d *Dispatcher) CheckAppointments(ctx context.Context) int {
	alerts, err := d.render.DailyAppointmentAlerts(ctx, d.clock.Now())
	if err != nil {
		log.Printf("Error running daily appointment check: %v", err)
		return 0
	}
	for _, a := range alerts {
		d.alerts.Broadcast(a)
	}
	log.Printf("Daily appointment check sent %d alerts.", len(alerts))
	return len(alerts)
}
