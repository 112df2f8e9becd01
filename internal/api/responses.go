package api

import (
	"time"

	"babycare-backend/internal/care"
	"babycare-backend/internal/model"
	"babycare-backend/internal/schedule"
)

type caregiverResponse struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	FirstName   string     `json:"first_name"`
	Nickname    string     `json:"nickname,omitempty"`
	DisplayName string     `json:"display_name"`
	Role        model.Role `json:"role"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newCaregiverResponse(c *model.Caregiver) caregiverResponse {
	return caregiverResponse{
		ID:          c.ID,
		Username:    c.Username,
		FirstName:   c.FirstName,
		Nickname:    c.Nickname,
		DisplayName: c.DisplayName(),
		Role:        c.Role,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
	}
}

// preferenceResponse maps every topic to whether it is switched on.
type preferenceResponse map[model.Topic]bool

func newPreferenceResponse(p *model.AlertPreference) preferenceResponse {
	resp := make(preferenceResponse, len(model.Topics))
	for _, t := range model.Topics {
		resp[t] = p.Enabled(t)
	}
	return resp
}

type profileResponse struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Type      model.ProfileType `json:"type"`
	BirthDate string            `json:"birth_date"`
}

func newProfileResponse(p *model.Profile, loc *time.Location) profileResponse {
	return profileResponse{
		ID:        p.ID,
		Name:      p.Name,
		Type:      p.Type,
		BirthDate: p.BirthDate.In(loc).Format("02/01/2006"),
	}
}

type treatmentResponse struct {
	ID             int64      `json:"id"`
	ProfileID      int64      `json:"profile_id"`
	MedicineName   string     `json:"medicine_name"`
	Dose           string     `json:"dose"`
	FrequencyHours float64    `json:"frequency_hours"`
	StartDate      time.Time  `json:"start_date"`
	DurationDays   int        `json:"duration_days"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Active         bool       `json:"active"`
}

func newTreatmentResponse(t *model.Treatment, loc *time.Location) treatmentResponse {
	resp := treatmentResponse{
		ID:             t.ID,
		ProfileID:      t.ProfileID,
		MedicineName:   t.MedicineName,
		Dose:           t.Dose,
		FrequencyHours: t.FrequencyHours,
		StartDate:      t.StartDate.In(loc),
		DurationDays:   t.DurationDays,
		Active:         t.Active,
	}
	if t.EndDate != nil {
		end := t.EndDate.In(loc)
		resp.EndDate = &end
	}
	return resp
}

type doseResponse struct {
	At      time.Time `json:"at"`
	Overdue bool      `json:"overdue"`
}

func newDoseResponses(doses []schedule.Dose) []doseResponse {
	resp := make([]doseResponse, len(doses))
	for i, d := range doses {
		resp[i] = doseResponse{At: d.At, Overdue: d.Overdue}
	}
	return resp
}

type treatmentPlanResponse struct {
	Treatment treatmentResponse `json:"treatment"`
	Next      *time.Time        `json:"next,omitempty"`
	Today     []doseResponse    `json:"today"`
}

type doseLogResponse struct {
	ID             int64      `json:"id"`
	TreatmentID    int64      `json:"treatment_id"`
	AdministeredAt time.Time  `json:"administered_at"`
	WasLate        bool       `json:"was_late"`
	Next           *time.Time `json:"next,omitempty"`
	Completed      bool       `json:"completed"`
}

func newDoseLogResponse(res *care.DoseResult, loc *time.Location) doseLogResponse {
	return doseLogResponse{
		ID:             res.Log.ID,
		TreatmentID:    res.Log.TreatmentID,
		AdministeredAt: res.Log.AdministeredAt.In(loc),
		WasLate:        res.Log.WasLate,
		Next:           res.Next,
		Completed:      res.Completed,
	}
}

type appointmentResponse struct {
	ID                  int64     `json:"id"`
	ProfileID           int64     `json:"profile_id"`
	Date                time.Time `json:"date"`
	Specialist          string    `json:"specialist"`
	Location            string    `json:"location,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	WeightKg            *float64  `json:"weight_kg,omitempty"`
	HeightCm            *float64  `json:"height_cm,omitempty"`
	HeadCircumferenceCm *float64  `json:"head_circumference_cm,omitempty"`
	Completed           bool      `json:"completed"`
}

func newAppointmentResponse(a *model.Appointment, loc *time.Location) appointmentResponse {
	return appointmentResponse{
		ID:                  a.ID,
		ProfileID:           a.ProfileID,
		Date:                a.Date.In(loc),
		Specialist:          a.Specialist,
		Location:            a.Location,
		Notes:               a.Notes,
		WeightKg:            a.WeightKg,
		HeightCm:            a.HeightCm,
		HeadCircumferenceCm: a.HeadCircumferenceCm,
		Completed:           a.Completed,
	}
}

type diaperSizeResponse struct {
	ID     int64  `json:"id"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
	Order  int    `json:"order"`
}

func newDiaperSizeResponse(s *model.DiaperSize) diaperSizeResponse {
	return diaperSizeResponse{ID: s.ID, Label: s.Label, Active: s.Active, Order: s.Order}
}

type inventoryResponse struct {
	Size        string     `json:"size"`
	Quantity    int        `json:"quantity"`
	LastRestock *time.Time `json:"last_restock,omitempty"`
}

func newInventoryResponse(inv *model.DiaperInventory, loc *time.Location) inventoryResponse {
	resp := inventoryResponse{Size: inv.Size.Label, Quantity: inv.Quantity}
	if !inv.LastRestock.IsZero() {
		at := inv.LastRestock.In(loc)
		resp.LastRestock = &at
	}
	return resp
}

type diaperLogResponse struct {
	ID        int64           `json:"id"`
	ProfileID int64           `json:"profile_id"`
	Time      time.Time       `json:"time"`
	WasteType model.WasteType `json:"waste_type"`
	Size      string          `json:"size"`
	Notes     string          `json:"notes,omitempty"`
	Stock     int             `json:"stock"`
	LowStock  bool            `json:"low_stock"`
}

type feedingResponse struct {
	ID              int64     `json:"id"`
	ProfileID       int64     `json:"profile_id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes,omitempty"`
	Next            time.Time `json:"next"`
}

type settingResponse struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

type outlookResponse struct {
	Feeding      *feedingStatusResponse `json:"feeding,omitempty"`
	Medications  []medicationResponse   `json:"medications"`
	Appointments []appointmentResponse  `json:"appointments"`
}

type feedingStatusResponse struct {
	At      time.Time `json:"at"`
	Overdue bool      `json:"overdue"`
}

type medicationResponse struct {
	TreatmentID  int64          `json:"treatment_id"`
	MedicineName string         `json:"medicine_name"`
	Today        []doseResponse `json:"today"`
	Next         *time.Time     `json:"next,omitempty"`
}

func newOutlookResponse(o *care.Outlook, loc *time.Location) outlookResponse {
	resp := outlookResponse{
		Medications:  make([]medicationResponse, 0, len(o.Medications)),
		Appointments: make([]appointmentResponse, 0, len(o.Appointments)),
	}
	if o.Feeding != nil {
		resp.Feeding = &feedingStatusResponse{At: o.Feeding.At.In(loc), Overdue: o.Feeding.Overdue}
	}
	for _, m := range o.Medications {
		resp.Medications = append(resp.Medications, medicationResponse{
			TreatmentID:  m.TreatmentID,
			MedicineName: m.MedicineName,
			Today:        newDoseResponses(m.Today),
			Next:         m.Next,
		})
	}
	for i := range o.Appointments {
		resp.Appointments = append(resp.Appointments, newAppointmentResponse(&o.Appointments[i], loc))
	}
	return resp
}
