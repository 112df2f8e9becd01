package care

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"babycare-backend/internal/model"
	"babycare-backend/internal/notification"
	"babycare-backend/internal/store"
)

// Registration is the identity a caregiver presents on first contact.
type Registration struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Nickname  string `json:"nickname"`
}

// RegisterCaregiver records a new caregiver. The first one becomes the active
// owner; everyone after that waits as an inactive guest until the owner
// approves them. Registering again while still pending repeats the request.
func (s *Service) RegisterCaregiver(ctx context.Context, r Registration) (*model.Caregiver, error) {
	if r.ID == 0 {
		return nil, invalid("caregiver id is required")
	}

	existing, err := s.store.GetCaregiver(ctx, r.ID)
	switch {
	case err == nil:
		if !existing.Active {
			s.requestApproval(ctx, existing)
		}
		return existing, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	count, err := s.store.CountCaregivers(ctx)
	if err != nil {
		return nil, err
	}

	c := &model.Caregiver{
		ID:        r.ID,
		Username:  r.Username,
		FirstName: r.FirstName,
		Nickname:  strings.TrimSpace(r.Nickname),
		Role:      model.RoleGuest,
	}
	if count == 0 {
		c.Role = model.RoleOwner
		c.Active = true
	}
	if err := s.store.CreateCaregiver(ctx, c); err != nil {
		return nil, err
	}

	if c.Active {
		log.Printf("Caregiver %d registered as owner", c.ID)
	} else {
		log.Printf("Caregiver %d registered, waiting for approval", c.ID)
		s.requestApproval(ctx, c)
	}
	return c, nil
}

func (s *Service) requestApproval(ctx context.Context, c *model.Caregiver) {
	owner, err := s.store.FindOwner(ctx)
	if err != nil {
		log.Printf("No owner to approve caregiver %d: %v", c.ID, err)
		return
	}
	body := fmt.Sprintf("Usuario: %s", c.DisplayName())
	if c.Username != "" {
		body += fmt.Sprintf(" (@%s)", c.Username)
	}
	body += fmt.Sprintf("\nID: %d", c.ID)
	s.alerts.Broadcast(notification.Alert{
		CaregiverID: owner.ID,
		Title:       "Nueva solicitud de acceso",
		Body:        body,
	})
}

// Authorize returns the caregiver when it exists and is active.
func (s *Service) Authorize(ctx context.Context, id int64) (*model.Caregiver, error) {
	c, err := s.store.GetCaregiver(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, ErrInactiveCaregiver
	}
	return c, nil
}

func (s *Service) requireOwner(ctx context.Context, id int64) (*model.Caregiver, error) {
	c, err := s.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Role != model.RoleOwner {
		return nil, ErrForbidden
	}
	return c, nil
}

// ApproveCaregiver activates a pending caregiver with the given role and nickname.
func (s *Service) ApproveCaregiver(ctx context.Context, ownerID, id int64, role model.Role, nickname string) (*model.Caregiver, error) {
	owner, err := s.requireOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = model.RoleGuest
	}
	if role != model.RoleAdmin && role != model.RoleGuest {
		return nil, invalid("role %q cannot be granted", role)
	}

	c, err := s.store.GetCaregiver(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Role = role
	c.Active = true
	if nickname = strings.TrimSpace(nickname); nickname != "" {
		c.Nickname = nickname
	}
	if err := s.store.UpdateCaregiver(ctx, c); err != nil {
		return nil, err
	}

	log.Printf("Caregiver %d approved by %d as %s", c.ID, owner.ID, role)
	s.alerts.Broadcast(notification.Alert{
		CaregiverID: c.ID,
		Title:       fmt.Sprintf("¡Bienvenido, %s!", c.DisplayName()),
		Body:        fmt.Sprintf("Tu acceso ha sido aprobado por %s con el rol de %s.", owner.DisplayName(), role),
	})
	return c, nil
}

// RejectCaregiver removes a caregiver's request.
func (s *Service) RejectCaregiver(ctx context.Context, ownerID, id int64) error {
	if _, err := s.requireOwner(ctx, ownerID); err != nil {
		return err
	}
	if id == ownerID {
		return invalid("the owner cannot be removed")
	}
	if err := s.store.DeleteCaregiver(ctx, id); err != nil {
		return err
	}
	log.Printf("Caregiver %d rejected by %d", id, ownerID)
	return nil
}
