package care

import (
	"context"
	"log"
	"strings"
	"time"

	"babycare-backend/internal/model"
)

// NewProfile describes a person to track.
type NewProfile struct {
	Name      string            `json:"name"`
	Type      model.ProfileType `json:"type"`
	BirthDate time.Time         `json:"birth_date"`
}

// CreateProfile adds a baby or adult profile. Babies are the default.
func (s *Service) CreateProfile(ctx context.Context, in NewProfile) (*model.Profile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 100 {
		return nil, invalid("name must have between 1 and 100 characters")
	}
	if in.Type == "" {
		in.Type = model.ProfileBaby
	}
	if in.Type != model.ProfileBaby && in.Type != model.ProfileAdult {
		return nil, invalid("unknown profile type %q", in.Type)
	}
	if in.BirthDate.IsZero() {
		return nil, invalid("birth date is required")
	}
	if in.BirthDate.After(s.Now()) {
		return nil, invalid("birth date is in the future")
	}

	p := &model.Profile{Name: name, Type: in.Type, BirthDate: in.BirthDate.UTC()}
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("Profile %d (%s) created", p.ID, p.Name)
	return p, nil
}
