package services

import (
	"context"
	"fmt"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

type ProfileService struct {
	store storage.ProfileStore
	events
}

func NewProfileService(store storage.ProfileStore, opts ...Option) *ProfileService {
	return &ProfileService{store: store, events: newEvents(opts)}
}

// Get returns the stored settings, or the defaults when no profile row exists.
func (s *ProfileService) Get(ctx context.Context, userID string) (core.ProfileSettings, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return core.ProfileSettings{}, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return core.DefaultProfileSettings(), nil
	}
	return *p, nil
}

func (s *ProfileService) SetAlerts(ctx context.Context, userID string, enabled bool) (core.ProfileSettings, error) {
	p, err := s.store.UpdateProfile(ctx, userID, core.ProfileSettings{EnableBudgetAlerts: enabled})
	s.recorder.StoreWrite("profile", "update", err)
	if err != nil {
		return core.ProfileSettings{}, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}
