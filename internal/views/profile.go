package views

import (
	"context"

	"kharcha/internal/core"
)

type ProfileModel struct {
	Email              string
	EnableBudgetAlerts bool
	Notice             string
}

func (s *Session) ProfileView(email string) ProfileModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ProfileModel{
		Email:              email,
		EnableBudgetAlerts: s.settings.EnableBudgetAlerts,
		Notice:             s.notice,
	}
}

// ToggleAlerts flips the budget alert preference.
func (s *Session) ToggleAlerts(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled := !s.settings.EnableBudgetAlerts
	success := NoticeAlertsOff
	if enabled {
		success = NoticeAlertsOn
	}
	return commit(ctx, s, "toggle_alerts",
		func(ctx context.Context) (core.ProfileSettings, error) {
			return s.svc.Profiles.SetAlerts(ctx, s.userID, enabled)
		},
		func(saved core.ProfileSettings) { s.settings = saved },
		success, NoticeSaveFailed)
}
