package webhooks

import (
	"context"

	"github.com/rs/zerolog/log"

	"helpdesk/internal/platform/models"
)

type PreferenceStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.NotificationSettings, error)
}

func DefaultPreferences() Preferences {
	return Preferences{
		NewTicket:      true,
		DeletedTicket:  true,
		InWorkTicket:   true,
		UpdatedTicket:  true,
		SolvedTicket:   true,
		SharedWorkflow: true,
		SharedPrompt:   true,
		RoleChange:     true,
		NewMail:        true,
	}
}

func PreferencesFromSettings(s *models.NotificationSettings) Preferences {
	if s == nil {
		return DefaultPreferences()
	}
	return Preferences{
		NewTicket:      s.NewTicket,
		DeletedTicket:  s.DeletedTicket,
		InWorkTicket:   s.InWorkTicket,
		UpdatedTicket:  s.UpdatedTicket,
		SolvedTicket:   s.SolvedTicket,
		SharedWorkflow: s.SharedWorkflow,
		SharedPrompt:   s.SharedPrompt,
		RoleChange:     s.RoleChange,
		NewMail:        s.NewMail,
	}
}

// PreferenceResolver loads a user's toggles. Notifications are opt-out: a
// missing row or a failed lookup yields every flag on.
type PreferenceResolver struct {
	store PreferenceStore
}

func NewPreferenceResolver(store PreferenceStore) *PreferenceResolver {
	return &PreferenceResolver{store: store}
}

func (r *PreferenceResolver) Get(ctx context.Context, userID string) Preferences {
	if r == nil || r.store == nil || userID == "" {
		return DefaultPreferences()
	}

	settings, err := r.store.GetByUserID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("notification preferences lookup failed, using defaults")
		return DefaultPreferences()
	}
	return PreferencesFromSettings(settings)
}
