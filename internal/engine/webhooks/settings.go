package webhooks

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// Settings table keys read by the resolver.
const (
	KeyWebhookURL     = "webhook_url"
	KeyWebhookBaseURL = "webhook_base_url"
	KeyWebhookDomain  = "webhook_domain"
	keyPathPrefix     = "webhook_path_"
)

var ErrInvalidURL = errors.New("webhook url must be an absolute http(s) url")

// SettingKeys lists every settings key the resolver reads.
func SettingKeys() []string {
	keys := []string{KeyWebhookURL, KeyWebhookBaseURL, KeyWebhookDomain}
	for _, c := range Categories {
		keys = append(keys, PathKey(c))
	}
	return keys
}

// PathKey is the settings key holding the path segment for a category.
func PathKey(c Category) string {
	return keyPathPrefix + string(c)
}

type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// Provider is one tier of destination resolution. An empty string means the
// tier has nothing to offer.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, category Category, userID string) (string, error)
}

// UserOverrideProvider reads the webhook URL a user stored with their preferences.
type UserOverrideProvider struct {
	Store PreferenceStore
}

func (p UserOverrideProvider) Name() string { return "user_override" }

func (p UserOverrideProvider) Lookup(ctx context.Context, _ Category, userID string) (string, error) {
	if userID == "" || p.Store == nil {
		return "", nil
	}
	s, err := p.Store.GetByUserID(ctx, userID)
	if err != nil || s == nil {
		return "", err
	}
	return strings.TrimSpace(s.WebhookURL), nil
}

// LegacyURLProvider returns the single-field webhook_url setting verbatim.
type LegacyURLProvider struct {
	Store SettingsStore
}

func (p LegacyURLProvider) Name() string { return "legacy_url" }

func (p LegacyURLProvider) Lookup(ctx context.Context, _ Category, _ string) (string, error) {
	value, _, err := p.Store.Get(ctx, KeyWebhookURL)
	return strings.TrimSpace(value), err
}

// BaseURLPathProvider joins the base URL and the category path with plain
// concatenation; slashes are not normalized. Both parts must be set.
type BaseURLPathProvider struct {
	Store SettingsStore
}

func (p BaseURLPathProvider) Name() string { return "base_url_path" }

func (p BaseURLPathProvider) Lookup(ctx context.Context, category Category, _ string) (string, error) {
	base, _, err := p.Store.Get(ctx, KeyWebhookBaseURL)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(base) == "" {
		if base, _, err = p.Store.Get(ctx, KeyWebhookDomain); err != nil {
			return "", err
		}
	}
	path, _, err := p.Store.Get(ctx, PathKey(category))
	if err != nil {
		return "", err
	}

	base, path = strings.TrimSpace(base), strings.TrimSpace(path)
	if base == "" || path == "" {
		return "", nil
	}
	return base + path, nil
}

// EnvFallbackProvider serves the one global URL from the environment.
type EnvFallbackProvider struct {
	URL string
}

func (p EnvFallbackProvider) Name() string { return "env_fallback" }

func (p EnvFallbackProvider) Lookup(context.Context, Category, string) (string, error) {
	return strings.TrimSpace(p.URL), nil
}

// Resolver walks its providers in order; the first non-empty answer wins.
// Nothing is cached, so settings changes apply to the next dispatch.
type Resolver struct {
	providers []Provider
}

func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// NewDefaultResolver wires the standard order: user override, legacy URL,
// base URL + path, environment fallback.
func NewDefaultResolver(settings SettingsStore, overrides PreferenceStore, fallbackURL string) *Resolver {
	return NewResolver(
		UserOverrideProvider{Store: overrides},
		LegacyURLProvider{Store: settings},
		BaseURLPathProvider{Store: settings},
		EnvFallbackProvider{URL: fallbackURL},
	)
}

// Resolve returns the destination for category, or "" when none is configured
// or the configured value is not a valid URL. Provider errors skip the tier.
func (r *Resolver) Resolve(ctx context.Context, category Category, userID string) string {
	for _, p := range r.providers {
		value, err := p.Lookup(ctx, category, userID)
		if err != nil {
			log.Debug().Err(err).Str("provider", p.Name()).Str("category", string(category)).
				Msg("webhook settings tier unavailable")
			continue
		}
		if value == "" {
			continue
		}

		if err := ValidateURL(value); err != nil {
			log.Warn().Str("provider", p.Name()).Str("category", string(category)).Str("url", value).
				Msg("configured webhook url is invalid, skipping dispatch")
			return ""
		}
		return value
	}
	return ""
}

func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	return nil
}
