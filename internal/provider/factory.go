package provider

import (
	"context"
	"time"

	"github.com/elabx-org/identify/internal/config"
)

// FromConfig builds the Gravatar → Google → Google Plus chain.
// apiKey is the resolved Google Plus key; it overrides the config value,
// which may still be an unresolved op:// reference.
func FromConfig(cfg *config.Config, apiKey string) *Manager {
	fetcher := NewHTTPFetcher(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)
	pc := cfg.Providers

	gravatar := NewGravatarProvider(GravatarOptions{
		ProfileURL:              pc.Gravatar.ProfileURL,
		AvatarURL:               pc.Gravatar.AvatarURL,
		UserAgent:               cfg.HTTP.UserAgent,
		ImageSize:               pc.Gravatar.ImageSize,
		PlaceholderFingerprints: pc.Gravatar.PlaceholderFingerprints,
	}, fetcher, MD5Hasher{})
	google := NewGoogleProvider(GoogleOptions{
		BaseURL:   pc.Google.BaseURL,
		ImageSize: pc.Google.ImageSize,
	}, fetcher)
	googlePlus := NewGooglePlusProvider(GooglePlusOptions{
		BaseURL:     pc.GooglePlus.BaseURL,
		APIKey:      apiKey,
		ImageSuffix: pc.GooglePlus.ImageSuffix,
	}, fetcher)

	return NewManager([]Provider{gravatar, google}, googlePlus)
}

// Default builds the chain against the public provider endpoints.
func Default(apiKey string) *Manager {
	fetcher := NewHTTPFetcher(DefaultTimeout)
	return NewManager(
		[]Provider{
			NewGravatarProvider(GravatarOptions{}, fetcher, MD5Hasher{}),
			NewGoogleProvider(GoogleOptions{}, fetcher),
		},
		NewGooglePlusProvider(GooglePlusOptions{APIKey: apiKey}, fetcher),
	)
}

// Identify resolves addr with the default chain. apiKey may be empty, in
// which case Google Plus is skipped.
func Identify(ctx context.Context, addr, apiKey string) Result {
	return Default(apiKey).Identify(ctx, addr)
}
