package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elabx-org/identify/internal/email"
	"github.com/rs/zerolog/log"
)

const (
	SourceGravatar = "Gravatar"

	DefaultGravatarProfileURL = "https://en.gravatar.com"
	DefaultGravatarAvatarURL  = "https://en.gravatar.com/avatar"
	DefaultImageSize          = 500
	DefaultUserAgent          = "Mozilla/5.0 (Windows; U; Windows NT 5.1; en-US; rv:1.8.1.13) Gecko/20080311 Firefox/2.0.0.13"

	// DefaultPlaceholderFingerprint is the MD5 of Gravatar's "no avatar set" image.
	DefaultPlaceholderFingerprint = "075087dca3f0792c244ab08e8308dec5"
)

type GravatarOptions struct {
	ProfileURL              string
	AvatarURL               string
	UserAgent               string
	ImageSize               int
	PlaceholderFingerprints []string
}

// GravatarProvider resolves identities from Gravatar profiles, which are
// addressed by the hash of the normalized email.
type GravatarProvider struct {
	profileURL   string
	avatarURL    string
	userAgent    string
	imageSize    int
	placeholders map[string]struct{}
	fetcher      Fetcher
	hasher       Hasher
}

func NewGravatarProvider(opts GravatarOptions, fetcher Fetcher, hasher Hasher) *GravatarProvider {
	p := &GravatarProvider{
		profileURL:   strings.TrimRight(orDefault(opts.ProfileURL, DefaultGravatarProfileURL), "/"),
		avatarURL:    strings.TrimRight(orDefault(opts.AvatarURL, DefaultGravatarAvatarURL), "/"),
		userAgent:    orDefault(opts.UserAgent, DefaultUserAgent),
		imageSize:    opts.ImageSize,
		placeholders: make(map[string]struct{}),
		fetcher:      fetcher,
		hasher:       hasher,
	}
	if p.imageSize <= 0 {
		p.imageSize = DefaultImageSize
	}
	fingerprints := opts.PlaceholderFingerprints
	if len(fingerprints) == 0 {
		fingerprints = []string{DefaultPlaceholderFingerprint}
	}
	for _, fp := range fingerprints {
		p.placeholders[strings.ToLower(strings.TrimSpace(fp))] = struct{}{}
	}
	return p
}

func (p *GravatarProvider) Name() string { return SourceGravatar }

func (p *GravatarProvider) headers() map[string]string {
	return map[string]string{"User-Agent": p.userAgent}
}

type gravatarProfile struct {
	Entry []gravatarEntry `json:"entry"`
}

type gravatarEntry struct {
	PreferredUsername string `json:"preferredUsername"`
	DisplayName       string `json:"displayName"`
	// Gravatar sends an empty array instead of an object when no name is set.
	Name json.RawMessage `json:"name"`
}

// name prefers the formatted full name. The display name is only used when
// it differs from the username: accounts without a real name echo it.
func (e gravatarEntry) name() string {
	var n struct {
		Formatted string `json:"formatted"`
	}
	if err := json.Unmarshal(e.Name, &n); err == nil {
		if formatted := strings.TrimSpace(n.Formatted); formatted != "" {
			return formatted
		}
	}
	display := strings.TrimSpace(e.DisplayName)
	if display != "" && display != strings.TrimSpace(e.PreferredUsername) {
		return display
	}
	return ""
}

func (p *GravatarProvider) Lookup(ctx context.Context, addr string) Response {
	hash := p.hasher.Sum([]byte(email.Normalize(addr)))

	resp, err := p.fetcher.Fetch(ctx, fmt.Sprintf("%s/%s.json", p.profileURL, hash), p.headers())
	if err != nil {
		log.Debug().Err(err).Str("provider", SourceGravatar).Msg("profile fetch failed")
		return noAnswer(SourceGravatar)
	}
	if resp.StatusCode != http.StatusOK {
		return noAnswer(SourceGravatar)
	}

	var profile gravatarProfile
	if err := json.Unmarshal(resp.Body, &profile); err != nil {
		log.Debug().Err(err).Str("provider", SourceGravatar).Msg("profile decode failed")
		return noAnswer(SourceGravatar)
	}
	if len(profile.Entry) == 0 {
		return noAnswer(SourceGravatar)
	}

	// The image alone can make the record sufficient, so it is checked even
	// when no name was found.
	return answer(SourceGravatar, profile.Entry[0].name(), p.avatar(ctx, hash), "")
}

// avatar returns the avatar URL, or "" when the image is missing or is the
// placeholder Gravatar serves for accounts without one.
func (p *GravatarProvider) avatar(ctx context.Context, hash string) string {
	url := fmt.Sprintf("%s/%s.jpg?size=%d", p.avatarURL, hash, p.imageSize)
	resp, err := p.fetcher.Fetch(ctx, url, p.headers())
	if err != nil {
		log.Debug().Err(err).Str("provider", SourceGravatar).Msg("avatar fetch failed")
		return ""
	}
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	if _, ok := p.placeholders[p.hasher.Sum(resp.Body)]; ok {
		return ""
	}
	return url
}

func (p *GravatarProvider) Healthy(ctx context.Context) (bool, int64, error) {
	return probeHealth(ctx, p.fetcher, fmt.Sprintf("%s/%s.jpg", p.avatarURL, p.hasher.Sum(nil)), p.headers())
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
