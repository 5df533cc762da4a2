package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	SourceGooglePlus = "Google Plus"

	DefaultGooglePlusBaseURL = "https://www.googleapis.com/plus/v1/people"
	// DefaultGooglePlusImageSuffix turns the API's "?sz=50" image URL into "?sz=500".
	DefaultGooglePlusImageSuffix = "0"
)

type GooglePlusOptions struct {
	BaseURL     string
	APIKey      string
	ImageSuffix string
}

// GooglePlusProvider enriches a Google account ID with its Google Plus person
// record. It is opt-in: without an API key it never answers.
type GooglePlusProvider struct {
	baseURL     string
	apiKey      string
	imageSuffix string
	fetcher     Fetcher
}

func NewGooglePlusProvider(opts GooglePlusOptions, fetcher Fetcher) *GooglePlusProvider {
	return &GooglePlusProvider{
		baseURL:     strings.TrimRight(orDefault(opts.BaseURL, DefaultGooglePlusBaseURL), "/"),
		apiKey:      strings.TrimSpace(opts.APIKey),
		imageSuffix: orDefault(opts.ImageSuffix, DefaultGooglePlusImageSuffix),
		fetcher:     fetcher,
	}
}

func (p *GooglePlusProvider) Name() string { return SourceGooglePlus }

// Enabled reports whether an API key is configured.
func (p *GooglePlusProvider) Enabled() bool { return p.apiKey != "" }

type googlePlusPerson struct {
	DisplayName string `json:"displayName"`
	Image       struct {
		URL       string `json:"url"`
		IsDefault *bool  `json:"isDefault"`
	} `json:"image"`
}

func (p *GooglePlusProvider) Enrich(ctx context.Context, identifier string) Response {
	if !p.Enabled() || identifier == "" {
		return noAnswer(SourceGooglePlus)
	}

	u := fmt.Sprintf("%s/%s?key=%s", p.baseURL, url.PathEscape(identifier), url.QueryEscape(p.apiKey))
	resp, err := p.fetcher.Fetch(ctx, u, nil)
	if err != nil {
		log.Debug().Err(err).Str("provider", SourceGooglePlus).Msg("person fetch failed")
		return noAnswer(SourceGooglePlus)
	}
	if resp.StatusCode != http.StatusOK {
		return noAnswer(SourceGooglePlus)
	}

	var person googlePlusPerson
	if err := json.Unmarshal(resp.Body, &person); err != nil {
		log.Debug().Err(err).Str("provider", SourceGooglePlus).Msg("person decode failed")
		return noAnswer(SourceGooglePlus)
	}

	// Only an explicit isDefault=false marks a user-chosen picture.
	var image string
	if person.Image.IsDefault != nil && !*person.Image.IsDefault && person.Image.URL != "" {
		image = person.Image.URL + p.imageSuffix
	}
	return answer(SourceGooglePlus, cleanName(person.DisplayName), image, "")
}

func (p *GooglePlusProvider) Healthy(ctx context.Context) (bool, int64, error) {
	if !p.Enabled() {
		return false, 0, nil
	}
	return probeHealth(ctx, p.fetcher, p.baseURL, nil)
}
