package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	SourceGoogle = "Google"

	DefaultGoogleBaseURL = "https://picasaweb.google.com/data/entry/api/user"
)

type GoogleOptions struct {
	BaseURL   string
	ImageSize int
}

// GoogleProvider resolves identities from Google user entries, keyed by the
// raw email. Its responses carry the account ID for GooglePlusProvider.
type GoogleProvider struct {
	baseURL   string
	imageSize int
	fetcher   Fetcher
}

func NewGoogleProvider(opts GoogleOptions, fetcher Fetcher) *GoogleProvider {
	p := &GoogleProvider{
		baseURL:   strings.TrimRight(orDefault(opts.BaseURL, DefaultGoogleBaseURL), "/"),
		imageSize: opts.ImageSize,
		fetcher:   fetcher,
	}
	if p.imageSize <= 0 {
		p.imageSize = DefaultImageSize
	}
	return p
}

func (p *GoogleProvider) Name() string { return SourceGoogle }

// textNode is the GData JSON encoding of an element's text content.
type textNode struct {
	T string `json:"$t"`
}

type googleUserEntry struct {
	Entry struct {
		Title  textNode `json:"title"`
		Author []struct {
			Name textNode `json:"name"`
		} `json:"author"`
		Thumbnail textNode `json:"gphoto$thumbnail"`
	} `json:"entry"`
}

func (p *GoogleProvider) Lookup(ctx context.Context, addr string) Response {
	u := fmt.Sprintf("%s/%s?alt=json", p.baseURL, url.PathEscape(strings.TrimSpace(addr)))
	resp, err := p.fetcher.Fetch(ctx, u, nil)
	if err != nil {
		log.Debug().Err(err).Str("provider", SourceGoogle).Msg("user entry fetch failed")
		return noAnswer(SourceGoogle)
	}
	if resp.StatusCode != http.StatusOK {
		return noAnswer(SourceGoogle)
	}

	var entry googleUserEntry
	if err := json.Unmarshal(resp.Body, &entry); err != nil {
		log.Debug().Err(err).Str("provider", SourceGoogle).Msg("user entry decode failed")
		return noAnswer(SourceGoogle)
	}

	var name string
	if len(entry.Entry.Author) > 0 {
		name = cleanName(entry.Entry.Author[0].Name.T)
	}
	var image string
	if thumb := strings.TrimSpace(entry.Entry.Thumbnail.T); thumb != "" {
		image = withQuery(thumb, "sz="+strconv.Itoa(p.imageSize))
	}
	return answer(SourceGoogle, name, image, strings.TrimSpace(entry.Entry.Title.T))
}

func (p *GoogleProvider) Healthy(ctx context.Context) (bool, int64, error) {
	return probeHealth(ctx, p.fetcher, p.baseURL, nil)
}

var numericPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// cleanName drops names that are entirely numeric: those are account IDs
// rendered in place of a real name.
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if numericPattern.MatchString(name) {
		return ""
	}
	return name
}

func withQuery(u, param string) string {
	if strings.Contains(u, "?") {
		return u + "&" + param
	}
	return u + "?" + param
}
